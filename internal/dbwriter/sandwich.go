package dbwriter

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// taggedSwap pairs a Swap with the role it plays in its sandwich.
type taggedSwap struct {
	Swap svmtypes.Swap
	Role svmtypes.SwapRole
}

// buildSwapList is step 2 of §4.6: frontrun, every victim, then
// backrun, in that order.
func buildSwapList(s svmtypes.Sandwich) []taggedSwap {
	list := make([]taggedSwap, 0, 2+len(s.Victims))
	list = append(list, taggedSwap{s.Frontrun, svmtypes.RoleFrontrun})
	for _, v := range s.Victims {
		list = append(list, taggedSwap{v, svmtypes.RoleVictim})
	}
	list = append(list, taggedSwap{s.Backrun, svmtypes.RoleBackrun})
	return list
}

// unseenSignatures is step 3 of §4.6: the subset of list whose
// signature is not already present in cache, de-duplicated and in
// first-occurrence order (a signature appearing twice within the same
// sandwich, e.g. a multi-swap transaction, is only inserted once).
func unseenSignatures(list []taggedSwap, cache map[string]int64) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, ts := range list {
		sig := ts.Swap.Sig.String()
		if _, cached := cache[sig]; cached {
			continue
		}
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, sig)
	}
	return out
}

func (w *Writer) writeSandwich(ctx context.Context, s svmtypes.Sandwich) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("dbwriter: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sandwich (slot, timestamp) VALUES (?, ?)`,
		s.Slot, s.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("dbwriter: insert sandwich: %w", err)
	}
	sandwichID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("dbwriter: sandwich id: %w", err)
	}

	list := buildSwapList(s)
	unseen := unseenSignatures(list, w.txIDs)

	if len(unseen) > 0 {
		if err := w.insertTransactions(ctx, tx, s, list, unseen); err != nil {
			return err
		}
	}

	if err := w.insertSwaps(ctx, tx, sandwichID, list); err != nil {
		return err
	}

	return tx.Commit()
}

// insertTransactions performs step 4 of §4.6: batch-insert the unseen
// transaction rows, then read back their generated ids and populate
// the process-local tx_id cache.
func (w *Writer) insertTransactions(ctx context.Context, tx *sql.Tx, s svmtypes.Sandwich, list []taggedSwap, unseen []string) error {
	bySig := make(map[string]taggedSwap, len(list))
	for _, ts := range list {
		bySig[ts.Swap.Sig.String()] = ts
	}

	placeholders := make([]string, 0, len(unseen))
	args := make([]any, 0, len(unseen)*4)
	for _, sig := range unseen {
		ts := bySig[sig]
		placeholders = append(placeholders, "(?, ?, ?, ?)")
		args = append(args, sig, ts.Swap.Signer.String(), s.Slot, ts.Swap.Order)
	}

	insertSQL := fmt.Sprintf(
		`INSERT INTO transaction (tx_hash, signer, slot, order_in_block) VALUES %s`,
		strings.Join(placeholders, ", "),
	)
	if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
		return fmt.Errorf("dbwriter: insert transactions: %w", err)
	}

	selectPlaceholders := make([]string, len(unseen))
	selectArgs := make([]any, len(unseen))
	for i, sig := range unseen {
		selectPlaceholders[i] = "?"
		selectArgs[i] = sig
	}
	selectSQL := fmt.Sprintf(
		`SELECT id, tx_hash FROM transaction WHERE tx_hash IN (%s)`,
		strings.Join(selectPlaceholders, ", "),
	)
	rows, err := tx.QueryContext(ctx, selectSQL, selectArgs...)
	if err != nil {
		return fmt.Errorf("dbwriter: select transaction ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return fmt.Errorf("dbwriter: scan transaction id: %w", err)
		}
		w.txIDs[hash] = id
	}
	return rows.Err()
}

// insertSwaps performs step 5 of §4.6: one swap row per (swap, role)
// tuple, using the now-fully-populated tx_id cache.
func (w *Writer) insertSwaps(ctx context.Context, tx *sql.Tx, sandwichID int64, list []taggedSwap) error {
	placeholders := make([]string, 0, len(list))
	args := make([]any, 0, len(list)*11)
	for _, ts := range list {
		sig := ts.Swap.Sig.String()
		txID, ok := w.txIDs[sig]
		if !ok {
			return fmt.Errorf("dbwriter: no cached transaction id for %s", sig)
		}
		var outerProgram any
		if ts.Swap.OuterProgram != nil {
			outerProgram = ts.Swap.OuterProgram.String()
		}
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			sandwichID, outerProgram, ts.Swap.Program.String(), ts.Swap.AMM.String(),
			ts.Swap.Subject.String(), ts.Swap.InputMint.String(), ts.Swap.OutputMint.String(),
			ts.Swap.InputAmount, ts.Swap.OutputAmount, txID, string(ts.Role),
		)
	}

	insertSQL := fmt.Sprintf(
		`INSERT INTO swap (sandwich_id, outer_program, inner_program, amm, subject, input_mint, output_mint, input_amount, output_amount, tx_id, swap_type) VALUES %s`,
		strings.Join(placeholders, ", "),
	)
	if _, err := tx.ExecContext(ctx, insertSQL, args...); err != nil {
		return fmt.Errorf("dbwriter: insert swaps: %w", err)
	}
	return nil
}
