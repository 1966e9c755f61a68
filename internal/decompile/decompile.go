// Package decompile turns a compressed, versioned transaction into a
// flat, account-resolved instruction list and extracts normalized
// Swap records from it by matching the AMM program descriptor table.
package decompile

import (
	"context"
	"fmt"

	"github.com/klingon-exchange/sandwichfinder/internal/lutcache"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// Decompile resolves tx's account keys, rebuilds its top-level and
// inner instructions, and extracts swaps from every matched AMM
// instruction. It returns an error only for conditions that should
// abort decoding of this single transaction (§4.2.4); a failed
// transaction (tx.Err) or an unsupported transfer opcode are not
// errors — the former yields (nil, nil), the latter a dropped swap
// candidate.
func Decompile(ctx context.Context, tx *RawTransaction, cache *lutcache.Cache, fetcher AccountFetcher) (*svmtypes.DecompiledTransaction, error) {
	if tx.Err {
		return nil, nil
	}

	resolved, err := resolveAccountKeys(ctx, tx, cache, fetcher)
	if err != nil {
		return nil, err
	}
	if len(resolved.keys) == 0 {
		return nil, fmt.Errorf("decompile: transaction has no account keys")
	}
	signer := resolved.keys[0]

	instructions := make([]svmtypes.Instruction, len(tx.Instructions))
	groups := make([][]svmtypes.Instruction, len(tx.Instructions))

	for i, ci := range tx.Instructions {
		inst, err := resolved.instruction(ci)
		if err != nil {
			return nil, fmt.Errorf("decompile: top-level instruction %d: %w", i, err)
		}
		instructions[i] = inst

		innerCIs := tx.InnerInstructions[i]
		group := make([]svmtypes.Instruction, len(innerCIs))
		for j, innerCI := range innerCIs {
			innerInst, err := resolved.instruction(innerCI)
			if err != nil {
				return nil, fmt.Errorf("decompile: inner instruction %d of top-level %d: %w", j, i, err)
			}
			group[j] = innerInst
		}
		groups[i] = group
	}

	resolveMint := mintResolver(tx.PostTokenBalances)

	var swaps []svmtypes.Swap
	for i, inst := range instructions {
		swaps = append(swaps, extractSwaps(inst, groups[i], signer, resolveMint, tx.Index, tx.Signature)...)
	}

	return &svmtypes.DecompiledTransaction{
		Sig:          tx.Signature,
		Payer:        signer,
		Order:        tx.Index,
		Instructions: instructions,
		Swaps:        swaps,
	}, nil
}
