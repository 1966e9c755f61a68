package decompile

import (
	"context"
	"fmt"

	"github.com/klingon-exchange/sandwichfinder/internal/lutcache"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// AccountFetcher batches an RPC lookup of LUT payloads for addresses
// not yet cached. It is the one external collaborator C2 talks to.
type AccountFetcher interface {
	FetchLookupTables(ctx context.Context, keys []svmtypes.Address) (map[svmtypes.Address][]svmtypes.Address, error)
}

// resolvedKeys is the effective key list of a transaction together
// with everything needed to derive is_signer/is_writable for any
// index into it.
type resolvedKeys struct {
	keys       []svmtypes.Address
	header     MessageHeader
	numStatic  int
	numWritLUT int
}

// resolveAccountKeys ensures every referenced LUT is cached (fetching
// any misses in one batched call), then builds the effective key list
// static ++ writable ++ readonly per §4.2.1.
func resolveAccountKeys(ctx context.Context, tx *RawTransaction, cache *lutcache.Cache, fetcher AccountFetcher) (*resolvedKeys, error) {
	var missing []svmtypes.Address
	for _, lookup := range tx.AddressTableLookups {
		if !cache.Contains(lookup.AccountKey) {
			missing = append(missing, lookup.AccountKey)
		}
	}

	if len(missing) > 0 {
		fetched, err := fetcher.FetchLookupTables(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("decompile: fetch LUTs: %w", err)
		}
		for key, addrs := range fetched {
			cache.InsertOrExtend(key, addrs)
		}
	}

	var writable, readonly []svmtypes.Address
	for _, lookup := range tx.AddressTableLookups {
		table, err := cache.Get(lookup.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("decompile: missing LUT %s after fetch: %w", lookup.AccountKey, err)
		}
		for _, idx := range lookup.WritableIndexes {
			if int(idx) >= len(table) {
				return nil, fmt.Errorf("decompile: writable LUT index %d out of range for %s (len %d)", idx, lookup.AccountKey, len(table))
			}
			writable = append(writable, table[idx])
		}
		for _, idx := range lookup.ReadonlyIndexes {
			if int(idx) >= len(table) {
				return nil, fmt.Errorf("decompile: readonly LUT index %d out of range for %s (len %d)", idx, lookup.AccountKey, len(table))
			}
			readonly = append(readonly, table[idx])
		}
	}

	keys := make([]svmtypes.Address, 0, len(tx.StaticAccountKeys)+len(writable)+len(readonly))
	keys = append(keys, tx.StaticAccountKeys...)
	keys = append(keys, writable...)
	keys = append(keys, readonly...)

	return &resolvedKeys{
		keys:       keys,
		header:     tx.Header,
		numStatic:  len(tx.StaticAccountKeys),
		numWritLUT: len(writable),
	}, nil
}

// meta derives (is_signer, is_writable) for key index i per §4.2.1.
func (r *resolvedKeys) meta(i int) svmtypes.AccountMeta {
	h := r.header
	isSigner := i < h.NumRequiredSignatures

	var isWritable bool
	switch {
	case i >= r.numStatic:
		isWritable = i-r.numStatic < r.numWritLUT
	case i >= h.NumRequiredSignatures:
		isWritable = i-h.NumRequiredSignatures < r.numStatic-h.NumRequiredSignatures-h.NumReadonlyUnsignedAccounts
	default:
		isWritable = i < h.NumRequiredSignatures-h.NumReadonlySignedAccounts
	}

	return svmtypes.AccountMeta{
		Address:    r.keys[i],
		IsSigner:   isSigner,
		IsWritable: isWritable,
		Index:      i,
	}
}

// instruction rebuilds a single legacy-style instruction: its account
// indexes become resolved AccountMetas.
func (r *resolvedKeys) instruction(ci CompiledInstruction) (svmtypes.Instruction, error) {
	if ci.ProgramIDIndex < 0 || ci.ProgramIDIndex >= len(r.keys) {
		return svmtypes.Instruction{}, fmt.Errorf("decompile: program index %d out of range (%d keys)", ci.ProgramIDIndex, len(r.keys))
	}
	accounts := make([]svmtypes.AccountMeta, 0, len(ci.AccountIndexes))
	for _, idx := range ci.AccountIndexes {
		if idx < 0 || idx >= len(r.keys) {
			return svmtypes.Instruction{}, fmt.Errorf("decompile: account index %d out of range (%d keys)", idx, len(r.keys))
		}
		accounts = append(accounts, r.meta(idx))
	}
	return svmtypes.Instruction{
		Program:  r.keys[ci.ProgramIDIndex],
		Accounts: accounts,
		Data:     ci.Data,
	}, nil
}
