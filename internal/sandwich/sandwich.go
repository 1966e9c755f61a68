// Package sandwich implements the per-block adversarial-trade
// detector: it groups a block's swaps by AMM and by direction, then
// enumerates candidate frontrun/backrun pairs and interposed victims
// against the six predicates described alongside Detect.
package sandwich

import (
	"sort"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// Detect runs the detector over one block's decompiled transactions
// and returns every Sandwich that satisfies all six predicates:
//  1. strict ordering (frontrun < victims < backrun),
//  2. same direction for frontrun/victims, reversed for backrun,
//  3. profitability bounds,
//  4. shared AMM,
//  5. distinct victim signer,
//  6. shared non-trivial wrapper program.
//
// Predicates 2 and 4 are enforced structurally by the partitioning
// below; 1, 3, 5, 6 are enforced inline in findSandwiches.
func Detect(txs []svmtypes.DecompiledTransaction, slot uint64, ts int64) []svmtypes.Sandwich {
	var swaps []svmtypes.Swap
	for _, tx := range txs {
		swaps = append(swaps, tx.Swaps...)
	}
	sort.SliceStable(swaps, func(i, j int) bool { return swaps[i].Order < swaps[j].Order })

	byAMM := make(map[svmtypes.Address][]svmtypes.Swap)
	for _, s := range swaps {
		byAMM[s.AMM] = append(byAMM[s.AMM], s)
	}

	var out []svmtypes.Sandwich
	for _, group := range byAMM {
		if len(group) < 3 {
			continue
		}

		byMint := make(map[svmtypes.Address][]svmtypes.Swap)
		var mintOrder []svmtypes.Address
		for _, s := range group {
			if _, seen := byMint[s.InputMint]; !seen {
				mintOrder = append(mintOrder, s.InputMint)
			}
			byMint[s.InputMint] = append(byMint[s.InputMint], s)
		}
		if len(mintOrder) != 2 {
			continue
		}

		a, b := byMint[mintOrder[0]], byMint[mintOrder[1]]
		out = append(out, findSandwiches(a, b, slot, ts)...)
		out = append(out, findSandwiches(b, a, slot, ts)...)
	}

	return out
}

// findSandwiches implements the nested i/j loop of §4.3 for one
// ordered direction pair (inTrades, outTrades). Both slices are in
// ascending Order (inherited from the stable sort in Detect).
func findSandwiches(inTrades, outTrades []svmtypes.Swap, slot uint64, ts int64) []svmtypes.Sandwich {
	var out []svmtypes.Sandwich

	for i := 0; i < len(inTrades); i++ {
		f := inTrades[i]

		for j := len(outTrades) - 1; j >= 0; j-- {
			b := outTrades[j]

			// Predicate 1: strict ordering. Descending j means every
			// subsequent j has an even lower order, so once this fails
			// there is no point continuing for this i.
			if b.Order <= f.Order {
				break
			}

			// Predicate 3: profitability bounds.
			if !(b.OutputAmount >= f.InputAmount && b.InputAmount <= f.OutputAmount) {
				continue
			}

			// Predicate 6: shared, non-trivial wrapper program.
			if f.OuterProgram == nil || b.OuterProgram == nil || !f.OuterProgram.Equals(*b.OuterProgram) {
				continue
			}
			if f.OuterProgram.Equals(svmtypes.AggregatorRouter) {
				continue
			}

			var victims []svmtypes.Swap
			for k := i + 1; k < len(inTrades); k++ {
				v := inTrades[k]
				if v.Order >= b.Order {
					break
				}
				if v.Signer.Equals(f.Signer) || v.Signer.Equals(b.Signer) {
					continue
				}
				victims = append(victims, v)
			}

			if len(victims) > 0 {
				out = append(out, svmtypes.Sandwich{
					Slot:      slot,
					Timestamp: ts,
					Frontrun:  f,
					Victims:   victims,
					Backrun:   b,
				})
			}
		}
	}

	return out
}
