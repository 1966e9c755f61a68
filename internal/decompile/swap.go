package decompile

import (
	"github.com/gagliardetto/solana-go"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
	"github.com/klingon-exchange/sandwichfinder/pkg/helpers"
)

// matchDescriptor reports whether inst satisfies descriptor's
// program/discriminant/length constraints.
func matchDescriptor(inst svmtypes.Instruction, d ProgramDescriptor) bool {
	if !inst.Program.Equals(d.Program) {
		return false
	}
	if len(inst.Data) != d.DataLen {
		return false
	}
	if len(inst.Data) < len(d.Discriminant) {
		return false
	}
	return helpers.BytesEqual(inst.Data[:len(d.Discriminant)], d.Discriminant)
}

// extractSwaps walks one top-level instruction (already resolved) and
// its inner-instruction group, matching every descriptor against both
// the outer instruction and each inner instruction (CPI match), per
// §4.2.2.
func extractSwaps(outer svmtypes.Instruction, group []svmtypes.Instruction, signer svmtypes.Address, resolveMint func(int, int) (svmtypes.Address, bool), order int, sig solana.Signature) []svmtypes.Swap {
	var swaps []svmtypes.Swap

	for _, d := range Descriptors {
		if matchDescriptor(outer, d) {
			if s, ok := buildSwap(outer, group, d, nil, -1, signer, resolveMint, order, sig); ok {
				swaps = append(swaps, s)
			}
		}
	}

	for j, inner := range group {
		for _, d := range Descriptors {
			if matchDescriptor(inner, d) {
				outerProgram := outer.Program
				if s, ok := buildSwap(inner, group, d, &outerProgram, j, signer, resolveMint, order, sig); ok {
					swaps = append(swaps, s)
				}
			}
		}
	}

	return swaps
}

// buildSwap resolves the send/recv transfer pair for one matched
// instruction and assembles a Swap. base is the matched instruction's
// virtual position within group: -1 for an outer match, the inner
// index j for a CPI match. It returns ok=false if either transfer
// index is out of range or yields no TransferDescriptor — the
// candidate is dropped, never partially filled, per §4.2.3.
func buildSwap(matched svmtypes.Instruction, group []svmtypes.Instruction, d ProgramDescriptor, outerProgram *svmtypes.Address, base int, signer svmtypes.Address, resolveMint func(int, int) (svmtypes.Address, bool), order int, sig solana.Signature) (svmtypes.Swap, bool) {
	sendIdx := base + d.SendOffset
	recvIdx := base + d.RecvOffset
	if sendIdx < 0 || sendIdx >= len(group) || recvIdx < 0 || recvIdx >= len(group) {
		return svmtypes.Swap{}, false
	}

	send, ok := transferFromInner(group[sendIdx], resolveMint)
	if !ok {
		return svmtypes.Swap{}, false
	}
	recv, ok := transferFromInner(group[recvIdx], resolveMint)
	if !ok {
		return svmtypes.Swap{}, false
	}

	if d.AMMIndex < 0 || d.AMMIndex >= len(matched.Accounts) {
		return svmtypes.Swap{}, false
	}

	return svmtypes.Swap{
		OuterProgram: outerProgram,
		Program:      matched.Program,
		AMM:          matched.Accounts[d.AMMIndex].Address,
		Signer:       signer,
		Subject:      send.Subject,
		InputMint:    send.Mint,
		OutputMint:   recv.Mint,
		InputAmount:  send.Amount,
		OutputAmount: recv.Amount,
		Order:        order,
		Sig:          sig,
	}, true
}
