package sandwich

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

func addrPool(n int) []svmtypes.Address {
	out := make([]svmtypes.Address, n)
	for i := range out {
		out[i] = solana.NewWallet().PublicKey()
	}
	return out
}

func ptr(a svmtypes.Address) *svmtypes.Address { return &a }

// TestS2BasicSandwich is the literal S2 scenario: a frontrun, one
// victim, and a matching backrun on the same AMM.
func TestS2BasicSandwich(t *testing.T) {
	pool := addrPool(5)
	amm, wsol, mintX, wrapperW, wrapperV := pool[0], pool[1], pool[2], pool[3], pool[4]
	signerA, signerB := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	frontrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: wsol, OutputMint: mintX, InputAmount: 100, OutputAmount: 90, Order: 10,
	}
	victim := svmtypes.Swap{
		OuterProgram: ptr(wrapperV), AMM: amm, Signer: signerB,
		InputMint: wsol, OutputMint: mintX, InputAmount: 50, OutputAmount: 40, Order: 11,
	}
	backrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: mintX, OutputMint: wsol, InputAmount: 110, OutputAmount: 120, Order: 12,
	}

	txs := []svmtypes.DecompiledTransaction{
		{Swaps: []svmtypes.Swap{frontrun}},
		{Swaps: []svmtypes.Swap{victim}},
		{Swaps: []svmtypes.Swap{backrun}},
	}

	got := Detect(txs, 1, 0)
	if len(got) != 1 {
		t.Fatalf("len(Detect) = %d, want 1", len(got))
	}
	s := got[0]
	if s.Frontrun.Order != 10 || s.Backrun.Order != 12 {
		t.Errorf("frontrun/backrun order = %d/%d, want 10/12", s.Frontrun.Order, s.Backrun.Order)
	}
	if len(s.Victims) != 1 || s.Victims[0].Order != 11 {
		t.Errorf("victims = %+v, want single order-11 victim", s.Victims)
	}
}

// TestS3AggregatorWrapperExcluded is the literal S3 scenario: same as
// S2 but the backrun's wrapper is the aggregator router. That wrapper
// differs from the frontrun's, so the equality half of predicate 6
// excludes the pair; the explicit aggregator check is not reached.
func TestS3AggregatorWrapperExcluded(t *testing.T) {
	pool := addrPool(4)
	amm, wsol, mintX, wrapperW := pool[0], pool[1], pool[2], pool[3]
	signerA, signerB := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	frontrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: wsol, OutputMint: mintX, InputAmount: 100, OutputAmount: 90, Order: 10,
	}
	victim := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerB,
		InputMint: wsol, OutputMint: mintX, InputAmount: 50, OutputAmount: 40, Order: 11,
	}
	backrun := svmtypes.Swap{
		OuterProgram: ptr(svmtypes.AggregatorRouter), AMM: amm, Signer: signerA,
		InputMint: mintX, OutputMint: wsol, InputAmount: 110, OutputAmount: 120, Order: 12,
	}

	txs := []svmtypes.DecompiledTransaction{
		{Swaps: []svmtypes.Swap{frontrun}},
		{Swaps: []svmtypes.Swap{victim}},
		{Swaps: []svmtypes.Swap{backrun}},
	}

	got := Detect(txs, 1, 0)
	if len(got) != 0 {
		t.Fatalf("len(Detect) = %d, want 0", len(got))
	}
}

// TestS4VictimSignerEqualsFrontrun is the literal S4 scenario: same as
// S2 but the victim's signer equals the frontrun's signer, so it is
// excluded by predicate 5 and no victims remain.
func TestS4VictimSignerEqualsFrontrun(t *testing.T) {
	pool := addrPool(4)
	amm, wsol, mintX, wrapperW := pool[0], pool[1], pool[2], pool[3]
	signerA := solana.NewWallet().PublicKey()

	frontrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: wsol, OutputMint: mintX, InputAmount: 100, OutputAmount: 90, Order: 10,
	}
	victim := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: wsol, OutputMint: mintX, InputAmount: 50, OutputAmount: 40, Order: 11,
	}
	backrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: mintX, OutputMint: wsol, InputAmount: 110, OutputAmount: 120, Order: 12,
	}

	txs := []svmtypes.DecompiledTransaction{
		{Swaps: []svmtypes.Swap{frontrun}},
		{Swaps: []svmtypes.Swap{victim}},
		{Swaps: []svmtypes.Swap{backrun}},
	}

	got := Detect(txs, 1, 0)
	if len(got) != 0 {
		t.Fatalf("len(Detect) = %d, want 0", len(got))
	}
}

// TestUnprofitableBackrunExcluded exercises predicate 3 (profitability
// bounds): a same-AMM, same-wrapper, distinct-signer triple that
// otherwise looks like a sandwich but whose backrun returns less than
// the frontrun spent must not be emitted.
func TestUnprofitableBackrunExcluded(t *testing.T) {
	pool := addrPool(4)
	amm, wsol, mintX, wrapperW := pool[0], pool[1], pool[2], pool[3]
	signerA, signerB := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	frontrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: wsol, OutputMint: mintX, InputAmount: 100, OutputAmount: 90, Order: 10,
	}
	victim := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerB,
		InputMint: wsol, OutputMint: mintX, InputAmount: 50, OutputAmount: 40, Order: 11,
	}
	// Backrun's output (10) is less than the frontrun's input (100) and
	// its input (200) exceeds the frontrun's output (90): unprofitable.
	backrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: mintX, OutputMint: wsol, InputAmount: 200, OutputAmount: 10, Order: 12,
	}

	txs := []svmtypes.DecompiledTransaction{
		{Swaps: []svmtypes.Swap{frontrun}},
		{Swaps: []svmtypes.Swap{victim}},
		{Swaps: []svmtypes.Swap{backrun}},
	}

	got := Detect(txs, 1, 0)
	if len(got) != 0 {
		t.Fatalf("len(Detect) = %d, want 0 (unprofitable backrun)", len(got))
	}
}

// TestOrderPreservation checks testable property: swaps are processed
// in stable ascending Order across transactions, regardless of the
// slice order they arrive in.
func TestOrderPreservation(t *testing.T) {
	pool := addrPool(4)
	amm, wsol, mintX, wrapperW := pool[0], pool[1], pool[2], pool[3]
	signerA, signerB := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	backrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: mintX, OutputMint: wsol, InputAmount: 110, OutputAmount: 120, Order: 12,
	}
	frontrun := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerA,
		InputMint: wsol, OutputMint: mintX, InputAmount: 100, OutputAmount: 90, Order: 10,
	}
	victim := svmtypes.Swap{
		OuterProgram: ptr(wrapperW), AMM: amm, Signer: signerB,
		InputMint: wsol, OutputMint: mintX, InputAmount: 50, OutputAmount: 40, Order: 11,
	}

	// deliberately reversed arrival order
	txs := []svmtypes.DecompiledTransaction{
		{Swaps: []svmtypes.Swap{backrun}},
		{Swaps: []svmtypes.Swap{victim}},
		{Swaps: []svmtypes.Swap{frontrun}},
	}

	got := Detect(txs, 1, 0)
	if len(got) != 1 {
		t.Fatalf("len(Detect) = %d, want 1", len(got))
	}
	if got[0].Frontrun.Order != 10 || got[0].Backrun.Order != 12 {
		t.Errorf("order not recovered: frontrun=%d backrun=%d", got[0].Frontrun.Order, got[0].Backrun.Order)
	}
}
