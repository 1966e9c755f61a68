package ingest

import (
	"context"
	"encoding/binary"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/klingon-exchange/sandwichfinder/internal/decompile"
	"github.com/klingon-exchange/sandwichfinder/internal/fanout"
	"github.com/klingon-exchange/sandwichfinder/internal/lutcache"
	"github.com/klingon-exchange/sandwichfinder/internal/sandwich"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
	"github.com/klingon-exchange/sandwichfinder/pkg/logging"
)

type noFetch struct{}

func (noFetch) FetchLookupTables(ctx context.Context, keys []svmtypes.Address) (map[svmtypes.Address][]svmtypes.Address, error) {
	return nil, nil
}

func raydiumV4Data(amountIn, minOut uint64) []byte {
	data := make([]byte, 17)
	data[0] = 0x09
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minOut)
	return data
}

func splTransferData(amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = 0x03
	binary.LittleEndian.PutUint64(data[1:9], amount)
	return data
}

// TestDecompileAllDropsFailingTransactions exercises §7's per-transaction
// error policy: one malformed transaction must not prevent the rest of
// the block's transactions from producing swaps.
func TestDecompileAllDropsFailingTransactions(t *testing.T) {
	raydium := solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	amm := solana.NewWallet().PublicKey()
	signer := solana.NewWallet().PublicKey()
	src := solana.NewWallet().PublicKey()
	dst := solana.NewWallet().PublicKey()

	good := decompile.RawTransaction{
		Signature:         solana.Signature{1},
		Header:            decompile.MessageHeader{NumRequiredSignatures: 1},
		StaticAccountKeys: []svmtypes.Address{signer, raydium, amm, src, dst},
		Instructions: []decompile.CompiledInstruction{
			{ProgramIDIndex: 1, AccountIndexes: []int{3, 2}, Data: raydiumV4Data(100, 90)},
		},
		InnerInstructions: map[int][]decompile.CompiledInstruction{
			0: {
				{ProgramIDIndex: 1, AccountIndexes: []int{3, 2, 0}, Data: splTransferData(100)},
				{ProgramIDIndex: 1, AccountIndexes: []int{2, 4, 0}, Data: splTransferData(90)},
			},
		},
		PostTokenBalances: []decompile.TokenBalance{
			{AccountIndex: 3, Mint: svmtypes.WrappedSOL.String()},
			{AccountIndex: 4, Mint: solana.NewWallet().PublicKey().String()},
		},
		Index: 0,
	}

	malformed := decompile.RawTransaction{
		Signature:         solana.Signature{2},
		Header:            decompile.MessageHeader{NumRequiredSignatures: 1},
		StaticAccountKeys: []svmtypes.Address{signer},
		Instructions: []decompile.CompiledInstruction{
			{ProgramIDIndex: 5, AccountIndexes: []int{0}, Data: []byte{0x09}}, // program index out of range
		},
		Index: 1,
	}

	loop := &Loop{cache: lutcache.New(), fetcher: noFetch{}, log: logging.Default()}
	out := loop.decompileAll(context.Background(), []decompile.RawTransaction{good, malformed})

	if len(out) != 1 {
		t.Fatalf("len(out) = %d, want 1 (malformed transaction dropped)", len(out))
	}
	if out[0].Order != 0 {
		t.Errorf("out[0].Order = %d, want 0", out[0].Order)
	}
	if len(out[0].Swaps) != 1 {
		t.Errorf("len(out[0].Swaps) = %d, want 1", len(out[0].Swaps))
	}
}

func TestDispatchDeliversDetectedSandwichToHub(t *testing.T) {
	hub := fanout.New(logging.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	amm := solana.NewWallet().PublicKey()
	wrapperW := solana.NewWallet().PublicKey()
	wsol := svmtypes.WrappedSOL
	mintX := solana.NewWallet().PublicKey()
	signerA, signerB := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()

	loop := &Loop{cache: lutcache.New(), fetcher: noFetch{}, hub: hub, log: logging.Default()}

	client := fanout.NewClient()
	hub.Register(client)
	defer hub.Unregister(client)

	dtxs := []svmtypes.DecompiledTransaction{
		{Order: 10, Swaps: []svmtypes.Swap{{
			OuterProgram: &wrapperW, AMM: amm, Signer: signerA,
			InputMint: wsol, OutputMint: mintX, InputAmount: 100, OutputAmount: 90, Order: 10,
		}}},
		{Order: 11, Swaps: []svmtypes.Swap{{
			OuterProgram: &wrapperW, AMM: amm, Signer: signerB,
			InputMint: wsol, OutputMint: mintX, InputAmount: 50, OutputAmount: 40, Order: 11,
		}}},
		{Order: 12, Swaps: []svmtypes.Swap{{
			OuterProgram: &wrapperW, AMM: amm, Signer: signerA,
			InputMint: mintX, OutputMint: wsol, InputAmount: 110, OutputAmount: 120, Order: 12,
		}}},
	}

	// handleBlock normally decompiles raw transactions; here the
	// detection half is exercised directly against pre-built swaps to
	// isolate it from the decompiler (covered separately above).
	sandwiches := sandwich.Detect(dtxs, 7, 1234)
	if len(sandwiches) != 1 {
		t.Fatalf("len(sandwiches) = %d, want 1", len(sandwiches))
	}
	for _, s := range sandwiches {
		loop.dispatch(s)
	}

	select {
	case frame, ok := <-client.Send():
		if !ok {
			t.Fatal("client channel closed unexpectedly")
		}
		if len(frame) == 0 {
			t.Error("expected a non-empty broadcast frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a broadcast frame within 2s")
	}
}
