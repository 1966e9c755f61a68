package decompile

import (
	"github.com/gagliardetto/solana-go"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// MessageHeader mirrors the three counters a versioned message carries
// in its header: how many of the static account keys are signers, and
// how many of the signer/non-signer groups are read-only.
type MessageHeader struct {
	NumRequiredSignatures      int
	NumReadonlySignedAccounts  int
	NumReadonlyUnsignedAccounts int
}

// AddressTableLookup references one LUT by address plus the indexes
// this transaction pulls from its writable/readonly sections.
type AddressTableLookup struct {
	AccountKey      svmtypes.Address
	WritableIndexes []uint8
	ReadonlyIndexes []uint8
}

// CompiledInstruction is a top-level instruction as encoded on the
// wire: account references are indexes into the transaction's
// effective key list, not resolved addresses.
type CompiledInstruction struct {
	ProgramIDIndex int
	AccountIndexes []int
	Data           []byte
}

// TokenBalance is one post-transaction token balance record, used only
// to resolve the mint of an SPL transfer/transferChecked leg.
type TokenBalance struct {
	AccountIndex int
	Mint         string
}

// RawTransaction is the raw, still-compressed transaction info record
// the ingest loop hands to the decompiler: optional sub-records
// (Transaction/Meta/Header/Message) collapse into the fields below
// once all are known to be present, and Err/Index are always known.
type RawTransaction struct {
	Signature           solana.Signature
	Header              MessageHeader
	StaticAccountKeys   []svmtypes.Address
	AddressTableLookups []AddressTableLookup
	Instructions        []CompiledInstruction
	InnerInstructions   map[int][]CompiledInstruction // keyed by top-level instruction index
	PostTokenBalances   []TokenBalance
	Err                 bool // meta.err present: a failed transaction contributes no swaps
	Index               int  // position of this transaction within its block
}
