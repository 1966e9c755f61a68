// Package svmtypes holds the data model shared by every stage of the
// pipeline: decompiled instructions, normalized swaps, and detected
// sandwiches. Types here carry no behavior beyond JSON encoding.
package svmtypes

import (
	"github.com/gagliardetto/solana-go"
)

// Address is a 32-byte on-chain identifier, rendered as base58 at
// every external boundary via solana.PublicKey's own String/MarshalJSON.
type Address = solana.PublicKey

// WrappedSOL is the mint address implied by native SOL transfers.
var WrappedSOL = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

// AggregatorRouter is excluded from the wrapper-program predicate
// because its presence on both legs of a trade is the ordinary
// routing behavior of a public aggregator, not evidence of a single
// sandwiching actor.
var AggregatorRouter = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")

// AccountMeta describes one account reference within an instruction.
// Index is the account's position in the transaction's effective key
// list (static ++ writable-LUT ++ readonly-LUT) — needed to cross
// reference post-token-balance records, which are keyed the same way.
type AccountMeta struct {
	Address    Address
	IsSigner   bool
	IsWritable bool
	Index      int
}

// Instruction is a flattened, account-resolved instruction — either a
// top-level instruction or an inner (CPI) instruction.
type Instruction struct {
	Program  Address
	Accounts []AccountMeta
	Data     []byte
}

// InnerInstructionGroup is the possibly-empty ordered sequence of
// inner instructions produced by one top-level instruction.
type InnerInstructionGroup struct {
	Index        int
	Instructions []Instruction
}

// TransferKind identifies which wire shape a TransferDescriptor was
// decoded from. It has no meaning beyond documentation/diagnostics.
type TransferKind int

const (
	TransferUnknown TransferKind = iota
	TransferSystemSOL
	TransferSPLTransfer
	TransferSPLTransferChecked
	TransferSelfCPILog
)

// TransferDescriptor is the normalized shape of one token-movement
// inner instruction, independent of which opcode produced it.
type TransferDescriptor struct {
	Kind    TransferKind
	Mint    Address
	Subject Address
	Amount  uint64
}

// Swap is a normalized trade record extracted from one matched
// outer/inner AMM instruction pair.
type Swap struct {
	OuterProgram *Address         `json:"outerProgram,omitempty"` // nil when the swap was a direct, non-CPI call
	Program      Address          `json:"program"`
	AMM          Address          `json:"amm"`
	Signer       Address          `json:"signer"`
	Subject      Address          `json:"subject"`
	InputMint    Address          `json:"inputMint"`
	OutputMint   Address          `json:"outputMint"`
	InputAmount  uint64           `json:"inputAmount"`
	OutputAmount uint64           `json:"outputAmount"`
	Sig          solana.Signature `json:"sig"`
	Order        int              `json:"order"`
}

// DecompiledTransaction is the output of C2 for one transaction.
type DecompiledTransaction struct {
	Sig          solana.Signature
	Payer        Address
	Order        int
	Instructions []Instruction
	Swaps        []Swap
}

// SwapRole labels a Swap's position within a detected Sandwich; it is
// the swap_type column of the swap table (§6).
type SwapRole string

const (
	RoleFrontrun SwapRole = "FRONTRUN"
	RoleVictim   SwapRole = "VICTIM"
	RoleBackrun  SwapRole = "BACKRUN"
)

// Sandwich is a detected frontrun/victim(s)/backrun bundle.
type Sandwich struct {
	Slot      uint64 `json:"slot"`
	Timestamp int64  `json:"ts"`
	Frontrun  Swap   `json:"frontrun"`
	Victims   []Swap `json:"victims"`
	Backrun   Swap   `json:"backrun"`
}
