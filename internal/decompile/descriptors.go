package decompile

import (
	"github.com/gagliardetto/solana-go"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// ProgramDescriptor is the authoritative, hand-maintained table of
// every AMM entry point this detector recognizes. Nothing outside
// this file should hardcode a program address or instruction
// discriminant — add a descriptor here instead.
//
// SendOffset/RecvOffset are relative to a matched instruction's
// position within its inner-instruction group G: for an outer
// (direct) match the "position" is the virtual index -1 (the
// top-level instruction itself isn't a member of G), so the send/recv
// inner instructions sit at G[SendOffset-1]/G[RecvOffset-1]; for an
// inner (CPI) match at group index j, they sit at G[j+SendOffset]/
// G[j+RecvOffset].
type ProgramDescriptor struct {
	Program      svmtypes.Address
	Discriminant []byte
	AMMIndex     int
	SendOffset   int
	RecvOffset   int
	DataLen      int
}

func mustAddr(s string) svmtypes.Address {
	return solana.MustPublicKeyFromBase58(s)
}

// Descriptors is the full recognized AMM program table from the
// external-interface contract. Order matters only in that a single
// instruction may satisfy more than one entry (e.g. the two Meteora
// offset variants below); every satisfied entry is tried.
var Descriptors = []ProgramDescriptor{
	{ // Raydium v4
		Program:      mustAddr("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"),
		Discriminant: []byte{0x09},
		AMMIndex:     1,
		SendOffset:   1,
		RecvOffset:   2,
		DataLen:      17,
	},
	{ // Raydium v5 swap_base_in
		Program:      mustAddr("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"),
		Discriminant: []byte{0x8f, 0xbe, 0x5a, 0xda, 0xc4, 0x1e, 0x33, 0xde},
		AMMIndex:     3,
		SendOffset:   1,
		RecvOffset:   2,
		DataLen:      24,
	},
	{ // Raydium v5 swap_base_out
		Program:      mustAddr("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"),
		Discriminant: []byte{0x37, 0xd9, 0x62, 0x56, 0xa3, 0x4a, 0xb4, 0xad},
		AMMIndex:     3,
		SendOffset:   1,
		RecvOffset:   2,
		DataLen:      24,
	},
	{ // Raydium launchpad buy exact_in
		Program:      mustAddr("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"),
		Discriminant: []byte{0xfa, 0xea, 0x0d, 0x7b, 0xd5, 0x9c, 0x13, 0xec},
		AMMIndex:     4,
		SendOffset:   2,
		RecvOffset:   3,
		DataLen:      32,
	},
	{ // Raydium launchpad sell exact_in
		Program:      mustAddr("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"),
		Discriminant: []byte{0x95, 0x27, 0xde, 0x9b, 0xd3, 0x7c, 0x98, 0x1a},
		AMMIndex:     4,
		SendOffset:   2,
		RecvOffset:   3,
		DataLen:      32,
	},
	{ // PumpDotFun buy
		Program:      mustAddr("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"),
		Discriminant: []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea},
		AMMIndex:     3,
		SendOffset:   2,
		RecvOffset:   1,
		DataLen:      24,
	},
	{ // PumpDotFun sell
		Program:      mustAddr("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P"),
		Discriminant: []byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad},
		AMMIndex:     3,
		SendOffset:   1,
		RecvOffset:   2,
		DataLen:      24,
	},
	{ // PumpSwap buy
		Program:      mustAddr("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"),
		Discriminant: []byte{0x66, 0x06, 0x3d, 0x12, 0x01, 0xda, 0xeb, 0xea},
		AMMIndex:     0,
		SendOffset:   2,
		RecvOffset:   1,
		DataLen:      24,
	},
	{ // PumpSwap sell
		Program:      mustAddr("pAMMBay6oceH9fJKBRHGP5D4bD4sWpmSwMn52FMfXEA"),
		Discriminant: []byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad},
		AMMIndex:     0,
		SendOffset:   1,
		RecvOffset:   2,
		DataLen:      24,
	},
	{ // Whirlpool swap
		Program:      mustAddr("whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"),
		Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8},
		AMMIndex:     2,
		SendOffset:   1,
		RecvOffset:   2,
		DataLen:      42,
	},
	{ // DLMM swap
		Program:      mustAddr("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"),
		Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8},
		AMMIndex:     0,
		SendOffset:   1,
		RecvOffset:   2,
		DataLen:      24,
	},
	{ // Meteora, offset variant 1
		Program:      mustAddr("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB"),
		Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8},
		AMMIndex:     0,
		SendOffset:   2,
		RecvOffset:   5,
		DataLen:      24,
	},
	{ // Meteora, offset variant 2
		Program:      mustAddr("Eo7WjKq67rjJQSZxS6z3YkapzY3eMj6Xy8X5EQVn5UaB"),
		Discriminant: []byte{0xf8, 0xc6, 0x9e, 0x91, 0xe1, 0x75, 0x87, 0xc8},
		AMMIndex:     0,
		SendOffset:   3,
		RecvOffset:   6,
		DataLen:      24,
	},
}
