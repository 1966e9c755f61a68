// Package pb declares the plain Go structs carried over the
// block-streaming gRPC connection and their wire encoding. No
// yellowstone/geyser protobuf package exists for Go in this project's
// dependency set, so the subscribe request and update envelope are
// encoded here directly with protobuf wire primitives rather than via
// generated message types.
package pb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Commitment mirrors the commitment levels a subscribe request or
// account fetch can ask for.
type Commitment int32

const (
	CommitmentProcessed Commitment = 0
	CommitmentConfirmed Commitment = 1
	CommitmentFinalized Commitment = 2
)

// BlocksFilter and AccountsFilter are the two subscription filters
// named by a client label, matching the "client": {...} shape of the
// subscribe request.
type BlocksFilter struct {
	IncludeTransactions bool
	IncludeAccounts     bool
	IncludeEntries      bool
	AccountInclude      []string
}

type AccountsFilter struct {
	Owner                 []string
	NonemptyTxnSignature  bool
	Account               []string
	Filters               []string
}

// SubscribeRequest is the outbound subscription message.
type SubscribeRequest struct {
	Blocks     map[string]BlocksFilter
	Accounts   map[string]AccountsFilter
	Commitment Commitment
}

// Field numbers for SubscribeRequest.
const (
	fieldBlocksMap     = 1
	fieldAccountsMap   = 2
	fieldCommitment    = 3
	fieldMapKey        = 1
	fieldMapValue      = 2
	fieldBlockTxns     = 1
	fieldBlockAccts    = 2
	fieldBlockEntries  = 3
	fieldBlockIncl     = 4
	fieldAcctOwner     = 1
	fieldAcctNonempty  = 2
	fieldAcctAccount   = 3
	fieldAcctFilters   = 4
)

// Marshal encodes a SubscribeRequest using the field numbers above.
func (r SubscribeRequest) Marshal() ([]byte, error) {
	var b []byte
	for label, f := range r.Blocks {
		entry := appendTaggedString(nil, fieldMapKey, label)
		var val []byte
		val = protowire.AppendTag(val, fieldBlockTxns, protowire.VarintType)
		val = protowire.AppendVarint(val, boolVarint(f.IncludeTransactions))
		val = protowire.AppendTag(val, fieldBlockAccts, protowire.VarintType)
		val = protowire.AppendVarint(val, boolVarint(f.IncludeAccounts))
		val = protowire.AppendTag(val, fieldBlockEntries, protowire.VarintType)
		val = protowire.AppendVarint(val, boolVarint(f.IncludeEntries))
		for _, a := range f.AccountInclude {
			val = appendTaggedString(val, fieldBlockIncl, a)
		}
		entry = protowire.AppendTag(entry, fieldMapValue, protowire.BytesType)
		entry = protowire.AppendBytes(entry, val)

		b = protowire.AppendTag(b, fieldBlocksMap, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	for label, f := range r.Accounts {
		entry := appendTaggedString(nil, fieldMapKey, label)
		var val []byte
		for _, o := range f.Owner {
			val = appendTaggedString(val, fieldAcctOwner, o)
		}
		val = protowire.AppendTag(val, fieldAcctNonempty, protowire.VarintType)
		val = protowire.AppendVarint(val, boolVarint(f.NonemptyTxnSignature))
		for _, a := range f.Account {
			val = appendTaggedString(val, fieldAcctAccount, a)
		}
		for _, fl := range f.Filters {
			val = appendTaggedString(val, fieldAcctFilters, fl)
		}
		entry = protowire.AppendTag(entry, fieldMapValue, protowire.BytesType)
		entry = protowire.AppendBytes(entry, val)

		b = protowire.AppendTag(b, fieldAccountsMap, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}

	b = protowire.AppendTag(b, fieldCommitment, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.Commitment))

	return b, nil
}

func appendTaggedString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, []byte(s))
}

func boolVarint(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// UpdateKind tags which variant an Update envelope carries.
type UpdateKind int32

const (
	UpdateKindBlock   UpdateKind = 0
	UpdateKindAccount UpdateKind = 1
	UpdateKindPing    UpdateKind = 2
)

// Instruction is one compiled instruction: a program index, its
// ordered account indexes, and opaque data.
type Instruction struct {
	ProgramIDIndex int
	AccountIndexes []int
	Data           []byte
}

// LUTEntry is one address_table_lookups entry.
type LUTEntry struct {
	AccountKey      []byte
	WritableIndexes []byte
	ReadonlyIndexes []byte
}

// InnerGroup is one inner-instruction group, keyed by the index of the
// top-level instruction it belongs to.
type InnerGroup struct {
	Index        int
	Instructions []Instruction
}

// PostBalance is one post-token-balance record.
type PostBalance struct {
	AccountIndex int
	Mint         string
}

// BlockTransaction is one raw transaction inside a block update.
type BlockTransaction struct {
	Signature           []byte
	NumRequiredSigs      int
	NumReadonlySigned    int
	NumReadonlyUnsigned  int
	StaticAccountKeys    [][]byte
	LUT                  []LUTEntry
	Instructions         []Instruction
	InnerGroups          []InnerGroup
	PostBalances         []PostBalance
	Err                  bool
	Index                int
}

// Block is the decoded Block update payload.
type Block struct {
	Slot         uint64
	Timestamp    int64
	Transactions []BlockTransaction
}

// Account is the decoded Account update payload.
type Account struct {
	Owner  []byte
	Pubkey []byte
	Data   []byte
}

// Envelope wraps exactly one of Block, Account, or a Ping marker.
type Envelope struct {
	Kind    UpdateKind
	Block   *Block
	Account *Account
}

const (
	fieldEnvelopeKind    = 1
	fieldEnvelopeBlock   = 2
	fieldEnvelopeAccount = 3
)

// Unmarshal decodes an Envelope from the wire bytes a subscribe stream
// delivers. Unknown fields are skipped rather than rejected, matching
// the forward-compatible posture the teacher's codebase takes with its
// own custom wire protocols.
func Unmarshal(b []byte) (*Envelope, error) {
	env := &Envelope{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid envelope tag")
		}
		b = b[n:]

		switch {
		case num == fieldEnvelopeKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid kind varint")
			}
			env.Kind = UpdateKind(v)
			b = b[n:]

		case num == fieldEnvelopeBlock && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid block bytes")
			}
			blk, err := unmarshalBlock(v)
			if err != nil {
				return nil, err
			}
			env.Block = blk
			b = b[n:]

		case num == fieldEnvelopeAccount && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid account bytes")
			}
			acct, err := unmarshalAccount(v)
			if err != nil {
				return nil, err
			}
			env.Account = acct
			b = b[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("pb: cannot skip unknown field %d", num)
			}
			b = b[n:]
		}
	}
	return env, nil
}

const (
	fieldBlockSlot = 1
	fieldBlockTs   = 2
	fieldBlockTx   = 3
)

func unmarshalBlock(b []byte) (*Block, error) {
	blk := &Block{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid block tag")
		}
		b = b[n:]
		switch {
		case num == fieldBlockSlot && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid slot")
			}
			blk.Slot = v
			b = b[n:]
		case num == fieldBlockTs && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid timestamp")
			}
			blk.Timestamp = int64(v)
			b = b[n:]
		case num == fieldBlockTx && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid tx bytes")
			}
			tx, err := unmarshalTransaction(v)
			if err != nil {
				return nil, err
			}
			blk.Transactions = append(blk.Transactions, *tx)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("pb: cannot skip unknown block field %d", num)
			}
			b = b[n:]
		}
	}
	return blk, nil
}

const (
	fieldAcctOwnerF  = 1
	fieldAcctPubkeyF = 2
	fieldAcctDataF   = 3
)

func unmarshalAccount(b []byte) (*Account, error) {
	acct := &Account{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid account tag")
		}
		b = b[n:]
		switch {
		case num == fieldAcctOwnerF && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid owner bytes")
			}
			acct.Owner = v
			b = b[n:]
		case num == fieldAcctPubkeyF && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid pubkey bytes")
			}
			acct.Pubkey = v
			b = b[n:]
		case num == fieldAcctDataF && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid data bytes")
			}
			acct.Data = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("pb: cannot skip unknown account field %d", num)
			}
			b = b[n:]
		}
	}
	return acct, nil
}

const (
	fieldTxSignature   = 1
	fieldTxReqSigs     = 2
	fieldTxROSigned    = 3
	fieldTxROUnsigned  = 4
	fieldTxStaticKeys  = 5
	fieldTxLUT         = 6
	fieldTxInstrs      = 7
	fieldTxInnerGroups = 8
	fieldTxPostBal     = 9
	fieldTxErr         = 10
	fieldTxIndex       = 11
)

func unmarshalTransaction(b []byte) (*BlockTransaction, error) {
	tx := &BlockTransaction{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid transaction tag")
		}
		b = b[n:]
		switch {
		case num == fieldTxSignature && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid signature bytes")
			}
			tx.Signature = v
			b = b[n:]
		case num == fieldTxReqSigs && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid num_required_sigs")
			}
			tx.NumRequiredSigs = int(v)
			b = b[n:]
		case num == fieldTxROSigned && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid num_readonly_signed")
			}
			tx.NumReadonlySigned = int(v)
			b = b[n:]
		case num == fieldTxROUnsigned && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid num_readonly_unsigned")
			}
			tx.NumReadonlyUnsigned = int(v)
			b = b[n:]
		case num == fieldTxStaticKeys && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid static account key")
			}
			tx.StaticAccountKeys = append(tx.StaticAccountKeys, v)
			b = b[n:]
		case num == fieldTxLUT && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid LUT entry bytes")
			}
			entry, err := unmarshalLUTEntry(v)
			if err != nil {
				return nil, err
			}
			tx.LUT = append(tx.LUT, *entry)
			b = b[n:]
		case num == fieldTxInstrs && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid instruction bytes")
			}
			instr, err := unmarshalInstruction(v)
			if err != nil {
				return nil, err
			}
			tx.Instructions = append(tx.Instructions, *instr)
			b = b[n:]
		case num == fieldTxInnerGroups && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid inner group bytes")
			}
			group, err := unmarshalInnerGroup(v)
			if err != nil {
				return nil, err
			}
			tx.InnerGroups = append(tx.InnerGroups, *group)
			b = b[n:]
		case num == fieldTxPostBal && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid post-balance bytes")
			}
			pb, err := unmarshalPostBalance(v)
			if err != nil {
				return nil, err
			}
			tx.PostBalances = append(tx.PostBalances, *pb)
			b = b[n:]
		case num == fieldTxErr && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid err flag")
			}
			tx.Err = v != 0
			b = b[n:]
		case num == fieldTxIndex && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid index")
			}
			tx.Index = int(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("pb: cannot skip unknown transaction field %d", num)
			}
			b = b[n:]
		}
	}
	return tx, nil
}

const (
	fieldLUTKey      = 1
	fieldLUTWritable = 2
	fieldLUTReadonly = 3
)

func unmarshalLUTEntry(b []byte) (*LUTEntry, error) {
	e := &LUTEntry{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid LUT entry tag")
		}
		b = b[n:]
		switch {
		case num == fieldLUTKey && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid LUT account key")
			}
			e.AccountKey = v
			b = b[n:]
		case num == fieldLUTWritable && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid LUT writable indexes")
			}
			e.WritableIndexes = v
			b = b[n:]
		case num == fieldLUTReadonly && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid LUT readonly indexes")
			}
			e.ReadonlyIndexes = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("pb: cannot skip unknown LUT field %d", num)
			}
			b = b[n:]
		}
	}
	return e, nil
}

const (
	fieldInstrProgram  = 1
	fieldInstrAccounts = 2
	fieldInstrData     = 3
)

func unmarshalInstruction(b []byte) (*Instruction, error) {
	i := &Instruction{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid instruction tag")
		}
		b = b[n:]
		switch {
		case num == fieldInstrProgram && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid program_id_index")
			}
			i.ProgramIDIndex = int(v)
			b = b[n:]
		case num == fieldInstrAccounts && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid account index")
			}
			i.AccountIndexes = append(i.AccountIndexes, int(v))
			b = b[n:]
		case num == fieldInstrData && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid instruction data")
			}
			i.Data = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("pb: cannot skip unknown instruction field %d", num)
			}
			b = b[n:]
		}
	}
	return i, nil
}

const (
	fieldInnerIndex = 1
	fieldInnerInstr = 2
)

func unmarshalInnerGroup(b []byte) (*InnerGroup, error) {
	g := &InnerGroup{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid inner group tag")
		}
		b = b[n:]
		switch {
		case num == fieldInnerIndex && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid inner group index")
			}
			g.Index = int(v)
			b = b[n:]
		case num == fieldInnerInstr && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid inner instruction bytes")
			}
			instr, err := unmarshalInstruction(v)
			if err != nil {
				return nil, err
			}
			g.Instructions = append(g.Instructions, *instr)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("pb: cannot skip unknown inner group field %d", num)
			}
			b = b[n:]
		}
	}
	return g, nil
}

const (
	fieldPostBalAccount = 1
	fieldPostBalMint    = 2
)

func unmarshalPostBalance(b []byte) (*PostBalance, error) {
	p := &PostBalance{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("pb: invalid post-balance tag")
		}
		b = b[n:]
		switch {
		case num == fieldPostBalAccount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid post-balance account index")
			}
			p.AccountIndex = int(v)
			b = b[n:]
		case num == fieldPostBalMint && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("pb: invalid post-balance mint")
			}
			p.Mint = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("pb: cannot skip unknown post-balance field %d", num)
			}
			b = b[n:]
		}
	}
	return p, nil
}
