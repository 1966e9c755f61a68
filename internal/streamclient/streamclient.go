// Package streamclient is the out-of-scope block-streaming transport
// collaborator: it turns a gRPC subscription into a channel of Update
// values for the ingest loop (internal/ingest) to consume.
package streamclient

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/klingon-exchange/sandwichfinder/internal/decompile"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

// Update is the sealed set of message kinds the ingest loop handles.
type Update interface{ isUpdate() }

// BlockUpdate carries a sealed block: its slot, its timestamp, and the
// raw (not yet decompiled) transaction vector.
type BlockUpdate struct {
	Slot         uint64
	Timestamp    int64
	Transactions []decompile.RawTransaction
}

func (BlockUpdate) isUpdate() {}

// AccountUpdate carries a single account's post-write state. The
// ingest loop treats every one as a potential LUT refresh.
type AccountUpdate struct {
	Owner  svmtypes.Address
	Pubkey svmtypes.Address
	Data   []byte
}

func (AccountUpdate) isUpdate() {}

// PingUpdate is a keepalive. No ping-response is sent back: after the
// initial subscribe request, nothing is written to the stream.
type PingUpdate struct{}

func (PingUpdate) isUpdate() {}

// StreamClient is the interface internal/ingest depends on. The
// concrete implementation lives in grpc.go.
type StreamClient interface {
	// Subscribe opens the subscription and returns a channel of
	// Updates. The channel is closed when the stream ends, whether
	// from error or clean EOF; the caller distinguishes the two via
	// the accompanying error return from a prior call, or by treating
	// closure as always reconnect-worthy (per §4.4: "any stream-level
	// error or end-of-stream" triggers the same reconnect path).
	Subscribe(ctx context.Context) (<-chan Update, error)
	Close() error
}

// LookupTableProgram is the owner filter applied to the account
// subscription: only writes to accounts owned by the address lookup
// table program are of interest to C1.
var LookupTableProgram svmtypes.Address = solana.MustPublicKeyFromBase58("AddressLookupTab1e1111111111111111111111111")
