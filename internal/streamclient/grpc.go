package streamclient

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"

	"github.com/klingon-exchange/sandwichfinder/internal/decompile"
	"github.com/klingon-exchange/sandwichfinder/internal/streamclient/pb"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
)

func init() {
	encoding.RegisterCodec(rawCodec{})
}

// subscribeMethod is the streaming RPC's full method name. There is no
// published .proto for this service; the method path is stable
// contract between this client and the operator's block-streaming
// deployment (see §6 for the exact subscription semantics).
const subscribeMethod = "/geyser.Geyser/Subscribe"

// maxRecvFrame matches §6's "max decoding frame 128 MiB".
const maxRecvFrame = 128 * 1024 * 1024

// GRPCClient is the concrete StreamClient backed by a gRPC connection.
type GRPCClient struct {
	target string
	conn   *grpc.ClientConn
}

// Dial opens the connection to target (typically the GRPC_URL
// environment variable) without yet subscribing.
func Dial(target string) (*GRPCClient, error) {
	conn, err := grpc.NewClient(target,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(codecName),
			grpc.MaxCallRecvMsgSize(maxRecvFrame),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("streamclient: dial %s: %w", target, err)
	}
	return &GRPCClient{target: target, conn: conn}, nil
}

func (c *GRPCClient) Close() error {
	return c.conn.Close()
}

// Subscribe opens the stream with the exact parameters of §6 and
// translates incoming envelopes into Updates on the returned channel.
// The channel closes when the stream ends; the caller (internal/ingest)
// is responsible for the reconnect-after-5s policy.
func (c *GRPCClient) Subscribe(ctx context.Context) (<-chan Update, error) {
	stream, err := c.conn.NewStream(ctx, &grpc.StreamDesc{
		StreamName:    "Subscribe",
		ServerStreams: true,
		ClientStreams: true,
	}, subscribeMethod)
	if err != nil {
		return nil, fmt.Errorf("streamclient: open stream: %w", err)
	}

	req := &pb.SubscribeRequest{
		Blocks: map[string]pb.BlocksFilter{
			"client": {
				IncludeTransactions: true,
				IncludeAccounts:     true,
				IncludeEntries:      false,
				AccountInclude:      nil,
			},
		},
		Accounts: map[string]pb.AccountsFilter{
			"client": {
				Owner:                []string{LookupTableProgram.String()},
				NonemptyTxnSignature: true,
				Account:              nil,
				Filters:              nil,
			},
		},
		Commitment: pb.CommitmentConfirmed,
	}
	if err := stream.SendMsg(&wireMessage{subscribe: req}); err != nil {
		return nil, fmt.Errorf("streamclient: send subscribe request: %w", err)
	}

	updates := make(chan Update, 100)
	go func() {
		defer close(updates)
		for {
			msg := &wireMessage{}
			if err := stream.RecvMsg(msg); err != nil {
				return
			}
			upd, ok := translate(msg.envelope)
			if !ok {
				continue
			}
			select {
			case updates <- upd:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}

func translate(env *pb.Envelope) (Update, bool) {
	if env == nil {
		return nil, false
	}
	switch env.Kind {
	case pb.UpdateKindBlock:
		if env.Block == nil {
			return nil, false
		}
		return BlockUpdate{
			Slot:         env.Block.Slot,
			Timestamp:    env.Block.Timestamp,
			Transactions: convertTransactions(env.Block.Transactions),
		}, true
	case pb.UpdateKindAccount:
		if env.Account == nil {
			return nil, false
		}
		if len(env.Account.Owner) != 32 || len(env.Account.Pubkey) != 32 {
			return nil, false
		}
		owner := solana.PublicKeyFromBytes(env.Account.Owner)
		pubkey := solana.PublicKeyFromBytes(env.Account.Pubkey)
		return AccountUpdate{Owner: owner, Pubkey: pubkey, Data: env.Account.Data}, true
	case pb.UpdateKindPing:
		return PingUpdate{}, true
	default:
		return nil, false
	}
}

func convertTransactions(in []pb.BlockTransaction) []decompile.RawTransaction {
	out := make([]decompile.RawTransaction, 0, len(in))
	for _, t := range in {
		out = append(out, convertTransaction(t))
	}
	return out
}

func convertTransaction(t pb.BlockTransaction) decompile.RawTransaction {
	staticKeys := make([]svmtypes.Address, 0, len(t.StaticAccountKeys))
	for _, k := range t.StaticAccountKeys {
		if len(k) != 32 {
			continue
		}
		staticKeys = append(staticKeys, solana.PublicKeyFromBytes(k))
	}

	lookups := make([]decompile.AddressTableLookup, 0, len(t.LUT))
	for _, l := range t.LUT {
		if len(l.AccountKey) != 32 {
			continue
		}
		key := solana.PublicKeyFromBytes(l.AccountKey)
		lookups = append(lookups, decompile.AddressTableLookup{
			AccountKey:      key,
			WritableIndexes: l.WritableIndexes,
			ReadonlyIndexes: l.ReadonlyIndexes,
		})
	}

	instrs := make([]decompile.CompiledInstruction, 0, len(t.Instructions))
	for _, i := range t.Instructions {
		instrs = append(instrs, decompile.CompiledInstruction{
			ProgramIDIndex: i.ProgramIDIndex,
			AccountIndexes: i.AccountIndexes,
			Data:           i.Data,
		})
	}

	inner := make(map[int][]decompile.CompiledInstruction, len(t.InnerGroups))
	for _, g := range t.InnerGroups {
		group := make([]decompile.CompiledInstruction, 0, len(g.Instructions))
		for _, i := range g.Instructions {
			group = append(group, decompile.CompiledInstruction{
				ProgramIDIndex: i.ProgramIDIndex,
				AccountIndexes: i.AccountIndexes,
				Data:           i.Data,
			})
		}
		inner[g.Index] = group
	}

	balances := make([]decompile.TokenBalance, 0, len(t.PostBalances))
	for _, p := range t.PostBalances {
		balances = append(balances, decompile.TokenBalance{AccountIndex: p.AccountIndex, Mint: p.Mint})
	}

	return decompile.RawTransaction{
		Signature:         solana.SignatureFromBytes(t.Signature),
		Header:            decompile.MessageHeader{NumRequiredSignatures: t.NumRequiredSigs, NumReadonlySignedAccounts: t.NumReadonlySigned, NumReadonlyUnsignedAccounts: t.NumReadonlyUnsigned},
		StaticAccountKeys: staticKeys,
		AddressTableLookups: lookups,
		Instructions:      instrs,
		InnerInstructions: inner,
		PostTokenBalances: balances,
		Err:               t.Err,
		Index:             t.Index,
	}
}

// ConstantReconnectBackoff matches §4.4's fixed 5-second reconnect
// delay. Unlike backoff/v5's exponential policy, the interval here
// never grows: the spec calls for a flat retry cadence, not backoff.
func ConstantReconnectBackoff() backoff.BackOff {
	return constantBackoff{interval: 5 * time.Second}
}

type constantBackoff struct{ interval time.Duration }

func (c constantBackoff) NextBackOff() time.Duration { return c.interval }
