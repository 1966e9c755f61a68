// Package ingest is the orchestration loop (C4): it subscribes to the
// block stream, decompiles each block's transactions concurrently,
// runs the sandwich detector, and dispatches results to the fan-out
// hub and the database writer without letting either back-pressure
// block processing (beyond the DB writer's bounded queue, per §5).
package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/klingon-exchange/sandwichfinder/internal/dbwriter"
	"github.com/klingon-exchange/sandwichfinder/internal/decompile"
	"github.com/klingon-exchange/sandwichfinder/internal/fanout"
	"github.com/klingon-exchange/sandwichfinder/internal/lutcache"
	"github.com/klingon-exchange/sandwichfinder/internal/sandwich"
	"github.com/klingon-exchange/sandwichfinder/internal/solanarpc"
	"github.com/klingon-exchange/sandwichfinder/internal/streamclient"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
	"github.com/klingon-exchange/sandwichfinder/pkg/helpers"
	"github.com/klingon-exchange/sandwichfinder/pkg/logging"
)

// maxConcurrentDecompiles bounds the per-block worker pool; within a
// block, tasks may suspend at the RPC LUT-fetch await-point (§5).
const maxConcurrentDecompiles = 32

// Loop owns the LUT cache and drives the subscribe/reconnect cycle.
type Loop struct {
	dial    func() (streamclient.StreamClient, error)
	cache   *lutcache.Cache
	fetcher decompile.AccountFetcher
	hub     *fanout.Hub
	writer  *dbwriter.Writer
	log     *logging.Logger
}

// New builds a Loop. dial opens a fresh StreamClient on every
// (re)connect attempt; the LUT cache and downstream sinks persist
// across reconnects per §4.4.
func New(dial func() (streamclient.StreamClient, error), fetcher decompile.AccountFetcher, hub *fanout.Hub, writer *dbwriter.Writer, log *logging.Logger) *Loop {
	return &Loop{
		dial:    dial,
		cache:   lutcache.New(),
		fetcher: fetcher,
		hub:     hub,
		writer:  writer,
		log:     log.WithPrefix("ingest"),
	}
}

// Run drives the reconnect loop until ctx is cancelled. On any
// stream-level error or clean end-of-stream it sleeps 5 seconds
// (constant, not exponential) and reconnects, per §4.4/§7.
func (l *Loop) Run(ctx context.Context) {
	b := streamclient.ConstantReconnectBackoff()
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.runOnce(ctx); err != nil {
			l.log.Errorf("stream error, reconnecting: %v", err)
		} else {
			l.log.Info("stream ended, reconnecting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(next(b)):
		}
	}
}

func next(b backoff.BackOff) time.Duration {
	d := b.NextBackOff()
	if d < 0 {
		d = 5 * time.Second
	}
	return d
}

func (l *Loop) runOnce(ctx context.Context) error {
	client, err := l.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	updates, err := client.Subscribe(ctx)
	if err != nil {
		return err
	}

	for upd := range updates {
		switch u := upd.(type) {
		case streamclient.BlockUpdate:
			l.handleBlock(ctx, u)
		case streamclient.AccountUpdate:
			l.handleAccount(u)
		case streamclient.PingUpdate:
			// No ping-response is sent: neither this loop nor the
			// transport writes to the stream after the subscribe
			// request. The ping is only noted as liveness.
			l.log.Debug("ping received")
		}
	}
	return nil
}

// handleAccount treats every account update as a potential LUT
// refresh for the lookup-table owner program, tolerating out-of-order
// delivery via the cache's own monotonic-length guard.
func (l *Loop) handleAccount(u streamclient.AccountUpdate) {
	if !u.Owner.Equals(streamclient.LookupTableProgram) {
		return
	}
	addrs, err := solanarpc.ParseLookupTableAddresses(u.Data)
	if err != nil {
		return
	}
	l.cache.InsertOrExtend(u.Pubkey, addrs)
}

// handleBlock implements §4.4's Block handling: emit the Block
// metadata record, concurrently decompile every transaction, sort by
// order, run the detector, and dispatch each Sandwich.
func (l *Loop) handleBlock(ctx context.Context, b streamclient.BlockUpdate) {
	if l.writer != nil {
		l.writer.Submit(dbwriter.BlockEvent{Slot: b.Slot, Timestamp: b.Timestamp, TxCount: len(b.Transactions)})
	}

	dtxs := l.decompileAll(ctx, b.Transactions)

	sort.SliceStable(dtxs, func(i, j int) bool { return dtxs[i].Order < dtxs[j].Order })

	sandwiches := sandwich.Detect(dtxs, b.Slot, b.Timestamp)
	l.log.Infof("slot %d: %d txs, %d sandwiches", b.Slot, len(b.Transactions), len(sandwiches))
	for _, s := range sandwiches {
		l.logVictimLoss(s)
		l.dispatch(s)
	}
}

// logVictimLoss is diagnostic only: it never feeds back into
// detection or dispatch, it just surfaces an estimate of how much
// worse the lead victim's fill was than it would have been without
// the frontrun, at WSOL's native 9 decimals.
func (l *Loop) logVictimLoss(s svmtypes.Sandwich) {
	if len(s.Victims) == 0 {
		return
	}
	loss, ok := sandwich.EstimateVictimLoss(s.Frontrun, s.Victims[0])
	if !ok || !loss.LossIn.IsUint64() || !loss.LossOut.IsUint64() {
		return
	}
	l.log.Debugf("victim loss estimate: in=%s out=%s",
		helpers.FormatAmount(loss.LossIn.Uint64(), 9), helpers.FormatAmount(loss.LossOut.Uint64(), 9))
}

// decompileAll runs C2 across a block's transactions with bounded
// concurrency; a per-transaction decode error drops that transaction
// and continues the block (§7), never aborting the whole block.
func (l *Loop) decompileAll(ctx context.Context, raw []decompile.RawTransaction) []svmtypes.DecompiledTransaction {
	sem := make(chan struct{}, maxConcurrentDecompiles)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var out []svmtypes.DecompiledTransaction

	for i := range raw {
		tx := raw[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			dtx, err := decompile.Decompile(ctx, &tx, l.cache, l.fetcher)
			if err != nil {
				l.log.Errorf("decompile tx %d: %v", tx.Index, err)
				return
			}
			if dtx == nil {
				return
			}
			mu.Lock()
			out = append(out, *dtx)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}

// dispatch fans a detected Sandwich out to the hub and the DB writer
// via two independent short-lived tasks, matching the source's
// per-sink spawn and its resulting weak cross-channel ordering (§9
// Open Question).
func (l *Loop) dispatch(s svmtypes.Sandwich) {
	if l.hub != nil {
		go l.hub.Publish(s)
	}
	if l.writer != nil {
		go l.writer.Submit(dbwriter.SandwichEvent{Sandwich: s})
	}
}
