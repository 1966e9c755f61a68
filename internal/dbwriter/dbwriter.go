// Package dbwriter is the single-consumer relational writer (C6): it
// persists Block and Sandwich events from a bounded queue, batching
// transaction/swap rows per the six-step procedure in §4.6.
package dbwriter

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
	"github.com/klingon-exchange/sandwichfinder/pkg/logging"
)

const queueDepth = 100

// Event is the sealed set of messages the writer's queue carries.
type Event interface{ isEvent() }

// BlockEvent records one sealed block's slot/timestamp/tx_count.
type BlockEvent struct {
	Slot      uint64
	Timestamp int64
	TxCount   int
}

func (BlockEvent) isEvent() {}

// SandwichEvent carries one detected Sandwich through to persistence.
type SandwichEvent struct {
	Sandwich svmtypes.Sandwich
}

func (SandwichEvent) isEvent() {}

// Writer owns the queue, the DB handle, and the process-local tx_id
// cache (tx_hash -> transaction.id) that step 3/4 of §4.6 consult.
type Writer struct {
	db     *sql.DB
	queue  chan Event
	txIDs  map[string]int64
	log    *logging.Logger
}

// New opens dsn (the MYSQL environment variable's value) and verifies
// connectivity with a ping.
func New(ctx context.Context, dsn string, log *logging.Logger) (*Writer, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("dbwriter: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbwriter: ping: %w", err)
	}
	return &Writer{
		db:    db,
		queue: make(chan Event, queueDepth),
		txIDs: make(map[string]int64),
		log:   log.WithPrefix("dbwriter"),
	}, nil
}

// Close releases the underlying DB handle.
func (w *Writer) Close() error { return w.db.Close() }

// Submit enqueues an event. The channel is bounded at 100: a full
// queue backpressures the caller, which per §5 is the one place the
// ingest path is allowed to feel downstream slowness.
func (w *Writer) Submit(e Event) { w.queue <- e }

// Run drains the queue until ctx is cancelled or the queue is closed.
// A persistence error is fatal to persistence per §7, but it does not
// propagate to the caller: Run stops writing and keeps draining the
// queue, discarding every later event, so Submit never blocks and the
// ingest loop continues serving websocket subscribers.
func (w *Writer) Run(ctx context.Context) {
	failed := false
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-w.queue:
			if !ok {
				return
			}
			if failed {
				continue
			}
			if err := w.handle(ctx, e); err != nil {
				w.log.Errorf("persistence error, writer stopping: %v", err)
				failed = true
			}
		}
	}
}

func (w *Writer) handle(ctx context.Context, e Event) error {
	switch ev := e.(type) {
	case BlockEvent:
		return w.writeBlock(ctx, ev)
	case SandwichEvent:
		return w.writeSandwich(ctx, ev.Sandwich)
	default:
		return fmt.Errorf("dbwriter: unknown event type %T", e)
	}
}

func (w *Writer) writeBlock(ctx context.Context, ev BlockEvent) error {
	_, err := w.db.ExecContext(ctx,
		`INSERT INTO block (slot, timestamp, tx_count) VALUES (?, ?, ?)`,
		ev.Slot, ev.Timestamp, ev.TxCount,
	)
	if err != nil {
		return fmt.Errorf("dbwriter: insert block: %w", err)
	}
	return nil
}
