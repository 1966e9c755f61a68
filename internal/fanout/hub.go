// Package fanout is the detected-sandwich broadcast hub (C5): a
// bounded in-memory history, a set of websocket subscribers fed
// without back-pressuring the ingest loop, and a read-only history
// snapshot for GET /history.
package fanout

import (
	"context"
	"encoding/json"

	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
	"github.com/klingon-exchange/sandwichfinder/pkg/logging"
)

const (
	historyCapacity = 100
	intakeCapacity  = 100
	clientSendDepth = 16
)

// Client is one websocket subscriber's outbound queue. internal/api
// registers and unregisters Clients as connections open and close.
type Client struct {
	send chan []byte
}

// NewClient allocates a Client ready to Register with a Hub.
func NewClient() *Client {
	return &Client{send: make(chan []byte, clientSendDepth)}
}

// Send returns the channel internal/api's write pump drains.
func (c *Client) Send() <-chan []byte { return c.send }

// Hub is the single owner of the client set and the history ring.
// Run must be driven by exactly one goroutine; all other methods are
// safe to call concurrently.
type Hub struct {
	intake     chan svmtypes.Sandwich
	register   chan *Client
	unregister chan *Client
	clients    map[*Client]struct{}
	history    *historyRing
	log        *logging.Logger
}

// New builds a Hub. Call Run in its own goroutine before Publish.
func New(log *logging.Logger) *Hub {
	return &Hub{
		intake:     make(chan svmtypes.Sandwich, intakeCapacity),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
		history:    newHistoryRing(historyCapacity),
		log:        log.WithPrefix("fanout"),
	}
}

// Publish enqueues a detected Sandwich for broadcast. It is called
// from a short-lived per-sandwich task spawned off the ingest loop
// (never the ingest loop itself), so a momentary block here while the
// intake queue drains never stalls block processing.
func (h *Hub) Publish(s svmtypes.Sandwich) {
	h.intake <- s
}

// Register adds c to the broadcast set.
func (h *Hub) Register(c *Client) { h.register <- c }

// Unregister removes c from the broadcast set and closes its send
// channel.
func (h *Hub) Unregister(c *Client) { h.unregister <- c }

// History returns a point-in-time snapshot, oldest first.
func (h *Hub) History() []svmtypes.Sandwich { return h.history.snapshot() }

// Run drives the hub until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case s := <-h.intake:
			h.history.push(s)
			frame, err := json.Marshal(s)
			if err != nil {
				h.log.Errorf("marshal sandwich: %v", err)
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- frame:
				default:
					// Slow consumer: drop and disconnect rather than
					// let the broadcast stall on it.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}
