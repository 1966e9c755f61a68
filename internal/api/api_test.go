package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/klingon-exchange/sandwichfinder/internal/fanout"
	"github.com/klingon-exchange/sandwichfinder/internal/svmtypes"
	"github.com/klingon-exchange/sandwichfinder/pkg/logging"
)

func newTestServer(t *testing.T) (*httptest.Server, *fanout.Hub, func()) {
	t.Helper()
	hub := fanout.New(logging.Default())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := New(hub, logging.Default())
	ts := httptest.NewServer(srv.Handler())
	return ts, hub, func() {
		cancel()
		ts.Close()
	}
}

// TestS5HistorySnapshotAndWebsocketDelivery is the literal S5
// scenario: one websocket client is connected and one /history
// request arrives concurrently with a detected Sandwich.
func TestS5HistorySnapshotAndWebsocketDelivery(t *testing.T) {
	ts, hub, cleanup := newTestServer(t)
	defer cleanup()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the server a moment to register the client before publishing.
	time.Sleep(20 * time.Millisecond)

	s := svmtypes.Sandwich{Slot: 1, Timestamp: 2}
	hub.Publish(s)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got svmtypes.Sandwich
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	if got.Slot != 1 {
		t.Errorf("got.Slot = %d, want 1", got.Slot)
	}

	time.Sleep(20 * time.Millisecond)
	resp, err := ts.Client().Get(ts.URL + "/history")
	if err != nil {
		t.Fatalf("history request: %v", err)
	}
	defer resp.Body.Close()

	var history []svmtypes.Sandwich
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 || history[0].Slot != 1 {
		t.Errorf("history = %+v, want one sandwich with slot 1", history)
	}
}

func TestHistoryEmptyIsJSONArray(t *testing.T) {
	ts, _, cleanup := newTestServer(t)
	defer cleanup()

	resp, err := ts.Client().Get(ts.URL + "/history")
	if err != nil {
		t.Fatalf("history request: %v", err)
	}
	defer resp.Body.Close()

	var history []svmtypes.Sandwich
	if err := json.NewDecoder(resp.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if history == nil || len(history) != 0 {
		t.Errorf("history = %v, want empty non-nil slice", history)
	}
}
