// Package api is the HTTP/websocket surface: GET / upgrades to a
// websocket that streams subsequently-detected Sandwiches, and
// GET /history returns a JSON snapshot of the fan-out hub's ring.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/klingon-exchange/sandwichfinder/internal/fanout"
	"github.com/klingon-exchange/sandwichfinder/pkg/logging"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server exposes the hub over HTTP.
type Server struct {
	hub *fanout.Hub
	log *logging.Logger
}

// New builds a Server over hub.
func New(hub *fanout.Hub, log *logging.Logger) *Server {
	return &Server{hub: hub, log: log.WithPrefix("api")}
}

// Handler returns the server's http.Handler, ready for http.ListenAndServe.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleStream)
	mux.HandleFunc("/history", s.handleHistory)
	return mux
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Errorf("websocket upgrade: %v", err)
		return
	}

	client := fanout.NewClient()
	s.hub.Register(client)
	defer s.hub.Unregister(client)

	// Drain and discard any client->server frames; this endpoint is
	// subscribe-only. When the connection drops, ReadMessage errors
	// and the goroutine (and the deferred Unregister) unwinds.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				conn.Close()
				return
			}
		}
	}()

	for frame := range client.Send() {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.hub.History()); err != nil {
		s.log.Errorf("encode history: %v", err)
	}
}
