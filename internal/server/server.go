// Package server exposes a match over a websocket: a JSON action
// protocol with per-request acknowledgements plus server-pushed state
// snapshots and selection requests.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/frontierline/frontier-server/internal/cards"
	"github.com/frontierline/frontier-server/internal/match"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // single-player demo server, no origin policy
	},
}

// Server hosts one human-versus-AI match.
type Server struct {
	addr      string
	logger    *zap.Logger
	match     *match.Match
	decks     Decks
	replayDir string

	mu      sync.Mutex
	clients map[*client]bool

	httpSrv *http.Server
}

// Decks are the lists handed to SETUP_GAME.
type Decks struct {
	Human cards.DeckList
	AI    cards.DeckList
}

// New builds a server for the given match and deck lists. replayDir
// enables replay persistence at game over when non-empty.
func New(addr string, m *match.Match, decks Decks, replayDir string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		addr:      addr,
		logger:    logger,
		match:     m,
		decks:     decks,
		replayDir: replayDir,
		clients:   make(map[*client]bool),
	}
}

// Start serves websocket connections on /ws until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpSrv = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.pumpEvents(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("websocket server listening", zap.String("address", s.addr))
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// pumpEvents fans match events out to every connected client. State
// events are rendered from the human's perspective.
func (s *Server) pumpEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.match.Events():
			if !ok {
				return
			}
			s.broadcastEvent(ev)
		}
	}
}

func (s *Server) broadcastEvent(ev match.Event) {
	var out serverMessage
	switch ev.Type {
	case match.EventState:
		view, err := s.match.View(s.match.HumanID())
		if err != nil {
			s.logger.Error("view build failed", zap.Error(err))
			return
		}
		out = serverMessage{Type: "STATE", Payload: view}
	case match.EventSelectionRequest:
		out = serverMessage{Type: "DILEMMA_SELECTION_REQUEST", Payload: ev.Payload}
	case match.EventGameOver:
		out = serverMessage{Type: "GAME_OVER", Payload: map[string]string{"winner": ev.Player}}
		if s.replayDir != "" {
			if err := s.match.SaveReplay(s.replayDir); err != nil {
				s.logger.Error("replay save failed", zap.Error(err))
			}
		}
	default:
		return
	}

	raw, err := json.Marshal(out)
	if err != nil {
		s.logger.Error("event marshal failed", zap.Error(err))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- raw:
		default:
			s.logger.Warn("client send buffer full, dropping event")
		}
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		conn:     conn,
		send:     make(chan []byte, 256),
		playerID: s.match.HumanID(),
	}

	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()
	s.logger.Info("client connected", zap.String("remote", conn.RemoteAddr().String()))

	go c.writePump(s.logger)
	go c.readPump(s)
}

func (s *Server) dropClient(c *client) {
	s.mu.Lock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()
	s.logger.Info("client disconnected")
}
