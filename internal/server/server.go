package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/gameid"
)

// Server hosts the single Mendicot session over WebSocket. Opening a socket
// joins the session and closing it leaves.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[string]*Connection
	logger      *log.Logger
	mu          sync.RWMutex
	session     *game.Session
	httpServer  *http.Server
	wg          sync.WaitGroup
}

// NewServer creates a new WebSocket server. Session options such as the
// clock, random source and rules are passed through.
func NewServer(addr string, logger *log.Logger, opts ...game.Option) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[string]*Connection),
		logger:      logger.WithPrefix("server"),
	}
	s.session = game.NewSession(s, logger, opts...)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Session returns the session the server drives.
func (s *Server) Session() *game.Session {
	return s.session
}

// Handler returns the HTTP routes served by Start.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/state", s.handleState)
	return mux
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and closes every open socket.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)

	s.mu.RLock()
	conns := make([]*Connection, 0, len(s.connections))
	for _, conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Close() // Ignore close errors during shutdown
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	return err
}

// handleWebSocket upgrades the request and seats the new connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	conn := NewConnection(ws, gameid.New(gameid.PrefixConn), s.logger, s)
	s.register(conn)
	conn.Start()

	if err := s.session.AddPlayer(conn.PlayerID()); err != nil {
		s.logger.Info("Turning connection away", "player", conn.PlayerID(), "error", err)
		conn.CloseAfterFlush()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-conn.Done()
		s.unregister(conn)
	}()
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn.PlayerID()] = conn
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "player", conn.PlayerID(), "total", total)
}

// unregister drops the connection and then leaves the session. The registry
// lock is released first because the session sends while holding its own.
func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	if current, ok := s.connections[conn.PlayerID()]; ok && current == conn {
		delete(s.connections, conn.PlayerID())
	}
	total := len(s.connections)
	s.mu.Unlock()

	s.session.RemovePlayer(conn.PlayerID())
	s.logger.Info("Client disconnected", "player", conn.PlayerID(), "total", total)
}

// Send implements game.Sender.
func (s *Server) Send(playerID string, event game.EventType, payload any) {
	msg, err := NewMessage(MessageType(event), payload)
	if err != nil {
		s.logger.Error("Failed to encode event", "event", event, "error", err)
		return
	}

	s.mu.RLock()
	conn, ok := s.connections[playerID]
	s.mu.RUnlock()
	if !ok {
		s.logger.Debug("Dropping event for unknown player", "player", playerID, "event", event)
		return
	}

	if err := conn.SendMessage(msg); err != nil {
		s.logger.Warn("Failed to send event", "player", playerID, "event", event, "error", err)
	}
}

// ConnectedPlayers returns the number of open connections.
func (s *Server) ConnectedPlayers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleState reports the public table view as JSON.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.session.View()); err != nil {
		s.logger.Error("Failed to encode state", "error", err)
	}
}
