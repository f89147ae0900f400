package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Connection is one player's WebSocket. Its lifetime is the player's seat:
// the server joins the session when it opens and leaves when it closes.
type Connection struct {
	conn     *websocket.Conn
	send     chan *Message
	playerID string
	logger   *log.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	server   *Server

	sendMu     sync.Mutex
	sendClosed bool
	closeOnce  sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, playerID string, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		playerID: playerID,
		logger:   logger.WithPrefix("conn").With("player", playerID),
		ctx:      ctx,
		cancel:   cancel,
		server:   server,
	}
}

// PlayerID returns the session identity of this connection.
func (c *Connection) PlayerID() string {
	return c.playerID
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection immediately, dropping queued messages.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.closeSend()
		err = c.conn.Close()
	})
	return err
}

// CloseAfterFlush stops accepting messages and closes the socket once the
// queued ones have been written.
func (c *Connection) CloseAfterFlush() {
	c.closeSend()
}

func (c *Connection) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}

// SendMessage queues a message without blocking. A full buffer means the
// peer is not keeping up, and the connection is dropped.
func (c *Connection) SendMessage(msg *Message) error {
	c.sendMu.Lock()
	if c.sendClosed {
		c.sendMu.Unlock()
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		c.sendMu.Unlock()
		return nil
	default:
	}
	c.sendMu.Unlock()

	c.logger.Warn("Connection send buffer full, closing connection")
	_ = c.Close() // Ignore close errors
	return ErrConnectionClosed
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrConnectionClosed = errors.New("connection closed")

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypePlayCard:
		var data PlayCardData
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse play card data")
			return
		}
		c.handlePlayCard(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handlePlayCard(data PlayCardData) {
	if !data.Card.Valid() {
		c.sendError("invalid_card", "Card is not a valid playing card")
		return
	}

	if err := c.server.session.PlayCard(c.playerID, data.Card); err != nil {
		c.logger.Info("Rejected play", "card", data.Card, "error", err)
		c.sendTyped(MessageTypeInvalidMove, invalidMoveFromError(err))
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	c.sendTyped(MessageTypeError, ErrorData{Code: code, Message: message})
}

func (c *Connection) sendTyped(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}

	_ = c.SendMessage(msg) // Ignore send errors during error handling
}
