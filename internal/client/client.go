package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/mendicot/internal/deck"
	"github.com/lox/mendicot/internal/server" // Reuse message types
)

// Client is a WebSocket player connection. Connecting joins the room;
// Disconnect leaves it.
type Client struct {
	serverURL string
	conn      *websocket.Conn
	send      chan *server.Message
	receive   chan *server.Message
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once
	writeDone chan struct{}
	done      chan struct{}

	table *Table

	// Event handlers
	eventHandlers map[server.MessageType][]handlerEntry
	nextHandlerID int
}

// EventHandler is a function that handles incoming events. Handlers run on
// the client's dispatch goroutine in arrival order, after the table view has
// been updated.
type EventHandler func(*server.Message)

type handlerEntry struct {
	id int
	fn EventHandler
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL:     serverURL,
		send:          make(chan *server.Message, 256),
		receive:       make(chan *server.Message, 256),
		logger:        logger.WithPrefix("client"),
		ctx:           ctx,
		cancel:        cancel,
		writeDone:     make(chan struct{}),
		done:          make(chan struct{}),
		table:         newTable(),
		eventHandlers: make(map[server.MessageType][]handlerEntry),
	}
}

// WebSocketURL turns a server URL such as http://localhost:8080 into the
// ws://localhost:8080/ws endpoint.
func WebSocketURL(serverURL string) (string, error) {
	if !strings.Contains(serverURL, "://") {
		serverURL = "http://" + serverURL
	}
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	wsURL, err := WebSocketURL(c.serverURL)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	go c.eventProcessor()

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		select {
		case <-c.writeDone:
		case <-time.After(time.Second):
		}
		_ = conn.Close() // Ignore close errors during shutdown

		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()

		c.logger.Info("Disconnected from server")
	})
	return nil
}

// Done is closed when the connection has ended from either side and every
// message received before that has been handled.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendMessage sends a message to the server
func (c *Client) SendMessage(msg *server.Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		return fmt.Errorf("send buffer full")
	}
}

// PlayCard asks the server to play card from this player's hand.
func (c *Client) PlayCard(card deck.Card) error {
	msg, err := server.NewMessage(server.MessageTypePlayCard, server.PlayCardData{Card: card})
	if err != nil {
		return err
	}
	return c.SendMessage(msg)
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.receive)
		c.cancel()
	}()

	for {
		var msg server.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)
		c.receive <- &msg
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		close(c.writeDone)
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(time.Second))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// eventProcessor processes incoming messages and dispatches to handlers
// until the read side closes.
func (c *Client) eventProcessor() {
	defer close(c.done)
	for msg := range c.receive {
		c.handleMessage(msg)
	}
}

// handleMessage updates the table view, then runs registered handlers
func (c *Client) handleMessage(msg *server.Message) {
	c.mu.Lock()
	if err := c.table.apply(msg); err != nil {
		c.logger.Warn("Failed to apply message", "type", msg.Type, "error", err)
	}
	handlers := append([]handlerEntry(nil), c.eventHandlers[msg.Type]...)
	c.mu.Unlock()

	if len(handlers) == 0 {
		c.logger.Debug("No handler for message type", "type", msg.Type)
	}
	for _, h := range handlers {
		h.fn(msg)
	}
}

// AddEventHandler adds an event handler for a specific message type. The
// returned function removes it.
func (c *Client) AddEventHandler(messageType server.MessageType, handler EventHandler) (remove func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextHandlerID++
	id := c.nextHandlerID
	c.eventHandlers[messageType] = append(c.eventHandlers[messageType], handlerEntry{id: id, fn: handler})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		entries := c.eventHandlers[messageType]
		for i, e := range entries {
			if e.id == id {
				c.eventHandlers[messageType] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Table returns a snapshot of the client-side table view.
func (c *Client) Table() Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table.clone()
}

// WaitForMessage waits for a specific message type with timeout
func (c *Client) WaitForMessage(messageType server.MessageType, timeout time.Duration) (*server.Message, error) {
	responseChan := make(chan *server.Message, 1)

	remove := c.AddEventHandler(messageType, func(msg *server.Message) {
		select {
		case responseChan <- msg:
		default:
		}
	})
	defer remove()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-responseChan:
		return msg, nil
	case <-timer.C:
		return nil, fmt.Errorf("timeout waiting for %s", messageType)
	case <-c.ctx.Done():
		return nil, c.ctx.Err()
	}
}
