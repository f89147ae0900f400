// Package bot plays Mendicot over a client connection.
package bot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/mendicot/internal/client"
	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/server"
)

// ErrRoomFull is returned by Run when the server turned the bot away.
var ErrRoomFull = errors.New("room full")

// ErrDisconnected is returned by Run when the connection ended before the
// match did.
var ErrDisconnected = errors.New("disconnected before game over")

// Bot drives one connected client with a Strategy.
type Bot struct {
	client   *client.Client
	strategy Strategy
	logger   *log.Logger
	clock    quartz.Clock
	delay    time.Duration

	mu       sync.Mutex
	result   *game.GameOver
	finished chan struct{}
	once     sync.Once
}

// Option configures a Bot.
type Option func(*Bot)

// WithDelay makes the bot pause before each card so humans can follow.
func WithDelay(d time.Duration) Option {
	return func(b *Bot) {
		b.delay = d
	}
}

// WithClock sets the clock used for the play delay.
func WithClock(clock quartz.Clock) Option {
	return func(b *Bot) {
		b.clock = clock
	}
}

// New creates a bot for an unconnected client.
func New(c *client.Client, strategy Strategy, logger *log.Logger, opts ...Option) *Bot {
	b := &Bot{
		client:   c,
		strategy: strategy,
		logger:   logger.WithPrefix("bot").With("strategy", strategy.Name()),
		clock:    quartz.NewReal(),
		finished: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run connects, plays until the first match ends and then disconnects.
func (b *Bot) Run(ctx context.Context) (*game.GameOver, error) {
	b.client.AddEventHandler(server.MessageTypeGameStart, b.onUpdate)
	b.client.AddEventHandler(server.MessageTypeGameState, b.onUpdate)
	b.client.AddEventHandler(server.MessageTypeGameOver, b.onGameOver)
	b.client.AddEventHandler(server.MessageTypeInvalidMove, b.onInvalidMove)
	b.client.AddEventHandler(server.MessageTypeGameAborted, func(msg *server.Message) {
		b.logger.Warn("Match aborted, waiting for a new one")
	})

	if err := b.client.Connect(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = b.client.Disconnect() }()

	select {
	case <-b.finished:
		b.mu.Lock()
		defer b.mu.Unlock()
		return b.result, nil
	case <-b.client.Done():
		if b.client.Table().RoomFull {
			return nil, ErrRoomFull
		}
		return nil, ErrDisconnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Bot) onUpdate(_ *server.Message) {
	table := b.client.Table()
	if !table.MyTurn() {
		return
	}

	card := b.strategy.ChooseCard(table)
	play := func() {
		b.logger.Debug("Playing card", "player", table.PlayerID, "card", card)
		if err := b.client.PlayCard(card); err != nil {
			b.logger.Error("Failed to send card", "error", err)
		}
	}

	if b.delay > 0 {
		b.clock.AfterFunc(b.delay, play)
		return
	}
	play()
}

func (b *Bot) onGameOver(msg *server.Message) {
	var data game.GameOver
	if err := msg.Decode(&data); err != nil {
		b.logger.Error("Failed to decode game over", "error", err)
		return
	}

	table := b.client.Table()
	b.logger.Info("Match over",
		"player", table.PlayerID,
		"team", int(table.Team),
		"winner", int(data.WinningTeam),
		"reason", data.WinReason)

	b.once.Do(func() {
		b.mu.Lock()
		b.result = &data
		b.mu.Unlock()
		close(b.finished)
	})
}

func (b *Bot) onInvalidMove(msg *server.Message) {
	var data server.ErrorData
	_ = msg.Decode(&data)
	b.logger.Warn("Play rejected", "code", data.Code, "message", data.Message)
}
