package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/lox/mendicot/internal/deck"
	"github.com/lox/mendicot/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Decode unmarshals the message payload into v.
func (m *Message) Decode(v any) error {
	return json.Unmarshal(m.Data, v)
}

// Client → Server Messages

type PlayCardData struct {
	Card deck.Card `json:"card"`
}

// Server → Client Messages

// ErrorData is the payload of both error and invalidMove messages.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Codes sent with invalidMove.
const (
	CodeNotPlaying    = "not_playing"
	CodeGameOver      = "game_over"
	CodeNotYourTurn   = "not_your_turn"
	CodeNoHand        = "no_hand"
	CodeCardNotInHand = "card_not_in_hand"
	CodeInternal      = "internal_error"
)

// invalidMoveFromError maps a rejected play to the code reported to the
// player.
func invalidMoveFromError(err error) ErrorData {
	code := CodeInternal
	switch {
	case errors.Is(err, game.ErrNotPlaying):
		code = CodeNotPlaying
	case errors.Is(err, game.ErrGameOver):
		code = CodeGameOver
	case errors.Is(err, game.ErrNotYourTurn):
		code = CodeNotYourTurn
	case errors.Is(err, game.ErrNoHand):
		code = CodeNoHand
	case errors.Is(err, game.ErrCardNotInHand):
		code = CodeCardNotInHand
	}
	return ErrorData{Code: code, Message: err.Error()}
}
