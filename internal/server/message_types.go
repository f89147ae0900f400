package server

import "github.com/lox/mendicot/internal/game"

// MessageType represents a WebSocket message type with type safety
type MessageType string

// Session events keep the name the session gives them on the wire.
const (
	// Client to server messages
	MessageTypePlayCard MessageType = "play_card"

	// Server to client messages
	MessageTypeRoomFull          = MessageType(game.EventRoomFull)
	MessageTypeWaitingForPlayers = MessageType(game.EventWaitingForPlayers)
	MessageTypeGameStart         = MessageType(game.EventGameStart)
	MessageTypeGameState         = MessageType(game.EventGameState)
	MessageTypeTrickComplete     = MessageType(game.EventTrickComplete)
	MessageTypeGameOver          = MessageType(game.EventGameOver)
	MessageTypeGameAborted       = MessageType(game.EventGameAborted)
	MessageTypeInvalidMove       MessageType = "invalidMove"
	MessageTypeError             MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
