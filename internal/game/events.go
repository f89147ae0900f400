package game

import "github.com/lox/mendicot/internal/deck"

// EventType names an outbound event.
type EventType string

const (
	EventRoomFull          EventType = "roomFull"
	EventWaitingForPlayers EventType = "waitingForPlayers"
	EventGameStart         EventType = "gameStart"
	EventGameState         EventType = "gameState"
	EventTrickComplete     EventType = "trickComplete"
	EventGameOver          EventType = "gameOver"
	EventGameAborted       EventType = "gameAborted"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Sender delivers an event to one player. Implementations must not block
// and must not call back into the session.
type Sender interface {
	Send(playerID string, event EventType, payload any)
}

// PlayerInfo is the public view of a seated player. Vacant marks a seat
// left empty under LeaveStall; the match cannot continue past its turn.
type PlayerInfo struct {
	ID     string `json:"id"`
	Team   Team   `json:"team"`
	Vacant bool   `json:"vacant,omitempty"`
}

type RoomFull struct {
	Message string `json:"message"`
}

type WaitingForPlayers struct {
	PlayersConnected int          `json:"playersConnected"`
	PlayersNeeded    int          `json:"playersNeeded"`
	Players          []PlayerInfo `json:"players"`
	YourID           string       `json:"yourId"`
}

type GameStart struct {
	MatchID    string       `json:"matchId"`
	Hand       []deck.Card  `json:"hand"`
	YourIndex  int          `json:"yourIndex"`
	YourID     string       `json:"yourId"`
	Players    []PlayerInfo `json:"players"`
	Turn       string       `json:"turn"`
	TurnIndex  int          `json:"turnIndex"`
	TrumpSuit  deck.Suit    `json:"trumpSuit"`
	Team       Team         `json:"team"`
	TeamScores Tally        `json:"teamScores"`
}

// GameState is sent to every player after each accepted play. LeadSuit is
// nil between tricks. HandsRemaining is the recipient's own card count;
// HandCounts has every seat's.
type GameState struct {
	HandsRemaining int            `json:"handsRemaining"`
	HandCounts     map[string]int `json:"handCounts"`
	Hand           []deck.Card    `json:"hand"`
	CurrentTrick   []Play         `json:"currentTrick"`
	LeadSuit       *deck.Suit     `json:"leadSuit"`
	Turn           string         `json:"turn"`
	TurnIndex      int            `json:"turnIndex"`
	YourID         string         `json:"yourId"`
	Players        []PlayerInfo   `json:"players"`
	TeamScores     Tally          `json:"teamScores"`
	TensWon        Tally          `json:"tensWon"`
	TricksWon      Tally          `json:"tricksWon"`
	GameOver       bool           `json:"gameOver"`
}

type TrickComplete struct {
	WinnerID    string    `json:"winnerId"`
	WinningTeam Team      `json:"winningTeam"`
	WinningCard deck.Card `json:"winningCard"`
	Trick       []Play    `json:"trick"`
	TricksWon   Tally     `json:"tricksWon"`
	TensWon     Tally     `json:"tensWon"`
}

// GameOver reports the final result. WinningTeam is 0 for a tie.
type GameOver struct {
	WinningTeam Team   `json:"winningTeam"`
	WinReason   string `json:"winReason"`
	TensWon     Tally  `json:"tensWon"`
	TricksWon   Tally  `json:"tricksWon"`
	TeamScores  Tally  `json:"teamScores"`
}

type GameAborted struct {
	Reason   string `json:"reason"`
	PlayerID string `json:"playerId"`
}
