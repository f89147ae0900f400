package client

import (
	"maps"
	"slices"

	"github.com/lox/mendicot/internal/deck"
	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/server"
)

// Table is the client-side view of the room, rebuilt from server events.
type Table struct {
	PlayerID string
	Seat     int
	Team     game.Team
	MatchID  string
	Players  []game.PlayerInfo

	// Connected and Needed mirror the last waiting-room update.
	Connected int
	Needed    int

	Playing      bool
	Hand         []deck.Card
	Trump        *deck.Suit
	LeadSuit     *deck.Suit
	Trick        []game.Play
	Turn         string
	TurnIndex    int
	HandCounts   map[string]int
	TeamScores   game.Tally
	TensWon      game.Tally
	TricksWon    game.Tally
	LastTrick    *game.TrickComplete
	Result       *game.GameOver
	RoomFull     bool
	Aborted      *game.GameAborted
	LastRejected *server.ErrorData
}

func newTable() *Table {
	return &Table{Seat: -1}
}

// MyTurn reports whether the server expects a card from this player.
func (t Table) MyTurn() bool {
	return t.Playing && t.Result == nil && t.PlayerID != "" && t.Turn == t.PlayerID && len(t.Hand) > 0
}

// TeamOf returns the team of a seated player, or NoTeam.
func (t Table) TeamOf(playerID string) game.Team {
	for _, p := range t.Players {
		if p.ID == playerID {
			return p.Team
		}
	}
	return game.NoTeam
}

func (t *Table) clone() Table {
	out := *t
	out.Players = slices.Clone(t.Players)
	out.Hand = slices.Clone(t.Hand)
	out.Trick = slices.Clone(t.Trick)
	out.HandCounts = maps.Clone(t.HandCounts)
	if t.TeamScores != nil {
		out.TeamScores = t.TeamScores.Clone()
	}
	if t.TensWon != nil {
		out.TensWon = t.TensWon.Clone()
	}
	if t.TricksWon != nil {
		out.TricksWon = t.TricksWon.Clone()
	}
	return out
}

func (t *Table) seatOf(playerID string) int {
	return slices.IndexFunc(t.Players, func(p game.PlayerInfo) bool { return p.ID == playerID })
}

// apply folds one server message into the view.
func (t *Table) apply(msg *server.Message) error {
	switch msg.Type {
	case server.MessageTypeRoomFull:
		t.RoomFull = true

	case server.MessageTypeWaitingForPlayers:
		var data game.WaitingForPlayers
		if err := msg.Decode(&data); err != nil {
			return err
		}
		*t = Table{
			PlayerID:  data.YourID,
			Players:   data.Players,
			Connected: data.PlayersConnected,
			Needed:    data.PlayersNeeded,
			LastTrick: t.LastTrick,
			Result:    t.Result,
			Aborted:   t.Aborted,
		}
		t.Seat = t.seatOf(data.YourID)
		t.Team = t.TeamOf(data.YourID)

	case server.MessageTypeGameStart:
		var data game.GameStart
		if err := msg.Decode(&data); err != nil {
			return err
		}
		trump := data.TrumpSuit
		*t = Table{
			PlayerID:   data.YourID,
			Seat:       data.YourIndex,
			Team:       data.Team,
			MatchID:    data.MatchID,
			Players:    data.Players,
			Connected:  len(data.Players),
			Playing:    true,
			Hand:       data.Hand,
			Trump:      &trump,
			Turn:       data.Turn,
			TurnIndex:  data.TurnIndex,
			TeamScores: data.TeamScores,
		}

	case server.MessageTypeGameState:
		var data game.GameState
		if err := msg.Decode(&data); err != nil {
			return err
		}
		t.Hand = data.Hand
		t.Trick = data.CurrentTrick
		t.LeadSuit = data.LeadSuit
		t.Turn = data.Turn
		t.TurnIndex = data.TurnIndex
		t.HandCounts = data.HandCounts
		t.Players = data.Players
		t.TeamScores = data.TeamScores
		t.TensWon = data.TensWon
		t.TricksWon = data.TricksWon
		t.LastRejected = nil

	case server.MessageTypeTrickComplete:
		var data game.TrickComplete
		if err := msg.Decode(&data); err != nil {
			return err
		}
		t.LastTrick = &data

	case server.MessageTypeGameOver:
		var data game.GameOver
		if err := msg.Decode(&data); err != nil {
			return err
		}
		t.Result = &data
		t.TeamScores = data.TeamScores
		t.TensWon = data.TensWon
		t.TricksWon = data.TricksWon

	case server.MessageTypeGameAborted:
		var data game.GameAborted
		if err := msg.Decode(&data); err != nil {
			return err
		}
		t.Aborted = &data
		t.Playing = false
		t.Hand = nil
		t.Trick = nil

	case server.MessageTypeInvalidMove:
		var data server.ErrorData
		if err := msg.Decode(&data); err != nil {
			return err
		}
		t.LastRejected = &data
	}
	return nil
}
