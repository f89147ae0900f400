package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/mendicot/internal/client"
	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/server"
)

var bridgedTypes = []server.MessageType{
	server.MessageTypeRoomFull,
	server.MessageTypeWaitingForPlayers,
	server.MessageTypeGameStart,
	server.MessageTypeGameState,
	server.MessageTypeTrickComplete,
	server.MessageTypeGameOver,
	server.MessageTypeGameAborted,
	server.MessageTypeInvalidMove,
	server.MessageTypeError,
}

// Bridge forwards client events into the program. Call it before
// connecting so no event is missed.
func Bridge(c *client.Client, p *tea.Program) {
	for _, mt := range bridgedTypes {
		c.AddEventHandler(mt, func(msg *server.Message) {
			p.Send(EventMsg{Message: msg, Table: c.Table()})
		})
	}
	go func() {
		<-c.Done()
		p.Send(DisconnectedMsg{})
	}()
}

// describe turns an event into a log line. Empty means nothing to log.
func describe(msg *server.Message, t client.Table) string {
	switch msg.Type {
	case server.MessageTypeRoomFull:
		return ErrorStyle.Render("The room is full, try again later")

	case server.MessageTypeWaitingForPlayers:
		return InfoStyle.Render(fmt.Sprintf("Waiting for players (%d/4)", t.Connected))

	case server.MessageTypeGameStart:
		if t.Trump == nil {
			return ""
		}
		return SuccessStyle.Render(fmt.Sprintf("Match started. Trump is %s %s. You are on team %d.",
			t.Trump, t.Trump.Name(), int(t.Team)))

	case server.MessageTypeGameState:
		if len(t.Trick) == 0 {
			return ""
		}
		last := t.Trick[len(t.Trick)-1]
		return fmt.Sprintf("%s played %s", playerLabel(t, last.PlayerID), formatCard(last.Card))

	case server.MessageTypeTrickComplete:
		var data game.TrickComplete
		if err := msg.Decode(&data); err != nil {
			return ""
		}
		last := data.Trick[len(data.Trick)-1]
		return fmt.Sprintf("%s played %s\n%s",
			playerLabel(t, last.PlayerID), formatCard(last.Card),
			WarningStyle.Render(fmt.Sprintf("%s took the trick with %s (team %d)",
				playerLabel(t, data.WinnerID), data.WinningCard, int(data.WinningTeam))))

	case server.MessageTypeGameOver:
		var data game.GameOver
		if err := msg.Decode(&data); err != nil {
			return ""
		}
		if data.WinningTeam == game.NoTeam {
			return HeaderStyle.Render(" Tie ") + fmt.Sprintf(" tricks %d-%d, tens %d-%d",
				data.TricksWon[game.Team1], data.TricksWon[game.Team2],
				data.TensWon[game.Team1], data.TensWon[game.Team2])
		}
		verdict := "lost"
		if data.WinningTeam == t.Team {
			verdict = "won"
		}
		return HeaderStyle.Render(fmt.Sprintf(" Team %d wins: %s ", int(data.WinningTeam), data.WinReason)) +
			fmt.Sprintf(" You %s.", verdict)

	case server.MessageTypeGameAborted:
		var data game.GameAborted
		if err := msg.Decode(&data); err != nil {
			return ""
		}
		return ErrorStyle.Render("A player left, the match was abandoned")

	case server.MessageTypeInvalidMove, server.MessageTypeError:
		var data server.ErrorData
		if err := msg.Decode(&data); err != nil {
			return ""
		}
		return ErrorStyle.Render("Rejected: " + data.Message)
	}
	return ""
}

// playerLabel names a player by seat rather than connection id.
func playerLabel(t client.Table, playerID string) string {
	if playerID == t.PlayerID {
		return "You"
	}
	for i, p := range t.Players {
		if p.ID == playerID {
			rel := "opponent"
			if p.Team == t.Team {
				rel = "partner"
			}
			return fmt.Sprintf("Seat %d (%s)", i+1, rel)
		}
	}
	return "Someone"
}
