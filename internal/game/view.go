package game

import (
	"slices"

	"github.com/lox/mendicot/internal/deck"
)

// View is a read-only snapshot of the session without any hands.
type View struct {
	Phase          Phase          `json:"phase"`
	MatchID        string         `json:"matchId,omitempty"`
	Players        []PlayerInfo   `json:"players"`
	Turn           string         `json:"turn"`
	TurnIndex      int            `json:"turnIndex"`
	TrumpSuit      *deck.Suit     `json:"trumpSuit,omitempty"`
	LeadSuit       *deck.Suit     `json:"leadSuit"`
	CurrentTrick   []Play         `json:"currentTrick"`
	HandsRemaining map[string]int `json:"handsRemaining"`
	TeamScores     Tally          `json:"teamScores"`
	TensWon        Tally          `json:"tensWon"`
	TricksWon      Tally          `json:"tricksWon"`
	GameOver       bool           `json:"gameOver"`
	WinningTeam    *Team          `json:"winningTeam,omitempty"`
	WinReason      string         `json:"winReason,omitempty"`
}

// View returns a snapshot of the table.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Phase:          s.phase,
		MatchID:        s.matchID,
		Players:        s.playerInfos(),
		Turn:           s.turnID(),
		TurnIndex:      s.turn,
		CurrentTrick:   cloneTrick(s.trick),
		HandsRemaining: s.handCounts(),
		TeamScores:     s.teamScores.Clone(),
		TensWon:        s.tensWon.Clone(),
		TricksWon:      s.tricksWon.Clone(),
		GameOver:       s.phase == PhaseOver,
	}
	if s.phase == PhasePlaying || s.phase == PhaseOver {
		trump := s.trump
		v.TrumpSuit = &trump
	}
	if s.lead != nil {
		lead := *s.lead
		v.LeadSuit = &lead
	}
	if s.outcome != nil {
		team := s.outcome.WinningTeam
		v.WinningTeam = &team
		v.WinReason = s.outcome.Reason
	}
	return v
}

// Hand returns a copy of id's hand. ok is false when id holds no hand.
func (s *Session) Hand(id string) (hand []deck.Card, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.seatOf(id)
	if idx < 0 || s.seats[idx].hand == nil {
		return nil, false
	}
	return slices.Clone(s.seats[idx].hand), true
}

// Trump returns the trump suit of the current match.
func (s *Session) Trump() (deck.Suit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trump, s.phase == PhasePlaying || s.phase == PhaseOver
}
