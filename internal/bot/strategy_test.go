package bot

import (
	"slices"
	"testing"

	"github.com/lox/mendicot/internal/client"
	"github.com/lox/mendicot/internal/deck"
	"github.com/lox/mendicot/internal/game"
	"github.com/lox/mendicot/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var players = []game.PlayerInfo{
	{ID: "A", Team: game.Team1},
	{ID: "B", Team: game.Team2},
	{ID: "C", Team: game.Team1},
	{ID: "D", Team: game.Team2},
}

// tableFor builds D's view with the given hand and cards already played by
// A, B and C in order.
func tableFor(t *testing.T, hand string, played string) client.Table {
	t.Helper()
	trump := deck.Spades
	var trick []game.Play
	for i, c := range deck.MustParseCards(played) {
		trick = append(trick, game.Play{PlayerID: players[i].ID, Card: c})
	}
	return client.Table{
		PlayerID: "D",
		Seat:     3,
		Team:     game.Team2,
		Players:  players,
		Playing:  true,
		Hand:     deck.MustParseCards(hand),
		Trump:    &trump,
		Trick:    trick,
		Turn:     "D",
	}
}

func card(t *testing.T, raw string) deck.Card {
	t.Helper()
	c, err := deck.ParseCard(raw)
	require.NoError(t, err)
	return c
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("random", randutil.New(1))
	require.NoError(t, err)
	assert.Equal(t, StrategyRandom, s.Name())

	s, err = NewStrategy("", randutil.New(1))
	require.NoError(t, err)
	assert.Equal(t, StrategyFollow, s.Name())

	_, err = NewStrategy("psychic", randutil.New(1))
	assert.Error(t, err)
}

func TestRandomStrategyOnlyPlaysCardsInHand(t *testing.T) {
	s := NewRandomStrategy(randutil.New(9))
	table := tableFor(t, "2h 7c Qd As", "")

	seen := make(map[deck.Card]bool)
	for i := 0; i < 200; i++ {
		c := s.ChooseCard(table)
		require.True(t, slices.Contains(table.Hand, c), "played %s not in hand", c)
		seen[c] = true
	}
	assert.Len(t, seen, 4)
}

func TestFollowStrategy(t *testing.T) {
	tests := []struct {
		name   string
		hand   string
		played string
		want   string
	}{
		{
			name: "leads cheapest non-trump",
			hand: "2s Kh 3d 10c",
			want: "3d",
		},
		{
			name:   "keeps ten when partner is winning",
			hand:   "10h 4h 9c",
			played: "5h Kh 7h",
			want:   "4h",
		},
		{
			name:   "takes trick with lowest winning lead card",
			hand:   "Ah Qh 2h 3s",
			played: "5h 7h Jh",
			want:   "Qh",
		},
		{
			name:   "trumps in when lead suit cannot win",
			hand:   "2h 4s Kd",
			played: "5h 7h Ah",
			want:   "4s",
		},
		{
			name:   "throws cheapest when nothing wins",
			hand:   "2h 10d 6c",
			played: "5h Ah 3s",
			want:   "2h",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := tableFor(t, tt.hand, tt.played)
			assert.Equal(t, card(t, tt.want), FollowStrategy{}.ChooseCard(table))
		})
	}
}
