package bot

import (
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/lox/mendicot/internal/client"
	"github.com/lox/mendicot/internal/deck"
	"github.com/lox/mendicot/internal/game"
)

// Strategy picks the card to play. It is only asked when the table says it
// is this player's turn, so the hand is never empty.
type Strategy interface {
	Name() string
	ChooseCard(table client.Table) deck.Card
}

// Strategy names accepted by NewStrategy.
const (
	StrategyRandom = "random"
	StrategyFollow = "follow"
)

// NewStrategy builds a strategy by name.
func NewStrategy(name string, rng *rand.Rand) (Strategy, error) {
	switch name {
	case StrategyRandom:
		return NewRandomStrategy(rng), nil
	case StrategyFollow, "":
		return FollowStrategy{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (want %s or %s)", name, StrategyRandom, StrategyFollow)
	}
}

// RandomStrategy plays a uniformly random card from hand.
type RandomStrategy struct {
	rng *rand.Rand
}

func NewRandomStrategy(rng *rand.Rand) *RandomStrategy {
	return &RandomStrategy{rng: rng}
}

func (r *RandomStrategy) Name() string { return StrategyRandom }

func (r *RandomStrategy) ChooseCard(table client.Table) deck.Card {
	return table.Hand[r.rng.IntN(len(table.Hand))]
}

// FollowStrategy plays a simple partnership game. It leaves tricks its
// partner is already winning, takes tricks as cheaply as it can, and
// otherwise throws its least useful card.
type FollowStrategy struct{}

func (FollowStrategy) Name() string { return StrategyFollow }

func (FollowStrategy) ChooseCard(table client.Table) deck.Card {
	trump := trumpOf(table)

	if len(table.Trick) == 0 {
		return cheapest(table.Hand, trump)
	}

	lead := table.Trick[0].Card.Suit
	// Only contest tricks the opponents currently hold.
	current, err := game.ResolveTrick(table.Trick, lead, trump)
	if err == nil && table.TeamOf(current.PlayerID) != table.Team.Opponent() {
		return cheapest(table.Hand, trump)
	}

	// Lowest card that would take the trick, preferring non-trumps.
	var winners []deck.Card
	for _, c := range table.Hand {
		trick := append(slices.Clone(table.Trick), game.Play{PlayerID: table.PlayerID, Card: c})
		if w, err := game.ResolveTrick(trick, lead, trump); err == nil && w.PlayerID == table.PlayerID {
			winners = append(winners, c)
		}
	}
	if len(winners) > 0 {
		slices.SortFunc(winners, func(a, b deck.Card) int {
			return cost(a, trump) - cost(b, trump)
		})
		return winners[0]
	}

	return cheapest(table.Hand, trump)
}

func trumpOf(table client.Table) deck.Suit {
	if table.Trump != nil {
		return *table.Trump
	}
	return deck.Spades
}

// cost orders cards by how much it hurts to give them away: tens are worth
// keeping, trumps more so.
func cost(c deck.Card, trump deck.Suit) int {
	v := int(c.Rank)
	if c.IsTen() {
		v += 20
	}
	if c.Suit == trump {
		v += 40
	}
	return v
}

func cheapest(hand []deck.Card, trump deck.Suit) deck.Card {
	return slices.MinFunc(hand, func(a, b deck.Card) int {
		return cost(a, trump) - cost(b, trump)
	})
}
