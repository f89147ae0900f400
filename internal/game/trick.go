package game

import "github.com/lox/mendicot/internal/deck"

// Play is one card laid into a trick.
type Play struct {
	PlayerID string    `json:"playerId"`
	Card     deck.Card `json:"card"`
}

// ResolveTrick returns the winning play. The highest trump wins if any trump
// was played, otherwise the highest card of the lead suit. Partial tricks
// resolve to whoever is currently winning.
func ResolveTrick(plays []Play, lead, trump deck.Suit) (Play, error) {
	if best, ok := highestOfSuit(plays, trump); ok {
		return best, nil
	}
	if best, ok := highestOfSuit(plays, lead); ok {
		return best, nil
	}
	return Play{}, ErrMalformedTrick
}

func highestOfSuit(plays []Play, suit deck.Suit) (Play, bool) {
	var best Play
	found := false
	for _, p := range plays {
		if p.Card.Suit != suit {
			continue
		}
		if !found || p.Card.Beats(best.Card) {
			best = p
			found = true
		}
	}
	return best, found
}

func cloneTrick(plays []Play) []Play {
	out := make([]Play, len(plays))
	copy(out, plays)
	return out
}
