package deck

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists the four suits in deck order.
var Suits = [4]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the symbol used on the wire (e.g. "♠")
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Name returns the English name of the suit
func (s Suit) Name() string {
	switch s {
	case Spades:
		return "Spade"
	case Hearts:
		return "Heart"
	case Diamonds:
		return "Diamond"
	case Clubs:
		return "Club"
	default:
		return "Unknown"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Valid reports whether s is one of the four suits.
func (s Suit) Valid() bool {
	return s >= Spades && s <= Clubs
}

// MarshalJSON encodes the suit as its symbol.
func (s Suit) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid suit %d", int(s))
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a symbol, a letter or an English name.
func (s *Suit) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	suit, err := ParseSuit(raw)
	if err != nil {
		return err
	}
	*s = suit
	return nil
}

// ParseSuit parses "♠", "s", "spade" or "spades" (case-insensitive).
func ParseSuit(raw string) (Suit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "♠", "s", "spade", "spades":
		return Spades, nil
	case "♥", "h", "heart", "hearts":
		return Hearts, nil
	case "♦", "d", "diamond", "diamonds":
		return Diamonds, nil
	case "♣", "c", "club", "clubs":
		return Clubs, nil
	default:
		return 0, fmt.Errorf("invalid suit %q", raw)
	}
}

// Rank represents a card rank. Ordering follows trick-taking
// precedence: 2 < 3 < ... < 10 < J < Q < K < A.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Valid reports whether r is between Two and Ace.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// ParseRank parses "2".."10", "T", "J", "Q", "K" or "A" (case-insensitive).
func ParseRank(raw string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "2":
		return Two, nil
	case "3":
		return Three, nil
	case "4":
		return Four, nil
	case "5":
		return Five, nil
	case "6":
		return Six, nil
	case "7":
		return Seven, nil
	case "8":
		return Eight, nil
	case "9":
		return Nine, nil
	case "10", "T":
		return Ten, nil
	case "J":
		return Jack, nil
	case "Q":
		return Queen, nil
	case "K":
		return King, nil
	case "A":
		return Ace, nil
	default:
		return 0, fmt.Errorf("invalid rank %q", raw)
	}
}

// Card represents a playing card
type Card struct {
	Suit Suit
	Rank Rank
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// String returns the string representation of a card (e.g., "10♥")
func (c Card) String() string {
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// IsTen reports whether the card counts towards captured tens.
func (c Card) IsTen() bool {
	return c.Rank == Ten
}

// Beats reports whether c outranks other. Only meaningful for two cards of
// the same suit.
func (c Card) Beats(other Card) bool {
	return c.Rank > other.Rank
}

// Valid reports whether both suit and rank are in range.
func (c Card) Valid() bool {
	return c.Suit.Valid() && c.Rank.Valid()
}

type wireCard struct {
	Suit  Suit   `json:"suit"`
	Value string `json:"value"`
}

// MarshalJSON encodes the card as {"suit":"♠","value":"10"}.
func (c Card) MarshalJSON() ([]byte, error) {
	if !c.Rank.Valid() {
		return nil, fmt.Errorf("invalid rank %d", int(c.Rank))
	}
	return json.Marshal(wireCard{Suit: c.Suit, Value: c.Rank.String()})
}

// UnmarshalJSON decodes the {"suit","value"} form.
func (c *Card) UnmarshalJSON(data []byte) error {
	var w wireCard
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	rank, err := ParseRank(w.Value)
	if err != nil {
		return err
	}
	*c = Card{Suit: w.Suit, Rank: rank}
	return nil
}

// ParseCard parses a single card such as "10h", "Th", "qs", "A♠" or "10♥".
func ParseCard(raw string) (Card, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Card{}, fmt.Errorf("empty card")
	}
	cards, err := ParseCards(s)
	if err != nil {
		return Card{}, err
	}
	if len(cards) != 1 {
		return Card{}, fmt.Errorf("expected one card in %q, got %d", raw, len(cards))
	}
	return cards[0], nil
}

// ParseCards parses a run of cards, optionally separated by spaces or
// commas, e.g. "AsKs10h" or "A♠, 10♥".
func ParseCards(raw string) ([]Card, error) {
	cards := []Card{}
	s := raw
	for {
		s = strings.TrimLeft(s, " ,")
		if s == "" {
			return cards, nil
		}

		rankLen := 1
		if strings.HasPrefix(s, "10") {
			rankLen = 2
		}
		rank, err := ParseRank(s[:rankLen])
		if err != nil {
			return nil, err
		}
		s = s[rankLen:]

		r, size := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return nil, fmt.Errorf("missing suit after rank %s in %q", rank, raw)
		}
		suit, err := ParseSuit(string(r))
		if err != nil {
			return nil, err
		}
		s = s[size:]

		cards = append(cards, NewCard(suit, rank))
	}
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(raw string) []Card {
	cards, err := ParseCards(raw)
	if err != nil {
		panic(err)
	}
	return cards
}
