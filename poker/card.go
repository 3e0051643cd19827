// Package poker holds the card model, the 52-card deck arena and the
// 5-to-7 card hand evaluator used by the equity simulator.
package poker

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// String returns the single-letter suit symbol
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "c"
	case Diamonds:
		return "d"
	case Hearts:
		return "h"
	case Spades:
		return "s"
	default:
		return "?"
	}
}

// Symbol returns the unicode suit glyph
func (s Suit) Symbol() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Rank represents a card rank, 2 through 14 (Ace high)
type Rank uint8

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

// rankChars is indexed by Rank-Two
const rankChars = "23456789TJQKA"

// String returns the single-character rank
func (r Rank) String() string {
	if r < Two || r > Ace {
		return "?"
	}
	return string(rankChars[r-Two])
}

// Valid reports whether r is in 2..14
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// Card is an immutable rank/suit pair
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the two-character form, e.g. "As" or "Td"
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Valid reports whether the card has a real rank and suit
func (c Card) Valid() bool {
	return c.Rank.Valid() && c.Suit <= Spades
}

// Index returns the card's dense position in [0, 52): rank-major, then suit.
func (c Card) Index() int {
	return int(c.Rank-Two)*4 + int(c.Suit)
}

// CardFromIndex is the inverse of Card.Index
func CardFromIndex(i int) Card {
	return Card{Rank: Rank(i/4) + Two, Suit: Suit(i % 4)}
}

// Less orders cards by rank, then suit
func (c Card) Less(other Card) bool {
	if c.Rank != other.Rank {
		return c.Rank < other.Rank
	}
	return c.Suit < other.Suit
}

// ParseCard parses a single card such as "As", "td" or "10h".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "10") {
		s = "T" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card %q: want rank and suit", s)
	}

	rank, err := ParseRank(s[0])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}

	suit, err := parseSuit(s[1])
	if err != nil {
		return Card{}, fmt.Errorf("invalid card %q: %w", s, err)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCards parses concatenated card notation.
// Format: "AsKsQsJsTs", spaces and commas are ignored.
func ParseCards(s string) ([]Card, error) {
	s = strings.NewReplacer(" ", "", ",", "", "10", "T").Replace(s)
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("invalid card string length: %d (must be even)", len(s))
	}

	cards := make([]Card, 0, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		card, err := ParseCard(s[i : i+2])
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		cards = append(cards, card)
	}

	return cards, nil
}

// MustParseCards parses cards and panics on error (for tests)
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(fmt.Sprintf("failed to parse cards '%s': %v", s, err))
	}
	return cards
}

// ParseRank parses a single rank character
func ParseRank(c byte) (Rank, error) {
	if i := strings.IndexByte(rankChars, upper(c)); i >= 0 {
		return Two + Rank(i), nil
	}
	return 0, fmt.Errorf("unknown rank '%c'", c)
}

func parseSuit(c byte) (Suit, error) {
	switch c {
	case 'c', 'C':
		return Clubs, nil
	case 'd', 'D':
		return Diamonds, nil
	case 'h', 'H':
		return Hearts, nil
	case 's', 'S':
		return Spades, nil
	default:
		return 0, fmt.Errorf("unknown suit '%c'", c)
	}
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

// FormatCards joins cards with spaces
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
