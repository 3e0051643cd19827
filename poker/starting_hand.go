package poker

import (
	"fmt"
	"strings"
)

// NumStartingHands is the number of distinct two-card starting hands once
// suits are abstracted to suited/offsuit/pair.
const NumStartingHands = 169

// StartingHand is the canonical notation of two hole cards, e.g. "AKs",
// "72o" or "TT". High >= Low always holds.
type StartingHand struct {
	High   Rank
	Low    Rank
	Suited bool
}

// StartingHandOf abstracts two concrete cards to their notation
func StartingHandOf(c1, c2 Card) StartingHand {
	high, low := c1.Rank, c2.Rank
	if low > high {
		high, low = low, high
	}
	return StartingHand{High: high, Low: low, Suited: high != low && c1.Suit == c2.Suit}
}

// IsPair reports whether both cards share a rank
func (h StartingHand) IsPair() bool {
	return h.High == h.Low
}

// String returns the notation, e.g. "AKs", "AKo", "AA"
func (h StartingHand) String() string {
	if h.IsPair() {
		return h.High.String() + h.Low.String()
	}
	suffix := "o"
	if h.Suited {
		suffix = "s"
	}
	return h.High.String() + h.Low.String() + suffix
}

// Index maps the hand onto the 13x13 starting-hand grid: pairs on the
// diagonal, suited hands above it, offsuit hands below. Result is in [0, 169).
func (h StartingHand) Index() int {
	row, col := int(Ace-h.High), int(Ace-h.Low)
	if !h.Suited {
		row, col = col, row
	}
	return row*13 + col
}

// StartingHandFromIndex is the inverse of StartingHand.Index
func StartingHandFromIndex(i int) StartingHand {
	row, col := i/13, i%13
	r1, r2 := Ace-Rank(row), Ace-Rank(col)
	switch {
	case r1 == r2:
		return StartingHand{High: r1, Low: r2}
	case r1 > r2:
		return StartingHand{High: r1, Low: r2, Suited: true}
	default:
		return StartingHand{High: r2, Low: r1}
	}
}

// Combos returns how many concrete card pairs the notation stands for
func (h StartingHand) Combos() int {
	switch {
	case h.IsPair():
		return 6
	case h.Suited:
		return 4
	default:
		return 12
	}
}

// Cards returns one concrete pair of hole cards for the notation: the high
// card is a spade, the low card a spade when suited and a heart otherwise.
func (h StartingHand) Cards() (Card, Card) {
	low := Hearts
	if h.Suited {
		low = Spades
	}
	return NewCard(h.High, Spades), NewCard(h.Low, low)
}

// AllStartingHands returns all 169 notations in grid order
func AllStartingHands() []StartingHand {
	hands := make([]StartingHand, NumStartingHands)
	for i := range hands {
		hands[i] = StartingHandFromIndex(i)
	}
	return hands
}

// ParseStartingHand parses notation such as "AKs", "ka O", "TT" or "QQo".
// Rank order does not matter; unpaired hands need an s/o suffix.
func ParseStartingHand(s string) (StartingHand, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if len(s) < 2 || len(s) > 3 {
		return StartingHand{}, fmt.Errorf("invalid starting hand %q", s)
	}

	r1, err := ParseRank(s[0])
	if err != nil {
		return StartingHand{}, fmt.Errorf("invalid starting hand %q: %w", s, err)
	}
	r2, err := ParseRank(s[1])
	if err != nil {
		return StartingHand{}, fmt.Errorf("invalid starting hand %q: %w", s, err)
	}
	if r2 > r1 {
		r1, r2 = r2, r1
	}
	h := StartingHand{High: r1, Low: r2}

	if len(s) == 2 {
		if !h.IsPair() {
			return StartingHand{}, fmt.Errorf("invalid starting hand %q: unpaired hands need an s or o suffix", s)
		}
		return h, nil
	}

	switch upper(s[2]) {
	case 'S':
		if h.IsPair() {
			return StartingHand{}, fmt.Errorf("invalid starting hand %q: pairs cannot be suited", s)
		}
		h.Suited = true
	case 'O':
	default:
		return StartingHand{}, fmt.Errorf("invalid starting hand %q: unknown modifier %q", s, s[2])
	}
	return h, nil
}

// MustParseStartingHand parses notation and panics on error (for tests)
func MustParseStartingHand(s string) StartingHand {
	h, err := ParseStartingHand(s)
	if err != nil {
		panic(err)
	}
	return h
}
