package simulation

import (
	"fmt"
	"strings"

	"github.com/lox/poker-equity/internal/ranges"
	"github.com/lox/poker-equity/poker"
)

// PlayerKind says how a seat receives its hole cards
type PlayerKind uint8

const (
	// InRange seats are dealt a hand from an AllowedSet
	InRange PlayerKind = iota
	// KnownCards seats hold fixed hole cards
	KnownCards
	// AnyTwo seats are dealt uniformly at random
	AnyTwo
)

func (k PlayerKind) String() string {
	switch k {
	case InRange:
		return "range"
	case KnownCards:
		return "known"
	case AnyTwo:
		return "random"
	default:
		return "unknown"
	}
}

// Player is one seat at the table
type Player struct {
	Kind  PlayerKind
	Cards [2]poker.Card
	// Range overrides the run's AllowedSet for an InRange seat
	Range *ranges.AllowedSet
}

// Known returns a seat with fixed hole cards
func Known(c1, c2 poker.Card) Player {
	return Player{Kind: KnownCards, Cards: [2]poker.Card{c1, c2}}
}

// Ranged returns a seat dealt from set, or from the run's AllowedSet when set is nil
func Ranged(set *ranges.AllowedSet) Player {
	return Player{Kind: InRange, Range: set}
}

// Random returns a seat dealt any two cards
func Random() Player {
	return Player{Kind: AnyTwo}
}

func (p Player) String() string {
	switch p.Kind {
	case KnownCards:
		return p.Cards[0].String() + p.Cards[1].String()
	case InRange:
		if p.Range != nil {
			return fmt.Sprintf("range(%d)", p.Range.Len())
		}
		return "range"
	default:
		return p.Kind.String()
	}
}

// ParsePlayer accepts hole cards ("AsKd"), "random"/"?" for any two cards,
// or "range"/"*" for the run's opponent range.
func ParsePlayer(s string) (Player, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "random", "any", "?", "??":
		return Random(), nil
	case "range", "*":
		return Ranged(nil), nil
	}

	cards, err := poker.ParseCards(s)
	if err != nil {
		return Player{}, fmt.Errorf("player %q: %w", s, err)
	}
	if len(cards) != 2 {
		return Player{}, fmt.Errorf("player %q: must contain exactly 2 cards, got %d", s, len(cards))
	}
	return Known(cards[0], cards[1]), nil
}
