// Package ranges turns a table of starting-hand win rates into opponent
// range filters.
package ranges

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/lox/poker-equity/poker"
)

var (
	// ErrInvalidRange is returned for a range fraction outside (0, 1] or a
	// range that cannot be dealt.
	ErrInvalidRange = errors.New("invalid range")

	// ErrMalformedTable is returned when range data cannot be used.
	ErrMalformedTable = errors.New("malformed range table")
)

// Table maps every starting hand to an empirical win rate. It is read-only
// after construction and safe to share between goroutines.
type Table struct {
	rates  [poker.NumStartingHands]float64
	ranked []poker.StartingHand // ascending win rate, ties broken by grid index
}

// NewTable builds a table from a complete notation -> win rate mapping.
func NewTable(rates map[poker.StartingHand]float64) (*Table, error) {
	if len(rates) != poker.NumStartingHands {
		return nil, fmt.Errorf("%w: have %d starting hands, need %d",
			ErrMalformedTable, len(rates), poker.NumStartingHands)
	}

	t := &Table{ranked: make([]poker.StartingHand, 0, poker.NumStartingHands)}
	for h, rate := range rates {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
			return nil, fmt.Errorf("%w: %s has invalid win rate %v", ErrMalformedTable, h, rate)
		}
		t.rates[h.Index()] = rate
		t.ranked = append(t.ranked, h)
	}

	slices.SortFunc(t.ranked, func(a, b poker.StartingHand) int {
		ra, rb := t.rates[a.Index()], t.rates[b.Index()]
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		}
		// equal rates: lower grid index counts as stronger
		return b.Index() - a.Index()
	})

	return t, nil
}

// Len returns the number of notations in the table
func (t *Table) Len() int {
	return len(t.ranked)
}

// WinRate returns the table value for h
func (t *Table) WinRate(h poker.StartingHand) float64 {
	return t.rates[h.Index()]
}

// Strongest returns all notations, strongest first
func (t *Table) Strongest() []poker.StartingHand {
	out := slices.Clone(t.ranked)
	slices.Reverse(out)
	return out
}

// Map returns the table as notation strings -> win rate
func (t *Table) Map() map[string]float64 {
	m := make(map[string]float64, len(t.ranked))
	for _, h := range t.ranked {
		m[h.String()] = t.WinRate(h)
	}
	return m
}

// AllowedHands returns the strongest floor(fraction*169) notations. Any
// positive fraction keeps at least the single strongest hand.
func (t *Table) AllowedHands(fraction float64) (AllowedSet, error) {
	if math.IsNaN(fraction) || fraction <= 0 || fraction > 1 {
		return AllowedSet{}, fmt.Errorf("%w: fraction %v is outside (0, 1]", ErrInvalidRange, fraction)
	}

	take := max(int(math.Floor(fraction*float64(len(t.ranked)))), 1)

	var set AllowedSet
	for _, h := range t.ranked[len(t.ranked)-take:] {
		set = set.With(h)
	}
	return set, nil
}
