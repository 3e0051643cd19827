package ranges

import (
	"math/bits"

	"github.com/lox/poker-equity/poker"
)

// AllowedSet is an immutable-by-convention set of starting hands, stored as
// a bitset over poker.StartingHand.Index. Safe for concurrent reads.
type AllowedSet struct {
	bits [3]uint64
}

// FullSet returns the set of all 169 starting hands
func FullSet() AllowedSet {
	var s AllowedSet
	for i := 0; i < poker.NumStartingHands; i++ {
		s.bits[i/64] |= 1 << (i % 64)
	}
	return s
}

// NewAllowedSet builds a set from notations
func NewAllowedSet(hands ...poker.StartingHand) AllowedSet {
	var s AllowedSet
	for _, h := range hands {
		s = s.With(h)
	}
	return s
}

// With returns a copy of s that also contains h
func (s AllowedSet) With(h poker.StartingHand) AllowedSet {
	i := h.Index()
	s.bits[i/64] |= 1 << (i % 64)
	return s
}

// Contains reports whether h is in the set
func (s AllowedSet) Contains(h poker.StartingHand) bool {
	i := h.Index()
	return s.bits[i/64]&(1<<(i%64)) != 0
}

// ContainsCards reports whether two hole cards fall inside the set
func (s AllowedSet) ContainsCards(c1, c2 poker.Card) bool {
	return s.Contains(poker.StartingHandOf(c1, c2))
}

// Len returns the number of notations in the set
func (s AllowedSet) Len() int {
	return bits.OnesCount64(s.bits[0]) + bits.OnesCount64(s.bits[1]) + bits.OnesCount64(s.bits[2])
}

// IsEmpty reports whether no notation is allowed
func (s AllowedSet) IsEmpty() bool {
	return s.bits == [3]uint64{}
}

// IsSubsetOf reports whether every hand in s is also in other
func (s AllowedSet) IsSubsetOf(other AllowedSet) bool {
	for i := range s.bits {
		if s.bits[i]&^other.bits[i] != 0 {
			return false
		}
	}
	return true
}

// Hands lists the members in grid order
func (s AllowedSet) Hands() []poker.StartingHand {
	hands := make([]poker.StartingHand, 0, s.Len())
	for i := 0; i < poker.NumStartingHands; i++ {
		if s.bits[i/64]&(1<<(i%64)) != 0 {
			hands = append(hands, poker.StartingHandFromIndex(i))
		}
	}
	return hands
}

// Combos returns how many concrete two-card combinations the set covers
func (s AllowedSet) Combos() int {
	total := 0
	for _, h := range s.Hands() {
		total += h.Combos()
	}
	return total
}
