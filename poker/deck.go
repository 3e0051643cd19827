package poker

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrDeckExhausted is returned when a draw asks for more cards than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Deck is a 52-slot arena. Live cards occupy cards[:n]; removal swaps the
// removed card with the last live slot so every operation is O(1).
type Deck struct {
	cards [52]Card
	pos   [52]int8 // slot of each card by Card.Index, -1 once removed
	n     int
}

// NewDeck returns a full, ordered deck
func NewDeck() Deck {
	var d Deck
	for i := range d.cards {
		d.cards[i] = CardFromIndex(i)
		d.pos[i] = int8(i)
	}
	d.n = len(d.cards)
	return d
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return d.n
}

// Contains reports whether card is still in the deck. Cards outside the
// 52-card range are never contained.
func (d *Deck) Contains(card Card) bool {
	return card.Valid() && d.pos[card.Index()] >= 0
}

// Remove takes a known card out of the deck. Removing an absent or invalid
// card is a no-op and reports false.
func (d *Deck) Remove(card Card) bool {
	if !card.Valid() {
		return false
	}
	slot := int(d.pos[card.Index()])
	if slot < 0 {
		return false
	}
	d.removeAt(slot)
	return true
}

// At returns the live card in slot i, 0 <= i < Len().
func (d *Deck) At(i int) Card {
	return d.cards[i]
}

// Draw removes and returns a uniformly random card.
func (d *Deck) Draw(rng *rand.Rand) (Card, error) {
	if d.n == 0 {
		return Card{}, fmt.Errorf("%w: no cards left to draw", ErrDeckExhausted)
	}
	card := d.cards[rng.IntN(d.n)]
	d.Remove(card)
	return card, nil
}

// PickTwo returns two distinct random live cards without removing them.
func (d *Deck) PickTwo(rng *rand.Rand) (Card, Card, error) {
	if d.n < 2 {
		return Card{}, Card{}, fmt.Errorf("%w: need 2 cards, %d left", ErrDeckExhausted, d.n)
	}
	idx1 := rng.IntN(d.n)
	idx2 := rng.IntN(d.n - 1)
	if idx2 >= idx1 {
		idx2++
	}
	return d.cards[idx1], d.cards[idx2], nil
}

func (d *Deck) removeAt(slot int) {
	last := d.n - 1
	removed := d.cards[slot]
	moved := d.cards[last]

	d.cards[slot] = moved
	d.pos[moved.Index()] = int8(slot)

	d.cards[last] = removed
	d.pos[removed.Index()] = -1
	d.n--
}
