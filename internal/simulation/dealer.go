package simulation

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/poker-equity/internal/ranges"
	"github.com/lox/poker-equity/poker"
)

// DefaultMaxAttempts caps rejection sampling for a single seat
const DefaultMaxAttempts = 100_000

// Trial is one complete deal: hole cards for every seat and a full board.
type Trial struct {
	Holes [][2]poker.Card
	Board [5]poker.Card
}

// NewTrial allocates a trial for n seats
func NewTrial(n int) *Trial {
	return &Trial{Holes: make([][2]poker.Card, n)}
}

// Cards returns every card dealt in the trial
func (t *Trial) Cards() []poker.Card {
	cards := make([]poker.Card, 0, 2*len(t.Holes)+len(t.Board))
	for _, h := range t.Holes {
		cards = append(cards, h[0], h[1])
	}
	return append(cards, t.Board[:]...)
}

// Dealer deals trials for a fixed table setup. It holds no per-trial state,
// so one Dealer may serve many goroutines as long as each brings its own
// deck, rng and Trial.
type Dealer struct {
	seats       []Player
	community   []poker.Card
	allowed     ranges.AllowedSet
	maxAttempts int
}

// NewDealer prepares a dealer. Seats beyond len(players) up to playerCount
// are dealt from allowed.
func NewDealer(players []Player, playerCount int, community []poker.Card, allowed ranges.AllowedSet) *Dealer {
	seats := make([]Player, playerCount)
	copy(seats, players)
	for i := len(players); i < playerCount; i++ {
		seats[i] = Ranged(nil)
	}
	return &Dealer{
		seats:       seats,
		community:   community,
		allowed:     allowed,
		maxAttempts: DefaultMaxAttempts,
	}
}

// Seats returns the number of players dealt in
func (d *Dealer) Seats() int {
	return len(d.seats)
}

// DealTrial fills t from deck. It returns the number of rejected draws made
// while sampling range-restricted seats.
func (d *Dealer) DealTrial(deck *poker.Deck, rng *rand.Rand, t *Trial) (int, error) {
	for _, c := range d.community {
		deck.Remove(c)
	}
	for i, seat := range d.seats {
		if seat.Kind == KnownCards {
			deck.Remove(seat.Cards[0])
			deck.Remove(seat.Cards[1])
			t.Holes[i] = seat.Cards
		}
	}

	passes := 0
	for i, seat := range d.seats {
		if seat.Kind == KnownCards {
			continue
		}
		rejected, err := d.dealSeat(deck, rng, i, seat, t)
		passes += rejected
		if err != nil {
			return passes, err
		}
	}

	copy(t.Board[:], d.community)
	for i := len(d.community); i < len(t.Board); i++ {
		c, err := deck.Draw(rng)
		if err != nil {
			return passes, fmt.Errorf("completing board: %w", err)
		}
		t.Board[i] = c
	}
	return passes, nil
}

func (d *Dealer) dealSeat(deck *poker.Deck, rng *rand.Rand, seat int, p Player, t *Trial) (int, error) {
	set := d.allowed
	if p.Range != nil {
		set = *p.Range
	}
	anyTwo := p.Kind == AnyTwo
	if !anyTwo && set.IsEmpty() {
		return 0, fmt.Errorf("%w: seat %d has an empty range", ranges.ErrInvalidRange, seat)
	}

	rejected := 0
	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		c1, c2, err := deck.PickTwo(rng)
		if err != nil {
			return rejected, fmt.Errorf("dealing seat %d: %w", seat, err)
		}
		if anyTwo || set.ContainsCards(c1, c2) {
			deck.Remove(c1)
			deck.Remove(c2)
			t.Holes[seat] = [2]poker.Card{c1, c2}
			return rejected, nil
		}
		rejected++
	}
	return rejected, fmt.Errorf("%w: seat %d: no hand from its %d-hand range could be dealt after %d attempts",
		ranges.ErrInvalidRange, seat, set.Len(), d.maxAttempts)
}
