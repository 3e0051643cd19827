package poker

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidHand is returned when a hand cannot be evaluated.
var ErrInvalidHand = errors.New("invalid hand")

// Category enumerates the categories of poker hands ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// NumCategories is the number of distinct categories
const NumCategories = int(StraightFlush) + 1

// Categories lists every category, weakest first
var Categories = [NumCategories]Category{
	HighCard, Pair, TwoPair, ThreeOfAKind, Straight, Flush, FullHouse, FourOfAKind, StraightFlush,
}

// String returns the category name
func (c Category) String() string {
	switch c {
	case HighCard:
		return "HighCard"
	case Pair:
		return "Pair"
	case TwoPair:
		return "TwoPair"
	case ThreeOfAKind:
		return "ThreeOfAKind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "FullHouse"
	case FourOfAKind:
		return "FourOfAKind"
	case StraightFlush:
		return "StraightFlush"
	default:
		return "Unknown"
	}
}

// Label returns a human-readable category name
func (c Category) Label() string {
	switch c {
	case HighCard:
		return "High Card"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return c.String()
	}
}

// ParseCategory is the inverse of Category.String
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown hand category %q", s)
}

// MarshalText encodes the category by name
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a category name
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Score is an evaluated hand: a category and the tie-break ranks,
// most significant first. Unused tie-break slots are zero, so Scores of the
// same category compare element-wise over the whole array.
type Score struct {
	Category Category
	tiebreak [5]Rank
	n        uint8
}

func newScore(category Category, ranks ...Rank) Score {
	s := Score{Category: category, n: uint8(len(ranks))}
	copy(s.tiebreak[:], ranks)
	return s
}

// TieBreak returns the ordered tie-break ranks
func (s Score) TieBreak() []Rank {
	return slices.Clone(s.tiebreak[:s.n])
}

// Compare returns 1 if s beats other, -1 if other beats s and 0 on a tie.
func (s Score) Compare(other Score) int {
	if s.Category != other.Category {
		if s.Category > other.Category {
			return 1
		}
		return -1
	}
	for i := range s.tiebreak {
		if s.tiebreak[i] != other.tiebreak[i] {
			if s.tiebreak[i] > other.tiebreak[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// String renders e.g. "Straight [5]"
func (s Score) String() string {
	return fmt.Sprintf("%s %v", s.Category, s.tiebreak[:s.n])
}

// UnclassifiableHandError reports a hand that matched no category. It can
// only happen if the evaluator itself is broken.
type UnclassifiableHandError struct {
	Cards []Card
}

func (e *UnclassifiableHandError) Error() string {
	return fmt.Sprintf("evaluator invariant violated: no category matched hand [%s]", FormatCards(e.Cards))
}

// rankGroup is one entry of a hand's shape: how many cards share a rank.
type rankGroup struct {
	count int
	rank  Rank
}

// profile is everything the category checks need, computed once per hand.
type profile struct {
	cards    []Card
	shape    []rankGroup // count desc, then rank desc
	distinct []Rank      // desc
	suited   []Rank      // ranks of the flush suit, desc; nil without a flush
}

func newProfile(cards []Card) profile {
	var counts [Ace + 1]int
	var suits [4][]Rank
	for _, c := range cards {
		counts[c.Rank]++
		suits[c.Suit] = append(suits[c.Suit], c.Rank)
	}

	p := profile{cards: cards}
	for r := Ace; r >= Two; r-- {
		if counts[r] > 0 {
			p.shape = append(p.shape, rankGroup{count: counts[r], rank: r})
			p.distinct = append(p.distinct, r)
		}
	}
	slices.SortStableFunc(p.shape, func(a, b rankGroup) int {
		return b.count - a.count
	})

	for _, ranks := range suits {
		if len(ranks) >= 5 {
			slices.SortFunc(ranks, func(a, b Rank) int { return int(b) - int(a) })
			p.suited = ranks
			break
		}
	}
	return p
}

// ranksExcept returns distinct ranks, desc, skipping the given ones.
func (p *profile) ranksExcept(skip ...Rank) []Rank {
	out := make([]Rank, 0, len(p.distinct))
	for _, r := range p.distinct {
		if !slices.Contains(skip, r) {
			out = append(out, r)
		}
	}
	return out
}

func (p *profile) top(i int) rankGroup {
	if i < len(p.shape) {
		return p.shape[i]
	}
	return rankGroup{}
}

// straightHigh returns the top card of the best five-card run in ranks
// (desc, distinct). The wheel reports Five.
func straightHigh(ranks []Rank) (Rank, bool) {
	for i := 0; i+4 < len(ranks); i++ {
		if ranks[i]-ranks[i+4] == 4 {
			return ranks[i], true
		}
	}
	if len(ranks) >= 5 && ranks[0] == Ace {
		// Ace plays low: A-2-3-4-5
		tail := ranks[len(ranks)-4:]
		if tail[0] == Five && tail[3] == Two {
			return Five, true
		}
	}
	return 0, false
}

type categoryCheck func(p *profile) (Score, bool)

// checks run strongest first; the first match wins.
var checks = []categoryCheck{
	checkStraightFlush,
	checkFourOfAKind,
	checkFullHouse,
	checkFlush,
	checkStraight,
	checkThreeOfAKind,
	checkTwoPair,
	checkPair,
	checkHighCard,
}

func checkStraightFlush(p *profile) (Score, bool) {
	if p.suited == nil {
		return Score{}, false
	}
	if high, ok := straightHigh(p.suited); ok {
		return newScore(StraightFlush, high), true
	}
	return Score{}, false
}

func checkFourOfAKind(p *profile) (Score, bool) {
	quad := p.top(0)
	if quad.count != 4 {
		return Score{}, false
	}
	return newScore(FourOfAKind, quad.rank, p.ranksExcept(quad.rank)[0]), true
}

func checkFullHouse(p *profile) (Score, bool) {
	trips, pair := p.top(0), p.top(1)
	if trips.count != 3 || pair.count < 2 {
		return Score{}, false
	}
	return newScore(FullHouse, trips.rank, pair.rank), true
}

func checkFlush(p *profile) (Score, bool) {
	if p.suited == nil {
		return Score{}, false
	}
	return newScore(Flush, p.suited[:5]...), true
}

func checkStraight(p *profile) (Score, bool) {
	if high, ok := straightHigh(p.distinct); ok {
		return newScore(Straight, high), true
	}
	return Score{}, false
}

func checkThreeOfAKind(p *profile) (Score, bool) {
	trips := p.top(0)
	if trips.count != 3 {
		return Score{}, false
	}
	kickers := p.ranksExcept(trips.rank)
	return newScore(ThreeOfAKind, trips.rank, kickers[0], kickers[1]), true
}

// checkTwoPair also covers three pairs: the third pair competes with the
// singletons for the kicker.
func checkTwoPair(p *profile) (Score, bool) {
	high, low := p.top(0), p.top(1)
	if high.count != 2 || low.count != 2 {
		return Score{}, false
	}
	kicker := p.ranksExcept(high.rank, low.rank)[0]
	return newScore(TwoPair, high.rank, low.rank, kicker), true
}

func checkPair(p *profile) (Score, bool) {
	pair := p.top(0)
	if pair.count != 2 {
		return Score{}, false
	}
	kickers := p.ranksExcept(pair.rank)
	return newScore(Pair, pair.rank, kickers[0], kickers[1], kickers[2]), true
}

func checkHighCard(p *profile) (Score, bool) {
	if p.top(0).count != 1 || len(p.distinct) < 5 {
		return Score{}, false
	}
	return newScore(HighCard, p.distinct[:5]...), true
}

// Evaluate classifies a 5 to 7 card hand.
func Evaluate(cards []Card) (Score, error) {
	if len(cards) < 5 || len(cards) > 7 {
		return Score{}, fmt.Errorf("%w: got %d cards, need 5 to 7", ErrInvalidHand, len(cards))
	}
	var seen uint64
	for _, c := range cards {
		if !c.Rank.Valid() || c.Suit > Spades {
			return Score{}, fmt.Errorf("%w: card out of range (rank %d, suit %d)", ErrInvalidHand, c.Rank, c.Suit)
		}
		bit := uint64(1) << c.Index()
		if seen&bit != 0 {
			return Score{}, fmt.Errorf("%w: duplicate card %s", ErrInvalidHand, c)
		}
		seen |= bit
	}

	p := newProfile(cards)
	for _, check := range checks {
		if score, ok := check(&p); ok {
			return score, nil
		}
	}
	return Score{}, &UnclassifiableHandError{Cards: slices.Clone(cards)}
}

// MustEvaluate evaluates a hand and panics on error (for tests)
func MustEvaluate(cards []Card) Score {
	score, err := Evaluate(cards)
	if err != nil {
		panic(err)
	}
	return score
}

// BestIndex returns the index of the strongest score. Equal scores resolve
// to the lowest index. It returns -1 for an empty slice.
func BestIndex(scores []Score) int {
	if len(scores) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Compare(scores[best]) > 0 {
			best = i
		}
	}
	return best
}
