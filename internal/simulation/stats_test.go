package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/poker-equity/poker"
)

func TestStatsRecord(t *testing.T) {
	var s Stats
	s.Record(0, poker.Flush, false)
	s.Record(0, poker.Pair, true)
	s.Record(1, poker.Straight, false)
	s.Record(2, poker.FullHouse, false)

	assert.Equal(t, 4, s.Trials)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Ties)
	assert.Equal(t, 1, s.WinsByCategory[poker.Flush])
	assert.Equal(t, 1, s.WinsByCategory[poker.Pair])
	assert.Zero(t, s.WinsByCategory[poker.Straight], "only seat 0 wins are tallied")

	assert.Equal(t, 0.5, s.Equity())
	assert.Equal(t, 0.25, s.TieRate())
	assert.Equal(t, map[poker.Category]float64{
		poker.Flush: 0.25,
		poker.Pair:  0.25,
	}, s.Distribution())
}

func TestStatsEmpty(t *testing.T) {
	var s Stats
	assert.Zero(t, s.Equity())
	assert.Zero(t, s.TieRate())
	assert.Empty(t, s.Distribution())
	lo, hi := s.ConfidenceInterval()
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestStatsMerge(t *testing.T) {
	a := Stats{Trials: 10, Wins: 4, Ties: 1, Passes: 30}
	a.WinsByCategory[poker.Pair] = 4
	b := Stats{Trials: 5, Wins: 2, Passes: 12}
	b.WinsByCategory[poker.Pair] = 1
	b.WinsByCategory[poker.Flush] = 1

	a.Merge(b)
	assert.Equal(t, 15, a.Trials)
	assert.Equal(t, 6, a.Wins)
	assert.Equal(t, 1, a.Ties)
	assert.Equal(t, int64(42), a.Passes)
	assert.Equal(t, 5, a.WinsByCategory[poker.Pair])
	assert.Equal(t, 1, a.WinsByCategory[poker.Flush])
}

func TestStatsRounding(t *testing.T) {
	s := Stats{Trials: 3, Wins: 2}
	s.WinsByCategory[poker.HighCard] = 1
	s.WinsByCategory[poker.TwoPair] = 1

	assert.Equal(t, 0.667, s.Equity())
	assert.Equal(t, 0.333, s.Distribution()[poker.HighCard])
}

func TestDistributionOmitsSharesRoundingToZero(t *testing.T) {
	s := Stats{Trials: 20000, Wins: 8000}
	s.WinsByCategory[poker.Pair] = 7990
	s.WinsByCategory[poker.FourOfAKind] = 9
	s.WinsByCategory[poker.StraightFlush] = 1

	dist := s.Distribution()
	assert.Equal(t, map[poker.Category]float64{poker.Pair: 0.4}, dist)
	for c, share := range dist {
		assert.Positive(t, share, c.String())
	}
}

func TestConfidenceInterval(t *testing.T) {
	s := Stats{Trials: 10000, Wins: 5000}
	lo, hi := s.ConfidenceInterval()
	assert.InDelta(t, 0.4902, lo, 0.0001)
	assert.InDelta(t, 0.5098, hi, 0.0001)

	all := Stats{Trials: 100, Wins: 100}
	lo, hi = all.ConfidenceInterval()
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 1.0, hi)
}
