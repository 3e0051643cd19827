package simulation

import (
	"math"

	"github.com/lox/poker-equity/poker"
)

// Stats holds running totals for the tracked player (seat 0).
type Stats struct {
	Trials         int                      `json:"trials"`
	Wins           int                      `json:"wins"`
	Ties           int                      `json:"ties"` // wins that were shared with another seat
	Passes         int64                    `json:"passes"`
	WinsByCategory [poker.NumCategories]int `json:"-"`
}

// Record tallies one trial. winner is the seat awarded the trial, category
// the winning hand's category, and shared whether another seat held an
// equal hand.
func (s *Stats) Record(winner int, category poker.Category, shared bool) {
	s.Trials++
	if winner != 0 {
		return
	}
	s.Wins++
	s.WinsByCategory[category]++
	if shared {
		s.Ties++
	}
}

// Merge adds another worker's totals
func (s *Stats) Merge(other Stats) {
	s.Trials += other.Trials
	s.Wins += other.Wins
	s.Ties += other.Ties
	s.Passes += other.Passes
	for i := range s.WinsByCategory {
		s.WinsByCategory[i] += other.WinsByCategory[i]
	}
}

// Equity returns wins / trials rounded to three decimals
func (s Stats) Equity() float64 {
	if s.Trials == 0 {
		return 0
	}
	return round3(float64(s.Wins) / float64(s.Trials))
}

// TieRate returns shared wins / trials rounded to three decimals
func (s Stats) TieRate() float64 {
	if s.Trials == 0 {
		return 0
	}
	return round3(float64(s.Ties) / float64(s.Trials))
}

// Distribution returns, for each category the tracked player won with, the
// share of all trials won that way. Categories whose share rounds to zero
// are omitted.
func (s Stats) Distribution() map[poker.Category]float64 {
	dist := make(map[poker.Category]float64)
	if s.Trials == 0 {
		return dist
	}
	for _, c := range poker.Categories {
		if share := round3(float64(s.WinsByCategory[c]) / float64(s.Trials)); share > 0 {
			dist[c] = share
		}
	}
	return dist
}

// ConfidenceInterval returns the 95% interval for the unrounded equity
func (s Stats) ConfidenceInterval() (lower, upper float64) {
	if s.Trials == 0 {
		return 0, 0
	}
	n := float64(s.Trials)
	p := float64(s.Wins) / n

	// Standard error for binomial proportion
	margin := 1.96 * math.Sqrt(p*(1-p)/n)
	return math.Max(0, p-margin), math.Min(1, p+margin)
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}
