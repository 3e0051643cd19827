package simulation

import (
	"context"
	"fmt"

	"github.com/lox/poker-equity/internal/randutil"
	"github.com/lox/poker-equity/internal/ranges"
	"github.com/lox/poker-equity/poker"
)

// GenerateOptions controls range table generation
type GenerateOptions struct {
	Opponents int
	Trials    int
	Seed      int64
	Workers   int
	// Progress, if set, is called after each starting hand completes
	Progress func(done, total int, hand poker.StartingHand)
}

// GenerateTable measures the win rate of every starting hand against
// random opponents and builds a range table from the results. Each hand
// runs with its own nonzero seed drawn from a stream seeded by opts.Seed,
// so the table is reproducible for any fixed nonzero seed.
func GenerateTable(ctx context.Context, engine *Engine, opts GenerateOptions) (*ranges.Table, error) {
	if opts.Opponents < 1 {
		return nil, fmt.Errorf("%w: need at least 1 opponent, got %d", ErrInvalidSetup, opts.Opponents)
	}
	seeds := randutil.New(randutil.Seed(opts.Seed))

	hands := poker.AllStartingHands()
	rates := make(map[poker.StartingHand]float64, len(hands))
	for i, h := range hands {
		c1, c2 := h.Cards()
		// zero would make Run pick a time-based seed
		seed := seeds.Int64()
		for seed == 0 {
			seed = seeds.Int64()
		}
		res, err := engine.Run(ctx, Request{
			Players:       []Player{Known(c1, c2)},
			PlayerCount:   opts.Opponents + 1,
			MaxTrials:     opts.Trials,
			RangeFraction: 1.0,
			Seed:          seed,
			Workers:       opts.Workers,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", h, err)
		}
		if res.State == Cancelled {
			return nil, fmt.Errorf("generating %s: %w", h, ctx.Err())
		}
		rates[h] = float64(res.Stats.Wins) / float64(res.Stats.Trials)
		if opts.Progress != nil {
			opts.Progress(i+1, len(hands), h)
		}
	}
	return ranges.NewTable(rates)
}
