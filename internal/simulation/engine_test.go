package simulation

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/poker-equity/internal/ranges"
	"github.com/lox/poker-equity/poker"
)

func hero(s string) Player {
	p, err := ParsePlayer(s)
	if err != nil {
		panic(err)
	}
	return p
}

func TestRunEquity(t *testing.T) {
	tests := []struct {
		name        string
		players     []Player
		board       string
		count       int
		expectedMin float64
		expectedMax float64
	}{
		{
			name:        "aces heads up",
			players:     []Player{hero("AsAd")},
			count:       2,
			expectedMin: 0.82,
			expectedMax: 0.89,
		},
		{
			name:        "aces eight handed",
			players:     []Player{hero("AsAd")},
			count:       8,
			expectedMin: 0.36,
			expectedMax: 0.42, // about 0.389, of which ~0.005 is split pots
		},
		{
			name:        "seven deuce heads up",
			players:     []Player{hero("7h2c")},
			count:       2,
			expectedMin: 0.30,
			expectedMax: 0.42, // seat 0 is credited with split pots
		},
		{
			name:        "made royal flush",
			players:     []Player{hero("AsKs")},
			board:       "QsJsTs",
			count:       4,
			expectedMin: 1.0,
			expectedMax: 1.0,
		},
	}

	engine := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var board []poker.Card
			if tt.board != "" {
				board = poker.MustParseCards(tt.board)
			}
			res, err := engine.Run(context.Background(), Request{
				Players:       tt.players,
				Community:     board,
				PlayerCount:   tt.count,
				MaxTrials:     20000,
				RangeFraction: 1.0,
				Seed:          42,
				Workers:       4,
			})
			require.NoError(t, err)
			assert.Equal(t, Completed, res.State)
			assert.Equal(t, 20000, res.Stats.Trials)
			assert.GreaterOrEqual(t, res.Equity, tt.expectedMin)
			assert.LessOrEqual(t, res.Equity, tt.expectedMax)
			assert.Equal(t, poker.NumStartingHands, res.AllowedHands)
			assert.NotEmpty(t, res.RunID)
		})
	}
}

func TestRunDistributionSumsToEquity(t *testing.T) {
	res, err := New(nil).Run(context.Background(), Request{
		Players:       []Player{hero("KhQh")},
		PlayerCount:   3,
		MaxTrials:     5000,
		RangeFraction: 1.0,
		Seed:          5,
	})
	require.NoError(t, err)

	sum := 0
	for _, n := range res.Stats.WinsByCategory {
		sum += n
	}
	assert.Equal(t, res.Stats.Wins, sum)

	var dist float64
	for c, share := range res.Distribution {
		assert.Positive(t, share, c.String())
		dist += share
	}
	assert.InDelta(t, res.Equity, dist, 0.01)
}

func TestRunValidation(t *testing.T) {
	aces := []Player{hero("AsAd")}
	tests := []struct {
		name string
		req  Request
		err  error
	}{
		{"one player", Request{Players: aces, PlayerCount: 1, MaxTrials: 10, RangeFraction: 1}, ErrInvalidSetup},
		{"too many players for the deck", Request{PlayerCount: 24, MaxTrials: 10, RangeFraction: 1}, poker.ErrDeckExhausted},
		{"more players listed than seats", Request{Players: []Player{hero("AsAd"), hero("KsKd"), Random()}, PlayerCount: 2, MaxTrials: 10, RangeFraction: 1}, ErrInvalidSetup},
		{"six community cards", Request{Players: aces, Community: poker.MustParseCards("2c3c4c5c6c7c"), PlayerCount: 2, MaxTrials: 10, RangeFraction: 1}, ErrInvalidSetup},
		{"no trials", Request{Players: aces, PlayerCount: 2, RangeFraction: 1}, ErrInvalidSetup},
		{"duplicate known card", Request{Players: []Player{hero("AsAd"), hero("AsKd")}, PlayerCount: 2, MaxTrials: 10, RangeFraction: 1}, poker.ErrDeckExhausted},
		{"hole card on the board", Request{Players: aces, Community: poker.MustParseCards("Ad7c2h"), PlayerCount: 2, MaxTrials: 10, RangeFraction: 1}, poker.ErrDeckExhausted},
		{"bad card", Request{Players: []Player{Known(poker.Card{Rank: 1}, poker.NewCard(poker.Two, poker.Clubs))}, PlayerCount: 2, MaxTrials: 10, RangeFraction: 1}, ErrInvalidSetup},
		{"zero range fraction", Request{Players: aces, PlayerCount: 2, MaxTrials: 10}, ranges.ErrInvalidRange},
		{"range fraction above one", Request{Players: aces, PlayerCount: 2, MaxTrials: 10, RangeFraction: 1.5}, ranges.ErrInvalidRange},
	}

	engine := New(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := engine.Run(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.err)
			assert.Nil(t, res)
		})
	}
}

func TestRunDuplicateCardMessage(t *testing.T) {
	_, err := New(nil).Run(context.Background(), Request{
		Players:       []Player{hero("AsAd"), hero("AsKd")},
		PlayerCount:   2,
		MaxTrials:     10,
		RangeFraction: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate card As in known hands")
}

func TestRunDeterministic(t *testing.T) {
	for _, workers := range []int{1, 3} {
		req := Request{
			Players:       []Player{hero("JhTh")},
			Community:     poker.MustParseCards("9h8c2d"),
			PlayerCount:   4,
			MaxTrials:     3000,
			RangeFraction: 0.3,
			Seed:          1234,
			Workers:       workers,
		}
		a, err := New(nil).Run(context.Background(), req)
		require.NoError(t, err)
		b, err := New(nil).Run(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, a.Stats, b.Stats, "workers=%d", workers)
		assert.Equal(t, int64(1234), a.Seed)
		assert.NotEqual(t, a.RunID, b.RunID)
	}
}

func TestRunParallelCoversAllTrials(t *testing.T) {
	res, err := New(nil, WithBatchSize(16)).Run(context.Background(), Request{
		Players:       []Player{hero("QdQc")},
		PlayerCount:   5,
		MaxTrials:     1001,
		RangeFraction: 0.5,
		Seed:          9,
		Workers:       7,
	})
	require.NoError(t, err)
	assert.Equal(t, Completed, res.State)
	assert.Equal(t, 1001, res.Stats.Trials)
	assert.Positive(t, res.Stats.Passes, "a half range rejects some draws")
}

func TestRunStopsAfterDeadline(t *testing.T) {
	clock := quartz.NewMock(t)
	premium := ranges.NewAllowedSet(
		poker.MustParseStartingHand("AA"),
		poker.MustParseStartingHand("KK"),
		poker.MustParseStartingHand("QQ"),
	)
	engine := New(nil, WithClock(clock), WithPassThreshold(100))

	res, err := engine.Run(context.Background(), Request{
		Players:     []Player{hero("7c2d")},
		PlayerCount: 3,
		MaxTrials:   1_000_000,
		Deadline:    clock.Now().Add(-time.Second),
		Allowed:     &premium,
		Seed:        77,
	})
	require.NoError(t, err)
	assert.Equal(t, DeadlineExceeded, res.State)
	assert.Greater(t, res.Stats.Passes, int64(100))
	assert.Less(t, res.Stats.Trials, 100)
	assert.Equal(t, 3, res.AllowedHands)
}

func TestRunDeadlineNeedsPasses(t *testing.T) {
	// A full range never rejects a draw, so the deadline alone cannot stop it
	clock := quartz.NewMock(t)
	engine := New(nil, WithClock(clock), WithPassThreshold(100))

	res, err := engine.Run(context.Background(), Request{
		Players:       []Player{hero("AhKh")},
		PlayerCount:   3,
		MaxTrials:     2000,
		Deadline:      clock.Now().Add(-time.Hour),
		RangeFraction: 1.0,
		Seed:          1,
	})
	require.NoError(t, err)
	assert.Equal(t, Completed, res.State)
	assert.Equal(t, 2000, res.Stats.Trials)
	assert.Zero(t, res.Stats.Passes)
}

func TestRunDeadlineNotReached(t *testing.T) {
	clock := quartz.NewMock(t)
	engine := New(nil, WithClock(clock), WithPassThreshold(0))

	res, err := engine.Run(context.Background(), Request{
		Players:       []Player{hero("AhKh")},
		PlayerCount:   6,
		MaxTrials:     500,
		Deadline:      clock.Now().Add(time.Hour),
		RangeFraction: 0.1,
		Seed:          3,
	})
	require.NoError(t, err)
	assert.Equal(t, Completed, res.State)
	assert.Equal(t, 500, res.Stats.Trials)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		res, err := New(nil, WithBatchSize(8)).Run(ctx, Request{
			Players:       []Player{hero("AsAd")},
			PlayerCount:   2,
			MaxTrials:     100_000,
			RangeFraction: 1.0,
			Workers:       workers,
		})
		require.NoError(t, err)
		assert.Equal(t, Cancelled, res.State, "workers=%d", workers)
		assert.Less(t, res.Stats.Trials, 100_000)
	}
}

func TestRunUnsatisfiableRangeFails(t *testing.T) {
	aces := ranges.NewAllowedSet(poker.MustParseStartingHand("AA"))
	_, err := New(nil, WithMaxAttempts(500)).Run(context.Background(), Request{
		Players:     []Player{hero("AsAd")},
		Community:   poker.MustParseCards("Ah"),
		PlayerCount: 2,
		MaxTrials:   10,
		Allowed:     &aces,
		Workers:     2,
	})
	require.ErrorIs(t, err, ranges.ErrInvalidRange)
}

func TestRunProgressAndLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	var last atomic.Int64
	engine := New(nil,
		WithLogger(logger),
		WithProgress(func(done, total int) {
			assert.Equal(t, 400, total)
			last.Store(int64(done))
		}),
	)
	res, err := engine.Run(context.Background(), Request{
		Players:       []Player{hero("9s9c")},
		PlayerCount:   3,
		MaxTrials:     400,
		RangeFraction: 1.0,
		Workers:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(400), last.Load())
	assert.Contains(t, buf.String(), "starting simulation")
	assert.Contains(t, buf.String(), "simulation finished")
	assert.Contains(t, buf.String(), res.RunID)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "deadline_exceeded", DeadlineExceeded.String())
	assert.Equal(t, "cancelled", Cancelled.String())
	assert.Equal(t, "unknown", State(99).String())
}
