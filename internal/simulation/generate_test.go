package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/poker-equity/poker"
)

func TestGenerateTable(t *testing.T) {
	calls := 0
	table, err := GenerateTable(context.Background(), New(nil), GenerateOptions{
		Opponents: 1,
		Trials:    400,
		Seed:      42,
		Workers:   2,
		Progress: func(done, total int, _ poker.StartingHand) {
			calls++
			assert.Equal(t, calls, done)
			assert.Equal(t, poker.NumStartingHands, total)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, poker.NumStartingHands, calls)
	assert.Equal(t, poker.NumStartingHands, table.Len())

	aces := table.WinRate(poker.MustParseStartingHand("AA"))
	trash := table.WinRate(poker.MustParseStartingHand("72o"))
	assert.Greater(t, aces, 0.75)
	assert.Greater(t, aces, trash)

	top, err := table.AllowedHands(0.05)
	require.NoError(t, err)
	assert.True(t, top.Contains(poker.MustParseStartingHand("AA")))
	assert.False(t, top.Contains(poker.MustParseStartingHand("72o")))
}

func TestGenerateTableIsReproducible(t *testing.T) {
	for _, seed := range []int64{-5, -1, 1} {
		opts := GenerateOptions{Opponents: 2, Trials: 20, Seed: seed, Workers: 1}
		first, err := GenerateTable(context.Background(), New(nil), opts)
		require.NoError(t, err)
		second, err := GenerateTable(context.Background(), New(nil), opts)
		require.NoError(t, err)
		assert.Equal(t, first.Map(), second.Map(), "seed %d", seed)
	}
}

func TestGenerateTableCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := GenerateTable(ctx, New(nil), GenerateOptions{Opponents: 1, Trials: 1000})
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateTableNeedsOpponents(t *testing.T) {
	_, err := GenerateTable(context.Background(), New(nil), GenerateOptions{Trials: 10})
	require.ErrorIs(t, err, ErrInvalidSetup)
}
