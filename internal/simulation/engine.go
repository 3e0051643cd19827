// Package simulation estimates a player's equity by Monte Carlo: it deals
// the unknown cards many times, evaluates every seat at showdown and counts
// how often seat 0 wins.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lox/poker-equity/internal/randutil"
	"github.com/lox/poker-equity/internal/ranges"
	"github.com/lox/poker-equity/poker"
)

// ErrInvalidSetup is returned when a request violates a table precondition.
var ErrInvalidSetup = errors.New("invalid simulation setup")

const (
	// DefaultPassThreshold is the number of rejected range draws after which
	// the deadline is allowed to end a run.
	DefaultPassThreshold = 10_000

	// DefaultBatchSize is how many trials a parallel worker runs between
	// deadline checks.
	DefaultBatchSize = 256

	maxSeats = (52 - 5) / 2
)

// State is the lifecycle of a run
type State uint8

const (
	Idle State = iota
	Running
	Completed
	DeadlineExceeded
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case DeadlineExceeded:
		return "deadline_exceeded"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Request describes one simulation run. Seat 0 is the tracked player.
type Request struct {
	// Players lists the seats with fixed cards or explicit ranges, in seat
	// order. Remaining seats up to PlayerCount are dealt from the run's range.
	Players     []Player
	Community   []poker.Card
	PlayerCount int
	MaxTrials   int
	// Deadline is the wall-clock time after which the run may stop; zero
	// means no deadline.
	Deadline time.Time
	// RangeFraction in (0, 1] selects the strongest share of starting hands
	// for opponents. Ignored when Allowed is set.
	RangeFraction float64
	Allowed       *ranges.AllowedSet
	// Seed for the random stream; zero picks a time-based seed.
	Seed int64
	// Workers > 1 runs trials in parallel.
	Workers int
}

// Result is the outcome of a run
type Result struct {
	RunID        string                     `json:"run_id"`
	State        State                      `json:"state"`
	Equity       float64                    `json:"equity"`
	Distribution map[poker.Category]float64 `json:"distribution"`
	Stats        Stats                      `json:"stats"`
	AllowedHands int                        `json:"allowed_hands"`
	Seed         int64                      `json:"seed"`
	Duration     time.Duration              `json:"duration"`
}

// ProgressFunc receives the number of finished trials out of the maximum.
// It may be called from several goroutines at once.
type ProgressFunc func(done, total int)

// Engine runs simulations against a range table
type Engine struct {
	table         *ranges.Table
	clock         quartz.Clock
	logger        *log.Logger
	passThreshold int64
	maxAttempts   int
	batchSize     int
	progress      ProgressFunc
}

// Option configures an Engine
type Option func(*Engine)

// WithClock sets the clock used for deadline checks
func WithClock(clock quartz.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithPassThreshold sets how many rejected draws must accumulate before the
// deadline can end a run
func WithPassThreshold(n int64) Option {
	return func(e *Engine) { e.passThreshold = n }
}

// WithMaxAttempts caps rejection sampling per seat
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// WithBatchSize sets the parallel deadline-check granularity
func WithBatchSize(n int) Option {
	return func(e *Engine) { e.batchSize = n }
}

// WithProgress registers a progress callback
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// New creates an engine. A nil table selects ranges.Default().
func New(table *ranges.Table, opts ...Option) *Engine {
	if table == nil {
		table = ranges.Default()
	}
	e := &Engine{
		table:         table,
		clock:         quartz.NewReal(),
		logger:        log.New(io.Discard),
		passThreshold: DefaultPassThreshold,
		maxAttempts:   DefaultMaxAttempts,
		batchSize:     DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Table returns the engine's range table
func (e *Engine) Table() *ranges.Table {
	return e.table
}

// run is the shared state of one Run call
type run struct {
	engine   *Engine
	req      Request
	dealer   *Dealer
	base     poker.Deck
	passes   atomic.Int64
	done     atomic.Int64
	deadline atomic.Bool
}

// Run simulates up to req.MaxTrials trials. It stops early once the
// rejected-draw count exceeds the pass threshold and the deadline has
// passed, or when ctx is cancelled. Early stops are not errors: the result
// covers the trials actually run and its State says why it ended.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	allowed, err := e.allowedSet(req)
	if err != nil {
		return nil, err
	}

	dealer := NewDealer(req.Players, req.PlayerCount, req.Community, allowed)
	dealer.maxAttempts = e.maxAttempts

	seed := randutil.Seed(req.Seed)
	result := &Result{
		RunID:        uuid.NewString(),
		State:        Running,
		AllowedHands: allowed.Len(),
		Seed:         seed,
	}
	logger := e.logger.With("run", result.RunID)
	logger.Debug("starting simulation",
		"players", req.PlayerCount,
		"known", len(req.Players),
		"board", poker.FormatCards(req.Community),
		"max_trials", req.MaxTrials,
		"workers", max(req.Workers, 1),
		"allowed_hands", allowed.Len())

	r := &run{engine: e, req: req, dealer: dealer, base: poker.NewDeck()}
	start := e.clock.Now()

	stats, err := r.execute(ctx, randutil.New(seed))
	result.Duration = e.clock.Since(start)
	if err != nil {
		logger.Error("simulation failed", "err", err, "trials", stats.Trials)
		return nil, err
	}

	switch {
	case r.deadline.Load():
		result.State = DeadlineExceeded
	case ctx.Err() != nil && stats.Trials < req.MaxTrials:
		result.State = Cancelled
	default:
		result.State = Completed
	}
	result.Stats = stats
	result.Equity = stats.Equity()
	result.Distribution = stats.Distribution()

	logger.Info("simulation finished",
		"state", result.State,
		"trials", stats.Trials,
		"passes", stats.Passes,
		"equity", result.Equity,
		"duration", result.Duration)
	return result, nil
}

func (e *Engine) allowedSet(req Request) (ranges.AllowedSet, error) {
	if req.Allowed != nil {
		return *req.Allowed, nil
	}
	return e.table.AllowedHands(req.RangeFraction)
}

func validate(req Request) error {
	switch {
	case req.PlayerCount < 2:
		return fmt.Errorf("%w: need at least 2 players, got %d", ErrInvalidSetup, req.PlayerCount)
	case req.PlayerCount > maxSeats:
		return fmt.Errorf("%w: %d players need %d cards but the deck has 52",
			poker.ErrDeckExhausted, req.PlayerCount, 2*req.PlayerCount+5)
	case len(req.Players) > req.PlayerCount:
		return fmt.Errorf("%w: %d players listed for a %d-player table", ErrInvalidSetup, len(req.Players), req.PlayerCount)
	case len(req.Community) > 5:
		return fmt.Errorf("%w: at most 5 community cards, got %d", ErrInvalidSetup, len(req.Community))
	case req.MaxTrials < 1:
		return fmt.Errorf("%w: max trials must be positive, got %d", ErrInvalidSetup, req.MaxTrials)
	}

	var seen uint64
	check := func(c poker.Card) error {
		if !c.Rank.Valid() || c.Suit > poker.Spades {
			return fmt.Errorf("%w: card out of range (rank %d, suit %d)", ErrInvalidSetup, c.Rank, c.Suit)
		}
		bit := uint64(1) << c.Index()
		if seen&bit != 0 {
			return fmt.Errorf("%w: duplicate card %s in known hands", poker.ErrDeckExhausted, c)
		}
		seen |= bit
		return nil
	}
	for _, c := range req.Community {
		if err := check(c); err != nil {
			return err
		}
	}
	for _, p := range req.Players {
		if p.Kind != KnownCards {
			continue
		}
		for _, c := range p.Cards {
			if err := check(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// execute runs the trials, sequentially for one worker or split across an
// errgroup otherwise, and reduces the per-worker totals.
func (r *run) execute(ctx context.Context, rng *rand.Rand) (Stats, error) {
	workers := min(max(r.req.Workers, 1), r.req.MaxTrials)
	if workers == 1 {
		// a single stream checks the stop condition after every trial
		return r.worker(ctx, r.req.MaxTrials, 1, rng)
	}

	streams := randutil.Split(rng, workers)
	results := make([]Stats, workers)
	perWorker, remainder := r.req.MaxTrials/workers, r.req.MaxTrials%workers

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		quota := perWorker
		if w < remainder {
			quota++
		}
		g.Go(func() error {
			stats, err := r.worker(gctx, quota, r.engine.batchSize, streams[w])
			results[w] = stats
			return err
		})
	}
	err := g.Wait()

	var total Stats
	for _, s := range results {
		total.Merge(s)
	}
	return total, err
}

// worker runs up to quota trials, checking the stop condition every
// checkEvery trials.
func (r *run) worker(ctx context.Context, quota, checkEvery int, rng *rand.Rand) (Stats, error) {
	var (
		stats   Stats
		trial   = NewTrial(r.dealer.Seats())
		scores  = make([]poker.Score, r.dealer.Seats())
		hand    [7]poker.Card
		pending int64
		batch   int
	)

	for i := 0; i < quota; i++ {
		deck := r.base
		passes, err := r.dealer.DealTrial(&deck, rng, trial)
		stats.Passes += int64(passes)
		pending += int64(passes)
		if err != nil {
			return stats, err
		}

		for seat, hole := range trial.Holes {
			hand[0], hand[1] = hole[0], hole[1]
			copy(hand[2:], trial.Board[:])
			score, err := poker.Evaluate(hand[:])
			if err != nil {
				return stats, fmt.Errorf("trial %d seat %d: %w", stats.Trials+1, seat, err)
			}
			scores[seat] = score
		}

		winner := poker.BestIndex(scores)
		stats.Record(winner, scores[winner].Category, winner == 0 && shared(scores))

		batch++
		if batch < checkEvery && i+1 < quota {
			continue
		}
		r.passes.Add(pending)
		r.report(batch)
		pending, batch = 0, 0
		if r.shouldStop(ctx) {
			break
		}
	}
	return stats, nil
}

// shared reports whether another seat ties seat 0
func shared(scores []poker.Score) bool {
	for _, s := range scores[1:] {
		if s.Compare(scores[0]) == 0 {
			return true
		}
	}
	return false
}

func (r *run) shouldStop(ctx context.Context) bool {
	if ctx.Err() != nil || r.deadline.Load() {
		return true
	}
	if r.req.Deadline.IsZero() || r.passes.Load() <= r.engine.passThreshold {
		return false
	}
	if r.engine.clock.Now().After(r.req.Deadline) {
		r.deadline.Store(true)
		return true
	}
	return false
}

func (r *run) report(n int) {
	done := r.done.Add(int64(n))
	if r.engine.progress != nil {
		r.engine.progress(int(done), r.req.MaxTrials)
	}
}
