package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/poker-equity/internal/config"
	"github.com/lox/poker-equity/internal/fileutil"
	"github.com/lox/poker-equity/internal/ranges"
	"github.com/lox/poker-equity/internal/simulation"
	"github.com/lox/poker-equity/poker"
)

// RunCmd estimates the equity of seat 0
type RunCmd struct {
	Players       []string `arg:"" help:"Seats in order: hole cards (AsKd), 'random' or 'range'. The first seat is the one measured."`
	Board         string   `short:"b" help:"Community cards, up to 5 (e.g. 'Td7s8h')"`
	Count         int      `short:"n" help:"Total players at the table; unlisted seats are dealt from the range (default from config)"`
	Trials        int      `short:"t" help:"Maximum number of trials (default from config)"`
	Timeout       string   `help:"Deadline after which a range-limited run may stop, e.g. 5s; 0 disables (default from config)"`
	Range         float64  `short:"r" help:"Fraction of strongest starting hands opponents play, in (0, 1] (default from config)"`
	RangeFile     string   `type:"path" help:"JSON or YAML range table (default built in)"`
	Workers       int      `short:"w" help:"Parallel workers (default from config)"`
	Seed          *int64   `help:"Random seed for reproducible results"`
	PassThreshold *int64   `help:"Rejected draws needed before the deadline applies (default from config)"`
	Progress      bool     `short:"p" help:"Show a progress bar"`
	Output        string   `short:"o" type:"path" help:"Also write the result as JSON to this file"`
}

// Report is the JSON document written by --output
type Report struct {
	*simulation.Result
	Players      []string `json:"players"`
	Board        string   `json:"board"`
	TieRate      float64  `json:"tie_rate"`
	IntervalLow  float64  `json:"interval_low"`
	IntervalHigh float64  `json:"interval_high"`
	DurationMS   int64    `json:"duration_ms"`
}

func (c *RunCmd) Run(g *Globals, out io.Writer) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	c.applyConfig(cfg)

	players, board, err := c.parse()
	if err != nil {
		return err
	}

	timeout, err := config.SimulationSettings{Timeout: c.Timeout}.TimeoutDuration()
	if err != nil {
		return err
	}

	table, err := loadTable(c.RangeFile, logger)
	if err != nil {
		return err
	}

	req := simulation.Request{
		Players:       players,
		Community:     board,
		PlayerCount:   c.Count,
		MaxTrials:     c.Trials,
		RangeFraction: c.Range,
		Seed:          *c.Seed,
		Workers:       c.Workers,
	}
	if timeout > 0 {
		req.Deadline = time.Now().Add(timeout)
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	opts := []simulation.Option{
		simulation.WithLogger(logger),
		simulation.WithPassThreshold(*c.PassThreshold),
	}

	var res *simulation.Result
	if c.Progress {
		err = withProgress(ctx, "simulating", func(ctx context.Context, report func(done, total int)) error {
			engine := simulation.New(table, append(opts, simulation.WithProgress(report))...)
			var err error
			res, err = engine.Run(ctx, req)
			return err
		})
	} else {
		res, err = simulation.New(table, opts...).Run(ctx, req)
	}
	if err != nil {
		return err
	}

	renderResult(out, padSeats(players, c.Count), board, res)

	if c.Output != "" {
		if err := fileutil.WriteJSONAtomic(c.Output, newReport(c.Players, board, res), 0o644); err != nil {
			return err
		}
		logger.Info("wrote report", "path", c.Output)
	}
	return nil
}

// applyConfig fills every flag left unset from the config file
func (c *RunCmd) applyConfig(cfg *config.Config) {
	s := cfg.Simulation
	if c.Count == 0 {
		c.Count = max(s.Players, len(c.Players))
	}
	if c.Trials == 0 {
		c.Trials = s.Trials
	}
	if c.Timeout == "" {
		c.Timeout = s.Timeout
	}
	if c.Range == 0 {
		c.Range = s.RangeFraction
	}
	if c.RangeFile == "" {
		c.RangeFile = s.RangeFile
	}
	if c.Workers == 0 {
		c.Workers = s.Workers
	}
	if c.Seed == nil {
		c.Seed = &s.Seed
	}
	if c.PassThreshold == nil {
		c.PassThreshold = &s.PassThreshold
	}
}

func (c *RunCmd) parse() ([]simulation.Player, []poker.Card, error) {
	players := make([]simulation.Player, len(c.Players))
	for i, s := range c.Players {
		p, err := simulation.ParsePlayer(s)
		if err != nil {
			return nil, nil, fmt.Errorf("seat %d: %w", i, err)
		}
		players[i] = p
	}

	var board []poker.Card
	if c.Board != "" {
		var err error
		board, err = poker.ParseCards(c.Board)
		if err != nil {
			return nil, nil, fmt.Errorf("board: %w", err)
		}
	}
	return players, board, nil
}

// loadTable reads a range file, or returns nil for the built-in table
func loadTable(path string, logger *log.Logger) (*ranges.Table, error) {
	if path == "" {
		return nil, nil
	}
	table, err := ranges.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded range table", "path", path, "hands", table.Len())
	return table, nil
}

// padSeats lists every seat at the table, including the unlisted ones
func padSeats(players []simulation.Player, count int) []simulation.Player {
	seats := append([]simulation.Player(nil), players...)
	for len(seats) < count {
		seats = append(seats, simulation.Ranged(nil))
	}
	return seats
}

func newReport(players []string, board []poker.Card, res *simulation.Result) Report {
	lo, hi := res.Stats.ConfidenceInterval()
	return Report{
		Result:       res,
		Players:      players,
		Board:        poker.FormatCards(board),
		TieRate:      res.Stats.TieRate(),
		IntervalLow:  lo,
		IntervalHigh: hi,
		DurationMS:   res.Duration.Milliseconds(),
	}
}
