package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/poker-equity/internal/fileutil"
	"github.com/lox/poker-equity/internal/ranges"
	"github.com/lox/poker-equity/internal/simulation"
	"github.com/lox/poker-equity/poker"
)

// GenRangesCmd writes a range table measured by simulation
type GenRangesCmd struct {
	Output    string `arg:"" type:"path" default:"ranges.json" help:"Output JSON file"`
	Opponents int    `default:"1" help:"Random opponents each hand plays against"`
	Trials    int    `short:"t" default:"10000" help:"Trials per starting hand"`
	Seed      int64  `default:"42" help:"Base random seed"`
	Workers   int    `short:"w" help:"Parallel workers (default from config)"`
	Progress  bool   `short:"p" help:"Show a progress bar"`
}

func (c *GenRangesCmd) Run(g *Globals, out io.Writer) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	if c.Workers == 0 {
		c.Workers = cfg.Simulation.Workers
	}

	ctx, cancel := setupSignalHandler(logger)
	defer cancel()

	// per-run logs would drown the per-hand progress
	engine := simulation.New(nil, simulation.WithLogger(quiet(logger)))

	opts := simulation.GenerateOptions{
		Opponents: c.Opponents,
		Trials:    c.Trials,
		Seed:      c.Seed,
		Workers:   c.Workers,
	}

	var table *ranges.Table
	if c.Progress {
		err = withProgress(ctx, "generating", func(ctx context.Context, report func(done, total int)) error {
			opts.Progress = func(done, total int, _ poker.StartingHand) { report(done, total) }
			var err error
			table, err = simulation.GenerateTable(ctx, engine, opts)
			return err
		})
	} else {
		opts.Progress = func(done, total int, h poker.StartingHand) {
			logger.Debug("measured starting hand", "hand", h, "done", done, "total", total)
		}
		table, err = simulation.GenerateTable(ctx, engine, opts)
	}
	if err != nil {
		return err
	}

	if err := fileutil.WriteJSONAtomic(c.Output, table.Map(), 0o644); err != nil {
		return err
	}

	strongest := table.Strongest()
	fmt.Fprintf(out, "wrote %d hands to %s (strongest %s %s, weakest %s %s)\n",
		table.Len(), c.Output,
		strongest[0], percent(table.WinRate(strongest[0])),
		strongest[len(strongest)-1], percent(table.WinRate(strongest[len(strongest)-1])))
	return nil
}

// quiet returns a copy of logger that only reports warnings and errors
func quiet(logger *log.Logger) *log.Logger {
	l := logger.With()
	if l.GetLevel() < log.WarnLevel {
		l.SetLevel(log.WarnLevel)
	}
	return l
}
