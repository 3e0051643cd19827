package main

import (
	"io"

	"github.com/lox/poker-equity/internal/ranges"
)

// AllowedCmd prints the starting hands an opponent plays at a range fraction
type AllowedCmd struct {
	Fraction  float64 `arg:"" optional:"" help:"Fraction of strongest hands, in (0, 1] (default from config)"`
	RangeFile string  `type:"path" help:"JSON or YAML range table (default built in)"`
}

func (c *AllowedCmd) Run(g *Globals, out io.Writer) error {
	cfg, logger, err := g.setup()
	if err != nil {
		return err
	}
	if c.Fraction == 0 {
		c.Fraction = cfg.Simulation.RangeFraction
	}
	if c.RangeFile == "" {
		c.RangeFile = cfg.Simulation.RangeFile
	}

	table, err := loadTable(c.RangeFile, logger)
	if err != nil {
		return err
	}
	if table == nil {
		table = ranges.Default()
	}

	set, err := table.AllowedHands(c.Fraction)
	if err != nil {
		return err
	}
	renderAllowed(out, table, c.Fraction, set)
	return nil
}
