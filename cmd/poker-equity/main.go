package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/poker-equity/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every subcommand
type Globals struct {
	Config   string `short:"c" default:"poker-equity.hcl" type:"path" help:"HCL config file (defaults are used when it does not exist)"`
	LogLevel string `help:"Log level: debug, info, warn or error (overrides config)"`
	Verbose  bool   `short:"V" help:"Enable debug logging"`
	NoColor  bool   `help:"Disable colored output"`
}

type CLI struct {
	Globals

	Version   kong.VersionFlag `short:"v" help:"Show version"`
	Run       RunCmd           `cmd:"" help:"Estimate the equity of the first player's hand"`
	Allowed   AllowedCmd       `cmd:"" help:"List the starting hands inside a range fraction"`
	GenRanges GenRangesCmd     `cmd:"gen-ranges" help:"Simulate every starting hand and write a range table"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("poker-equity"),
		kong.Description("Monte Carlo equity estimates for Texas Hold'em"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// setup loads the config file and builds the logger it describes
func (g *Globals) setup() (*config.Config, *log.Logger, error) {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.Verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.LogLevel(),
		ReportTimestamp: true,
	})
	if g.NoColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return cfg, logger, nil
}
