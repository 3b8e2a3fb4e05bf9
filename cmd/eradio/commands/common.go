// Package commands implements the eradio command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/e-radio/eradio/internal/config"
	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/version"
)

// ExitInterrupted is returned when a command stops on SIGINT/SIGTERM.
const ExitInterrupted = 130

// Global carries shared state into subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
	Stderr io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"eradio.yaml" env:"ERADIO_CONFIG"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Fetch     FetchCmd     `cmd:"" help:"Fetch stations from radio-browser and merge them into the dataset"`
	Sitemap   SitemapCmd   `cmd:"" help:"Generate sitemap.xml from the dataset"`
	Serve     ServeCmd     `cmd:"" help:"Serve the sitemap over HTTP and keep it current"`
	Dedupe    DedupeCmd    `cmd:"" help:"Remove stations sharing a stream URL"`
	Icons     IconsCmd     `cmd:"" help:"Download station favicons into the icons directory"`
	Regions   RegionsCmd   `cmd:"" help:"Normalize station states to the 13 regions"`
	FillState FillStateCmd `cmd:"" name:"fill-state" help:"Fill empty station states"`
	Probe     ProbeCmd     `cmd:"" help:"Inspect stream URLs with ffprobe"`
	Init      InitCmd      `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; set up a provisional logger until
// the configuration is loaded.
func (c *CLI) AfterApply(g *Global) error {
	g.Logger = config.LoggingConfig{}.NewLogger(g.Stderr, c.Verbose)
	slog.SetDefault(g.Logger)
	return nil
}

type exitCode int

// Execute parses args, runs the selected command and returns the process
// exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) (code int) {
	g := &Global{Logger: slog.Default(), Stdout: stdout, Stderr: stderr}
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("eradio"),
		kong.Description("E-Radio station directory tooling."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Bind(g, &cli),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(c)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return 2
	}
	if err := kctx.Run(); err != nil {
		if errors.Is(err, context.Canceled) {
			g.Logger.Warn("Interrupted")
			return ExitInterrupted
		}
		adapter := derrors.NewCLIErrorAdapter(cli.Verbose, g.Logger)
		adapter.Log(err)
		_, _ = fmt.Fprintln(stderr, adapter.FormatError(err))
		return adapter.ExitCodeFor(err)
	}
	return 0
}

// loadConfig reads the configuration file. The default path may be absent,
// in which case built-in defaults apply.
func loadConfig(root *CLI) (*config.Config, error) {
	if root.Config == config.DefaultPath {
		if _, err := os.Stat(root.Config); os.IsNotExist(err) {
			return config.Default(), nil
		}
	}
	cfg, err := config.Load(root.Config)
	if err != nil {
		if derrors.IsClassified(err) {
			return nil, err
		}
		return nil, derrors.WrapError(err, derrors.CategoryConfig, "load configuration").
			WithContext("path", root.Config).Build()
	}
	return cfg, nil
}
