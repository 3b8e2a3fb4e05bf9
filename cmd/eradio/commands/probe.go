package commands

import (
	"context"
	"io"
	"os"
	"time"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/probe"
)

// ProbeCmd implements the 'probe' command.
type ProbeCmd struct {
	URL     []string      `name:"url" help:"Stream URL to probe (repeatable)"`
	Input   string        `short:"i" help:"File with one URL per line ('-' for stdin)"`
	Output  string        `short:"o" help:"Write JSON results to this file instead of stdout"`
	Timeout time.Duration `help:"Per-URL timeout" default:"30s"`
	FFprobe string        `name:"ffprobe" help:"ffprobe binary" default:"ffprobe"`
}

func (p *ProbeCmd) Run(ctx context.Context, g *Global) error {
	urls := append([]string(nil), p.URL...)
	if p.Input != "" {
		var r io.Reader = os.Stdin
		if p.Input != "-" {
			f, err := os.Open(p.Input)
			if err != nil {
				return derrors.WrapError(err, derrors.CategoryFileSystem, "open URL list").
					WithContext("path", p.Input).Build()
			}
			defer func() { _ = f.Close() }()
			r = f
		}
		more, err := probe.ReadURLs(r)
		if err != nil {
			return err
		}
		urls = append(urls, more...)
	}
	if len(urls) == 0 {
		return derrors.ValidationError("no URLs given; use --url or --input").Build()
	}

	prober := &probe.Prober{Binary: p.FFprobe, Timeout: p.Timeout}
	results, err := prober.ProbeAll(ctx, urls)
	if err != nil {
		return err
	}

	if p.Output == "" {
		return probe.WriteJSON(g.Stdout, results)
	}
	f, err := os.Create(p.Output)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create probe output").
			WithContext("path", p.Output).Build()
	}
	if err := probe.WriteJSON(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
