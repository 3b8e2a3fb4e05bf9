package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/sitemap"
)

// SitemapCmd implements the 'sitemap' command.
type SitemapCmd struct {
	Output string `short:"o" help:"Output file (defaults to sitemap.output_path); '-' writes to stdout"`
	Date   string `help:"Build date used as lastmod (YYYY-MM-DD, defaults to today)"`
}

func (s *SitemapCmd) Run(_ context.Context, g *Global, root *CLI) error {
	e, err := newEnv(g, root)
	if err != nil {
		return err
	}

	buildDate := time.Now()
	if s.Date != "" {
		if buildDate, err = time.Parse(sitemap.DateLayout, s.Date); err != nil {
			return derrors.ValidationError("invalid --date").WithContext("date", s.Date).Build()
		}
	}

	stations, err := e.loadStations(false)
	if err != nil {
		return err
	}
	start := time.Now()
	sm, err := sitemap.Build(stations, sitemap.OptionsFromConfig(e.cfg, buildDate))
	e.recorder.ObserveSitemapBuild(time.Since(start), err == nil)
	if err != nil {
		return err
	}

	output := s.Output
	if output == "" {
		output = e.cfg.Sitemap.OutputPath
	}
	if output == "-" {
		return sm.Encode(g.Stdout)
	}
	if err := sm.WriteFile(output); err != nil {
		return err
	}

	e.logger.Info("Sitemap written", logfields.Path(output), logfields.Count(len(sm.URLs)))
	sections := make([]string, 0, len(sm.Counts))
	for section := range sm.Counts {
		sections = append(sections, section)
	}
	sort.Strings(sections)
	_, _ = fmt.Fprintf(g.Stdout, "wrote %s: %d urls\n", output, len(sm.URLs))
	for _, section := range sections {
		_, _ = fmt.Fprintf(g.Stdout, "  %-12s %d\n", section, sm.Counts[section])
	}
	return nil
}
