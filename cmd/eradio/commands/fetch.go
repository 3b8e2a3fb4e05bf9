package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/metrics"
	"github.com/e-radio/eradio/internal/notify"
	"github.com/e-radio/eradio/internal/radiobrowser"
	"github.com/e-radio/eradio/internal/station"
)

// FetchCmd implements the 'fetch' command.
type FetchCmd struct {
	CountryCode string `name:"country" help:"ISO country code (defaults to source.country_code)"`
	DryRun      bool   `name:"dry-run" help:"Fetch and merge without writing the dataset"`
}

func (f *FetchCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	e, err := newEnv(g, root)
	if err != nil {
		return err
	}
	if f.CountryCode != "" {
		e.cfg.Source.CountryCode = f.CountryCode
	}
	n := e.notifier(ctx)
	defer func() { _ = n.Close() }()

	res, err := fetchStations(ctx, e, n, f.DryRun)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Stdout, "stations: %d (added %d, updated %d, removed %d, without stream %d, slugs changed %d)\n",
		res.total, res.stats.Added, res.stats.Updated, res.stats.Removed, res.stats.NoStream, res.slugs)
	return nil
}

type fetchResult struct {
	total int
	slugs int
	stats radiobrowser.MergeStats
}

// fetchStations downloads the country's stations, merges them into the
// dataset, assigns slugs and saves.
func fetchStations(ctx context.Context, e *env, n notify.Notifier, dryRun bool) (fetchResult, error) {
	client := radiobrowser.NewClient(e.httpClient(0), e.cfg.Source.ServersURL, radiobrowser.WithLogger(e.logger))
	fetched, err := client.StationsByCountry(ctx, e.cfg.Source.CountryCode)
	if err != nil {
		if ctx.Err() != nil {
			e.recorder.IncFetchResult(metrics.ResultCanceled)
			return fetchResult{}, ctx.Err()
		}
		e.recorder.IncFetchResult(metrics.ResultFailed)
		return fetchResult{}, err
	}

	existing, err := e.loadStations(true)
	if err != nil {
		e.recorder.IncFetchResult(metrics.ResultFailed)
		return fetchResult{}, err
	}
	merged, stats := radiobrowser.Merge(existing, fetched, e.cfg.Data.IconsURLPrefix)
	res := fetchResult{total: len(merged), stats: stats, slugs: station.AssignSlugs(merged)}

	e.logger.Info("Stations merged",
		logfields.Count(len(merged)),
		"added", stats.Added, "updated", stats.Updated, "removed", stats.Removed)
	if dryRun {
		e.recorder.IncFetchResult(metrics.ResultSkipped)
		return res, nil
	}
	if err := e.saveStations(merged); err != nil {
		e.recorder.IncFetchResult(metrics.ResultFailed)
		return res, err
	}
	e.recorder.IncFetchResult(metrics.ResultSuccess)
	e.recorder.SetStations(len(merged))

	ev := notify.Event{
		Task:     "fetch",
		Stations: len(merged),
		Changed:  stats.Added + stats.Updated + stats.Removed,
		Details: map[string]int{
			"added": stats.Added, "updated": stats.Updated, "removed": stats.Removed,
			"no_stream": stats.NoStream, "slugs": res.slugs,
		},
		Timestamp: time.Now().UTC(),
	}
	if err := n.StationsUpdated(ctx, ev); err != nil {
		e.logger.Warn("Failed to publish update", logfields.Error(err))
	}
	return res, nil
}
