package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/e-radio/eradio/internal/icons"
	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/notify"
)

// IconsCmd implements the 'icons' command.
type IconsCmd struct {
	Max          int  `help:"Maximum downloads to attempt (0 for all)" default:"0"`
	RetrySkipped bool `name:"retry-skipped" help:"Retry icons that failed in earlier runs"`
}

func (c *IconsCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	e, err := newEnv(g, root)
	if err != nil {
		return err
	}
	stations, err := e.loadStations(false)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if c.RetrySkipped {
		if err := st.ClearSkipped(ctx, icons.Task); err != nil {
			return err
		}
	}

	f := &icons.Fetcher{
		HTTP:      e.httpClient(icons.MaxIconSize),
		Dir:       e.cfg.Data.IconsDir,
		URLPrefix: e.cfg.Data.IconsURLPrefix,
		Skips:     st,
		Recorder:  e.recorder,
		Logger:    e.logger,
	}
	updated, sum, runErr := f.Run(ctx, stations, c.Max, e.saveStations)
	_, _ = fmt.Fprintf(g.Stdout, "icons: %d candidates, %d downloaded, %d failed, %d skipped\n",
		sum.Candidates, sum.Downloaded, sum.Failed, sum.Skipped)

	if sum.Downloaded > 0 {
		n := e.notifier(context.WithoutCancel(ctx))
		defer func() { _ = n.Close() }()
		ev := notify.Event{
			Task:      icons.Task,
			Stations:  len(updated),
			Changed:   sum.Downloaded,
			Details:   map[string]int{"downloaded": sum.Downloaded, "failed": sum.Failed, "skipped": sum.Skipped},
			Timestamp: time.Now().UTC(),
		}
		if err := n.StationsUpdated(context.WithoutCancel(ctx), ev); err != nil {
			e.logger.Warn("Failed to publish update", logfields.Error(err))
		}
	}
	return runErr
}
