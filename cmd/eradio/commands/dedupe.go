package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/notify"
	"github.com/e-radio/eradio/internal/station"
)

// DedupeCmd implements the 'dedupe' command.
type DedupeCmd struct {
	DryRun bool `name:"dry-run" help:"Report duplicates without changing anything"`
}

func (d *DedupeCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	e, err := newEnv(g, root)
	if err != nil {
		return err
	}
	stations, err := e.loadStations(false)
	if err != nil {
		return err
	}

	kept, removed := station.Dedupe(stations)
	for _, st := range removed {
		e.logger.Info("Duplicate station", logfields.Slug(st.Slug), logfields.URL(st.StreamURL))
	}
	if d.DryRun || len(removed) == 0 {
		_, _ = fmt.Fprintf(g.Stdout, "duplicates: %d of %d stations\n", len(removed), len(stations))
		return nil
	}

	if err := e.saveStations(kept); err != nil {
		return err
	}
	icons, err := station.RemoveOrphanIcons(e.cfg.Data.IconsDir, e.cfg.Data.IconsURLPrefix, kept, removed)
	if err != nil {
		e.logger.Warn("Icon cleanup incomplete", logfields.Error(err))
	}
	_, _ = fmt.Fprintf(g.Stdout, "removed %d duplicates, %d icons; %d stations left\n", len(removed), len(icons), len(kept))

	n := e.notifier(ctx)
	defer func() { _ = n.Close() }()
	ev := notify.Event{
		Task:      "dedupe",
		Stations:  len(kept),
		Changed:   len(removed),
		Details:   map[string]int{"removed": len(removed), "icons": len(icons)},
		Timestamp: time.Now().UTC(),
	}
	if err := n.StationsUpdated(ctx, ev); err != nil {
		e.logger.Warn("Failed to publish update", logfields.Error(err))
	}
	return nil
}
