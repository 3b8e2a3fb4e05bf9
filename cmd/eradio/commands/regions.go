package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/e-radio/eradio/internal/geo"
	"github.com/e-radio/eradio/internal/homepage"
	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/maintenance"
	"github.com/e-radio/eradio/internal/store"
)

// TaskFlags are shared by the station maintenance commands.
type TaskFlags struct {
	Max          int           `help:"Maximum stations to process (0 for all)" default:"0"`
	Sleep        time.Duration `help:"Pause between remote lookups (defaults to geocode.sleep)"`
	Overwrite    bool          `help:"Also revisit stations that already have a value"`
	RetrySkipped bool          `name:"retry-skipped" help:"Retry stations given up on in earlier runs"`
}

func (f TaskFlags) options(e *env) maintenance.Options {
	sleep := f.Sleep
	if sleep <= 0 {
		sleep = e.cfg.Geocode.SleepDuration()
	}
	return maintenance.Options{Max: f.Max, Sleep: sleep, RetrySkipped: f.RetrySkipped}
}

// RegionsCmd groups the region normalization commands.
type RegionsCmd struct {
	CityMap RegionsCityMapCmd `cmd:"" name:"city-map" help:"Move cities stored as state into city using the city-region map"`
	Geo     RegionsGeoCmd     `cmd:"" help:"Set the region from reverse geocoded coordinates"`
}

// RegionsCityMapCmd implements 'regions city-map'.
type RegionsCityMapCmd struct {
	TaskFlags `embed:""`
	Map       string `help:"City to region JSON map (defaults to data.city_region_map)"`
}

func (c *RegionsCityMapCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	e, err := newEnv(g, root)
	if err != nil {
		return err
	}
	path := c.Map
	if path == "" {
		path = e.cfg.Data.CityRegionMap
	}
	m, err := geo.LoadCityRegionMap(path)
	if err != nil {
		return err
	}
	unknown := &maintenance.UnknownCities{}
	err = runTask(ctx, g, e, c.TaskFlags, func(store.Store) maintenance.Task {
		return maintenance.CityMapTask(m, unknown)
	})
	if cities := unknown.Sorted(); len(cities) > 0 {
		_, _ = fmt.Fprintf(g.Stdout, "unknown cities (%d):\n", len(cities))
		for _, city := range cities {
			_, _ = fmt.Fprintf(g.Stdout, "  %s\n", city)
		}
	}
	return err
}

// RegionsGeoCmd implements 'regions geo'.
type RegionsGeoCmd struct {
	TaskFlags `embed:""`
}

func (c *RegionsGeoCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	e, err := newEnv(g, root)
	if err != nil {
		return err
	}
	return runTask(ctx, g, e, c.TaskFlags, func(st store.Store) maintenance.Task {
		return maintenance.GeoRegionsTask(e.geocoder(st), c.Overwrite)
	})
}

// FillStateCmd implements 'fill-state'.
type FillStateCmd struct {
	TaskFlags `embed:""`
	Source    string `help:"Where to look up the state" enum:"geo,homepage" default:"geo"`
}

func (c *FillStateCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	e, err := newEnv(g, root)
	if err != nil {
		return err
	}
	return runTask(ctx, g, e, c.TaskFlags, func(st store.Store) maintenance.Task {
		if c.Source == "homepage" {
			return maintenance.FillStateHomepageTask(homepage.NewLocator(e.httpClient(homepage.MaxPageSize)), c.Overwrite)
		}
		return maintenance.FillStateGeoTask(e.geocoder(st), c.Overwrite)
	})
}

func (e *env) geocoder(cache geo.Cache) geo.Geocoder {
	return geo.NewNominatim(e.httpClient(0), e.cfg.Geocode.URL, e.cfg.Geocode.Language, cache)
}

// runTask opens the store and notifier, runs the task built by newTask over
// the dataset and prints the summary.
func runTask(ctx context.Context, g *Global, e *env, flags TaskFlags, newTask func(store.Store) maintenance.Task) error {
	stations, err := e.loadStations(false)
	if err != nil {
		return err
	}
	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	n := e.notifier(ctx)
	defer func() { _ = n.Close() }()

	task := newTask(st)
	r := &maintenance.Runner{Store: st, Notifier: n, Recorder: e.recorder, Logger: e.logger}
	_, sum, err := r.Run(ctx, task, stations, flags.options(e), e.saveStations)
	_, _ = fmt.Fprintf(g.Stdout, "%s: %d candidates, %d changed, %d unchanged, %d unresolved, %d failed, %d skipped\n",
		task.Name, sum.Candidates, sum.Changed, sum.Unchanged, sum.Unresolved, sum.Failed, sum.Skipped)
	if err != nil {
		e.logger.Warn("Task stopped early", logfields.Task(task.Name), logfields.Error(err))
	}
	return err
}
