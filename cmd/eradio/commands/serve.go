package commands

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/e-radio/eradio/internal/daemon"
	"github.com/e-radio/eradio/internal/metrics"
	"github.com/e-radio/eradio/internal/server"
	"github.com/e-radio/eradio/internal/sitemap"
	"github.com/e-radio/eradio/internal/station"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Addr    string        `help:"Listen address (defaults to serve.addr)"`
	Refresh time.Duration `help:"Refresh interval overriding serve.refresh_interval"`
	NoWatch bool          `name:"no-watch" help:"Do not rebuild when the dataset file changes"`
}

func (s *ServeCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	e, err := newEnv(g, root)
	if err != nil {
		return err
	}
	addr := s.Addr
	if addr == "" {
		addr = e.cfg.Serve.Addr
	}
	interval := e.cfg.Serve.RefreshEvery()
	if s.Refresh > 0 {
		interval = s.Refresh
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheusRecorder(reg)
	e.recorder = rec

	n := e.notifier(ctx)
	defer func() { _ = n.Close() }()

	build := func(context.Context) (*sitemap.Sitemap, error) {
		stations, err := station.Load(e.cfg.Data.StationsPath)
		if err != nil {
			return nil, err
		}
		rec.SetStations(len(stations))
		return sitemap.Build(stations, sitemap.OptionsFromConfig(e.cfg, time.Now()))
	}
	var refresh daemon.RefreshFunc
	if interval > 0 {
		refresh = func(ctx context.Context) error {
			_, err := fetchStations(ctx, e, n, false)
			return err
		}
	}
	watchPath := ""
	if e.cfg.Serve.Watch && !s.NoWatch {
		watchPath = e.cfg.Data.StationsPath
	}

	d := daemon.New(daemon.Options{
		Build:           build,
		Refresh:         refresh,
		RefreshInterval: interval,
		WatchPath:       watchPath,
		Recorder:        rec,
		Logger:          e.logger,
	})
	srv := server.New(addr, d, metrics.HTTPHandler(reg), e.logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	daemonDone := make(chan error, 1)
	go func() { daemonDone <- d.Run(ctx) }()

	err = srv.Run(ctx)
	cancel()
	if derr := <-daemonDone; err == nil {
		err = derr
	}
	return err
}
