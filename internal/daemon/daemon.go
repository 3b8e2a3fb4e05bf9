// Package daemon keeps a sitemap current for the serve command: it builds
// at start, rebuilds when the dataset file changes and refreshes the
// dataset on a schedule.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/metrics"
	"github.com/e-radio/eradio/internal/sitemap"
)

// Status represents the current state of the daemon.
type Status string

const (
	StatusStopped  Status = "stopped"
	StatusStarting Status = "starting"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
)

// BuildFunc produces a fresh sitemap from the current dataset.
type BuildFunc func(ctx context.Context) (*sitemap.Sitemap, error)

// RefreshFunc updates the dataset from upstream.
type RefreshFunc func(ctx context.Context) error

// Options configure a Daemon.
type Options struct {
	Build           BuildFunc
	Refresh         RefreshFunc   // nil disables scheduled refresh
	RefreshInterval time.Duration // 0 disables scheduled refresh
	WatchPath       string        // "" disables watching
	Debounce        time.Duration
	Recorder        metrics.Recorder
	Logger          *slog.Logger
}

// Snapshot is the last sitemap build outcome.
type Snapshot struct {
	XML     []byte
	Counts  map[string]int
	BuiltAt time.Time
	Err     error
}

// Daemon serves the most recent sitemap and keeps it up to date.
type Daemon struct {
	opts      Options
	logger    *slog.Logger
	recorder  metrics.Recorder
	status    atomic.Value // Status
	startTime time.Time

	buildMu sync.Mutex // serializes rebuilds
	mu      sync.RWMutex
	current Snapshot
}

// New returns a stopped daemon.
func New(opts Options) *Daemon {
	d := &Daemon{opts: opts, logger: opts.Logger, recorder: opts.Recorder}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.recorder == nil {
		d.recorder = metrics.NoopRecorder{}
	}
	d.status.Store(StatusStopped)
	d.current.Err = derrors.NewError(derrors.CategoryRuntime, "sitemap not built yet").Build()
	return d
}

// GetStatus returns the daemon status.
func (d *Daemon) GetStatus() Status {
	return d.status.Load().(Status)
}

// GetStartTime returns when Run was called.
func (d *Daemon) GetStartTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.startTime
}

// Current returns the latest build outcome. A failed rebuild keeps the
// previous XML and records the error.
func (d *Daemon) Current() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current
}

// Rebuild builds the sitemap and publishes it.
func (d *Daemon) Rebuild(ctx context.Context) error {
	d.buildMu.Lock()
	defer d.buildMu.Unlock()

	start := time.Now()
	sm, err := d.opts.Build(ctx)
	var data []byte
	if err == nil {
		data, err = sm.Bytes()
	}
	elapsed := time.Since(start)
	d.recorder.ObserveSitemapBuild(elapsed, err == nil)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		if !derrors.HasCategory(err, derrors.CategorySitemap) && !derrors.HasCategory(err, derrors.CategoryDataset) {
			err = derrors.WrapError(err, derrors.CategorySitemap, "rebuild sitemap").Build()
		}
		d.current.Err = err
		d.logger.Error("Sitemap rebuild failed", logfields.Error(err))
		return err
	}
	d.current = Snapshot{XML: data, Counts: sm.Counts, BuiltAt: time.Now()}
	for section, n := range sm.Counts {
		d.recorder.SetSitemapURLs(section, n)
	}
	d.logger.Info("Sitemap rebuilt", logfields.Count(len(sm.URLs)),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
	return nil
}

// Run builds once, then keeps the sitemap current until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	d.status.Store(StatusStarting)
	d.mu.Lock()
	d.startTime = time.Now()
	d.mu.Unlock()

	// A failed first build is served as an error until the next trigger.
	_ = d.Rebuild(ctx)

	var scheduler *Scheduler
	if d.opts.Refresh != nil && d.opts.RefreshInterval > 0 {
		var err error
		if scheduler, err = NewScheduler(d.logger); err != nil {
			d.status.Store(StatusStopped)
			return err
		}
		refresh := func(ctx context.Context) error {
			if err := d.opts.Refresh(ctx); err != nil {
				return err
			}
			return d.Rebuild(ctx)
		}
		if _, err := scheduler.ScheduleRefresh(ctx, d.opts.RefreshInterval, "refresh", refresh); err != nil {
			d.status.Store(StatusStopped)
			return err
		}
		scheduler.Start()
	}

	var watcher *FileWatcher
	if d.opts.WatchPath != "" {
		var err error
		watcher, err = NewFileWatcher(d.opts.WatchPath, d.opts.Debounce, d.logger, func(ctx context.Context) {
			_ = d.Rebuild(ctx)
		})
		if err == nil {
			err = watcher.Start(ctx)
		}
		if err != nil {
			d.logger.Warn("Dataset watching disabled", logfields.Error(err))
			watcher = nil
		}
	}

	d.status.Store(StatusRunning)
	<-ctx.Done()
	d.status.Store(StatusStopping)

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			d.logger.Warn("Error closing dataset watcher", logfields.Error(err))
		}
	}
	if scheduler != nil {
		if err := scheduler.Stop(); err != nil {
			d.logger.Warn("Error stopping scheduler", logfields.Error(err))
		}
	}
	d.status.Store(StatusStopped)
	return nil
}
