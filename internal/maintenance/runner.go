// Package maintenance runs station-by-station repair tasks over the dataset.
//
// A Task selects the stations it applies to and fixes one station at a time.
// The Runner owns everything else: progress in the store, pacing between
// remote lookups, saving after each change, run history and notification.
package maintenance

import (
	"context"
	"errors"
	"log/slog"
	"time"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/metrics"
	"github.com/e-radio/eradio/internal/notify"
	"github.com/e-radio/eradio/internal/station"
	"github.com/e-radio/eradio/internal/store"
)

// ErrUnresolved marks a station the task could not fix. Such stations are
// remembered in the store and not retried by later runs.
var ErrUnresolved = derrors.NewError(derrors.CategoryNotFound, "no match").Build()

// Task fixes stations one at a time.
type Task struct {
	Name string
	// Remote tasks call an external service per station and are paced by Options.Sleep.
	Remote bool
	Select func(st station.Station) bool
	// Apply returns the fixed station. Returning it unchanged with a nil
	// error counts as unchanged.
	Apply func(ctx context.Context, st station.Station) (station.Station, error)
}

// ProgressStore is the part of store.Store the runner uses.
type ProgressStore interface {
	MarkSkipped(ctx context.Context, task, stationID, reason string) error
	Skipped(ctx context.Context, task string) (map[string]string, error)
	ClearSkipped(ctx context.Context, task string) error
	AppendRun(ctx context.Context, run store.Run) error
}

// SaveFunc persists the full dataset.
type SaveFunc func([]station.Station) error

// Options tune a run.
type Options struct {
	Max          int           // stations to process; 0 means all
	Sleep        time.Duration // pause after each remote lookup
	RetrySkipped bool          // forget earlier skips before running
}

// Summary counts per-station outcomes.
type Summary struct {
	Candidates int
	Changed    int
	Unchanged  int
	Unresolved int
	Failed     int
	Skipped    int
}

func (s Summary) asMap() map[string]int {
	return map[string]int{
		"candidates": s.Candidates,
		"changed":    s.Changed,
		"unchanged":  s.Unchanged,
		"unresolved": s.Unresolved,
		"failed":     s.Failed,
		"skipped":    s.Skipped,
	}
}

// Runner executes Tasks.
type Runner struct {
	Store    ProgressStore
	Notifier notify.Notifier
	Recorder metrics.Recorder
	Logger   *slog.Logger
	Now      func() time.Time
}

func (r *Runner) defaults() (*slog.Logger, metrics.Recorder, notify.Notifier, func() time.Time) {
	logger, rec, n, now := r.Logger, r.Recorder, r.Notifier, r.Now
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if n == nil {
		n = notify.Noop{}
	}
	if now == nil {
		now = time.Now
	}
	return logger, rec, n, now
}

// Run applies task to the selected stations in order, saving after every
// change. On cancellation it stops after the current station and returns
// the stations processed so far along with ctx.Err().
func (r *Runner) Run(ctx context.Context, task Task, stations []station.Station, opts Options, save SaveFunc) ([]station.Station, Summary, error) {
	logger, rec, notifier, now := r.defaults()
	logger = logger.With(logfields.Task(task.Name))
	started := now()

	skipped := map[string]string{}
	if r.Store != nil {
		if opts.RetrySkipped {
			if err := r.Store.ClearSkipped(ctx, task.Name); err != nil {
				return stations, Summary{}, err
			}
		}
		var err error
		if skipped, err = r.Store.Skipped(ctx, task.Name); err != nil {
			return stations, Summary{}, err
		}
	}

	working := append([]station.Station(nil), stations...)
	var sum Summary
	var runErr error
	processed := 0

	for i := range working {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		st := working[i]
		if !task.Select(st) {
			continue
		}
		sum.Candidates++
		if _, ok := skipped[st.UUID]; ok && st.UUID != "" {
			sum.Skipped++
			rec.IncTaskResult(task.Name, metrics.ResultSkipped)
			continue
		}
		if opts.Max > 0 && processed >= opts.Max {
			break
		}
		processed++

		fixed, err := task.Apply(ctx, st)
		switch {
		case err != nil && ctx.Err() != nil:
			rec.IncTaskResult(task.Name, metrics.ResultCanceled)
			runErr = ctx.Err()
		case errors.Is(err, ErrUnresolved):
			sum.Unresolved++
			rec.IncTaskResult(task.Name, metrics.ResultSkipped)
			logger.Info("station unresolved", logfields.Slug(st.Slug), logfields.Error(err))
			r.markSkipped(ctx, logger, task.Name, st, err)
		case err != nil:
			sum.Failed++
			rec.IncTaskResult(task.Name, metrics.ResultFailed)
			logger.Warn("station failed", logfields.Slug(st.Slug), logfields.Error(err))
		case stationEqual(fixed, st):
			sum.Unchanged++
			rec.IncTaskResult(task.Name, metrics.ResultSuccess)
		default:
			working[i] = fixed
			if runErr = save(working); runErr == nil {
				sum.Changed++
				rec.IncTaskResult(task.Name, metrics.ResultSuccess)
				logger.Info("station updated", logfields.Slug(st.Slug),
					slog.String("state", fixed.State), slog.String("city", fixed.City))
			}
		}
		if runErr != nil {
			break
		}

		if task.Remote && opts.Sleep > 0 {
			if runErr = sleep(ctx, opts.Sleep); runErr != nil {
				break
			}
		}
	}

	r.finish(logger, notifier, task.Name, started, now(), len(working), sum)
	return working, sum, runErr
}

// finish records the run and announces changes. Both use a fresh context so
// an interrupted run is still recorded.
func (r *Runner) finish(logger *slog.Logger, n notify.Notifier, task string, started, finished time.Time, total int, sum Summary) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if r.Store != nil {
		run := store.Run{Task: task, Started: started, Finished: finished, Summary: sum.asMap()}
		if err := r.Store.AppendRun(ctx, run); err != nil {
			logger.Warn("failed to record run", logfields.Error(err))
		}
	}
	if sum.Changed > 0 {
		ev := notify.Event{Task: task, Stations: total, Changed: sum.Changed, Details: sum.asMap(), Timestamp: finished}
		if err := n.StationsUpdated(ctx, ev); err != nil {
			logger.Warn("failed to publish update", logfields.Error(err))
		}
	}
	logger.Info("task finished",
		slog.Int("candidates", sum.Candidates),
		slog.Int("changed", sum.Changed),
		slog.Int("unresolved", sum.Unresolved),
		slog.Int("failed", sum.Failed),
		slog.Int("skipped", sum.Skipped),
		logfields.DurationMS(float64(finished.Sub(started).Milliseconds())))
}

func (r *Runner) markSkipped(ctx context.Context, logger *slog.Logger, task string, st station.Station, reason error) {
	if r.Store == nil || st.UUID == "" {
		return
	}
	if err := r.Store.MarkSkipped(ctx, task, st.UUID, reason.Error()); err != nil {
		logger.Warn("failed to record skipped station", logfields.StationID(st.UUID), logfields.Error(err))
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func stationEqual(a, b station.Station) bool {
	return a.State == b.State && a.City == b.City
}
