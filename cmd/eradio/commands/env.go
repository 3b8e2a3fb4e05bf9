package commands

import (
	"context"
	"log/slog"

	"github.com/e-radio/eradio/internal/config"
	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/httpclient"
	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/metrics"
	"github.com/e-radio/eradio/internal/notify"
	"github.com/e-radio/eradio/internal/retry"
	"github.com/e-radio/eradio/internal/station"
	"github.com/e-radio/eradio/internal/store"
)

// env bundles the configuration-derived dependencies of a command.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
}

func newEnv(g *Global, root *CLI) (*env, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logging.NewLogger(g.Stderr, root.Verbose)
	slog.SetDefault(logger)
	g.Logger = logger
	return &env{cfg: cfg, logger: logger, recorder: metrics.NoopRecorder{}}, nil
}

// httpClient returns a retrying client; maxBody <= 0 keeps the default cap.
func (e *env) httpClient(maxBody int64) *httpclient.Client {
	opts := []httpclient.Option{httpclient.WithRecorder(e.recorder)}
	if maxBody > 0 {
		opts = append(opts, httpclient.WithMaxBody(maxBody))
	}
	return httpclient.New(e.cfg.Source.UserAgent, e.cfg.Source.TimeoutDuration(), retry.FromConfig(e.cfg.Retry), opts...)
}

func (e *env) openStore() (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(e.cfg.Data.StateDB)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryStore, "open state database").
			WithContext("path", e.cfg.Data.StateDB).Build()
	}
	return s, nil
}

// notifier connects the configured notifier. Connection failures are logged
// and notifications are disabled for the run.
func (e *env) notifier(ctx context.Context) notify.Notifier {
	n, err := notify.New(ctx, e.cfg.Notify, e.logger)
	if err != nil {
		e.logger.Warn("Notifications disabled", logfields.Error(err))
		return notify.Noop{}
	}
	return n
}

// loadStations reads the dataset. When allowMissing is set an absent file
// yields an empty dataset.
func (e *env) loadStations(allowMissing bool) ([]station.Station, error) {
	stations, err := station.Load(e.cfg.Data.StationsPath)
	if err != nil && allowMissing && derrors.HasCategory(err, derrors.CategoryNotFound) {
		return nil, nil
	}
	return stations, err
}

func (e *env) saveStations(stations []station.Station) error {
	return station.Save(e.cfg.Data.StationsPath, stations)
}
