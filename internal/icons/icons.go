// Package icons caches station favicons locally and points the dataset at
// the cached copies.
package icons

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/httpclient"
	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/metrics"
	"github.com/e-radio/eradio/internal/station"
)

// Task is the progress key used for skipped icons.
const Task = "icons"

// MaxIconSize caps a single icon download.
const MaxIconSize = 1 << 20

// SkipStore persists stations whose icon could not be fetched.
type SkipStore interface {
	MarkSkipped(ctx context.Context, task, stationID, reason string) error
	Skipped(ctx context.Context, task string) (map[string]string, error)
}

// SaveFunc persists the full dataset.
type SaveFunc func([]station.Station) error

// Summary counts the outcome of a run.
type Summary struct {
	Candidates int
	Downloaded int
	Failed     int
	Skipped    int
}

// Fetcher downloads favicons into Dir and rewrites them to URLPrefix paths.
type Fetcher struct {
	HTTP      *httpclient.Client
	Dir       string
	URLPrefix string
	Skips     SkipStore
	Recorder  metrics.Recorder
	Logger    *slog.Logger
}

var extByType = map[string]string{
	"image/png":                ".png",
	"image/jpeg":               ".jpg",
	"image/jpg":                ".jpg",
	"image/gif":                ".gif",
	"image/webp":               ".webp",
	"image/avif":               ".avif",
	"image/svg+xml":            ".svg",
	"image/x-icon":             ".ico",
	"image/vnd.microsoft.icon": ".ico",
	"image/bmp":                ".bmp",
}

// Extension picks a file extension for an icon from its media type, falling
// back to the URL path. It returns "" for unknown formats.
func Extension(contentType, rawURL string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if ext, ok := extByType[strings.ToLower(mt)]; ok {
			return ext
		}
	}
	if u, err := url.Parse(rawURL); err == nil {
		ext := strings.ToLower(path.Ext(u.Path))
		for _, known := range extByType {
			if ext == known {
				return ext
			}
		}
		if ext == ".jpeg" {
			return ".jpg"
		}
	}
	return ""
}

func isRemote(favicon string) bool {
	u, err := url.Parse(strings.TrimSpace(favicon))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type update struct {
	index   int
	favicon string
	done    chan error
}

// Run downloads icons sequentially, handing each favicon rewrite to a single
// writer goroutine that saves the dataset after every update. limit caps the
// number of download attempts (0 means no limit). It returns the updated
// stations.
func (f *Fetcher) Run(ctx context.Context, stations []station.Station, limit int, save SaveFunc) ([]station.Station, Summary, error) {
	logger := f.Logger
	if logger == nil {
		logger = slog.Default()
	}
	rec := f.Recorder
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}

	skipped := map[string]string{}
	if f.Skips != nil {
		var err error
		if skipped, err = f.Skips.Skipped(ctx, Task); err != nil {
			return stations, Summary{}, err
		}
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return stations, Summary{}, derrors.WrapError(err, derrors.CategoryFileSystem, "create icons directory").
			WithContext("path", f.Dir).Build()
	}

	working := append([]station.Station(nil), stations...)
	snapshot := append([]station.Station(nil), stations...)

	updates := make(chan update)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for u := range updates {
			working[u.index].Favicon = u.favicon
			u.done <- save(working)
		}
	}()

	var sum Summary
	var writeErr error
	attempts := 0
	for i, st := range snapshot {
		if ctx.Err() != nil {
			break
		}
		if st.Slug == "" || !isRemote(st.Favicon) {
			continue
		}
		sum.Candidates++
		if _, ok := skipped[st.UUID]; ok && st.UUID != "" {
			sum.Skipped++
			rec.IncIconResult(metrics.ResultSkipped)
			continue
		}
		if limit > 0 && attempts >= limit {
			break
		}
		attempts++

		name, err := f.download(ctx, st)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			sum.Failed++
			rec.IncIconResult(metrics.ResultFailed)
			logger.Warn("icon download failed",
				logfields.Slug(st.Slug), logfields.URL(st.Favicon), logfields.Error(err))
			if f.Skips != nil && st.UUID != "" {
				if serr := f.Skips.MarkSkipped(ctx, Task, st.UUID, err.Error()); serr != nil {
					logger.Warn("failed to record skipped icon", logfields.Error(serr))
				}
			}
			continue
		}

		sum.Downloaded++
		rec.IncIconResult(metrics.ResultSuccess)
		favicon := "/" + strings.Trim(f.URLPrefix, "/") + "/" + name
		logger.Info("icon cached", logfields.Slug(st.Slug), logfields.Path(favicon))
		done := make(chan error, 1)
		updates <- update{index: i, favicon: favicon, done: done}
		if err := <-done; err != nil {
			writeErr = err
			break
		}
	}
	close(updates)
	wg.Wait()

	if writeErr != nil {
		return working, sum, writeErr
	}
	return working, sum, ctx.Err()
}

func (f *Fetcher) download(ctx context.Context, st station.Station) (string, error) {
	resp, err := f.HTTP.Get(ctx, "icons", st.Favicon, http.Header{"Accept": {"image/*"}})
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp.ContentType)), "image/") {
		return "", derrors.NewError(derrors.CategoryValidation, "not an image").
			WithContext("content_type", resp.ContentType).Build()
	}
	if len(resp.Body) == 0 {
		return "", derrors.NewError(derrors.CategoryValidation, "empty image").Build()
	}
	ext := Extension(resp.ContentType, st.Favicon)
	if ext == "" {
		return "", derrors.NewError(derrors.CategoryValidation, "unsupported image type").
			WithContext("content_type", resp.ContentType).Build()
	}

	name := st.Slug + ext
	if err := writeAtomic(filepath.Join(f.Dir, name), resp.Body); err != nil {
		return "", err
	}
	return name, nil
}

func writeAtomic(p string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), ".icon-*")
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create temp icon").Build()
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write icon").Build()
	}
	if err := tmp.Close(); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "close icon").Build()
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "chmod icon").Build()
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "replace icon").
			WithContext("path", p).Build()
	}
	return nil
}
