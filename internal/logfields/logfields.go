package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStation    = "station"
	KeyStationID  = "stationuuid"
	KeySlug       = "slug"
	KeyKind       = "kind"
	KeyBucket     = "bucket"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyTask       = "task"
	KeyCount      = "count"
	KeyAttempt    = "attempt"
	KeyDurationMS = "duration_ms"
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Station(name string) slog.Attr   { return slog.String(KeyStation, name) }
func StationID(id string) slog.Attr   { return slog.String(KeyStationID, id) }
func Slug(s string) slog.Attr         { return slog.String(KeySlug, s) }
func Kind(k string) slog.Attr         { return slog.String(KeyKind, k) }
func Bucket(key string) slog.Attr     { return slog.String(KeyBucket, key) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Task(t string) slog.Attr         { return slog.String(KeyTask, t) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Method(m string) slog.Attr       { return slog.String(KeyMethod, m) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
