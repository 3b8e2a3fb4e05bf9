package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultSkipped  ResultLabel = "skipped"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// Recorder defines observability hooks for sitemap builds and maintenance tasks.
type Recorder interface {
	ObserveSitemapBuild(d time.Duration, success bool)
	SetSitemapURLs(section string, n int)
	SetStations(n int)
	IncFetchResult(result ResultLabel)
	IncRetry(operation string)
	IncIconResult(result ResultLabel)
	IncTaskResult(task string, result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not served).
type NoopRecorder struct{}

func (NoopRecorder) ObserveSitemapBuild(time.Duration, bool) {}
func (NoopRecorder) SetSitemapURLs(string, int)              {}
func (NoopRecorder) SetStations(int)                         {}
func (NoopRecorder) IncFetchResult(ResultLabel)              {}
func (NoopRecorder) IncRetry(string)                         {}
func (NoopRecorder) IncIconResult(ResultLabel)               {}
func (NoopRecorder) IncTaskResult(string, ResultLabel)       {}
