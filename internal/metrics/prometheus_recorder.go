package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "eradio"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	sitemapDuration *prom.HistogramVec
	sitemapURLs     *prom.GaugeVec
	stations        prom.Gauge
	fetchResults    *prom.CounterVec
	retries         *prom.CounterVec
	iconResults     *prom.CounterVec
	taskResults     *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them with reg.
// A nil reg gets a fresh private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		sitemapDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "sitemap_build_duration_seconds",
			Help:      "Duration of sitemap builds",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		sitemapURLs: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "sitemap_urls",
			Help:      "URL entries in the last sitemap by section",
		}, []string{"section"}),
		stations: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "stations",
			Help:      "Stations in the dataset at the last build",
		}),
		fetchResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_results_total",
			Help:      "Station dataset refreshes by outcome",
		}, []string{"result"}),
		retries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Retried outbound operations",
		}, []string{"operation"}),
		iconResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "icon_results_total",
			Help:      "Icon downloads by outcome",
		}, []string{"result"}),
		taskResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_results_total",
			Help:      "Maintenance task station results by outcome",
		}, []string{"task", "result"}),
	}
	reg.MustRegister(pr.sitemapDuration, pr.sitemapURLs, pr.stations, pr.fetchResults, pr.retries, pr.iconResults, pr.taskResults)
	return pr
}

func (p *PrometheusRecorder) ObserveSitemapBuild(d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := string(ResultFailed)
	if success {
		res = string(ResultSuccess)
	}
	p.sitemapDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetSitemapURLs(section string, n int) {
	if p == nil {
		return
	}
	p.sitemapURLs.WithLabelValues(section).Set(float64(n))
}

func (p *PrometheusRecorder) SetStations(n int) {
	if p == nil {
		return
	}
	p.stations.Set(float64(n))
}

func (p *PrometheusRecorder) IncFetchResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.fetchResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncRetry(operation string) {
	if p == nil {
		return
	}
	p.retries.WithLabelValues(operation).Inc()
}

func (p *PrometheusRecorder) IncIconResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.iconResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncTaskResult(task string, result ResultLabel) {
	if p == nil {
		return
	}
	p.taskResults.WithLabelValues(task, string(result)).Inc()
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
