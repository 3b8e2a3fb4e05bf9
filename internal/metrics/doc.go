// Package metrics provides the observability hooks used by eradio.
//
// Components receive a Recorder through their constructors or options and
// default to NoopRecorder, so metrics never need nil checks at call sites.
// The serve command swaps in a PrometheusRecorder and exposes it on /metrics:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.NewPrometheusRecorder(reg)
//	mux.Handle("/metrics", metrics.HTTPHandler(reg))
//
// One-shot commands keep the NoopRecorder.
package metrics
