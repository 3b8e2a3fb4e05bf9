// Package server exposes the generated sitemap over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/e-radio/eradio/internal/daemon"
	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/logfields"
	"github.com/e-radio/eradio/internal/sitemap"
)

// Source provides the current sitemap.
type Source interface {
	Current() daemon.Snapshot
	GetStatus() daemon.Status
}

// Server serves /sitemap.xml, /healthz and optionally /metrics.
type Server struct {
	addr    string
	source  Source
	metrics http.Handler
	logger  *slog.Logger
	adapter *derrors.HTTPErrorAdapter
	srv     *http.Server
}

// New returns a server for addr. metrics may be nil.
func New(addr string, source Source, metrics http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:    addr,
		source:  source,
		metrics: metrics,
		logger:  logger,
		adapter: derrors.NewHTTPErrorAdapter(logger),
	}
}

// Handler returns the routed and wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sitemap.xml", s.handleSitemap)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	return chain(s.logger, s.adapter)(mux)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	snap := s.source.Current()
	if snap.Err != nil && len(snap.XML) == 0 {
		s.adapter.WriteErrorResponse(w, r, snap.Err)
		return
	}
	w.Header().Set("Content-Type", sitemap.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(snap.XML)))
	if !snap.BuiltAt.IsZero() {
		w.Header().Set("Last-Modified", snap.BuiltAt.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		_, _ = w.Write(snap.XML)
	}
}

type healthResponse struct {
	Status    string         `json:"status"`
	Daemon    string         `json:"daemon"`
	BuiltAt   *time.Time     `json:"built_at,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
	LastError string         `json:"last_error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.source.Current()
	resp := healthResponse{Status: "ok", Daemon: string(s.source.GetStatus()), Counts: snap.Counts}
	if !snap.BuiltAt.IsZero() {
		built := snap.BuiltAt.UTC()
		resp.BuiltAt = &built
	}
	status := http.StatusOK
	if snap.Err != nil {
		resp.LastError = snap.Err.Error()
		if len(snap.XML) == 0 {
			resp.Status = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Status = "degraded"
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryRuntime, "listen").WithContext("addr", s.addr).Build()
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return derrors.WrapError(err, derrors.CategoryRuntime, "http server").Build()
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown", logfields.Error(err))
		return err
	}
	<-errCh
	return nil
}
