package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the provider's snapshot plus health and metrics
// endpoints.
type Server struct {
	provider *Provider
	httpSrv  *http.Server
	log      *slog.Logger
}

func NewServer(port int, provider *Provider, registry *prometheus.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{provider: provider, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/feed", s.handleFeed)
	mux.HandleFunc("/feed.json", s.handleFeedJSON)
	mux.HandleFunc("/healthz", s.handleHealth)
	if registry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	s.httpSrv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Start begins serving in a background goroutine.
func (s *Server) Start() {
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("server error", slog.Any("error", err))
		}
	}()
	s.log.Info("server listening", slog.String("addr", s.httpSrv.Addr))
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	body := s.provider.Snapshot()
	if body == nil {
		http.Error(w, "no feed yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/x-protobuf")
	_, _ = w.Write(body)
}

func (s *Server) handleFeedJSON(w http.ResponseWriter, r *http.Request) {
	body := s.provider.SnapshotJSON()
	if body == nil {
		http.Error(w, "no feed yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

type healthResponse struct {
	Status          string `json:"status"`
	LastUpdateEpoch int64  `json:"last_update_epoch"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	resp := healthResponse{Status: "ok"}
	if t := s.provider.LastUpdate(); !t.IsZero() {
		resp.LastUpdateEpoch = t.Unix()
	}
	_ = json.NewEncoder(w).Encode(resp)
}
