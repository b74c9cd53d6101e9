package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"camelize/internal/core/app"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

// runStatus tracks the outcome of the latest watch run for /health.
type runStatus struct {
	mu      sync.Mutex
	lastRun string
	lastAt  time.Time
	lastErr error
}

func newRunStatus() *runStatus {
	return &runStatus{}
}

func (s *runStatus) Record(report *app.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAt = time.Now().UTC()
	s.lastErr = err
	if report != nil {
		s.lastRun = report.RunID
	}
}

func (s *runStatus) Health(context.Context) HealthStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: map[string]string{"watcher": "up"},
	}
	switch {
	case s.lastAt.IsZero():
		status.Components["last_run"] = "pending"
	case s.lastErr != nil:
		status.Status = "degraded"
		status.Components["last_run"] = "error: " + s.lastErr.Error()
	default:
		status.Components["last_run"] = s.lastRun
	}
	return status
}

type ObservabilityServer struct {
	addr   string
	health func(context.Context) HealthStatus
	server *http.Server
	ln     net.Listener
}

func NewObservabilityServer(addr string, health func(context.Context) HealthStatus) *ObservabilityServer {
	return &ObservabilityServer{
		addr:   addr,
		health: health,
	}
}

func (s *ObservabilityServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := s.health(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if status.Status != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	return mux
}

// Start binds the address synchronously so a busy port is reported to the caller.
func (s *ObservabilityServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	slog.Info("observability server starting", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

// Addr is the bound address once started.
func (s *ObservabilityServer) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

func (s *ObservabilityServer) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
