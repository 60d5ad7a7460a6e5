// Package dashboard serves the web control panel: an HTML page, a JSON API
// for stats and actions, an RSS feed of current listings, and /metrics.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sloghttp "github.com/samber/slog-http"

	"github.com/amishk599/listingwatch/internal/model"
	"github.com/amishk599/listingwatch/internal/poller"
	"github.com/amishk599/listingwatch/internal/scheduler"
)

const (
	jobsLimit = 20
	logsLimit = 50
)

// Monitor is the subset of scheduler.Monitor the dashboard drives.
type Monitor interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	CheckNow(ctx context.Context) (poller.Result, error)
	SendTest(ctx context.Context) error
	Stats() scheduler.Stats
	Listings(limit int) ([]model.Listing, int)
	JobURL(id string) string
}

// Server handles dashboard HTTP requests.
type Server struct {
	monitor Monitor
	logFile string
	metrics http.Handler
	logger  *slog.Logger

	// loopCtx is the lifetime given to loops started from the dashboard,
	// so a loop outlives the request that started it.
	loopCtx context.Context
}

// New creates a dashboard server. metrics may be nil to disable /metrics.
func New(m Monitor, logFile string, metrics http.Handler, logger *slog.Logger) *Server {
	return &Server{
		monitor: m,
		logFile: logFile,
		metrics: metrics,
		logger:  logger,
		loopCtx: context.Background(),
	}
}

// Handler returns the routed handler wrapped with access logging and
// panic recovery.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /feed.rss", s.handleFeed)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/jobs", s.handleJobs)
	mux.HandleFunc("GET /api/logs", s.handleLogs)
	mux.HandleFunc("POST /api/test-telegram", s.handleTestNotification)
	mux.HandleFunc("POST /api/force-check", s.handleForceCheck)
	mux.HandleFunc("POST /api/start-monitor", s.handleStartMonitor)
	mux.HandleFunc("POST /api/stop-monitor", s.handleStopMonitor)

	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger.WithGroup("http"))(handler)
	return handler
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}
	s.logger.Info("dashboard stopped")
	return nil
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	} else if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return fmt.Sprintf("%s://%s", scheme, r.Host)
}
