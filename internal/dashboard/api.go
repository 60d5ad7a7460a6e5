package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/amishk599/listingwatch/internal/logtail"
	"github.com/amishk599/listingwatch/internal/model"
	"github.com/amishk599/listingwatch/internal/scheduler"
)

type jobsResponse struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Jobs    []model.Listing `json:"jobs"`
}

type logsResponse struct {
	Success bool     `json:"success"`
	Logs    []string `json:"logs"`
}

type actionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.Stats())
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	jobs, total := s.monitor.Listings(jobsLimit)
	writeJSON(w, http.StatusOK, jobsResponse{Success: true, Count: total, Jobs: jobs})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	lines, err := logtail.Tail(s.logFile, logsLimit)
	if err != nil {
		s.logger.Error("failed to read log file", "path", s.logFile, "error", err)
		writeJSON(w, http.StatusInternalServerError, actionResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logsResponse{Success: true, Logs: lines})
}

func (s *Server) handleTestNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.SendTest(r.Context()); err != nil {
		if errors.Is(err, scheduler.ErrNotConfigured) {
			s.fail(w, "Notifier not configured")
			return
		}
		s.fail(w, err.Error())
		return
	}
	s.ok(w, "Test message sent!")
}

// A cycle started from the dashboard runs to completion even if the client
// goes away.
func (s *Server) handleForceCheck(w http.ResponseWriter, r *http.Request) {
	res, err := s.monitor.CheckNow(context.WithoutCancel(r.Context()))
	if err != nil {
		s.fail(w, err.Error())
		return
	}
	if res.Skipped {
		s.ok(w, "Job check completed! Source returned no listings.")
		return
	}
	s.ok(w, fmt.Sprintf("Job check completed! %d new.", len(res.NewIDs)))
}

func (s *Server) handleStartMonitor(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.Start(s.loopCtx); err != nil {
		if errors.Is(err, scheduler.ErrAlreadyRunning) {
			s.fail(w, "Monitor already running")
			return
		}
		s.fail(w, err.Error())
		return
	}
	s.ok(w, "Monitor started!")
}

func (s *Server) handleStopMonitor(w http.ResponseWriter, r *http.Request) {
	if err := s.monitor.Stop(context.WithoutCancel(r.Context())); err != nil {
		if errors.Is(err, scheduler.ErrNotRunning) {
			s.fail(w, "Monitor not running")
			return
		}
		s.fail(w, err.Error())
		return
	}
	s.ok(w, "Monitor stopped!")
}

// Actions report failure in the body with a 200, which the page script expects.
func (s *Server) ok(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, actionResponse{Success: true, Message: msg})
}

func (s *Server) fail(w http.ResponseWriter, msg string) {
	s.logger.Warn("dashboard action failed", "error", msg)
	writeJSON(w, http.StatusOK, actionResponse{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
