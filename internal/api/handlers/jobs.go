package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/trendscreen/internal/scheduler"
	"github.com/wonny/trendscreen/pkg/logger"
)

// JobSource exposes scheduler state.
type JobSource interface {
	GetJobStats() map[string]scheduler.JobStats
	GetJobHistory(name string) ([]scheduler.JobResult, error)
}

// JobsHandler reports scheduled job activity.
type JobsHandler struct {
	jobs   JobSource
	logger *logger.Logger
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(jobs JobSource, log *logger.Logger) *JobsHandler {
	return &JobsHandler{
		jobs:   jobs,
		logger: log,
	}
}

// List returns statistics of every job
// GET /api/v1/jobs
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.jobs.GetJobStats())
}

// History returns the recent results of one job
// GET /api/v1/jobs/{name}/history
func (h *JobsHandler) History(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	history, err := h.jobs.GetJobHistory(name)
	if err != nil {
		respondError(w, http.StatusNotFound, "Job not found")
		return
	}

	respondJSON(w, http.StatusOK, history)
}
