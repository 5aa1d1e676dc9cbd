package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/rlmproc/internal/pipeline"
)

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()

	resp := map[string]any{
		"job_id":   snap.ID,
		"query":    snap.Query,
		"filename": snap.Filename,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	}
	if snap.ContentHash != "" {
		resp["content_hash"] = snap.ContentHash
	}
	if snap.Status.Terminal() {
		resp["result_url"] = fmt.Sprintf("/api/process/%s/result", snap.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	if !snap.Status.Terminal() {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error":  "job not finished",
			"status": snap.Status,
			"phase":  snap.Phase,
		})
		return
	}

	resp := map[string]any{
		"job_id":   snap.ID,
		"query":    snap.Query,
		"filename": snap.Filename,
		"status":   snap.Status,
	}
	if res := job.Result(); res != nil {
		resp["result"] = res
	}
	if len(snap.Progress.Errors) > 0 {
		resp["errors"] = snap.Progress.Errors
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleListJobs returns a snapshot of every job the store still tracks,
// newest first.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	snaps := make([]pipeline.JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		snaps = append(snaps, j.Snapshot())
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"jobs":        snaps,
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}

// handleDeleteJob forgets a finished job. Running jobs cannot be removed;
// they would keep processing with no way to observe the outcome.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	if !job.Snapshot().Status.Terminal() {
		jsonError(w, "job still running", http.StatusConflict)
		return
	}
	s.orchestrator.DeleteJob(jobID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"deleted": jobID})
}
