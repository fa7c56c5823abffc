package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/scm-migration-workbench/internal/logging"
	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.Jobs.List()
	out := make([]models.JobStatus, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Snapshot())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := s.Jobs.Get(id)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// CancelJob cancels a running job. The job is asked to stop between network
// calls; if it has not let go of the workflow lock after the grace period,
// the lock is released on its behalf.
func (s *Server) CancelJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := s.Jobs.Get(id)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.CurrentStatus() != models.JobRunning {
		writeError(w, http.StatusConflict, "job is not running")
		return
	}
	job.Cancel()
	job.AppendLog("CANCELLED: validation stopped by user")

	forced := false
	if run := s.Validations.Get(id); run != nil && run.Owner == s.Lock.Owner() {
		forced = s.Lock.Cancel(s.Config.CancelGrace)
	}
	if forced {
		logger := logging.GetLogger("api")
		logger.Warn().Str("job", id).Dur("grace", s.Config.CancelGrace).
			Msg("Job did not stop in time, workflow lock released")
		job.AppendLog("Workflow lock released after the grace period")
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": models.JobCancelled, "forced": forced})
}
