package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/scm-migration-workbench/internal/logging"
	"github.com/rflorenc/scm-migration-workbench/internal/migration"
	"github.com/rflorenc/scm-migration-workbench/internal/models"
)

// validationRun holds what a validation job needs and produces.
type validationRun struct {
	Owner     string
	Selection *models.Selection
	Result    *migration.Result
}

// ValidationStore provides thread-safe storage for validation runs, keyed by job ID.
type ValidationStore struct {
	mu   sync.RWMutex
	runs map[string]*validationRun
}

func NewValidationStore() *ValidationStore {
	return &ValidationStore{runs: make(map[string]*validationRun)}
}

func (vs *ValidationStore) Store(jobID string, run *validationRun) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.runs[jobID] = run
}

func (vs *ValidationStore) Get(jobID string) *validationRun {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.runs[jobID]
}

func (vs *ValidationStore) setResult(jobID string, result *migration.Result) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if run := vs.runs[jobID]; run != nil {
		run.Result = result
	}
}

func (vs *ValidationStore) result(jobID string) *migration.Result {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	if run := vs.runs[jobID]; run != nil {
		return run.Result
	}
	return nil
}

type validateRequest struct {
	TenantID        string            `json:"tenant_id"`
	Selection       *models.Selection `json:"selection"`
	FullConfig      *models.ConfigSet `json:"full_config"`
	DefaultStrategy models.Strategy   `json:"default_strategy,omitempty"`
}

// ValidateHandler starts an async validation job against a destination tenant.
func (s *Server) ValidateHandler(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Selection == nil {
		writeError(w, http.StatusBadRequest, "selection is required")
		return
	}
	if req.DefaultStrategy != "" && !req.DefaultStrategy.Valid() {
		writeError(w, http.StatusBadRequest, "invalid default_strategy: "+string(req.DefaultStrategy))
		return
	}

	tenant := s.Tenants.Get(req.TenantID)
	if tenant == nil {
		writeError(w, http.StatusNotFound, "destination tenant not found")
		return
	}
	api, err := s.NewAPI(tenant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	owner, release, err := s.Lock.Acquire(cancel)
	if err != nil {
		cancel()
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	job := s.Jobs.Create("validation", req.TenantID)
	job.SetCancel(cancel)
	s.Validations.Store(job.ID, &validationRun{Owner: owner, Selection: req.Selection})

	strategy := req.DefaultStrategy
	if strategy == "" {
		strategy = s.Config.Strategy()
	}
	opts := migration.Options{
		DefaultStrategy: strategy,
		SystemFolders:   s.Config.SystemFolders,
		Progress:        job.SetProgress,
		Detail:          job.AppendLog,
	}

	go func() {
		defer release()
		defer cancel()
		logger := logging.GetLogger("api").With().Str("job", job.ID).Str("tenant", tenant.Name).Logger()

		job.AppendLog(fmt.Sprintf("Validating selection against %s (%s)", tenant.Name, tenant.TSGID))
		result, err := migration.Validate(ctx, api, req.Selection, req.FullConfig, opts)
		switch {
		case errors.Is(err, migration.ErrCancelled):
			job.AppendLog("CANCELLED: validation stopped by user")
			job.Cancel()
			logger.Info().Msg("Validation cancelled")
			return
		case err != nil:
			job.AppendLog("ERROR: " + err.Error())
			job.Fail(err.Error())
			return
		}

		s.Validations.setResult(job.ID, result)
		if result.Report.Fatal != "" {
			job.AppendLog("ERROR: " + result.Report.Fatal)
			job.Fail(result.Report.Fatal)
			return
		}
		_, msg := result.Report.Outcome()
		job.AppendLog(msg)
		job.Complete()
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

type validationResponse struct {
	Status   string                   `json:"status"`
	Outcome  models.PushOutcome       `json:"outcome"`
	Message  string                   `json:"message"`
	Report   *models.ValidationReport `json:"report"`
	Plan     *migration.FetchPlan     `json:"plan,omitempty"`
	Filtered *models.Selection        `json:"filtered,omitempty"`
}

// GetValidation returns the report of a finished validation job.
func (s *Server) GetValidation(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job := s.Jobs.Get(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}

	st := job.Snapshot()
	result := s.Validations.result(jobID)
	switch {
	case st.Status == models.JobRunning:
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"status":  st.Status,
			"percent": st.Percent,
			"message": "validation is still in progress",
		})
		return
	case result == nil:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": st.Status,
			"error":  st.Error,
		})
		return
	}

	outcome, msg := result.Report.Outcome()
	writeJSON(w, http.StatusOK, validationResponse{
		Status:   st.Status,
		Outcome:  outcome,
		Message:  msg,
		Report:   result.Report,
		Plan:     result.Plan,
		Filtered: result.Filtered,
	})
}

// PushFilterHandler returns the pruned selection of a completed validation,
// refusing when the report does not allow a push.
func (s *Server) PushFilterHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JobID string `json:"job_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	job := s.Jobs.Get(req.JobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "validation job not found")
		return
	}
	if job.CurrentStatus() != models.JobCompleted {
		writeError(w, http.StatusConflict, "validation is not complete")
		return
	}
	result := s.Validations.result(req.JobID)
	if result == nil {
		writeError(w, http.StatusNotFound, "validation result not found")
		return
	}

	outcome, msg := result.Report.Outcome()
	if outcome != models.OutcomeReady {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"outcome": outcome,
			"message": msg,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outcome":   outcome,
		"message":   msg,
		"selection": result.Filtered,
	})
}

// IncludeDependenciesHandler adds the proposed missing dependencies to a selection.
func (s *Server) IncludeDependenciesHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Selection    *models.Selection          `json:"selection"`
		Dependencies []models.MissingDependency `json:"missing_dependencies"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Selection == nil {
		writeError(w, http.StatusBadRequest, "selection is required")
		return
	}
	writeJSON(w, http.StatusOK, migration.IncludeDependencies(req.Selection, req.Dependencies))
}
