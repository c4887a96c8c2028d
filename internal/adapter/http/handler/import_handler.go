package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/propfolio/backoffice/internal/adapter/http/dto"
	"github.com/propfolio/backoffice/internal/adapter/http/middleware"
	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

// ImportService defines the behavior needed by ImportHandler.
type ImportService interface {
	Submit(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error)
	Process(ctx context.Context, job *domain.ImportJob) error
	JobStatus(ctx context.Context, jobID string) (*domain.ImportJob, error)
}

// ImportHandler handles vendor import HTTP requests.
type ImportHandler struct {
	importUC ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importUC ImportService) *ImportHandler {
	return &ImportHandler{importUC: importUC}
}

// Submit enqueues a vendor import job and returns its id.
func (h *ImportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.SubmitImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	job, err := h.importUC.Submit(r.Context(), req.ToUseCaseInput(session))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to submit vendor import", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.SubmitImportResponse{
		JobID:   job.ID,
		Message: "vendor import queued",
	})
}

// Status returns the recorded state of an import job.
func (h *ImportHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing job ID", "")
		return
	}

	job, err := h.importUC.JobStatus(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get job status", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.JobStatusFromDomain(job))
}

// Process runs the reconciliation pipeline for a dequeued job. This endpoint
// is internal: the dispatcher delivers job payloads here and interprets a
// non-2xx response as a failed delivery.
func (h *ImportHandler) Process(w http.ResponseWriter, r *http.Request) {
	var job domain.ImportJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeError(w, http.StatusBadRequest, "invalid job payload", err.Error())
		return
	}

	if job.ID == "" || job.StatementID == "" {
		writeError(w, http.StatusBadRequest, "invalid job payload", "job_id and statement_id are required")
		return
	}

	if err := h.importUC.Process(r.Context(), &job); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to process vendor import", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.JobStatusFromDomain(&job))
}
