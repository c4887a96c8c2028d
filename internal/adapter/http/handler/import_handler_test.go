package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/propfolio/backoffice/internal/adapter/http/dto"
	"github.com/propfolio/backoffice/internal/adapter/http/middleware"
	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

type importServiceStub struct {
	submitFn  func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error)
	processFn func(ctx context.Context, job *domain.ImportJob) error
	statusFn  func(ctx context.Context, jobID string) (*domain.ImportJob, error)
}

func (s *importServiceStub) Submit(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
	return s.submitFn(ctx, input)
}

func (s *importServiceStub) Process(ctx context.Context, job *domain.ImportJob) error {
	return s.processFn(ctx, job)
}

func (s *importServiceStub) JobStatus(ctx context.Context, jobID string) (*domain.ImportJob, error) {
	return s.statusFn(ctx, jobID)
}

func withSession(r *http.Request, session domain.Session) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.SessionContextKey, session)
	return r.WithContext(ctx)
}

func setChiURLParam(r *http.Request, key, value string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{
			Keys:   []string{key},
			Values: []string{value},
		},
	}))
}

func TestImportHandler_Submit_Success(t *testing.T) {
	job := &domain.ImportJob{ID: "vendor-1725148800123", Status: domain.JobQueued}

	var captured usecase.SubmitImportInput
	handler := NewImportHandler(&importServiceStub{
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			captured = input
			return job, nil
		},
		processFn: func(ctx context.Context, job *domain.ImportJob) error { return nil },
		statusFn:  func(ctx context.Context, jobID string) (*domain.ImportJob, error) { return nil, nil },
	})

	body, _ := json.Marshal(dto.SubmitImportRequest{
		CurrentStatementID: "st-1",
		Vendor:             "acme-property-services",
		PDFBase64:          "JVBERi0xLjQ=",
	})

	req := httptest.NewRequest(http.MethodPost, "/vendor-import", bytes.NewReader(body))
	req = withSession(req, domain.Session{UserID: "user-1", OrgID: "org-1"})
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	// A successful submission answers 200 with the minted job id; the work
	// itself is asynchronous.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if captured.StatementID != "st-1" || captured.Vendor != "acme-property-services" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}
	if captured.Session.OrgID != "org-1" {
		t.Fatalf("expected session to propagate, got %+v", captured.Session)
	}

	var resp dto.SubmitImportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.JobID != "vendor-1725148800123" {
		t.Fatalf("expected job ID vendor-1725148800123, got %s", resp.JobID)
	}
}

func TestImportHandler_Submit_NoSession(t *testing.T) {
	handler := NewImportHandler(&importServiceStub{
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			t.Fatal("Submit should not be called without a session")
			return nil, nil
		},
		processFn: func(ctx context.Context, job *domain.ImportJob) error { return nil },
		statusFn:  func(ctx context.Context, jobID string) (*domain.ImportJob, error) { return nil, nil },
	})

	req := httptest.NewRequest(http.MethodPost, "/vendor-import", bytes.NewBufferString("{}"))
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestImportHandler_Submit_InvalidBody(t *testing.T) {
	handler := NewImportHandler(&importServiceStub{
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			t.Fatal("Submit should not be called on invalid body")
			return nil, nil
		},
		processFn: func(ctx context.Context, job *domain.ImportJob) error { return nil },
		statusFn:  func(ctx context.Context, jobID string) (*domain.ImportJob, error) { return nil, nil },
	})

	req := httptest.NewRequest(http.MethodPost, "/vendor-import", bytes.NewBufferString("{bad json"))
	req = withSession(req, domain.Session{UserID: "user-1", OrgID: "org-1"})
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportHandler_Submit_StatementNotFound(t *testing.T) {
	handler := NewImportHandler(&importServiceStub{
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			return nil, domain.ErrStatementNotFound
		},
		processFn: func(ctx context.Context, job *domain.ImportJob) error { return nil },
		statusFn:  func(ctx context.Context, jobID string) (*domain.ImportJob, error) { return nil, nil },
	})

	body, _ := json.Marshal(dto.SubmitImportRequest{CurrentStatementID: "missing", Vendor: "acme"})
	req := httptest.NewRequest(http.MethodPost, "/vendor-import", bytes.NewReader(body))
	req = withSession(req, domain.Session{UserID: "user-1", OrgID: "org-1"})
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestImportHandler_Status(t *testing.T) {
	handler := NewImportHandler(&importServiceStub{
		statusFn: func(ctx context.Context, jobID string) (*domain.ImportJob, error) {
			return &domain.ImportJob{ID: jobID, Status: domain.JobCompleted, Summary: "matched 2 of 2 properties"}, nil
		},
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			return nil, nil
		},
		processFn: func(ctx context.Context, job *domain.ImportJob) error { return nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/vendor-import/jobs/vendor-1", nil)
	req = setChiURLParam(req, "id", "vendor-1")
	rec := httptest.NewRecorder()

	handler.Status(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.JobStatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "completed" {
		t.Fatalf("expected completed status, got %s", resp.Status)
	}
}

func TestImportHandler_Status_NotFound(t *testing.T) {
	handler := NewImportHandler(&importServiceStub{
		statusFn: func(ctx context.Context, jobID string) (*domain.ImportJob, error) {
			return nil, domain.ErrJobNotFound
		},
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			return nil, nil
		},
		processFn: func(ctx context.Context, job *domain.ImportJob) error { return nil },
	})

	req := httptest.NewRequest(http.MethodGet, "/vendor-import/jobs/vendor-0", nil)
	req = setChiURLParam(req, "id", "vendor-0")
	rec := httptest.NewRecorder()

	handler.Status(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestImportHandler_Process_Success(t *testing.T) {
	var processed *domain.ImportJob
	handler := NewImportHandler(&importServiceStub{
		processFn: func(ctx context.Context, job *domain.ImportJob) error {
			processed = job
			job.Status = domain.JobCompleted
			return nil
		},
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			return nil, nil
		},
		statusFn: func(ctx context.Context, jobID string) (*domain.ImportJob, error) { return nil, nil },
	})

	body, _ := json.Marshal(domain.ImportJob{
		ID:          "vendor-1",
		OrgID:       "org-1",
		StatementID: "st-1",
		Vendor:      "acme",
	})
	req := httptest.NewRequest(http.MethodPost, "/vendor-import/process", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if processed == nil || processed.ID != "vendor-1" {
		t.Fatalf("expected job to reach the service, got %+v", processed)
	}
}

func TestImportHandler_Process_MissingJobID(t *testing.T) {
	handler := NewImportHandler(&importServiceStub{
		processFn: func(ctx context.Context, job *domain.ImportJob) error {
			t.Fatal("Process should not be called for an invalid payload")
			return nil
		},
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			return nil, nil
		},
		statusFn: func(ctx context.Context, jobID string) (*domain.ImportJob, error) { return nil, nil },
	})

	req := httptest.NewRequest(http.MethodPost, "/vendor-import/process", bytes.NewBufferString(`{"vendor":"acme"}`))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestImportHandler_Process_ReconciliationFailure(t *testing.T) {
	handler := NewImportHandler(&importServiceStub{
		processFn: func(ctx context.Context, job *domain.ImportJob) error {
			return domain.ErrStatementNotFound
		},
		submitFn: func(ctx context.Context, input usecase.SubmitImportInput) (*domain.ImportJob, error) {
			return nil, nil
		},
		statusFn: func(ctx context.Context, jobID string) (*domain.ImportJob, error) { return nil, nil },
	})

	body, _ := json.Marshal(domain.ImportJob{ID: "vendor-1", OrgID: "org-1", StatementID: "st-1"})
	req := httptest.NewRequest(http.MethodPost, "/vendor-import/process", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Process(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
