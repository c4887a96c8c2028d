package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/propfolio/backoffice/internal/adapter/http/dto"
	"github.com/propfolio/backoffice/internal/adapter/http/middleware"
	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

// StatementService defines the behavior needed by StatementHandler.
type StatementService interface {
	GetStatement(ctx context.Context, session domain.Session, id string) (*usecase.StatementView, error)
}

// TotalsService defines the recalculation behavior needed by StatementHandler.
type TotalsService interface {
	RecalculateTotals(ctx context.Context, statementID, actingUserID string) (domain.StatementTotals, error)
}

// StatementHandler handles owner statement HTTP requests.
type StatementHandler struct {
	statementUC StatementService
	totalsUC    TotalsService
}

// NewStatementHandler creates a new StatementHandler.
func NewStatementHandler(statementUC StatementService, totalsUC TotalsService) *StatementHandler {
	return &StatementHandler{
		statementUC: statementUC,
		totalsUC:    totalsUC,
	}
}

// Get retrieves a statement with its line items.
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	view, err := h.statementUC.GetStatement(r.Context(), session, id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get statement", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.StatementFromView(view))
}

// Recalculate recomputes a statement's derived totals from its line items.
func (h *StatementHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing statement ID", "")
		return
	}

	// Org scoping reuses the read path: a statement the caller cannot see is
	// a statement the caller cannot recalculate.
	if _, err := h.statementUC.GetStatement(r.Context(), session, id); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get statement", err.Error())

		return
	}

	totals, err := h.totalsUC.RecalculateTotals(r.Context(), id, session.UserID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to recalculate totals", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.TotalsFromDomain(totals))
}
