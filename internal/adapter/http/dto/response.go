package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

// SubmitImportResponse acknowledges an enqueued import job.
type SubmitImportResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// JobStatusResponse represents an import job in API responses.
type JobStatusResponse struct {
	JobID       string    `json:"job_id"`
	StatementID string    `json:"statement_id"`
	Vendor      string    `json:"vendor"`
	Status      string    `json:"status"`
	Summary     string    `json:"summary,omitempty"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// JobStatusFromDomain converts a domain job to a response.
func JobStatusFromDomain(j *domain.ImportJob) *JobStatusResponse {
	return &JobStatusResponse{
		JobID:       j.ID,
		StatementID: j.StatementID,
		Vendor:      j.Vendor,
		Status:      string(j.Status),
		Summary:     j.Summary,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
	}
}

// LineItemResponse represents a line item in API responses.
type LineItemResponse struct {
	ID           string          `json:"id"`
	Kind         string          `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	PropertyID   string          `json:"property_id,omitempty"`
	PropertyName string          `json:"property_name,omitempty"`
	Source       string          `json:"source"`
	Matched      bool            `json:"matched"`
	CreatedAt    time.Time       `json:"created_at"`
}

// StatementResponse represents a statement with its line items.
type StatementResponse struct {
	ID               string              `json:"id"`
	PropertyID       string              `json:"property_id"`
	PeriodStart      time.Time           `json:"period_start"`
	PeriodEnd        time.Time           `json:"period_end"`
	TotalIncome      decimal.Decimal     `json:"total_income"`
	TotalExpenses    decimal.Decimal     `json:"total_expenses"`
	TotalAdjustments decimal.Decimal     `json:"total_adjustments"`
	GrandTotal       decimal.Decimal     `json:"grand_total"`
	UpdatedAt        time.Time           `json:"updated_at"`
	UpdatedBy        string              `json:"updated_by"`
	LineItems        []*LineItemResponse `json:"line_items"`
}

// StatementFromView converts a statement view to a response.
func StatementFromView(v *usecase.StatementView) *StatementResponse {
	items := make([]*LineItemResponse, len(v.LineItems))
	for i, it := range v.LineItems {
		items[i] = &LineItemResponse{
			ID:           it.ID,
			Kind:         string(it.Kind),
			Amount:       it.Amount,
			Description:  it.Description,
			PropertyID:   it.PropertyID,
			PropertyName: it.PropertyName,
			Source:       string(it.Source),
			Matched:      it.Matched,
			CreatedAt:    it.CreatedAt,
		}
	}

	s := v.Statement

	return &StatementResponse{
		ID:               s.ID,
		PropertyID:       s.PropertyID,
		PeriodStart:      s.PeriodStart,
		PeriodEnd:        s.PeriodEnd,
		TotalIncome:      s.TotalIncome,
		TotalExpenses:    s.TotalExpenses,
		TotalAdjustments: s.TotalAdjustments,
		GrandTotal:       s.GrandTotal,
		UpdatedAt:        s.UpdatedAt,
		UpdatedBy:        s.UpdatedBy,
		LineItems:        items,
	}
}

// TotalsResponse represents recalculated totals.
type TotalsResponse struct {
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
	TotalAdjustments decimal.Decimal `json:"total_adjustments"`
	GrandTotal       decimal.Decimal `json:"grand_total"`
}

// TotalsFromDomain converts domain totals to a response.
func TotalsFromDomain(t domain.StatementTotals) *TotalsResponse {
	return &TotalsResponse{
		TotalIncome:      t.TotalIncome,
		TotalExpenses:    t.TotalExpenses,
		TotalAdjustments: t.TotalAdjustments,
		GrandTotal:       t.GrandTotal,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
