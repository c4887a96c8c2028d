package dto

import (
	"github.com/propfolio/backoffice/internal/domain"
	"github.com/propfolio/backoffice/internal/usecase"
)

// SubmitImportRequest represents a vendor import submission.
type SubmitImportRequest struct {
	CurrentStatementID string `json:"current_statement_id"`
	Vendor             string `json:"vendor"`
	Description        string `json:"description"`
	PDFBase64          string `json:"pdf_base64"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitImportRequest) ToUseCaseInput(session domain.Session) usecase.SubmitImportInput {
	return usecase.SubmitImportInput{
		Session:     session,
		StatementID: r.CurrentStatementID,
		Vendor:      r.Vendor,
		Description: r.Description,
		PDFBase64:   r.PDFBase64,
	}
}
