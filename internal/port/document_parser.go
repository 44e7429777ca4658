package port

import (
	"context"

	"docex/internal/domain"
)

// ParseInput carries the OCR output to extract fields from.
type ParseInput struct {
	Text         string
	Tokens       []domain.OCRToken
	DocumentType string // optional hint, e.g. "invoice"
}

// ParseOutput contains the structured result from a parser.
type ParseOutput struct {
	Document        *domain.DocumentRecord
	Confidence      float64
	ModelUsed       string
	PromptUsed      string
	FieldProvenance map[string]string // which source provided each field (merge mode)
	SecondaryModel  string            // secondary source used in merge mode
}

// DocumentParser turns OCR text into a DocumentRecord.
type DocumentParser interface {
	Parse(ctx context.Context, input ParseInput) (*ParseOutput, error)
}
