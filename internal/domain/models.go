package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Extraction is the persisted record of one extraction request.
type Extraction struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	Source            ExtractionSource `db:"source" json:"source"`
	DocumentTypeHint  string           `db:"document_type_hint" json:"document_type_hint,omitempty"`
	DocumentType      DocumentType     `db:"document_type" json:"document_type"`
	RawText           string           `db:"raw_text" json:"-"`
	RawTextKey        string           `db:"raw_text_key" json:"raw_text_key,omitempty"`
	ResultKey         string           `db:"result_key" json:"result_key,omitempty"`
	Tokens            json.RawMessage  `db:"tokens" json:"-"`
	Result            json.RawMessage  `db:"result" json:"result,omitempty"`
	Confidence        float64          `db:"confidence" json:"confidence"`
	ParserModel       string           `db:"parser_model" json:"parser_model"`
	FieldProvenance   json.RawMessage  `db:"field_provenance" json:"field_provenance,omitempty"`
	Status            ExtractionStatus `db:"status" json:"status"`
	Error             string           `db:"error" json:"error,omitempty"`
	ValidationStatus  ValidationStatus `db:"validation_status" json:"validation_status"`
	ValidationResults json.RawMessage  `db:"validation_results" json:"validation_results,omitempty"`
	Attempts          int              `db:"attempts" json:"attempts"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
	CompletedAt       *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
}

// Document decodes the stored result. It returns an empty record when the
// extraction has no result yet.
func (e *Extraction) Document() (DocumentRecord, error) {
	if len(e.Result) == 0 {
		return NewDocumentRecord(), nil
	}
	var doc DocumentRecord
	if err := json.Unmarshal(e.Result, &doc); err != nil {
		return NewDocumentRecord(), err
	}
	return doc, nil
}

// ValidationResult is the outcome of one validation rule on one field.
type ValidationResult struct {
	RuleKey       string             `json:"rule_key"`
	RuleName      string             `json:"rule_name"`
	RuleType      ValidationRuleType `json:"rule_type"`
	Severity      ValidationSeverity `json:"severity"`
	FieldPath     string             `json:"field_path"`
	Passed        bool               `json:"passed"`
	ExpectedValue string             `json:"expected_value"`
	ActualValue   string             `json:"actual_value"`
	Message       string             `json:"message"`
}
