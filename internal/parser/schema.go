package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"docex/internal/domain"
	"docex/internal/port"
)

func stringProps(keys ...string) map[string]any {
	props := make(map[string]any, len(keys))
	for _, k := range keys {
		props[k] = map[string]any{"type": "string"}
	}
	return props
}

var partyKeys = []string{"company_name", "address", "city", "state", "postal_code", "country", "phone", "email", "tax_id"}

// documentSchema describes the "data" object an LLM provider must return.
var documentSchema = map[string]any{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type":    "object",
	"required": []string{"document_type", "document_number", "date", "client", "receiver",
		"items", "subtotal", "total_amount"},
	"properties": map[string]any{
		"document_type": map[string]any{
			"type": "string",
			"enum": []string{"Purchase Order", "Invoice", "Bill", "Unknown", ""},
		},
		"document_number": map[string]any{"type": "string"},
		"date":            map[string]any{"type": "string"},
		"client": map[string]any{
			"type":       "object",
			"properties": stringProps(append(partyKeys, "secondary_tax_id")...),
		},
		"receiver": map[string]any{
			"type":       "object",
			"properties": stringProps(partyKeys...),
		},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":       "object",
				"properties": stringProps("item_code", "description", "quantity", "unit", "rate", "amount"),
			},
		},
		"subtotal":     map[string]any{"type": "string"},
		"cgst":         map[string]any{"type": "string"},
		"sgst":         map[string]any{"type": "string"},
		"igst":         map[string]any{"type": "string"},
		"total_amount": map[string]any{"type": "string"},
	},
}

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

func schema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		b, err := json.Marshal(documentSchema)
		if err != nil {
			compiledSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("document.json", bytes.NewReader(b)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compiledSchemaErr = compiler.Compile("document.json")
	})
	return compiledSchema, compiledSchemaErr
}

// ValidateDocumentJSON checks data against the document schema.
func ValidateDocumentJSON(data []byte) error {
	s, err := schema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOracleOutput, err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidOracleOutput, err)
	}
	return nil
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// DecodeOracleOutput parses a provider's raw text reply into a ParseOutput.
// Code fences and surrounding prose are tolerated; the "data" object must
// satisfy the document schema.
func DecodeOracleOutput(raw, model, prompt string) (*port.ParseOutput, error) {
	body := jsonObjectRe.FindString(raw)
	if body == "" {
		return nil, fmt.Errorf("%w: no JSON object in reply (raw: %s)", domain.ErrInvalidOracleOutput, truncate(raw, 500))
	}

	var envelope struct {
		Data       json.RawMessage `json:"data"`
		Confidence *float64        `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", domain.ErrInvalidOracleOutput, err, truncate(raw, 500))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil, fmt.Errorf("%w: missing data object", domain.ErrInvalidOracleOutput)
	}
	if err := ValidateDocumentJSON(envelope.Data); err != nil {
		return nil, err
	}

	var doc domain.DocumentRecord
	if err := json.Unmarshal(envelope.Data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidOracleOutput, err)
	}
	doc.DocumentType = domain.ParseDocumentType(string(doc.DocumentType))
	doc.Issuer.TaxID = strings.ToUpper(strings.TrimSpace(doc.Issuer.TaxID))
	doc.Receiver.TaxID = strings.ToUpper(strings.TrimSpace(doc.Receiver.TaxID))

	confidence := 0.0
	if envelope.Confidence != nil {
		confidence = clamp01(*envelope.Confidence)
	}

	return &port.ParseOutput{
		Document:   &doc,
		Confidence: confidence,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
