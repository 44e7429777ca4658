package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docex/internal/domain"
	"docex/internal/parser"
)

const validData = `{"document_type":"Invoice","document_number":"INV-1","date":"01/02/2025",
"client":{"company_name":"ACME LTD","tax_id":"29abcde1234f1z5"},
"receiver":{"company_name":"BETA LTD"},
"items":[{"item_code":"1001","description":"1001 Widget 5.00","amount":"5.00"}],
"subtotal":"","cgst":"0.45","sgst":"","igst":"","total_amount":"5.45"}`

func TestDecodeOracleOutput_Valid(t *testing.T) {
	raw := "```json\n{\"data\":" + validData + ",\"confidence\":0.92}\n```"

	out, err := parser.DecodeOracleOutput(raw, "claude-x", "prompt")
	require.NoError(t, err)

	assert.Equal(t, "claude-x", out.ModelUsed)
	assert.Equal(t, "prompt", out.PromptUsed)
	assert.InDelta(t, 0.92, out.Confidence, 1e-9)
	assert.Equal(t, domain.DocumentTypeInvoice, out.Document.DocumentType)
	assert.Equal(t, "29ABCDE1234F1Z5", out.Document.Issuer.TaxID)
	assert.Equal(t, "0.45", out.Document.Tax(domain.TaxCGST))
	require.Len(t, out.Document.Items, 1)
	assert.Equal(t, "1001", out.Document.Items[0].ItemCode)
}

func TestDecodeOracleOutput_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no_json", "sorry, I cannot help"},
		{"broken_json", `{"data": {`},
		{"missing_data", `{"confidence": 0.5}`},
		{"numeric_amount", `{"data":{"document_type":"Invoice","document_number":"1","date":"","client":{},"receiver":{},"items":[],"subtotal":"","total_amount":12.5}}`},
		{"bad_document_type", `{"data":{"document_type":"Receipt","document_number":"","date":"","client":{},"receiver":{},"items":[],"subtotal":"","total_amount":""}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.DecodeOracleOutput(tt.raw, "m", "p")
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidOracleOutput)
		})
	}
}

func TestValidateDocumentJSON(t *testing.T) {
	assert.NoError(t, parser.ValidateDocumentJSON([]byte(validData)))
	assert.Error(t, parser.ValidateDocumentJSON([]byte(`{"document_type":"Invoice"}`)))
}

func TestBuildExtractionPrompt(t *testing.T) {
	p := parser.BuildExtractionPrompt("")
	assert.Contains(t, p, `"client"`)
	assert.Contains(t, p, `"total_amount"`)
	assert.Contains(t, parser.BuildExtractionPrompt("purchase order"), "purchase order")

	content := parser.BuildUserContent("PROMPT", "Invoice 1")
	assert.Contains(t, content, "PROMPT")
	assert.Contains(t, content, "Invoice 1")
}
