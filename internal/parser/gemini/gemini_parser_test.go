package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docex/internal/config"
	"docex/internal/domain"
	"docex/internal/parser"
	"docex/internal/parser/gemini"
	"docex/internal/port"
)

const reply = `{"data":{"document_type":"Purchase Order","document_number":"PO-77","date":"",
"client":{},"receiver":{"company_name":"BETA LTD"},"items":[],"subtotal":"","total_amount":""},"confidence":0.6}`

func geminiBody(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
	}
}

func TestParser_Parse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "g-key", r.Header.Get("x-goog-api-key"))
		_ = json.NewEncoder(w).Encode(geminiBody(reply, "STOP"))
	}))
	defer srv.Close()

	p := gemini.NewParserWithEndpoint(&config.ParserProviderConfig{APIKey: "g-key"}, srv.URL)
	out, err := p.Parse(context.Background(), port.ParseInput{Text: "PO-77", DocumentType: "purchase order"})
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentTypePurchaseOrder, out.Document.DocumentType)
	assert.Equal(t, "PO-77", out.Document.DocumentNumber)
	assert.Equal(t, "BETA LTD", out.Document.Receiver.CompanyName)
	assert.Contains(t, out.PromptUsed, "purchase order")
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		wantErr string
	}{
		{"max_tokens", http.StatusOK, geminiBody("{", "MAX_TOKENS"), "truncated"},
		{"no_candidates", http.StatusOK, map[string]any{"candidates": []any{}}, "no candidates"},
		{"invalid_output", http.StatusOK, geminiBody(`{"data":{"document_type":"Invoice"}}`, "STOP"), "invalid"},
		{"server_error", http.StatusBadGateway, map[string]any{}, "status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			p := gemini.NewParserWithEndpoint(&config.ParserProviderConfig{}, srv.URL)
			_, err := p.Parse(context.Background(), port.ParseInput{Text: "x"})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestParser_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := gemini.NewParserWithEndpoint(&config.ParserProviderConfig{}, srv.URL)
	_, err := p.Parse(context.Background(), port.ParseInput{Text: "x"})

	d, ok := parser.IsRateLimited(err)
	assert.True(t, ok)
	assert.Equal(t, 60.0, d.Seconds())
}
