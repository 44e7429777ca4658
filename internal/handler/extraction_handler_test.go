package handler_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"docex/internal/csvexport"
	"docex/internal/domain"
	"docex/internal/handler"
	"docex/internal/port"
	"docex/internal/service"
	"docex/internal/xlsxexport"
	"docex/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newExtractionHandler() (*handler.ExtractionHandler, *mocks.MockExtractionService) {
	svc := new(mocks.MockExtractionService)
	return handler.NewExtractionHandler(svc), svc
}

func newContext(method, target string, body []byte, contentType string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader([]byte{})
	} else {
		reader = bytes.NewReader(body)
	}
	c.Request, _ = http.NewRequest(method, target, reader)
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func completedExtraction(t *testing.T) domain.Extraction {
	t.Helper()
	doc := domain.NewDocumentRecord()
	doc.DocumentType = domain.DocumentTypeInvoice
	doc.DocumentNumber = "INV-7"
	doc.Issuer.CompanyName = "Acme Industries Pvt Ltd"
	doc.TotalAmount = "1,180.00"
	result, err := json.Marshal(doc)
	require.NoError(t, err)

	completed := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	return domain.Extraction{
		ID:           uuid.New(),
		Source:       domain.ExtractionSourceAPI,
		DocumentType: domain.DocumentTypeInvoice,
		Status:       domain.ExtractionStatusCompleted,
		Result:       result,
		CreatedAt:    completed.Add(-time.Minute),
		CompletedAt:  &completed,
	}
}

func TestExtractionHandler_Extract_JSON(t *testing.T) {
	h, svc := newExtractionHandler()

	doc := domain.NewDocumentRecord()
	doc.DocumentNumber = "PO-1"
	svc.On("Extract", mock.Anything, mock.MatchedBy(func(in *service.ExtractInput) bool {
		return in.Text == "Purchase Order PO-1" && in.DocumentType == "po" && len(in.Tokens) == 1
	})).Return(&service.ExtractResult{Document: doc, ParserModel: "rules"}, nil)

	body := []byte(`{"text":"Purchase Order PO-1","document_type":"po","tokens":[{"text":"PO-1","confidence":0.9}]}`)
	c, w := newContext(http.MethodPost, "/api/v1/extract", body, "application/json")
	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Document struct {
				DocumentNumber string `json:"document_number"`
				Items          []any  `json:"items"`
			} `json:"document"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "PO-1", resp.Data.Document.DocumentNumber)
	assert.NotNil(t, resp.Data.Document.Items)
	svc.AssertExpectations(t)
}

func TestExtractionHandler_Extract_PlainText(t *testing.T) {
	h, svc := newExtractionHandler()

	svc.On("Extract", mock.Anything, mock.MatchedBy(func(in *service.ExtractInput) bool {
		return in.Text == "Invoice No: 9\n" && in.DocumentType == "invoice"
	})).Return(&service.ExtractResult{Document: domain.NewDocumentRecord()}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/extract?document_type=invoice",
		[]byte("Invoice No: 9\n"), "text/plain; charset=utf-8")
	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestExtractionHandler_Extract_InvalidJSON(t *testing.T) {
	h, svc := newExtractionHandler()

	c, w := newContext(http.MethodPost, "/api/v1/extract", []byte(`{"text":`), "application/json")
	h.Extract(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeResponse(t, w).Error.Code)
	svc.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractionHandler_Extract_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"too large", domain.ErrTextTooLarge, http.StatusRequestEntityTooLarge, "TEXT_TOO_LARGE"},
		{"internal", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newExtractionHandler()
			svc.On("Extract", mock.Anything, mock.Anything).Return(nil, tt.err)

			c, w := newContext(http.MethodPost, "/api/v1/extract", []byte(`{"text":"x"}`), "application/json")
			h.Extract(c)

			assert.Equal(t, tt.status, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestExtractionHandler_Extract_EmptyText(t *testing.T) {
	h, svc := newExtractionHandler()
	svc.On("Extract", mock.Anything, mock.MatchedBy(func(in *service.ExtractInput) bool { return in.Text == "" })).
		Return(&service.ExtractResult{Document: domain.NewDocumentRecord()}, nil)

	c, w := newContext(http.MethodPost, "/api/v1/extract", []byte(`{"text":""}`), "application/json")
	h.Extract(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decodeResponse(t, w).Success)
	svc.AssertExpectations(t)
}

func TestExtractionHandler_Submit_EmptyText(t *testing.T) {
	h, svc := newExtractionHandler()
	svc.On("Submit", mock.Anything, mock.Anything).Return(nil, domain.ErrEmptyText)

	c, w := newContext(http.MethodPost, "/api/v1/extractions", []byte(`{"text":"  "}`), "application/json")
	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_TEXT", decodeResponse(t, w).Error.Code)
}

func TestExtractionHandler_Submit_SyncAndAsync(t *testing.T) {
	t.Run("sync", func(t *testing.T) {
		h, svc := newExtractionHandler()
		ext := completedExtraction(t)
		svc.On("Submit", mock.Anything, mock.MatchedBy(func(in *service.ExtractInput) bool { return !in.Async })).
			Return(&ext, nil)

		c, w := newContext(http.MethodPost, "/api/v1/extractions", []byte(`{"text":"Invoice"}`), "application/json")
		h.Submit(c)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("async", func(t *testing.T) {
		h, svc := newExtractionHandler()
		ext := &domain.Extraction{ID: uuid.New(), Status: domain.ExtractionStatusQueued}
		svc.On("Submit", mock.Anything, mock.MatchedBy(func(in *service.ExtractInput) bool { return in.Async })).
			Return(ext, nil)

		c, w := newContext(http.MethodPost, "/api/v1/extractions", []byte(`{"text":"Invoice","async":true}`), "application/json")
		h.Submit(c)
		assert.Equal(t, http.StatusAccepted, w.Code)
	})
}

func TestExtractionHandler_List(t *testing.T) {
	h, svc := newExtractionHandler()

	filter := port.ExtractionFilter{Status: domain.ExtractionStatusCompleted, DocumentType: domain.DocumentTypePurchaseOrder}
	svc.On("List", mock.Anything, filter, 10, 5).
		Return([]domain.Extraction{completedExtraction(t)}, 11, nil)

	c, w := newContext(http.MethodGet, "/api/v1/extractions?status=completed&document_type=Purchase%20Order&offset=10&limit=5", nil, "")
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 11, resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.Offset)
	assert.Equal(t, 5, resp.Meta.Limit)
	svc.AssertExpectations(t)
}

func TestExtractionHandler_List_InvalidFilters(t *testing.T) {
	for _, target := range []string{
		"/api/v1/extractions?status=done",
		"/api/v1/extractions?document_type=receipt",
	} {
		h, svc := newExtractionHandler()
		c, w := newContext(http.MethodGet, target, nil, "")
		h.List(c)

		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestExtractionHandler_Get_WithFieldStatuses(t *testing.T) {
	h, svc := newExtractionHandler()

	ext := completedExtraction(t)
	results := []domain.ValidationResult{
		{RuleKey: "fmt.client.tax_id", FieldPath: "client.tax_id", Severity: domain.ValidationSeverityError, Passed: false, Message: "bad gstin"},
		{RuleKey: "req.document.number", FieldPath: "document_number", Severity: domain.ValidationSeverityWarning, Passed: true},
	}
	ext.ValidationResults, _ = json.Marshal(results)
	svc.On("Get", mock.Anything, ext.ID).Return(&ext, nil)

	c, w := newContext(http.MethodGet, "/api/v1/extractions/"+ext.ID.String(), nil, "")
	c.Params = gin.Params{{Key: "id", Value: ext.ID.String()}}
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data struct {
			ID            string `json:"id"`
			FieldStatuses map[string]struct {
				Status   string   `json:"status"`
				Messages []string `json:"messages"`
			} `json:"field_statuses"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, ext.ID.String(), resp.Data.ID)
	assert.Equal(t, "invalid", resp.Data.FieldStatuses["client.tax_id"].Status)
	assert.Equal(t, []string{"bad gstin"}, resp.Data.FieldStatuses["client.tax_id"].Messages)
	assert.Equal(t, "valid", resp.Data.FieldStatuses["document_number"].Status)
}

func TestExtractionHandler_Get_InvalidAndMissing(t *testing.T) {
	h, svc := newExtractionHandler()

	c, w := newContext(http.MethodGet, "/api/v1/extractions/nope", nil, "")
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(nil, domain.ErrExtractionNotFound)
	c, w = newContext(http.MethodGet, "/api/v1/extractions/"+id.String(), nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "EXTRACTION_NOT_FOUND", decodeResponse(t, w).Error.Code)
}

func TestExtractionHandler_Download(t *testing.T) {
	h, svc := newExtractionHandler()
	id := uuid.New()
	svc.On("DownloadURL", mock.Anything, id).Return("https://example.test/signed", nil)

	c, w := newContext(http.MethodGet, "/api/v1/extractions/"+id.String()+"/download", nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Download(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://example.test/signed")
}

func TestExtractionHandler_Download_NotCompleted(t *testing.T) {
	h, svc := newExtractionHandler()
	id := uuid.New()
	svc.On("DownloadURL", mock.Anything, id).Return("", domain.ErrExtractionNotCompleted)

	c, w := newContext(http.MethodGet, "/", nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Download(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestExtractionHandler_Delete(t *testing.T) {
	h, svc := newExtractionHandler()
	id := uuid.New()
	svc.On("Delete", mock.Anything, id).Return(nil)

	c, w := newContext(http.MethodDelete, "/", nil, "")
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	h.Delete(c)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestExtractionHandler_Export_CSV(t *testing.T) {
	h, svc := newExtractionHandler()
	ext := completedExtraction(t)
	svc.On("Export", mock.Anything, port.ExtractionFilter{}).Return([]domain.Extraction{ext}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/extractions/export", nil, "")
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "extractions_")
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, csvexport.BOM))
	records, err := csv.NewReader(bytes.NewReader(body[len(csvexport.BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvexport.Columns, records[0])
	assert.Equal(t, ext.ID.String(), records[1][0])
	assert.Contains(t, records[1], "INV-7")
}

func TestExtractionHandler_Export_XLSX(t *testing.T) {
	h, svc := newExtractionHandler()
	ext := completedExtraction(t)
	svc.On("Export", mock.Anything, port.ExtractionFilter{Status: domain.ExtractionStatusCompleted}).
		Return([]domain.Extraction{ext}, nil)

	c, w := newContext(http.MethodGet, "/api/v1/extractions/export?format=xlsx&status=completed", nil, "")
	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasSuffix(strings.Trim(w.Header().Get("Content-Disposition"), `"`), ".xlsx"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(xlsxexport.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, ext.ID.String(), rows[1][0])
}

func TestExtractionHandler_Export_InvalidFormat(t *testing.T) {
	h, svc := newExtractionHandler()

	c, w := newContext(http.MethodGet, "/api/v1/extractions/export?format=pdf", nil, "")
	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything)
}
