package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docex/internal/csvexport"
	"docex/internal/domain"
	"docex/internal/port"
	"docex/internal/service"
	"docex/internal/validator"
	"docex/internal/xlsxexport"
)

const exportBaseName = "extractions"

// ExtractionHandler handles extraction endpoints.
type ExtractionHandler struct {
	extractionService service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

type extractRequest struct {
	Text         string            `json:"text"`
	Tokens       []domain.OCRToken `json:"tokens"`
	DocumentType string            `json:"document_type"`
	Async        bool              `json:"async"`
}

// extractionDetail is an extraction plus the per-field validation view.
type extractionDetail struct {
	*domain.Extraction
	FieldStatuses map[string]*validator.FieldStatus `json:"field_statuses,omitempty"`
}

// bindExtractInput accepts either a JSON body or raw text/plain OCR output.
// Returns false if the request was rejected (error response already written).
func bindExtractInput(c *gin.Context) (*service.ExtractInput, bool) {
	if strings.HasPrefix(c.ContentType(), "text/plain") {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
			return nil, false
		}
		async, _ := strconv.ParseBool(c.Query("async"))
		return &service.ExtractInput{
			Text:         string(body),
			DocumentType: c.Query("document_type"),
			Source:       domain.ExtractionSourceAPI,
			Async:        async,
		}, true
	}

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "body must be JSON with a text field, or text/plain")
		return nil, false
	}
	return &service.ExtractInput{
		Text:         req.Text,
		Tokens:       req.Tokens,
		DocumentType: req.DocumentType,
		Source:       domain.ExtractionSourceAPI,
		Async:        req.Async,
	}, true
}

// Extract handles POST /api/v1/extract. Nothing is persisted.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	input, ok := bindExtractInput(c)
	if !ok {
		return
	}

	res, err := h.extractionService.Extract(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, res)
}

// Submit handles POST /api/v1/extractions
func (h *ExtractionHandler) Submit(c *gin.Context) {
	input, ok := bindExtractInput(c)
	if !ok {
		return
	}

	ext, err := h.extractionService.Submit(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}
	if ext.Status == domain.ExtractionStatusQueued {
		RespondAccepted(c, ext)
		return
	}
	RespondCreated(c, ext)
}

// List handles GET /api/v1/extractions
func (h *ExtractionHandler) List(c *gin.Context) {
	filter, ok := parseFilter(c)
	if !ok {
		return
	}
	offset, limit := parsePagination(c)

	exts, total, err := h.extractionService.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, exts, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/extractions/:id
func (h *ExtractionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	ext, err := h.extractionService.Get(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	detail := extractionDetail{Extraction: ext}
	if len(ext.ValidationResults) > 0 {
		var results []domain.ValidationResult
		if err := json.Unmarshal(ext.ValidationResults, &results); err != nil {
			log.Warn().Err(err).Str("extraction_id", id.String()).
				Msg("extractionHandler.Get: undecodable validation results")
		} else if len(results) > 0 {
			detail.FieldStatuses = validator.ComputeFieldStatuses(results)
		}
	}
	RespondOK(c, detail)
}

// Download handles GET /api/v1/extractions/:id/download
func (h *ExtractionHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	url, err := h.extractionService.DownloadURL(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"download_url": url})
}

// Delete handles DELETE /api/v1/extractions/:id
func (h *ExtractionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	if err := h.extractionService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": "extraction deleted"})
}

// Export handles GET /api/v1/extractions/export?format=csv|xlsx
func (h *ExtractionHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or xlsx")
		return
	}
	filter, ok := parseFilter(c)
	if !ok {
		return
	}

	exts, err := h.extractionService.Export(c.Request.Context(), filter)
	if err != nil {
		HandleError(c, err)
		return
	}

	filename := csvexport.BuildFilename(exportBaseName, format)
	if format == "xlsx" {
		data, err := xlsxexport.Render(exts)
		if err != nil {
			HandleError(c, fmt.Errorf("rendering xlsx: %w", err))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		log.Error().Err(err).Msg("extractionHandler.Export: writing BOM")
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		log.Error().Err(err).Msg("extractionHandler.Export: writing header")
		return
	}
	if err := w.WriteExtractions(exts); err != nil {
		log.Error().Err(err).Msg("extractionHandler.Export: writing rows")
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Error().Err(err).Msg("extractionHandler.Export: flushing")
	}
}

// parseFilter reads the status and document_type query filters.
func parseFilter(c *gin.Context) (port.ExtractionFilter, bool) {
	var filter port.ExtractionFilter

	if s := c.Query("status"); s != "" {
		status := domain.ExtractionStatus(s)
		switch status {
		case domain.ExtractionStatusQueued, domain.ExtractionStatusProcessing,
			domain.ExtractionStatusCompleted, domain.ExtractionStatusFailed:
			filter.Status = status
		default:
			RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be queued, processing, completed or failed")
			return filter, false
		}
	}

	if s := c.Query("document_type"); s != "" {
		dt := domain.ParseDocumentType(s)
		if dt == domain.DocumentTypeUnknown && !strings.EqualFold(s, string(domain.DocumentTypeUnknown)) {
			RespondError(c, http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "unknown document_type")
			return filter, false
		}
		filter.DocumentType = dt
	}
	return filter, true
}
