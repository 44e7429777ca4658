package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/unicode/norm"

	"docex/internal/domain"
	"docex/internal/parser"
	"docex/internal/port"
	"docex/internal/validator"
)

const (
	defaultMaxTextBytes  = 1 << 20
	defaultPresignExpiry = time.Hour
	defaultMaxAttempts   = 5

	defaultListLimit = 20
	maxListLimit     = 100

	exportBatchSize = 200
	maxExportRows   = 10000
)

// ExtractInput is the DTO for an extraction request.
type ExtractInput struct {
	Text         string
	Tokens       []domain.OCRToken
	DocumentType string
	Source       domain.ExtractionSource
	// Async queues the extraction for the worker instead of processing it
	// before Submit returns.
	Async bool
}

// ExtractResult is the outcome of a stateless extraction.
type ExtractResult struct {
	Document         domain.DocumentRecord     `json:"document"`
	Confidence       float64                   `json:"confidence"`
	ParserModel      string                    `json:"parser_model"`
	FieldProvenance  map[string]string         `json:"field_provenance,omitempty"`
	ValidationStatus domain.ValidationStatus   `json:"validation_status"`
	Validation       []domain.ValidationResult `json:"validation_results"`
}

// ExtractionServiceConfig holds the service limits.
type ExtractionServiceConfig struct {
	MaxTextBytes  int
	PresignExpiry time.Duration
	MaxAttempts   int
}

// ExtractionService defines the extraction contract.
type ExtractionService interface {
	Extract(ctx context.Context, input *ExtractInput) (*ExtractResult, error)
	Submit(ctx context.Context, input *ExtractInput) (*domain.Extraction, error)
	Process(ctx context.Context, ext *domain.Extraction, maxAttempts int)
	Get(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, filter port.ExtractionFilter, offset, limit int) ([]domain.Extraction, int, error)
	Export(ctx context.Context, filter port.ExtractionFilter) ([]domain.Extraction, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DownloadURL(ctx context.Context, id uuid.UUID) (string, error)
}

type extractionService struct {
	repo      port.ExtractionRepository
	parser    port.DocumentParser
	storage   port.ObjectStorage
	validator *validator.Engine
	cfg       ExtractionServiceConfig
}

// NewExtractionService creates a new ExtractionService. repo may be nil for
// stateless use (Extract only); storage may be nil to disable archiving.
func NewExtractionService(
	repo port.ExtractionRepository,
	docParser port.DocumentParser,
	storage port.ObjectStorage,
	validationEngine *validator.Engine,
	cfg ExtractionServiceConfig,
) ExtractionService {
	if cfg.MaxTextBytes <= 0 {
		cfg.MaxTextBytes = defaultMaxTextBytes
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = defaultPresignExpiry
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &extractionService{
		repo:      repo,
		parser:    docParser,
		storage:   storage,
		validator: validationEngine,
		cfg:       cfg,
	}
}

// NormalizeText strips a leading byte-order mark, unifies line endings and
// applies Unicode NFC so composed and decomposed input extract identically.
func NormalizeText(text string) string {
	text = strings.TrimPrefix(text, "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return norm.NFC.String(text)
}

func (s *extractionService) prepare(input *ExtractInput) (string, error) {
	if len(input.Text) > s.cfg.MaxTextBytes {
		return "", domain.ErrTextTooLarge
	}
	return NormalizeText(input.Text), nil
}

func (s *extractionService) Extract(ctx context.Context, input *ExtractInput) (*ExtractResult, error) {
	text, err := s.prepare(input)
	if err != nil {
		return nil, err
	}

	doc := domain.NewDocumentRecord()
	res := &ExtractResult{
		ValidationStatus: domain.ValidationStatusPending,
		Validation:       []domain.ValidationResult{},
	}
	if strings.TrimSpace(text) != "" {
		output, err := s.parser.Parse(ctx, port.ParseInput{
			Text:         text,
			Tokens:       input.Tokens,
			DocumentType: input.DocumentType,
		})
		if err != nil {
			return nil, fmt.Errorf("parsing text: %w", err)
		}
		if output != nil {
			if output.Document != nil {
				doc = *output.Document
			}
			res.Confidence = output.Confidence
			res.ParserModel = output.ModelUsed
			res.FieldProvenance = output.FieldProvenance
		}
	}
	res.Document = doc
	if s.validator != nil {
		res.Validation, res.ValidationStatus = s.validator.Validate(ctx, &doc)
	}
	return res, nil
}

func (s *extractionService) Submit(ctx context.Context, input *ExtractInput) (*domain.Extraction, error) {
	text, err := s.prepare(input)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyText
	}

	source := input.Source
	if source == "" {
		source = domain.ExtractionSourceAPI
	}
	ext := &domain.Extraction{
		ID:               uuid.New(),
		Source:           source,
		DocumentTypeHint: input.DocumentType,
		DocumentType:     domain.DocumentTypeUnknown,
		RawText:          text,
		Status:           domain.ExtractionStatusQueued,
		ValidationStatus: domain.ValidationStatusPending,
	}
	if len(input.Tokens) > 0 {
		tokens, err := json.Marshal(input.Tokens)
		if err != nil {
			return nil, fmt.Errorf("encoding tokens: %w", err)
		}
		ext.Tokens = tokens
	}

	if err := s.repo.Create(ctx, ext); err != nil {
		return nil, fmt.Errorf("creating extraction: %w", err)
	}
	log.Info().Str("extraction_id", ext.ID.String()).Bool("async", input.Async).
		Msg("extractionService.Submit: extraction created")

	if input.Async {
		return ext, nil
	}

	ext.Status = domain.ExtractionStatusProcessing
	ext.Attempts = 1
	s.Process(ctx, ext, s.cfg.MaxAttempts)
	return ext, nil
}

// Process runs the parser chain for a claimed extraction and persists the
// outcome. Rate-limited extractions below maxAttempts go back to the queue.
func (s *extractionService) Process(ctx context.Context, ext *domain.Extraction, maxAttempts int) {
	var tokens []domain.OCRToken
	if len(ext.Tokens) > 0 {
		if err := json.Unmarshal(ext.Tokens, &tokens); err != nil {
			log.Warn().Err(err).Str("extraction_id", ext.ID.String()).
				Msg("extractionService.Process: ignoring undecodable tokens")
		}
	}

	output, err := s.parser.Parse(ctx, port.ParseInput{
		Text:         ext.RawText,
		Tokens:       tokens,
		DocumentType: ext.DocumentTypeHint,
	})
	if err != nil {
		s.handleParseError(ctx, ext, err, maxAttempts)
		return
	}

	doc := domain.NewDocumentRecord()
	if output.Document != nil {
		doc = *output.Document
	}
	result, err := json.Marshal(doc)
	if err != nil {
		s.fail(ctx, ext, fmt.Sprintf("encoding result: %v", err))
		return
	}

	now := time.Now().UTC()
	ext.Result = result
	ext.DocumentType = doc.DocumentType
	ext.Confidence = output.Confidence
	ext.ParserModel = output.ModelUsed
	if output.SecondaryModel != "" && output.SecondaryModel != output.ModelUsed {
		ext.ParserModel = output.ModelUsed + "+" + output.SecondaryModel
	}
	ext.FieldProvenance = nil
	if len(output.FieldProvenance) > 0 {
		if provenance, jsonErr := json.Marshal(output.FieldProvenance); jsonErr == nil {
			ext.FieldProvenance = provenance
		}
	}
	ext.Status = domain.ExtractionStatusCompleted
	ext.Error = ""
	ext.CompletedAt = &now

	if s.validator != nil {
		results, status := s.validator.Validate(ctx, &doc)
		if encoded, jsonErr := json.Marshal(results); jsonErr == nil {
			ext.ValidationResults = encoded
			ext.ValidationStatus = status
		}
	}

	if s.storage != nil {
		if err := s.archive(ctx, ext); err != nil {
			log.Warn().Err(err).Str("extraction_id", ext.ID.String()).
				Msg("extractionService.Process: archive failed")
		}
	}

	if err := s.repo.Update(ctx, ext); err != nil {
		log.Error().Err(err).Str("extraction_id", ext.ID.String()).
			Msg("extractionService.Process: failed to save results")
		return
	}
	log.Info().
		Str("extraction_id", ext.ID.String()).
		Str("document_type", string(ext.DocumentType)).
		Str("parser_model", ext.ParserModel).
		Str("validation_status", string(ext.ValidationStatus)).
		Msg("extractionService.Process: extraction completed")
}

func (s *extractionService) handleParseError(ctx context.Context, ext *domain.Extraction, parseErr error, maxAttempts int) {
	var rlErr *parser.RateLimitError
	if errors.As(parseErr, &rlErr) && ext.Attempts < maxAttempts {
		ext.Status = domain.ExtractionStatusQueued
		ext.Error = fmt.Sprintf("rate limited by %s, queued for retry", rlErr.Provider)
		if err := s.repo.Update(ctx, ext); err != nil {
			log.Error().Err(err).Str("extraction_id", ext.ID.String()).
				Msg("extractionService.handleParseError: failed to requeue")
			return
		}
		log.Warn().Str("extraction_id", ext.ID.String()).Int("attempt", ext.Attempts).
			Dur("retry_after", rlErr.RetryAfter).
			Msg("extractionService.handleParseError: queued for retry")
		return
	}
	s.fail(ctx, ext, fmt.Sprintf("parsing text: %v", parseErr))
}

func (s *extractionService) fail(ctx context.Context, ext *domain.Extraction, errMsg string) {
	log.Error().Str("extraction_id", ext.ID.String()).Str("error", errMsg).
		Msg("extractionService.fail: extraction failed")
	ext.Status = domain.ExtractionStatusFailed
	ext.Error = errMsg
	if err := s.repo.Update(ctx, ext); err != nil {
		log.Error().Err(err).Str("extraction_id", ext.ID.String()).
			Msg("extractionService.fail: failed to update status")
	}
}

func textKey(id uuid.UUID) string   { return fmt.Sprintf("extractions/%s/text.txt", id) }
func resultKey(id uuid.UUID) string { return fmt.Sprintf("extractions/%s/result.json", id) }

// archive uploads the raw text and the result document.
func (s *extractionService) archive(ctx context.Context, ext *domain.Extraction) error {
	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         textKey(ext.ID),
		Body:        strings.NewReader(ext.RawText),
		ContentType: "text/plain; charset=utf-8",
	}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrArchiveFailed, err)
	}
	ext.RawTextKey = textKey(ext.ID)

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Key:         resultKey(ext.ID),
		Body:        bytes.NewReader(ext.Result),
		ContentType: "application/json",
	}); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrArchiveFailed, err)
	}
	ext.ResultKey = resultKey(ext.ID)
	return nil
}

func (s *extractionService) Get(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *extractionService) List(ctx context.Context, filter port.ExtractionFilter, offset, limit int) ([]domain.Extraction, int, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, filter, offset, limit)
}

// Export pages through every extraction matching filter, up to a fixed cap.
func (s *extractionService) Export(ctx context.Context, filter port.ExtractionFilter) ([]domain.Extraction, error) {
	var all []domain.Extraction
	for offset := 0; offset < maxExportRows; offset += exportBatchSize {
		batch, total, err := s.repo.List(ctx, filter, offset, exportBatchSize)
		if err != nil {
			return nil, fmt.Errorf("listing extractions: %w", err)
		}
		all = append(all, batch...)
		if len(batch) < exportBatchSize || offset+len(batch) >= total {
			break
		}
	}
	return all, nil
}

func (s *extractionService) Delete(ctx context.Context, id uuid.UUID) error {
	ext, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if s.storage != nil {
		for _, key := range []string{ext.RawTextKey, ext.ResultKey} {
			if key == "" {
				continue
			}
			if err := s.storage.Delete(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("extractionService.Delete: failed to delete archived object")
			}
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *extractionService) DownloadURL(ctx context.Context, id uuid.UUID) (string, error) {
	if s.storage == nil {
		return "", domain.ErrStorageDisabled
	}
	ext, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if ext.Status != domain.ExtractionStatusCompleted {
		return "", domain.ErrExtractionNotCompleted
	}
	if ext.ResultKey == "" {
		return "", domain.ErrNotFound
	}
	return s.storage.GetPresignedURL(ctx, ext.ResultKey, s.cfg.PresignExpiry)
}
