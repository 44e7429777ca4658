package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"docex/internal/domain"
	"docex/internal/port"
)

// listColumns omits raw_text and tokens, which List callers never need.
const listColumns = `id, source, document_type_hint, document_type, raw_text_key, result_key,
	result, confidence, parser_model, field_provenance, status, error,
	validation_status, validation_results, attempts, created_at, updated_at, completed_at`

type extractionRepo struct {
	db *sqlx.DB
}

// NewExtractionRepo creates a new PostgreSQL-backed ExtractionRepository.
func NewExtractionRepo(db *sqlx.DB) port.ExtractionRepository {
	return &extractionRepo{db: db}
}

func (r *extractionRepo) Create(ctx context.Context, e *domain.Extraction) error {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	query := `INSERT INTO extractions (
		id, source, document_type_hint, document_type, raw_text, raw_text_key, result_key,
		tokens, result, confidence, parser_model, field_provenance,
		status, error, validation_status, validation_results, attempts,
		created_at, updated_at, completed_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, $14, $15, $16, $17,
		$18, $19, $20
	)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.Source, e.DocumentTypeHint, e.DocumentType, e.RawText, e.RawTextKey, e.ResultKey,
		jsonOr(e.Tokens, emptyArray), jsonOr(e.Result, emptyObject), e.Confidence, e.ParserModel, jsonOr(e.FieldProvenance, emptyObject),
		e.Status, e.Error, e.ValidationStatus, jsonOr(e.ValidationResults, emptyArray), e.Attempts,
		e.CreatedAt, e.UpdatedAt, e.CompletedAt)
	if err != nil {
		return fmt.Errorf("extractionRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error) {
	var e domain.Extraction
	err := r.db.GetContext(ctx, &e, "SELECT * FROM extractions WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("extractionRepo.GetByID: %w", err)
	}
	return &e, nil
}

func (r *extractionRepo) List(ctx context.Context, filter port.ExtractionFilter, offset, limit int) ([]domain.Extraction, int, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DocumentType != "" {
		args = append(args, filter.DocumentType)
		conds = append(conds, fmt.Sprintf("document_type = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM extractions"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List count: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM extractions%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		listColumns, where, len(args)+1, len(args)+2)
	var exts []domain.Extraction
	if err := r.db.SelectContext(ctx, &exts, query, append(args, limit, offset)...); err != nil {
		return nil, 0, fmt.Errorf("extractionRepo.List: %w", err)
	}
	return exts, total, nil
}

func (r *extractionRepo) Update(ctx context.Context, e *domain.Extraction) error {
	e.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE extractions SET
			document_type = $1, raw_text_key = $2, result_key = $3,
			result = $4, confidence = $5, parser_model = $6, field_provenance = $7,
			status = $8, error = $9, validation_status = $10, validation_results = $11,
			attempts = $12, updated_at = $13, completed_at = $14
		 WHERE id = $15`,
		e.DocumentType, e.RawTextKey, e.ResultKey,
		jsonOr(e.Result, emptyObject), e.Confidence, e.ParserModel, jsonOr(e.FieldProvenance, emptyObject),
		e.Status, e.Error, e.ValidationStatus, jsonOr(e.ValidationResults, emptyArray),
		e.Attempts, e.UpdatedAt, e.CompletedAt,
		e.ID)
	if err != nil {
		return fmt.Errorf("extractionRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrExtractionNotFound
	}
	return nil
}

func (r *extractionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM extractions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("extractionRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrExtractionNotFound
	}
	return nil
}

// ClaimQueued moves the oldest queued rows to processing in one statement.
// SKIP LOCKED lets several workers poll the same table without blocking.
func (r *extractionRepo) ClaimQueued(ctx context.Context, maxAttempts, limit int) ([]domain.Extraction, error) {
	var exts []domain.Extraction
	err := r.db.SelectContext(ctx, &exts,
		`UPDATE extractions SET
			status = $1, attempts = attempts + 1, updated_at = NOW()
		 WHERE id IN (
			SELECT id FROM extractions
			WHERE status = $2 AND attempts < $3
			ORDER BY created_at ASC
			LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.ExtractionStatusProcessing, domain.ExtractionStatusQueued, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("extractionRepo.ClaimQueued: %w", err)
	}
	return exts, nil
}

const (
	emptyObject = "{}"
	emptyArray  = "[]"
)

// jsonOr returns b as text, or def when b is empty. JSONB columns are NOT
// NULL so they scan into json.RawMessage.
func jsonOr(b []byte, def string) string {
	if len(b) == 0 {
		return def
	}
	return string(b)
}
