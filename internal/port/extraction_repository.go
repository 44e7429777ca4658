package port

import (
	"context"

	"github.com/google/uuid"

	"docex/internal/domain"
)

// ExtractionFilter narrows List results. Zero values match everything.
type ExtractionFilter struct {
	Status       domain.ExtractionStatus
	DocumentType domain.DocumentType
}

// ExtractionRepository defines the contract for extraction persistence.
type ExtractionRepository interface {
	Create(ctx context.Context, e *domain.Extraction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Extraction, error)
	List(ctx context.Context, filter ExtractionFilter, offset, limit int) ([]domain.Extraction, int, error)
	Update(ctx context.Context, e *domain.Extraction) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ClaimQueued atomically moves up to limit queued extractions with fewer
	// than maxAttempts attempts to processing and returns them.
	ClaimQueued(ctx context.Context, maxAttempts, limit int) ([]domain.Extraction, error)
}
