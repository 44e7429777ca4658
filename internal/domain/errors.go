package domain

import "errors"

var (
	ErrNotFound               = errors.New("resource not found")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrExtractionNotFound     = errors.New("extraction not found")
	ErrExtractionNotCompleted = errors.New("extraction has not completed yet")
	ErrEmptyText              = errors.New("no text provided")
	ErrTextTooLarge           = errors.New("text exceeds maximum allowed size")
	ErrInvalidOracleOutput    = errors.New("extraction oracle returned invalid output")
	ErrStorageDisabled        = errors.New("object storage is not configured")
	ErrArchiveFailed          = errors.New("archiving to object storage failed")
)
