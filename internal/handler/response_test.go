package handler_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"docex/internal/domain"
	"docex/internal/handler"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrExtractionNotFound, http.StatusNotFound, "EXTRACTION_NOT_FOUND"},
		{fmt.Errorf("extractionRepo.GetByID: %w", domain.ErrExtractionNotFound), http.StatusNotFound, "EXTRACTION_NOT_FOUND"},
		{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrEmptyText, http.StatusBadRequest, "EMPTY_TEXT"},
		{domain.ErrTextTooLarge, http.StatusRequestEntityTooLarge, "TEXT_TOO_LARGE"},
		{domain.ErrExtractionNotCompleted, http.StatusConflict, "EXTRACTION_NOT_COMPLETED"},
		{domain.ErrStorageDisabled, http.StatusNotImplemented, "STORAGE_DISABLED"},
		{fmt.Errorf("parsing text: %w", domain.ErrInvalidOracleOutput), http.StatusBadGateway, "INVALID_ORACLE_OUTPUT"},
		{errors.New("unexpected"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code, _ := handler.MapDomainError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
