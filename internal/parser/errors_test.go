package parser_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"docex/internal/parser"
)

func TestNewRateLimitError_DefaultRetry(t *testing.T) {
	err := parser.NewRateLimitError("gemini", errors.New("429"), 0)
	assert.Equal(t, 60*time.Second, err.RetryAfter)
	assert.Contains(t, err.Error(), "gemini rate limited")
}

func TestIsRateLimited(t *testing.T) {
	wrapped := fmt.Errorf("parse: %w", parser.NewRateLimitError("claude", errors.New("429"), 12))

	d, ok := parser.IsRateLimited(wrapped)
	assert.True(t, ok)
	assert.Equal(t, 12*time.Second, d)

	_, ok = parser.IsRateLimited(errors.New("boom"))
	assert.False(t, ok)
}

func TestParseRetryAfterHeader(t *testing.T) {
	assert.Equal(t, 0, parser.ParseRetryAfterHeader(""))
	assert.Equal(t, 30, parser.ParseRetryAfterHeader(" 30 "))
	assert.Equal(t, 0, parser.ParseRetryAfterHeader("soon"))

	future := time.Now().Add(2 * time.Minute).UTC().Format(http.TimeFormat)
	secs := parser.ParseRetryAfterHeader(future)
	assert.Greater(t, secs, 60)
	assert.LessOrEqual(t, secs, 121)

	past := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	assert.Equal(t, 0, parser.ParseRetryAfterHeader(past))
}
