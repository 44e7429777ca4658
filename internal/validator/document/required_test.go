package document_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"docex/internal/domain"
	"docex/internal/validator/document"
)

func TestRequiredFieldValidators(t *testing.T) {
	ctx := context.Background()
	for _, v := range document.RequiredFieldValidators() {
		assert.Equal(t, domain.ValidationSeverityWarning, v.Severity(), v.RuleKey())
		assert.True(t, v.Validate(ctx, validDocument())[0].Passed, v.RuleKey())

		empty := domain.NewDocumentRecord()
		results := v.Validate(ctx, &empty)
		assert.False(t, results[0].Passed, v.RuleKey())
		assert.Contains(t, results[0].Message, "missing or empty")
	}
}
