package validator

import (
	"context"

	"docex/internal/domain"
	"docex/internal/validator/document"
)

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	Validate(ctx context.Context, data *domain.DocumentRecord) []document.Result
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}
