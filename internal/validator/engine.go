package validator

import (
	"context"

	"github.com/rs/zerolog/log"

	"docex/internal/domain"
)

// Engine runs every registered rule against a document record.
type Engine struct {
	registry *Registry
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Validate runs all rules and returns their results together with the
// aggregate status: invalid when an error-severity rule failed, warning when
// only warning-severity rules failed, valid otherwise.
func (e *Engine) Validate(ctx context.Context, doc *domain.DocumentRecord) ([]domain.ValidationResult, domain.ValidationStatus) {
	var (
		results    = []domain.ValidationResult{}
		hasError   bool
		hasWarning bool
	)

	for _, v := range e.registry.All() {
		for _, vr := range v.Validate(ctx, doc) {
			results = append(results, domain.ValidationResult{
				RuleKey:       v.RuleKey(),
				RuleName:      v.RuleName(),
				RuleType:      v.RuleType(),
				Severity:      v.Severity(),
				FieldPath:     vr.FieldPath,
				Passed:        vr.Passed,
				ExpectedValue: vr.ExpectedValue,
				ActualValue:   vr.ActualValue,
				Message:       vr.Message,
			})
			if vr.Passed {
				continue
			}
			if v.Severity() == domain.ValidationSeverityError {
				hasError = true
			} else {
				hasWarning = true
			}
		}
	}

	var status domain.ValidationStatus
	switch {
	case hasError:
		status = domain.ValidationStatusInvalid
	case hasWarning:
		status = domain.ValidationStatusWarning
	default:
		status = domain.ValidationStatusValid
	}

	log.Debug().
		Str("status", string(status)).
		Int("results", len(results)).
		Msg("validator.Engine: document validated")
	return results, status
}
