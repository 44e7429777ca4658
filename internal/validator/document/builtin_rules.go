package document

import (
	"context"

	"docex/internal/domain"
)

// BuiltinValidator wraps a validator function and its metadata for the registry.
type BuiltinValidator struct {
	key      string
	name     string
	ruleType domain.ValidationRuleType
	sev      domain.ValidationSeverity
	fn       func(context.Context, *domain.DocumentRecord) []Result
}

func (b *BuiltinValidator) Validate(ctx context.Context, data *domain.DocumentRecord) []Result {
	return b.fn(ctx, data)
}
func (b *BuiltinValidator) RuleKey() string                     { return b.key }
func (b *BuiltinValidator) RuleName() string                    { return b.name }
func (b *BuiltinValidator) RuleType() domain.ValidationRuleType { return b.ruleType }
func (b *BuiltinValidator) Severity() domain.ValidationSeverity { return b.sev }

type rule interface {
	Validate(context.Context, *domain.DocumentRecord) []Result
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}

func wrap(v rule) *BuiltinValidator {
	return &BuiltinValidator{
		key: v.RuleKey(), name: v.RuleName(),
		ruleType: v.RuleType(), sev: v.Severity(),
		fn: v.Validate,
	}
}

// AllBuiltinValidators returns every built-in document validator.
func AllBuiltinValidators() []*BuiltinValidator {
	var all []*BuiltinValidator
	for _, v := range RequiredFieldValidators() {
		all = append(all, wrap(v))
	}
	for _, v := range FormatValidators() {
		all = append(all, wrap(v))
	}
	for _, v := range MathValidators() {
		all = append(all, wrap(v))
	}
	for _, v := range CrossFieldValidators() {
		all = append(all, wrap(v))
	}
	for _, v := range LogicalValidators() {
		all = append(all, wrap(v))
	}
	return all
}
