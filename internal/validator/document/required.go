package document

import (
	"context"
	"fmt"

	"docex/internal/domain"
)

// requiredFieldValidator checks that a field was extracted at all.
type requiredFieldValidator struct {
	ruleKey   string
	ruleName  string
	fieldPath string
	severity  domain.ValidationSeverity
	extract   func(*domain.DocumentRecord) string
}

func (v *requiredFieldValidator) RuleKey() string  { return v.ruleKey }
func (v *requiredFieldValidator) RuleName() string { return v.ruleName }
func (v *requiredFieldValidator) RuleType() domain.ValidationRuleType {
	return domain.ValidationRuleRequired
}
func (v *requiredFieldValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *requiredFieldValidator) Validate(_ context.Context, data *domain.DocumentRecord) []Result {
	val := v.extract(data)
	return []Result{{
		Passed:        val != "",
		FieldPath:     v.fieldPath,
		ExpectedValue: "non-empty value",
		ActualValue:   val,
		Message:       fieldMessage(val != "", v.ruleName, v.fieldPath),
	}}
}

func fieldMessage(passed bool, ruleName, fieldPath string) string {
	if passed {
		return fmt.Sprintf("%s: %s is present", ruleName, fieldPath)
	}
	return fmt.Sprintf("%s: %s is missing or empty", ruleName, fieldPath)
}

// RequiredFieldValidators returns all required field validators. A missing
// field is a warning: the rule engine leaves fields empty rather than guess.
func RequiredFieldValidators() []*requiredFieldValidator {
	return []*requiredFieldValidator{
		{
			ruleKey: "req.document.type", ruleName: "Required: Document Type",
			fieldPath: "document_type", severity: domain.ValidationSeverityWarning,
			extract: func(d *domain.DocumentRecord) string {
				if d.DocumentType == domain.DocumentTypeUnknown {
					return ""
				}
				return string(d.DocumentType)
			},
		},
		{
			ruleKey: "req.document.number", ruleName: "Required: Document Number",
			fieldPath: "document_number", severity: domain.ValidationSeverityWarning,
			extract: func(d *domain.DocumentRecord) string { return d.DocumentNumber },
		},
		{
			ruleKey: "req.document.date", ruleName: "Required: Document Date",
			fieldPath: "date", severity: domain.ValidationSeverityWarning,
			extract: func(d *domain.DocumentRecord) string { return d.Date },
		},
		{
			ruleKey: "req.client.company_name", ruleName: "Required: Client Company Name",
			fieldPath: "client.company_name", severity: domain.ValidationSeverityWarning,
			extract: func(d *domain.DocumentRecord) string { return d.Issuer.CompanyName },
		},
		{
			ruleKey: "req.total_amount", ruleName: "Required: Total Amount",
			fieldPath: "total_amount", severity: domain.ValidationSeverityWarning,
			extract: func(d *domain.DocumentRecord) string { return d.TotalAmount },
		},
	}
}
