package document

import (
	"context"
	"fmt"
	"time"

	"docex/internal/domain"
)

// logicalValidator checks logical constraints on the document data.
type logicalValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(*domain.DocumentRecord) []Result
}

func (v *logicalValidator) RuleKey() string                     { return v.ruleKey }
func (v *logicalValidator) RuleName() string                    { return v.ruleName }
func (v *logicalValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleCustom }
func (v *logicalValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *logicalValidator) Validate(_ context.Context, data *domain.DocumentRecord) []Result {
	return v.validate(data)
}

func nonNegativeCheck(fieldPath, value, ruleName string) Result {
	if value == "" {
		return skipped(fieldPath, ruleName, "amount missing")
	}
	amt, err := parseAmount(value)
	if err != nil {
		return skipped(fieldPath, ruleName, "amount not parseable")
	}
	passed := !amt.IsNegative()
	msg := fmt.Sprintf("%s: %s is non-negative", ruleName, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s is negative (%s)", ruleName, fieldPath, amt.StringFixed(2))
	}
	return Result{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: ">= 0", ActualValue: value, Message: msg,
	}
}

// LogicalValidators returns all logical validators.
func LogicalValidators() []*logicalValidator {
	return []*logicalValidator{
		{
			ruleKey: "logic.line_item.non_negative", ruleName: "Logical: Line Item Non-Negative Amounts",
			severity: domain.ValidationSeverityError,
			validate: func(d *domain.DocumentRecord) []Result {
				results := make([]Result, 0, len(d.Items))
				for i := range d.Items {
					fp := fmt.Sprintf("items[%d].amount", i)
					results = append(results, nonNegativeCheck(fp, d.Items[i].Amount, "Logical: Line Item Non-Negative Amounts"))
				}
				return results
			},
		},
		{
			ruleKey: "logic.totals.non_negative", ruleName: "Logical: Non-Negative Totals",
			severity: domain.ValidationSeverityError,
			validate: func(d *domain.DocumentRecord) []Result {
				const name = "Logical: Non-Negative Totals"
				results := []Result{nonNegativeCheck("subtotal", d.Subtotal, name)}
				for _, c := range domain.TaxComponents {
					results = append(results, nonNegativeCheck(c, d.Tax(c), name))
				}
				return append(results, nonNegativeCheck("total_amount", d.TotalAmount, name))
			},
		},
		{
			ruleKey: "logic.document.date_not_future", ruleName: "Logical: Date Not in Future",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				const name = "Logical: Date Not in Future"
				if d.Date == "" {
					return []Result{skipped("date", name, "date missing")}
				}
				date, err := ParseDate(d.Date)
				if err != nil {
					return []Result{skipped("date", name, "date not parseable")}
				}
				today := time.Now().Truncate(24 * time.Hour)
				passed := !date.After(today)
				msg := name + ": date is not in the future"
				if !passed {
					msg = name + ": date is in the future"
				}
				return []Result{{
					Passed: passed, FieldPath: "date",
					ExpectedValue: fmt.Sprintf("<= %s", today.Format("2006-01-02")),
					ActualValue:   d.Date, Message: msg,
				}}
			},
		},
	}
}
