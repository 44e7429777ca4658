package document

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"docex/internal/domain"
)

var mathTolerance = decimal.NewFromFloat(1.00)

// mathValidator checks arithmetic relationships between amounts.
type mathValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(*domain.DocumentRecord) []Result
}

func (v *mathValidator) RuleKey() string                     { return v.ruleKey }
func (v *mathValidator) RuleName() string                    { return v.ruleName }
func (v *mathValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleSumCheck }
func (v *mathValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *mathValidator) Validate(_ context.Context, data *domain.DocumentRecord) []Result {
	return v.validate(data)
}

func approxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(mathTolerance)
}

func mathResult(passed bool, fieldPath string, expected, actual decimal.Decimal, ruleName string) Result {
	msg := fmt.Sprintf("%s: %s calculation matches", ruleName, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s calculation mismatch (expected %s, got %s)", ruleName, fieldPath, expected.StringFixed(2), actual.StringFixed(2))
	}
	return Result{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: expected.StringFixed(2), ActualValue: actual.StringFixed(2), Message: msg,
	}
}

// taxSum adds the extracted tax components. ok is false when any present
// component is unparseable.
func taxSum(d *domain.DocumentRecord) (sum decimal.Decimal, ok bool) {
	for _, c := range domain.TaxComponents {
		v := d.Tax(c)
		if v == "" {
			continue
		}
		amt, err := parseAmount(v)
		if err != nil {
			return decimal.Zero, false
		}
		sum = sum.Add(amt)
	}
	return sum, true
}

// MathValidators returns all arithmetic validators. Checks whose inputs were
// not extracted pass as skipped.
func MathValidators() []*mathValidator {
	return []*mathValidator{
		{
			ruleKey: "math.totals.subtotal", ruleName: "Math: Subtotal",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				const name = "Math: Subtotal"
				if d.Subtotal == "" || len(d.Items) == 0 {
					return []Result{skipped("subtotal", name, "subtotal or items missing")}
				}
				subtotal, err := parseAmount(d.Subtotal)
				if err != nil {
					return []Result{skipped("subtotal", name, "subtotal not parseable")}
				}
				var sum decimal.Decimal
				for i := range d.Items {
					amt, err := parseAmount(d.Items[i].Amount)
					if err != nil {
						return []Result{skipped("subtotal", name, fmt.Sprintf("items[%d].amount not parseable", i))}
					}
					sum = sum.Add(amt)
				}
				return []Result{mathResult(approxEqual(subtotal, sum), "subtotal", sum, subtotal, name)}
			},
		},
		{
			ruleKey: "math.totals.grand_total", ruleName: "Math: Grand Total",
			severity: domain.ValidationSeverityError,
			validate: func(d *domain.DocumentRecord) []Result {
				const name = "Math: Grand Total"
				if d.Subtotal == "" || d.TotalAmount == "" {
					return []Result{skipped("total_amount", name, "subtotal or total missing")}
				}
				subtotal, err1 := parseAmount(d.Subtotal)
				total, err2 := parseAmount(d.TotalAmount)
				taxes, ok := taxSum(d)
				if err1 != nil || err2 != nil || !ok {
					return []Result{skipped("total_amount", name, "amounts not parseable")}
				}
				expected := subtotal.Add(taxes)
				return []Result{mathResult(approxEqual(total, expected), "total_amount", expected, total, name)}
			},
		},
		{
			ruleKey: "math.taxes.cgst_sgst_equal", ruleName: "Math: CGST equals SGST",
			severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				const name = "Math: CGST equals SGST"
				cv, sv := d.Tax(domain.TaxCGST), d.Tax(domain.TaxSGST)
				if cv == "" || sv == "" {
					return []Result{skipped("sgst", name, "cgst or sgst missing")}
				}
				cgst, err1 := parseAmount(cv)
				sgst, err2 := parseAmount(sv)
				if err1 != nil || err2 != nil {
					return []Result{skipped("sgst", name, "amounts not parseable")}
				}
				return []Result{mathResult(approxEqual(cgst, sgst), "sgst", cgst, sgst, name)}
			},
		},
	}
}
