package document

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"docex/internal/domain"
)

var (
	gstinPattern      = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panPattern        = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	postalCodePattern = regexp.MustCompile(`^[1-9]\d{5}$`)
	itemCodePattern   = regexp.MustCompile(`^\d{4,8}$`)
)

// formatValidator checks a field against a regex or format rule.
type formatValidator struct {
	ruleKey   string
	ruleName  string
	fieldPath string
	severity  domain.ValidationSeverity
	validate  func(*domain.DocumentRecord) []Result
}

func (v *formatValidator) RuleKey() string                     { return v.ruleKey }
func (v *formatValidator) RuleName() string                    { return v.ruleName }
func (v *formatValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleRegex }
func (v *formatValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *formatValidator) Validate(_ context.Context, data *domain.DocumentRecord) []Result {
	return v.validate(data)
}

func regexCheck(fieldPath, value, pattern, ruleName string, re *regexp.Regexp) Result {
	if value == "" {
		return Result{
			Passed: true, FieldPath: fieldPath,
			ExpectedValue: pattern, ActualValue: value,
			Message: fmt.Sprintf("%s: field is empty, skipping format check", ruleName),
		}
	}
	passed := re.MatchString(value)
	msg := fmt.Sprintf("%s: %s matches expected format", ruleName, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s does not match expected format", ruleName, fieldPath)
	}
	return Result{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: pattern, ActualValue: value, Message: msg,
	}
}

func dateCheck(fieldPath, value, ruleName string) Result {
	if value == "" {
		return Result{
			Passed: true, FieldPath: fieldPath,
			ExpectedValue: "parseable date", ActualValue: value,
			Message: fmt.Sprintf("%s: field is empty, skipping date check", ruleName),
		}
	}
	_, err := ParseDate(value)
	passed := err == nil
	msg := fmt.Sprintf("%s: %s is a valid date", ruleName, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s is not a parseable date", ruleName, fieldPath)
	}
	return Result{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: "parseable date", ActualValue: value, Message: msg,
	}
}

func amountCheck(fieldPath, value, ruleName string) Result {
	if value == "" {
		return Result{
			Passed: true, FieldPath: fieldPath,
			ExpectedValue: "decimal amount", ActualValue: value,
			Message: fmt.Sprintf("%s: field is empty, skipping amount check", ruleName),
		}
	}
	_, err := parseAmount(value)
	passed := err == nil
	msg := fmt.Sprintf("%s: %s is a valid amount", ruleName, fieldPath)
	if !passed {
		msg = fmt.Sprintf("%s: %s is not a decimal amount", ruleName, fieldPath)
	}
	return Result{
		Passed: passed, FieldPath: fieldPath,
		ExpectedValue: "decimal amount", ActualValue: value, Message: msg,
	}
}

// ParseDate tries the day-first formats found on Indian business documents,
// then ISO dates.
func ParseDate(s string) (time.Time, error) {
	formats := []string{
		"02/01/2006",
		"2/1/2006",
		"02-01-2006",
		"2-1-2006",
		"02/01/06",
		"2/1/06",
		"02-01-06",
		"2-1-06",
		"2006-01-02",
		"2006/01/02",
		"02 Jan 2006",
		"2 Jan 2006",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", s)
}

// FormatValidators returns all format validators.
func FormatValidators() []*formatValidator {
	return []*formatValidator{
		{
			ruleKey: "fmt.client.tax_id", ruleName: "Format: Client GSTIN",
			fieldPath: "client.tax_id", severity: domain.ValidationSeverityError,
			validate: func(d *domain.DocumentRecord) []Result {
				return []Result{regexCheck("client.tax_id", d.Issuer.TaxID, "15-char GSTIN format", "Format: Client GSTIN", gstinPattern)}
			},
		},
		{
			ruleKey: "fmt.receiver.tax_id", ruleName: "Format: Receiver GSTIN",
			fieldPath: "receiver.tax_id", severity: domain.ValidationSeverityError,
			validate: func(d *domain.DocumentRecord) []Result {
				return []Result{regexCheck("receiver.tax_id", d.Receiver.TaxID, "15-char GSTIN format", "Format: Receiver GSTIN", gstinPattern)}
			},
		},
		{
			ruleKey: "fmt.client.secondary_tax_id", ruleName: "Format: Client PAN",
			fieldPath: "client.secondary_tax_id", severity: domain.ValidationSeverityError,
			validate: func(d *domain.DocumentRecord) []Result {
				return []Result{regexCheck("client.secondary_tax_id", d.Issuer.SecondaryTaxID, "10-char PAN format", "Format: Client PAN", panPattern)}
			},
		},
		{
			ruleKey: "fmt.document.date", ruleName: "Format: Document Date",
			fieldPath: "date", severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				return []Result{dateCheck("date", d.Date, "Format: Document Date")}
			},
		},
		{
			ruleKey: "fmt.party.email", ruleName: "Format: E-mail",
			fieldPath: "*.email", severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				return []Result{
					regexCheck("client.email", d.Issuer.Email, "local@domain.tld", "Format: E-mail", emailPattern),
					regexCheck("receiver.email", d.Receiver.Email, "local@domain.tld", "Format: E-mail", emailPattern),
				}
			},
		},
		{
			ruleKey: "fmt.party.postal_code", ruleName: "Format: PIN Code",
			fieldPath: "*.postal_code", severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				return []Result{
					regexCheck("client.postal_code", d.Issuer.PostalCode, "6-digit PIN code", "Format: PIN Code", postalCodePattern),
					regexCheck("receiver.postal_code", d.Receiver.PostalCode, "6-digit PIN code", "Format: PIN Code", postalCodePattern),
				}
			},
		},
		{
			ruleKey: "fmt.amounts", ruleName: "Format: Amounts",
			fieldPath: "*amount", severity: domain.ValidationSeverityError,
			validate: func(d *domain.DocumentRecord) []Result {
				results := []Result{
					amountCheck("subtotal", d.Subtotal, "Format: Amounts"),
					amountCheck("total_amount", d.TotalAmount, "Format: Amounts"),
				}
				for _, c := range domain.TaxComponents {
					results = append(results, amountCheck(c, d.Tax(c), "Format: Amounts"))
				}
				for i := range d.Items {
					fp := fmt.Sprintf("items[%d].amount", i)
					results = append(results, amountCheck(fp, d.Items[i].Amount, "Format: Amounts"))
				}
				return results
			},
		},
		{
			ruleKey: "fmt.item.item_code", ruleName: "Format: Item Code",
			fieldPath: "items[i].item_code", severity: domain.ValidationSeverityWarning,
			validate: func(d *domain.DocumentRecord) []Result {
				results := make([]Result, 0, len(d.Items))
				for i := range d.Items {
					fp := fmt.Sprintf("items[%d].item_code", i)
					results = append(results, regexCheck(fp, d.Items[i].ItemCode, "4-8 digit item code", "Format: Item Code", itemCodePattern))
				}
				return results
			},
		},
	}
}
