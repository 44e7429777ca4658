package document

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Result is the outcome of one check on one field path.
type Result struct {
	Passed        bool
	FieldPath     string
	ExpectedValue string
	ActualValue   string
	Message       string
}

// skipped is a passing result for a check whose inputs are missing.
func skipped(fieldPath, ruleName, reason string) Result {
	return Result{
		Passed: true, FieldPath: fieldPath,
		Message: fmt.Sprintf("%s: %s, skipping", ruleName, reason),
	}
}

// parseAmount reads an extracted amount such as "1,18,000.00". Thousands
// separators and a leading currency marker are ignored.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "Rs."), "Rs")
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	return decimal.NewFromString(s)
}
