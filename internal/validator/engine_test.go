package validator_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docex/internal/domain"
	"docex/internal/validator"
)

func sampleDocument() *domain.DocumentRecord {
	d := domain.NewDocumentRecord()
	d.DocumentType = domain.DocumentTypeInvoice
	d.DocumentNumber = "INV-1"
	d.Date = "01/04/2025"
	d.Issuer.CompanyName = "ACME LTD"
	d.Issuer.TaxID = "29ABCDE1234F1Z5"
	d.Subtotal = "100.00"
	d.SetTax(domain.TaxIGST, "18.00")
	d.TotalAmount = "118.00"
	return &d
}

func TestEngine_Valid(t *testing.T) {
	e := validator.NewEngine(validator.DefaultRegistry())

	results, status := e.Validate(context.Background(), sampleDocument())
	assert.Equal(t, domain.ValidationStatusValid, status)
	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, r.Passed, r.Message)
		assert.NotEmpty(t, r.RuleKey)
	}
}

func TestEngine_Warning(t *testing.T) {
	d := sampleDocument()
	d.DocumentNumber = ""

	_, status := validator.NewEngine(validator.DefaultRegistry()).Validate(context.Background(), d)
	assert.Equal(t, domain.ValidationStatusWarning, status)
}

func TestEngine_Invalid(t *testing.T) {
	d := sampleDocument()
	d.TotalAmount = "500.00"

	results, status := validator.NewEngine(validator.DefaultRegistry()).Validate(context.Background(), d)
	assert.Equal(t, domain.ValidationStatusInvalid, status)

	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r.RuleKey)
		}
	}
	assert.Equal(t, []string{"math.totals.grand_total"}, failed)
}

func TestEngine_EmptyRecord(t *testing.T) {
	d := domain.NewDocumentRecord()
	_, status := validator.NewEngine(validator.DefaultRegistry()).Validate(context.Background(), &d)
	assert.Equal(t, domain.ValidationStatusWarning, status)
}

func TestRegistry_AllSorted(t *testing.T) {
	all := validator.DefaultRegistry().All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].RuleKey(), all[i].RuleKey())
	}
	assert.NotNil(t, validator.DefaultRegistry().Get("xf.client.gstin_pan"))
	assert.Nil(t, validator.DefaultRegistry().Get("nope"))
}
