package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docex/internal/extract"
)

func TestDisambiguate(t *testing.T) {
	c := extract.Candidates{
		TaxIDs:    []string{"29ABCDE1234F1Z5", "36AABCA1234K1Z9", "27AACCC5678M1Z2"},
		Companies: []string{"FOO PVT LTD", "FOO PVT LTD", "BAR LIMITED"},
		Addresses: []string{"Plot 1 Road", "Plot 1 Road"},
		Phones:    []string{"9876543210", "9123456780"},
		Emails:    []string{"a@foo.com"},
	}
	a := extract.Disambiguate(c, "", extract.SingleCandidateReceiver)

	assert.Equal(t, "29ABCDE1234F1Z5", a.Issuer.TaxID)
	assert.Equal(t, "36AABCA1234K1Z9", a.Receiver.TaxID)
	assert.Equal(t, "FOO PVT LTD", a.Issuer.CompanyName)
	assert.Equal(t, "BAR LIMITED", a.Receiver.CompanyName)
	assert.Equal(t, "Plot 1 Road", a.Issuer.Address)
	assert.Equal(t, "Plot 1 Road", a.Receiver.Address)
	assert.Equal(t, "9876543210", a.Receiver.Phone)
	assert.Equal(t, "a@foo.com", a.Receiver.Email)
	assert.Empty(t, a.Issuer.Phone)
	assert.Equal(t, "ABCDE1234F", a.Issuer.SecondaryTaxID)
}

func TestDisambiguate_LabelledSecondaryTaxIDWins(t *testing.T) {
	a := extract.Disambiguate(extract.Candidates{
		TaxIDs:          []string{"29ABCDE1234F1Z5"},
		SecondaryTaxIDs: []string{"ZZZZZ9999Z"},
	}, "", extract.SingleCandidateReceiver)
	assert.Equal(t, "ZZZZZ9999Z", a.Issuer.SecondaryTaxID)
}

func TestDisambiguate_Empty(t *testing.T) {
	a := extract.Disambiguate(extract.Candidates{}, "self", extract.SingleCandidateNone)
	assert.True(t, a.Issuer.IsEmpty())
	assert.True(t, a.Receiver.IsEmpty())
}

func TestDisambiguate_SelfEntityOnly(t *testing.T) {
	a := extract.Disambiguate(extract.Candidates{
		Companies: []string{"Self Industries Ltd"},
	}, "SELF", extract.SingleCandidateNone)
	assert.Equal(t, "Self Industries Ltd", a.Receiver.CompanyName)
	assert.Empty(t, a.Issuer.CompanyName)
}

func TestEmbeddedSecondaryTaxID(t *testing.T) {
	assert.Equal(t, "ABCDE1234F", extract.EmbeddedSecondaryTaxID("29ABCDE1234F1Z5"))
	assert.Empty(t, extract.EmbeddedSecondaryTaxID("27XYZAB5678C1D9"))
}

func TestParseSingleCandidatePolicy(t *testing.T) {
	assert.Equal(t, extract.SingleCandidateNone, extract.ParseSingleCandidatePolicy(" None "))
	assert.Equal(t, extract.SingleCandidateReceiver, extract.ParseSingleCandidatePolicy(""))
	assert.Equal(t, extract.SingleCandidateReceiver, extract.ParseSingleCandidatePolicy("receiver"))
}
