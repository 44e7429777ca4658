package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docex/internal/extract"
)

func TestSectionState_Next(t *testing.T) {
	tests := []struct {
		from extract.SectionState
		kind extract.HeaderKind
		want extract.SectionState
	}{
		{extract.Neutral, extract.HeaderNone, extract.Neutral},
		{extract.Neutral, extract.HeaderIssuer, extract.InIssuerBlock},
		{extract.Neutral, extract.HeaderReceiver, extract.InReceiverBlock},
		{extract.InIssuerBlock, extract.HeaderNone, extract.InIssuerBlock},
		{extract.InIssuerBlock, extract.HeaderReceiver, extract.InReceiverBlock},
		{extract.InIssuerBlock, extract.HeaderNeutral, extract.Neutral},
		{extract.InReceiverBlock, extract.HeaderIssuer, extract.InIssuerBlock},
		{extract.InReceiverBlock, extract.HeaderNeutral, extract.Neutral},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"_"+tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.Next(tt.kind))
		})
	}
}

func TestSectionTracker(t *testing.T) {
	opts := extract.DefaultOptions()
	tr := extract.NewSectionTracker(opts.IssuerHeaders, opts.ReceiverHeaders, opts.NeutralHeaders)
	assert.Equal(t, extract.Neutral, tr.State())

	for _, l := range []string{
		"Tax Invoice",
		"from: Acme Ltd",
		"Plot 4, Ring Road",
		"GSTIN: 29ABCDE1234F1Z5",
		"Bill To:",
		"Beta Corp",
		"12 Main Street",
		"Description Qty Amount",
		"1001 Widget 10.00",
	} {
		tr.Feed(l)
	}

	assert.Equal(t, 3, tr.Transitions())
	assert.Equal(t, extract.Neutral, tr.State())
	assert.Equal(t, []string{"Acme Ltd", "Plot 4, Ring Road"}, tr.Lines(extract.InIssuerBlock))
	assert.Equal(t, []string{"Beta Corp", "12 Main Street"}, tr.Lines(extract.InReceiverBlock))
	assert.Empty(t, tr.Lines(extract.Neutral))
	assert.Equal(t, []string{"Tax Invoice", "1001 Widget 10.00"}, tr.NeutralLines())

	issuer := tr.Party(extract.InIssuerBlock)
	assert.Equal(t, "Acme Ltd", issuer.CompanyName)
	assert.Equal(t, "Plot 4, Ring Road", issuer.Address)
	assert.Equal(t, "29ABCDE1234F1Z5", issuer.TaxID)

	receiver := tr.Party(extract.InReceiverBlock)
	assert.Equal(t, "Beta Corp", receiver.CompanyName)
	assert.Equal(t, "12 Main Street", receiver.Address)
	assert.Empty(t, receiver.TaxID)
}

func TestSectionTracker_TaxIDWithOtherText(t *testing.T) {
	opts := extract.DefaultOptions()
	tr := extract.NewSectionTracker(opts.IssuerHeaders, opts.ReceiverHeaders, opts.NeutralHeaders)
	tr.Feed("FROM:")
	tr.Feed("Acme Ltd GSTIN 29ABCDE1234F1Z5")
	tr.Feed("PAN: ABCDE1234F")

	p := tr.Party(extract.InIssuerBlock)
	assert.Equal(t, "Acme Ltd GSTIN 29ABCDE1234F1Z5", p.CompanyName)
	assert.Equal(t, "29ABCDE1234F1Z5", p.TaxID)
	assert.Equal(t, "ABCDE1234F", p.SecondaryTaxID)
}
