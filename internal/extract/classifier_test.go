package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docex/internal/extract"
)

func TestSplitLines(t *testing.T) {
	got := extract.SplitLines("  Acme Pvt Ltd \r\n\r\n\t12 MG Road\n   \nBengaluru")
	assert.Equal(t, []string{"Acme Pvt Ltd", "12 MG Road", "Bengaluru"}, got)
	assert.Empty(t, extract.SplitLines(" \n\t\n"))
}

func TestClassify(t *testing.T) {
	lines := []string{
		"Acme Industries Pvt Ltd",
		"Plot 7, Industrial Road",
		"Globex Corporation Limited",
		"Acme Industries Pvt Ltd",
		"Thank you for your business",
	}
	c := extract.Classify(lines,
		[]string{"LIMITED", "LTD", "PVT", "CORPORATION"},
		[]string{"ROAD", "PLOT"},
	)

	assert.Equal(t, []string{
		"Acme Industries Pvt Ltd",
		"Globex Corporation Limited",
		"Acme Industries Pvt Ltd",
	}, c.Companies)
	assert.Equal(t, []string{"Plot 7, Industrial Road"}, c.Addresses)

	assert.Len(t, c.Lines, 5)
	assert.True(t, c.Lines[0].CompanyCandidate)
	assert.False(t, c.Lines[0].AddressCandidate)
	assert.False(t, c.Lines[4].CompanyCandidate)
	assert.False(t, c.Lines[4].AddressCandidate)
}

func TestClassify_NonExclusive(t *testing.T) {
	c := extract.Classify([]string{"Road Carriers Pvt Ltd"}, []string{"PVT"}, []string{"ROAD"})
	assert.Equal(t, []string{"Road Carriers Pvt Ltd"}, c.Companies)
	assert.Equal(t, []string{"Road Carriers Pvt Ltd"}, c.Addresses)
}
