package extract

import (
	"regexp"
	"strings"

	"docex/internal/domain"
	"docex/internal/pattern"
)

var secondaryTaxIDLabelRe = regexp.MustCompile(`(?i)\bPAN\b(?:[ \t]*(?:no\.?|number))?[^A-Za-z0-9\n]*([A-Z]{5}\d{4}[A-Z])\b`)

// labelledSecondaryTaxID returns the upper-cased PAN that follows a "PAN"
// label on the line, or "".
func labelledSecondaryTaxID(line string) string {
	m := secondaryTaxIDLabelRe.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// locality finds configured city, region and country names in address lines.
// A nil matcher finds nothing.
type locality struct {
	city    *regexp.Regexp
	state   *regexp.Regexp
	country *regexp.Regexp
}

func newLocality(o Options) locality {
	return locality{
		city:    nameMatcher(o.Cities),
		state:   nameMatcher(o.Regions),
		country: nameMatcher(o.Countries),
	}
}

// fill sets the empty city, state, country and postal code fields of p from
// the given lines. Values are taken verbatim from the lines.
func (l locality) fill(p *domain.PartyRecord, lines []string) {
	for _, line := range lines {
		if p.City == "" {
			p.City = findName(l.city, line)
		}
		if p.State == "" {
			p.State = findName(l.state, line)
		}
		if p.Country == "" {
			p.Country = findName(l.country, line)
		}
		if p.PostalCode == "" {
			p.PostalCode = postalCode(line)
		}
	}
}

func findName(re *regexp.Regexp, line string) string {
	if re == nil {
		return ""
	}
	return re.FindString(line)
}

// postalCode returns the first PIN code on the line that is not part of a
// phone number.
func postalCode(line string) string {
	stripped := line
	for _, ph := range pattern.PhoneMatches(line) {
		stripped = strings.Replace(stripped, ph, " ", 1)
	}
	if m := pattern.PostalCodeMatches(stripped); len(m) > 0 {
		return m[0]
	}
	return ""
}
