package extract

import "strings"

// LineTags is one non-empty source line with its classification.
type LineTags struct {
	Text             string
	CompanyCandidate bool
	AddressCandidate bool
}

// Classification is the result of tagging every line of a document.
type Classification struct {
	Lines     []LineTags
	Companies []string
	Addresses []string
}

// SplitLines returns the trimmed, non-empty lines of text in source order.
func SplitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(strings.TrimSuffix(l, "\r"))
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Classify tags each line as a company-name and/or address candidate by
// case-insensitive keyword membership. Keywords must already be upper-case.
// The candidate sequences keep source order and duplicates.
func Classify(lines []string, companyKeywords, addressKeywords []string) Classification {
	c := Classification{
		Lines:     make([]LineTags, 0, len(lines)),
		Companies: []string{},
		Addresses: []string{},
	}
	for _, l := range lines {
		upper := strings.ToUpper(l)
		tags := LineTags{
			Text:             l,
			CompanyCandidate: containsAny(upper, companyKeywords),
			AddressCandidate: containsAny(upper, addressKeywords),
		}
		if tags.CompanyCandidate {
			c.Companies = append(c.Companies, l)
		}
		if tags.AddressCandidate {
			c.Addresses = append(c.Addresses, l)
		}
		c.Lines = append(c.Lines, tags)
	}
	return c
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
