// Package pattern holds the regular expressions used to pull identifier-like
// tokens out of OCR text. Every function is pure and returns matches in
// source order; a function that finds nothing returns an empty slice.
package pattern

import (
	"regexp"
	"strings"
)

var (
	strictTaxIDRe = regexp.MustCompile(`(?i)\b\d{2}[A-Z]{5}\d{4}[A-Z][A-Z\d]Z[A-Z\d]\b`)
	looseTaxIDRe  = regexp.MustCompile(`(?i)\b\d{2}[A-Z0-9]{13}\b`)

	strictTaxIDExactRe = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][A-Z\d]Z[A-Z\d]$`)

	secondaryTaxIDRe      = regexp.MustCompile(`(?i)\b[A-Z]{5}\d{4}[A-Z]\b`)
	secondaryTaxIDExactRe = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)

	phoneRe      = regexp.MustCompile(`(?:\+\d{1,3}[-.\s]?)?\b(?:\d{5}[-.\s]?\d{5}|\d{4}[-.\s]?\d{6}|\d{3}[-.\s]?\d{7})\b`)
	emailRe      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	amountRe     = regexp.MustCompile(`\b\d+(?:,\d{3})*(?:\.\d{2})?\b`)
	itemCodeRe   = regexp.MustCompile(`\b\d{4,8}\b`)
	postalCodeRe = regexp.MustCompile(`\b[1-9]\d{5}\b`)
)

// TaxIDMatches returns upper-cased tax identifiers found in text. The strict
// GSTIN shape is tried first; the loose 15-character shape is used only when
// the strict pattern finds nothing.
func TaxIDMatches(text string) []string {
	if m := StrictTaxIDMatches(text); len(m) > 0 {
		return m
	}
	return LooseTaxIDMatches(text)
}

// StrictTaxIDMatches returns upper-cased matches of the strict GSTIN shape.
func StrictTaxIDMatches(text string) []string {
	return upper(findAll(strictTaxIDRe, text))
}

// LooseTaxIDMatches returns upper-cased 15-character identifiers that start
// with two digits.
func LooseTaxIDMatches(text string) []string {
	return upper(findAll(looseTaxIDRe, text))
}

// IsStrictTaxID reports whether s is exactly one strict-format GSTIN.
func IsStrictTaxID(s string) bool {
	return strictTaxIDExactRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// SecondaryTaxIDMatches returns upper-cased PAN-shaped identifiers.
func SecondaryTaxIDMatches(text string) []string {
	return upper(findAll(secondaryTaxIDRe, text))
}

// IsSecondaryTaxID reports whether s is exactly one PAN-shaped identifier.
func IsSecondaryTaxID(s string) bool {
	return secondaryTaxIDExactRe.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// PhoneMatches returns 10-digit phone numbers, optionally grouped 5+5, 4+6 or
// 3+7 and optionally prefixed with a country code.
func PhoneMatches(text string) []string {
	return findAll(phoneRe, text)
}

// EmailMatches returns e-mail addresses.
func EmailMatches(text string) []string {
	return findAll(emailRe, text)
}

// AmountTokenMatches returns numeric tokens with optional thousands
// separators and an optional two-digit decimal part.
func AmountTokenMatches(line string) []string {
	return findAll(amountRe, line)
}

// ItemCodeMatches returns runs of 4 to 8 digits standing alone.
func ItemCodeMatches(line string) []string {
	return findAll(itemCodeRe, line)
}

// PostalCodeMatches returns 6-digit postal (PIN) codes.
func PostalCodeMatches(text string) []string {
	return findAll(postalCodeRe, text)
}

func findAll(re *regexp.Regexp, s string) []string {
	m := re.FindAllString(s, -1)
	if m == nil {
		return []string{}
	}
	return m
}

func upper(in []string) []string {
	for i, s := range in {
		in[i] = strings.ToUpper(s)
	}
	return in
}
