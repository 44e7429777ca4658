package extract

import (
	"strings"

	"docex/internal/domain"
	"docex/internal/pattern"
)

// Candidates are the whole-document matches the disambiguator distributes
// between the two parties. Every slice is in source order.
type Candidates struct {
	TaxIDs          []string
	Companies       []string
	Addresses       []string
	Phones          []string
	Emails          []string
	SecondaryTaxIDs []string // PAN values that follow a "PAN" label
}

// Attribution is the disambiguator's assignment of candidates to parties.
type Attribution struct {
	Issuer   domain.PartyRecord
	Receiver domain.PartyRecord
}

// Disambiguate assigns candidates to the issuer and receiver using order and
// exclusion heuristics. It is deterministic and has no side effects.
func Disambiguate(c Candidates, selfEntity string, policy SingleCandidatePolicy) Attribution {
	var a Attribution

	if len(c.TaxIDs) > 0 {
		a.Issuer.TaxID = c.TaxIDs[0]
	}
	if len(c.TaxIDs) > 1 {
		a.Receiver.TaxID = c.TaxIDs[1]
	}

	a.Issuer.CompanyName, a.Receiver.CompanyName = pickCompanies(c.Companies, selfEntity, policy)

	if len(c.Addresses) > 0 {
		a.Issuer.Address = c.Addresses[0]
		a.Receiver.Address = firstOther(c.Addresses[1:], c.Addresses[0])
		if a.Receiver.Address == "" {
			a.Receiver.Address = c.Addresses[0]
		}
	}

	if len(c.Phones) > 0 {
		a.Receiver.Phone = c.Phones[0]
	}
	if len(c.Emails) > 0 {
		a.Receiver.Email = c.Emails[0]
	}

	switch {
	case len(c.SecondaryTaxIDs) > 0:
		a.Issuer.SecondaryTaxID = c.SecondaryTaxIDs[0]
	case pattern.IsStrictTaxID(a.Issuer.TaxID):
		a.Issuer.SecondaryTaxID = EmbeddedSecondaryTaxID(a.Issuer.TaxID)
	}
	return a
}

// pickCompanies returns the issuer and receiver company names.
func pickCompanies(companies []string, selfEntity string, policy SingleCandidatePolicy) (issuer, receiver string) {
	if len(companies) == 0 {
		return "", ""
	}

	if self := strings.ToUpper(strings.TrimSpace(selfEntity)); self != "" {
		selfIdx := -1
		for i, c := range companies {
			if strings.Contains(strings.ToUpper(c), self) {
				selfIdx = i
				break
			}
		}
		if selfIdx >= 0 {
			receiver = companies[selfIdx]
			for _, c := range companies {
				if !strings.Contains(strings.ToUpper(c), self) {
					issuer = c
					break
				}
			}
			return issuer, receiver
		}
	}

	issuer = companies[0]
	receiver = firstOther(companies[1:], issuer)
	if receiver != "" {
		return issuer, receiver
	}

	// Only one distinct candidate.
	if policy == SingleCandidateNone {
		return "", ""
	}
	return "", issuer
}

func firstOther(list []string, not string) string {
	for _, s := range list {
		if s != not {
			return s
		}
	}
	return ""
}

// EmbeddedSecondaryTaxID returns the PAN embedded in a strict GSTIN
// (characters 3 to 12), or "" when id is not a strict GSTIN.
func EmbeddedSecondaryTaxID(id string) string {
	if !pattern.IsStrictTaxID(id) {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(id))[2:12]
}
