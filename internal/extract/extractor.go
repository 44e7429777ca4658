// Package extract is the rule-based extraction engine. It turns raw OCR text
// into a domain.DocumentRecord using pattern matching, a section tracker for
// documents with party headers, and order heuristics for documents without.
package extract

import (
	"strings"

	"docex/internal/domain"
	"docex/internal/pattern"
)

// Extractor is immutable after New and safe for concurrent use.
type Extractor struct {
	selfEntity      string
	policy          SingleCandidatePolicy
	companyKeywords []string
	addressKeywords []string
	headers         headerSet
	locality        locality
}

// New builds an Extractor from opts, filling unset fields with defaults.
func New(opts Options) *Extractor {
	opts = opts.withDefaults()
	return &Extractor{
		selfEntity:      opts.SelfEntity,
		policy:          opts.SingleCandidate,
		companyKeywords: normalizeKeywords(opts.CompanyKeywords),
		addressKeywords: normalizeKeywords(opts.AddressKeywords, opts.Regions, opts.Cities),
		headers:         newHeaderSet(opts.IssuerHeaders, opts.ReceiverHeaders, opts.NeutralHeaders),
		locality:        newLocality(opts),
	}
}

// Extract returns the structured record for text. It never fails: text
// without recognizable content yields an empty record.
func (e *Extractor) Extract(text string) domain.DocumentRecord {
	doc := domain.NewDocumentRecord()
	lines := SplitLines(text)
	if len(lines) == 0 {
		return doc
	}

	tracker := newTracker(e.headers)
	for _, l := range lines {
		tracker.Feed(l)
	}

	// Once a header has been seen, only lines outside party blocks feed the
	// order heuristics.
	candText, candLines := text, lines
	if tracker.Transitions() > 0 {
		candLines = tracker.NeutralLines()
		candText = strings.Join(candLines, "\n")
	}
	cls := Classify(candLines, e.companyKeywords, e.addressKeywords)
	secondary := labelledSecondaryTaxIDs(candLines)
	attr := Disambiguate(Candidates{
		TaxIDs:          pattern.TaxIDMatches(candText),
		Companies:       cls.Companies,
		Addresses:       cls.Addresses,
		Phones:          pattern.PhoneMatches(candText),
		Emails:          pattern.EmailMatches(candText),
		SecondaryTaxIDs: secondary,
	}, e.selfEntity, e.policy)
	if len(secondary) == 0 {
		// The embedded PAN is derived below from the merged issuer tax id.
		attr.Issuer.SecondaryTaxID = ""
	}
	if attr.Issuer.Address != "" {
		e.locality.fill(&attr.Issuer, []string{attr.Issuer.Address})
	}
	if attr.Receiver.Address != "" {
		e.locality.fill(&attr.Receiver, []string{attr.Receiver.Address})
	}

	issuer := tracker.party(InIssuerBlock, e.locality)
	receiver := tracker.party(InReceiverBlock, e.locality)
	doc.Issuer = mergeParty(issuer, attr.Issuer, receiver)
	doc.Receiver = mergeParty(receiver, attr.Receiver, issuer)
	doc.Receiver.SecondaryTaxID = ""
	if doc.Issuer.SecondaryTaxID == "" {
		doc.Issuer.SecondaryTaxID = EmbeddedSecondaryTaxID(doc.Issuer.TaxID)
	}

	doc.DocumentType = DetectDocumentType(text)
	doc.DocumentNumber = DocumentNumber(text)
	doc.Date = DocumentDate(text)
	doc.Items = ExtractItems(lines)
	doc.Subtotal = Subtotal(text)
	for _, c := range domain.TaxComponents {
		doc.SetTax(c, TaxAmount(text, c))
	}
	doc.TotalAmount = TotalAmount(text)
	return doc
}

func labelledSecondaryTaxIDs(lines []string) []string {
	out := []string{}
	for _, l := range lines {
		if id := labelledSecondaryTaxID(l); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// AggregateConfidence returns the mean confidence of the OCR tokens, clamped
// to [0, 1]. It returns 0 when there are no tokens.
func AggregateConfidence(tokens []domain.OCRToken) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tokens {
		sum += t.Confidence
	}
	mean := sum / float64(len(tokens))
	switch {
	case mean < 0:
		return 0
	case mean > 1:
		return 1
	default:
		return mean
	}
}
