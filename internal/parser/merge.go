package parser

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"docex/internal/domain"
	"docex/internal/pattern"
	"docex/internal/port"
)

// MergeParser runs a primary parser (normally an LLM provider) and a
// secondary parser (normally the rule engine) in parallel and merges their
// records field by field. A primary value that does not occur in the source
// text loses to a differing secondary value.
type MergeParser struct {
	primary   port.DocumentParser
	secondary port.DocumentParser
}

// NewMergeParser creates a MergeParser from primary and secondary parsers.
func NewMergeParser(primary, secondary port.DocumentParser) *MergeParser {
	return &MergeParser{primary: primary, secondary: secondary}
}

func (m *MergeParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	type result struct {
		output *port.ParseOutput
		err    error
	}

	var wg sync.WaitGroup
	primaryCh := make(chan result, 1)
	secondaryCh := make(chan result, 1)

	wg.Add(2)
	go func() {
		defer wg.Done()
		out, err := m.primary.Parse(ctx, input)
		primaryCh <- result{out, err}
	}()
	go func() {
		defer wg.Done()
		out, err := m.secondary.Parse(ctx, input)
		secondaryCh <- result{out, err}
	}()

	wg.Wait()
	close(primaryCh)
	close(secondaryCh)

	pResult := <-primaryCh
	sResult := <-secondaryCh

	if pResult.err != nil && sResult.err != nil {
		return nil, fmt.Errorf("both parsers failed: primary: %v; secondary: %v", pResult.err, sResult.err)
	}

	if pResult.err != nil {
		log.Warn().Err(pResult.err).Msg("parser.MergeParser: primary parser failed, using secondary only")
		sResult.output = orEmptyOutput(sResult.output)
		sResult.output.FieldProvenance = map[string]string{"_source": "secondary_only"}
		sResult.output.SecondaryModel = sResult.output.ModelUsed
		return sResult.output, nil
	}

	if sResult.err != nil {
		log.Warn().Err(sResult.err).Msg("parser.MergeParser: secondary parser failed, using primary only")
		pResult.output = orEmptyOutput(pResult.output)
		pResult.output.FieldProvenance = map[string]string{"_source": "primary_only"}
		return pResult.output, nil
	}

	return mergeOutputs(input.Text, pResult.output, sResult.output), nil
}

// field is one mergeable string field of a DocumentRecord.
type field struct {
	path   string
	ptr    *string
	format func(string) bool
}

func documentFields(d *domain.DocumentRecord) []field {
	fs := []field{
		{path: "document_number", ptr: &d.DocumentNumber},
		{path: "date", ptr: &d.Date},
		{path: "subtotal", ptr: &d.Subtotal},
		{path: "total_amount", ptr: &d.TotalAmount},
	}
	fs = append(fs, partyFields("client", &d.Issuer, true)...)
	fs = append(fs, partyFields("receiver", &d.Receiver, false)...)
	return fs
}

func partyFields(prefix string, p *domain.PartyRecord, withSecondary bool) []field {
	fs := []field{
		{path: prefix + ".company_name", ptr: &p.CompanyName},
		{path: prefix + ".address", ptr: &p.Address},
		{path: prefix + ".city", ptr: &p.City},
		{path: prefix + ".state", ptr: &p.State},
		{path: prefix + ".postal_code", ptr: &p.PostalCode},
		{path: prefix + ".country", ptr: &p.Country},
		{path: prefix + ".phone", ptr: &p.Phone},
		{path: prefix + ".email", ptr: &p.Email},
		{path: prefix + ".tax_id", ptr: &p.TaxID, format: pattern.IsStrictTaxID},
	}
	if withSecondary {
		fs = append(fs, field{path: prefix + ".secondary_tax_id", ptr: &p.SecondaryTaxID, format: pattern.IsSecondaryTaxID})
	}
	return fs
}

// orEmptyOutput treats a missing output or document as an empty record.
func orEmptyOutput(out *port.ParseOutput) *port.ParseOutput {
	if out == nil {
		out = &port.ParseOutput{}
	}
	if out.Document == nil {
		out.Document = ptrTo(domain.NewDocumentRecord())
	}
	return out
}

func mergeOutputs(text string, primary, secondary *port.ParseOutput) *port.ParseOutput {
	primary = orEmptyOutput(primary)
	secondary = orEmptyOutput(secondary)

	merged := cloneDocument(*primary.Document)
	sDoc := cloneDocument(*secondary.Document)
	source := normalizeForGrounding(text)
	provenance := make(map[string]string)

	if merged.DocumentType == domain.DocumentTypeUnknown && sDoc.DocumentType != domain.DocumentTypeUnknown {
		merged.DocumentType = sDoc.DocumentType
		provenance["document_type"] = "secondary"
	} else if merged.DocumentType == sDoc.DocumentType {
		provenance["document_type"] = "agree"
	} else {
		provenance["document_type"] = "primary"
	}

	pFields := documentFields(&merged)
	sFields := documentFields(&sDoc)
	agreed, compared := 0, 0
	for i := range pFields {
		outcome := mergeString(pFields[i].ptr, *sFields[i].ptr, pFields[i].format, source)
		provenance[pFields[i].path] = outcome
		if outcome != "empty" {
			compared++
		}
		if outcome == "agree" {
			agreed++
		}
	}

	for _, c := range domain.TaxComponents {
		pv, sv := merged.Tax(c), sDoc.Tax(c)
		outcome := mergeString(&pv, sv, nil, source)
		delete(merged.TaxBreakdown, c)
		merged.SetTax(c, pv)
		provenance[c] = outcome
	}

	// Items: the longer list wins, primary on a tie.
	if len(sDoc.Items) > len(merged.Items) {
		merged.Items = sDoc.Items
		provenance["items"] = "secondary"
	} else {
		provenance["items"] = "primary"
	}

	confidence := primary.Confidence
	if compared > 0 {
		confidence = (primary.Confidence + float64(agreed)/float64(compared)) / 2
	}

	return &port.ParseOutput{
		Document:        &merged,
		Confidence:      clamp01(confidence),
		ModelUsed:       primary.ModelUsed,
		PromptUsed:      primary.PromptUsed,
		FieldProvenance: provenance,
		SecondaryModel:  secondary.ModelUsed,
	}
}

// mergeString resolves one field in place and returns the provenance label.
func mergeString(pVal *string, sVal string, format func(string) bool, source string) string {
	switch {
	case *pVal == "" && sVal == "":
		return "empty"
	case strings.EqualFold(strings.TrimSpace(*pVal), strings.TrimSpace(sVal)):
		return "agree"
	case *pVal == "":
		*pVal = sVal
		return "secondary"
	case sVal == "":
		if !grounded(*pVal, source) {
			return "primary_ungrounded"
		}
		return "primary"
	}

	// Disagreement: prefer the value matching the expected format, then the
	// value that actually occurs in the text.
	if format != nil {
		pMatch, sMatch := format(*pVal), format(sVal)
		if sMatch && !pMatch {
			*pVal = sVal
			return "secondary_format"
		}
		if pMatch && !sMatch {
			return "primary_format"
		}
	}
	if !grounded(*pVal, source) && grounded(sVal, source) {
		*pVal = sVal
		return "secondary_grounded"
	}
	return "disagreement"
}

// normalizeForGrounding upper-cases s and collapses whitespace runs.
func normalizeForGrounding(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func grounded(val, source string) bool {
	v := normalizeForGrounding(val)
	return v != "" && strings.Contains(source, v)
}

func cloneDocument(d domain.DocumentRecord) domain.DocumentRecord {
	out := d
	out.Items = append([]domain.LineItem{}, d.Items...)
	out.TaxBreakdown = make(map[string]string, len(d.TaxBreakdown))
	for k, v := range d.TaxBreakdown {
		out.TaxBreakdown[k] = v
	}
	if out.DocumentType == "" {
		out.DocumentType = domain.DocumentTypeUnknown
	}
	return out
}

func ptrTo[T any](v T) *T { return &v }
