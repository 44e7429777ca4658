package extract

import (
	"regexp"
	"strings"

	"docex/internal/domain"
)

const amountExpr = `(\d+(?:,\d{3})*(?:\.\d{2})?)`

var (
	purchaseOrderRe = regexp.MustCompile(`(?i)purchase\s*order`)
	invoiceRe       = regexp.MustCompile(`(?i)\binvoice\b`)
	billRe          = regexp.MustCompile(`(?i)\bbill\b`)

	documentNumberRe = regexp.MustCompile(`(?i)\b(?:purchase[ \t]+order|invoice|p\.?o)\b\.?[ \t]*(?:no\.?|number|num|#)?[ \t]*[:#.\-]?[ \t]*([A-Z0-9/\-]*\d[A-Z0-9/\-]*)`)
	dateRe           = regexp.MustCompile(`(?i)\b(?:date|dated)\b[ \t]*[:.\-]?[ \t]*(\d{1,2}[/\-]\d{1,2}[/\-]\d{2,4})`)

	subtotalRe = regexp.MustCompile(`(?i)\bsub[ \t]*-?[ \t]*total\b[^\d\n]*` + amountExpr)
	totalRe    = regexp.MustCompile(`(?i)\b((?:grand|final|net)[ \t]+)?total\b[^\d\n]*` + amountExpr)

	taxRes = map[string]*regexp.Regexp{
		domain.TaxCGST: taxLabelAmount("cgst"),
		domain.TaxSGST: taxLabelAmount("sgst"),
		domain.TaxIGST: taxLabelAmount("igst"),
	}
)

// taxLabelAmount matches a tax label, an optional rate such as "@ 9%", and
// the amount that follows.
func taxLabelAmount(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + label + `\b[^\d\n]*(?:\d+(?:\.\d+)?[ \t]*%[^\d\n]*)?` + amountExpr)
}

// DetectDocumentType returns the document type by keyword priority:
// purchase order, then invoice, then bill.
func DetectDocumentType(text string) domain.DocumentType {
	switch {
	case purchaseOrderRe.MatchString(text):
		return domain.DocumentTypePurchaseOrder
	case invoiceRe.MatchString(text):
		return domain.DocumentTypeInvoice
	case billRe.MatchString(text):
		return domain.DocumentTypeBill
	default:
		return domain.DocumentTypeUnknown
	}
}

// DocumentNumber returns the first token containing a digit that follows a
// PO, Purchase Order or Invoice header on the same line.
func DocumentNumber(text string) string {
	return submatch(documentNumberRe, text)
}

// DocumentDate returns the first D/M/Y token that follows a Date or Dated
// label.
func DocumentDate(text string) string {
	return submatch(dateRe, text)
}

// Subtotal returns the amount following a subtotal label.
func Subtotal(text string) string {
	return submatch(subtotalRe, text)
}

// TaxAmount returns the amount following the named tax component's label.
func TaxAmount(text, component string) string {
	re, ok := taxRes[component]
	if !ok {
		return ""
	}
	return submatch(re, text)
}

// TotalAmount returns the amount following a total label. A grand, final or
// net total wins over a plain one; "Sub Total" never counts.
func TotalAmount(text string) string {
	var plain string
	for _, m := range totalRe.FindAllStringSubmatchIndex(text, -1) {
		if precededBySub(text[:m[0]]) {
			continue
		}
		amount := text[m[4]:m[5]]
		if m[2] >= 0 {
			return amount
		}
		if plain == "" {
			plain = amount
		}
	}
	return plain
}

func precededBySub(prefix string) bool {
	prefix = strings.ToLower(strings.TrimRight(prefix, " \t-"))
	return strings.HasSuffix(prefix, "sub")
}

func submatch(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// mergeParty combines the section tracker's record with the disambiguator's.
// A section value always wins. A disambiguator value is used only when the
// section left the field empty and the tracker did not attribute that same
// value to the other party.
func mergeParty(section, fallback, other domain.PartyRecord) domain.PartyRecord {
	pick := func(sec, fb, oth string) string {
		if sec != "" {
			return sec
		}
		if fb != "" && fb == oth {
			return ""
		}
		return fb
	}
	return domain.PartyRecord{
		CompanyName:    pick(section.CompanyName, fallback.CompanyName, other.CompanyName),
		Address:        pick(section.Address, fallback.Address, other.Address),
		City:           pick(section.City, fallback.City, other.City),
		State:          pick(section.State, fallback.State, other.State),
		PostalCode:     pick(section.PostalCode, fallback.PostalCode, other.PostalCode),
		Country:        pick(section.Country, fallback.Country, other.Country),
		Phone:          pick(section.Phone, fallback.Phone, other.Phone),
		Email:          pick(section.Email, fallback.Email, other.Email),
		TaxID:          pick(section.TaxID, fallback.TaxID, other.TaxID),
		SecondaryTaxID: pick(section.SecondaryTaxID, fallback.SecondaryTaxID, other.SecondaryTaxID),
	}
}
