package extract

import (
	"regexp"
	"sort"
	"strings"
)

// SingleCandidatePolicy decides where a lone company-name candidate goes when
// no self-entity fragment is configured or matched.
type SingleCandidatePolicy string

const (
	// SingleCandidateReceiver assigns the lone candidate to the receiver.
	SingleCandidateReceiver SingleCandidatePolicy = "receiver"
	// SingleCandidateNone leaves both company names empty.
	SingleCandidateNone SingleCandidatePolicy = "none"
)

// ParseSingleCandidatePolicy maps a config value to a policy, defaulting to
// SingleCandidateReceiver.
func ParseSingleCandidatePolicy(s string) SingleCandidatePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(SingleCandidateNone)) {
		return SingleCandidateNone
	}
	return SingleCandidateReceiver
}

// Options configures an Extractor. Zero-value slices fall back to the
// defaults returned by DefaultOptions.
type Options struct {
	// SelfEntity is a name fragment identifying the deployment's own company.
	// Company lines containing it are attributed to the receiver.
	SelfEntity      string
	SingleCandidate SingleCandidatePolicy

	CompanyKeywords []string
	AddressKeywords []string

	// Region, city and country names. Regions and cities also count as
	// address keywords.
	Regions   []string
	Cities    []string
	Countries []string

	IssuerHeaders   []string
	ReceiverHeaders []string
	NeutralHeaders  []string
}

// DefaultOptions returns the keyword and header sets used when nothing is
// configured.
func DefaultOptions() Options {
	return Options{
		SingleCandidate: SingleCandidateReceiver,
		CompanyKeywords: []string{"LIMITED", "LTD", "PRIVATE", "PVT", "COMPANY", "CORP", "CORPORATION"},
		AddressKeywords: []string{"ROAD", "STREET", "AVENUE", "PHASE", "SECTOR", "PLOT"},
		Regions: []string{
			"TELANGANA", "ANDHRA PRADESH", "KARNATAKA", "TAMIL NADU", "KERALA", "MAHARASHTRA",
			"GUJARAT", "RAJASTHAN", "UTTAR PRADESH", "WEST BENGAL", "HARYANA", "PUNJAB", "DELHI",
		},
		Cities: []string{
			"HYDERABAD", "SECUNDERABAD", "BENGALURU", "BANGALORE", "CHENNAI", "MUMBAI", "PUNE",
			"KOLKATA", "NEW DELHI", "AHMEDABAD", "NOIDA", "GURUGRAM", "GURGAON",
		},
		Countries:       []string{"INDIA"},
		IssuerHeaders:   []string{"FROM:", "SOLD BY:", "SELLER:"},
		ReceiverHeaders: []string{"TO:", "BILL TO:", "SHIP TO:", "BUYER:"},
		NeutralHeaders: []string{
			"DESCRIPTION", "SUBTOTAL", "SUB TOTAL", "TOTAL", "GRAND TOTAL", "HSN", "S.NO", "SL NO",
		},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SingleCandidate == "" {
		o.SingleCandidate = d.SingleCandidate
	}
	if len(o.CompanyKeywords) == 0 {
		o.CompanyKeywords = d.CompanyKeywords
	}
	if len(o.AddressKeywords) == 0 {
		o.AddressKeywords = d.AddressKeywords
	}
	if o.Regions == nil {
		o.Regions = d.Regions
	}
	if o.Cities == nil {
		o.Cities = d.Cities
	}
	if o.Countries == nil {
		o.Countries = d.Countries
	}
	if len(o.IssuerHeaders) == 0 {
		o.IssuerHeaders = d.IssuerHeaders
	}
	if len(o.ReceiverHeaders) == 0 {
		o.ReceiverHeaders = d.ReceiverHeaders
	}
	if len(o.NeutralHeaders) == 0 {
		o.NeutralHeaders = d.NeutralHeaders
	}
	return o
}

// normalizeKeywords upper-cases, trims and drops empty entries, returning a
// fresh slice.
func normalizeKeywords(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, k := range list {
			k = strings.ToUpper(strings.TrimSpace(k))
			if k != "" {
				out = append(out, k)
			}
		}
	}
	return out
}

// nameMatcher compiles a case-insensitive, word-bounded alternation of names,
// longest first. It returns nil for an empty list.
func nameMatcher(names []string) *regexp.Regexp {
	names = normalizeKeywords(names)
	if len(names) == 0 {
		return nil
	}
	sort.SliceStable(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
