package extract

import (
	"regexp"
	"sort"
	"strings"

	"docex/internal/domain"
	"docex/internal/pattern"
)

// SectionState is the party context the tracker is currently in.
type SectionState int

const (
	Neutral SectionState = iota
	InIssuerBlock
	InReceiverBlock
)

func (s SectionState) String() string {
	switch s {
	case InIssuerBlock:
		return "issuer"
	case InReceiverBlock:
		return "receiver"
	default:
		return "neutral"
	}
}

// HeaderKind classifies a line by the section header it starts with.
type HeaderKind int

const (
	HeaderNone HeaderKind = iota
	HeaderIssuer
	HeaderReceiver
	HeaderNeutral
)

// sectionTransitions maps (current state, header kind) to the next state.
// A line without a header keeps the current state.
var sectionTransitions = [3][4]SectionState{
	Neutral:         {HeaderNone: Neutral, HeaderIssuer: InIssuerBlock, HeaderReceiver: InReceiverBlock, HeaderNeutral: Neutral},
	InIssuerBlock:   {HeaderNone: InIssuerBlock, HeaderIssuer: InIssuerBlock, HeaderReceiver: InReceiverBlock, HeaderNeutral: Neutral},
	InReceiverBlock: {HeaderNone: InReceiverBlock, HeaderIssuer: InIssuerBlock, HeaderReceiver: InReceiverBlock, HeaderNeutral: Neutral},
}

// Next returns the state reached from s on a line with the given header kind.
func (s SectionState) Next(k HeaderKind) SectionState {
	return sectionTransitions[s][k]
}

// taxLabelRe matches what may surround a tax id on a line that carries
// nothing else.
var taxLabelRe = regexp.MustCompile(`(?i)^(?:(?:gstin|gst|tax\s*id|uin)(?:\s*/\s*uin)?)?[\s:.#\-]*(?:(?:no|number|reg(?:istration)?\s*no)\.?)?[\s:.#\-]*$`)

type header struct {
	token string
	kind  HeaderKind
}

// headerSet holds upper-cased header tokens, longest first so that
// "BILL TO:" wins over any shorter token sharing its start.
type headerSet []header

func newHeaderSet(issuer, receiver, neutral []string) headerSet {
	var hs headerSet
	for _, t := range normalizeKeywords(issuer) {
		hs = append(hs, header{t, HeaderIssuer})
	}
	for _, t := range normalizeKeywords(receiver) {
		hs = append(hs, header{t, HeaderReceiver})
	}
	for _, t := range normalizeKeywords(neutral) {
		hs = append(hs, header{t, HeaderNeutral})
	}
	sort.SliceStable(hs, func(i, j int) bool { return len(hs[i].token) > len(hs[j].token) })
	return hs
}

// match returns the header kind the line starts with and the text following
// the header token.
func (hs headerSet) match(line string) (HeaderKind, string) {
	for _, h := range hs {
		if len(line) >= len(h.token) && strings.EqualFold(line[:len(h.token)], h.token) {
			return h.kind, strings.TrimSpace(line[len(h.token):])
		}
	}
	return HeaderNone, ""
}

type partyBlock struct {
	lines []string // buffered lines, tax-id-only lines excluded
	all   []string // every line seen in the block, for contact details
	taxID string
}

// SectionTracker consumes lines in order and attributes the lines that follow
// a party header to that party. It is not safe for concurrent use; create one
// per document.
type SectionTracker struct {
	headers     headerSet
	state       SectionState
	transitions int
	blocks      [2]partyBlock
	neutral     []string
}

// NewSectionTracker builds a tracker for the given header tokens, which are
// matched as case-insensitive line prefixes.
func NewSectionTracker(issuerHeaders, receiverHeaders, neutralHeaders []string) *SectionTracker {
	return newTracker(newHeaderSet(issuerHeaders, receiverHeaders, neutralHeaders))
}

func newTracker(hs headerSet) *SectionTracker {
	return &SectionTracker{headers: hs, state: Neutral}
}

// State returns the current section state.
func (t *SectionTracker) State() SectionState { return t.state }

// Transitions returns the number of header lines seen so far.
func (t *SectionTracker) Transitions() int { return t.transitions }

// Feed processes one trimmed line.
func (t *SectionTracker) Feed(line string) {
	kind, rest := t.headers.match(line)
	if kind != HeaderNone {
		t.transitions++
		t.state = t.state.Next(kind)
		if rest == "" || t.state == Neutral {
			return
		}
		line = rest
	}

	b := t.block()
	if b == nil {
		if kind == HeaderNone {
			t.neutral = append(t.neutral, line)
		}
		return
	}
	b.all = append(b.all, line)
	if id, only := taxIDOnLine(line); id != "" {
		if b.taxID == "" {
			b.taxID = id
		}
		if only {
			return
		}
	}
	b.lines = append(b.lines, line)
}

func (t *SectionTracker) block() *partyBlock {
	switch t.state {
	case InIssuerBlock:
		return &t.blocks[0]
	case InReceiverBlock:
		return &t.blocks[1]
	default:
		return nil
	}
}

// Lines returns the buffered lines of the issuer or receiver block.
func (t *SectionTracker) Lines(state SectionState) []string {
	switch state {
	case InIssuerBlock:
		return append([]string{}, t.blocks[0].lines...)
	case InReceiverBlock:
		return append([]string{}, t.blocks[1].lines...)
	default:
		return []string{}
	}
}

// NeutralLines returns the lines seen outside any party block, header lines
// excluded.
func (t *SectionTracker) NeutralLines() []string {
	return append([]string{}, t.neutral...)
}

// Party builds the party record for the issuer or receiver block. Fields the
// block does not provide are left empty.
func (t *SectionTracker) Party(state SectionState) domain.PartyRecord {
	return t.party(state, locality{})
}

func (t *SectionTracker) party(state SectionState, loc locality) domain.PartyRecord {
	var b *partyBlock
	switch state {
	case InIssuerBlock:
		b = &t.blocks[0]
	case InReceiverBlock:
		b = &t.blocks[1]
	default:
		return domain.PartyRecord{}
	}

	var p domain.PartyRecord
	p.TaxID = b.taxID
	if len(b.lines) > 0 {
		p.CompanyName = b.lines[0]
		p.Address = strings.Join(b.lines[1:], " ")
	}
	for _, l := range b.all {
		if p.Phone == "" {
			if m := pattern.PhoneMatches(l); len(m) > 0 {
				p.Phone = m[0]
			}
		}
		if p.Email == "" {
			if m := pattern.EmailMatches(l); len(m) > 0 {
				p.Email = m[0]
			}
		}
		if p.SecondaryTaxID == "" {
			p.SecondaryTaxID = labelledSecondaryTaxID(l)
		}
	}
	if len(b.lines) > 1 {
		loc.fill(&p, b.lines[1:])
	}
	return p
}

// taxIDOnLine returns the first tax id on the line (strict, else loose) and
// whether the line carries nothing besides the id and its label.
func taxIDOnLine(line string) (string, bool) {
	ids := pattern.StrictTaxIDMatches(line)
	if len(ids) == 0 {
		ids = pattern.LooseTaxIDMatches(line)
	}
	if len(ids) == 0 {
		return "", false
	}
	id := ids[0]
	upper := strings.ToUpper(line)
	i := strings.Index(upper, id)
	if i < 0 || len(upper) != len(line) {
		return id, false
	}
	rest := strings.TrimSpace(line[:i] + " " + line[i+len(id):])
	return id, taxLabelRe.MatchString(rest)
}
