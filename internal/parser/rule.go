package parser

import (
	"context"

	"docex/internal/extract"
	"docex/internal/port"
)

// RuleModel is the ModelUsed value reported by the rule parser.
const RuleModel = "rules"

// RuleParser adapts the rule-based extractor to port.DocumentParser. It never
// returns an error.
type RuleParser struct {
	extractor *extract.Extractor
}

// NewRuleParser wraps an extractor.
func NewRuleParser(e *extract.Extractor) *RuleParser {
	return &RuleParser{extractor: e}
}

func (r *RuleParser) Parse(_ context.Context, input port.ParseInput) (*port.ParseOutput, error) {
	doc := r.extractor.Extract(input.Text)
	return &port.ParseOutput{
		Document:   &doc,
		Confidence: extract.AggregateConfidence(input.Tokens),
		ModelUsed:  RuleModel,
	}, nil
}
