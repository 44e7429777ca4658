package parser

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"docex/internal/config"
	"docex/internal/domain"
	"docex/internal/port"
)

// ProviderFactory is a function that creates a DocumentParser from a provider config.
type ProviderFactory func(cfg *config.ParserProviderConfig) (port.DocumentParser, error)

// registry of parser provider factories, populated by RegisterProvider from
// each provider package's init.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a parser provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewParser creates a DocumentParser from a provider config using the registered factory.
func NewParser(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown parser provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// Build assembles the parser chain for the configured mode. The rule parser
// is always part of the chain, so the result never fails to produce a
// record. Modes that name no providers degrade to the rule parser alone.
func Build(cfg *config.ParserConfig, rules port.DocumentParser) (port.DocumentParser, error) {
	mode := domain.ParserMode(cfg.Mode)
	if mode == "" || mode == domain.ParserModeRules {
		return rules, nil
	}

	var (
		oracles []port.DocumentParser
		names   []string
	)
	for _, pc := range cfg.Providers() {
		p, err := NewParser(pc)
		if err != nil {
			return nil, fmt.Errorf("creating %s parser: %w", pc.Provider, err)
		}
		oracles = append(oracles, p)
		names = append(names, pc.Provider)
	}
	if len(oracles) == 0 {
		log.Warn().Str("mode", cfg.Mode).Msg("parser.Build: no providers configured, using rules only")
		return rules, nil
	}

	switch mode {
	case domain.ParserModeFallback:
		return NewFallbackParser(oracles, names, rules), nil
	case domain.ParserModeMerge:
		var primary port.DocumentParser = oracles[0]
		if len(oracles) > 1 {
			primary = NewFallbackParser(oracles, names, nil)
		}
		return NewMergeParser(primary, rules), nil
	default:
		return nil, fmt.Errorf("unknown parser mode: %s", cfg.Mode)
	}
}
