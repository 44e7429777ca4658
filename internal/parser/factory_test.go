package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docex/internal/config"
	"docex/internal/parser"
	"docex/internal/port"
	"docex/mocks"
)

func init() {
	parser.RegisterProvider("fake", func(cfg *config.ParserProviderConfig) (port.DocumentParser, error) {
		return new(mocks.MockDocumentParser), nil
	})
}

func TestNewParser_UnknownProvider(t *testing.T) {
	_, err := parser.NewParser(&config.ParserProviderConfig{Provider: "nope"})
	assert.ErrorContains(t, err, "unknown parser provider")
}

func TestBuild_Modes(t *testing.T) {
	rules := new(mocks.MockDocumentParser)

	t.Run("rules", func(t *testing.T) {
		p, err := parser.Build(&config.ParserConfig{Mode: "rules", Primary: config.ParserProviderConfig{Provider: "fake"}}, rules)
		require.NoError(t, err)
		assert.Same(t, rules, p)
	})

	t.Run("fallback_without_providers", func(t *testing.T) {
		p, err := parser.Build(&config.ParserConfig{Mode: "fallback"}, rules)
		require.NoError(t, err)
		assert.Same(t, rules, p)
	})

	t.Run("fallback", func(t *testing.T) {
		p, err := parser.Build(&config.ParserConfig{
			Mode:      "fallback",
			Primary:   config.ParserProviderConfig{Provider: "fake"},
			Secondary: config.ParserProviderConfig{Provider: "fake"},
		}, rules)
		require.NoError(t, err)
		assert.IsType(t, &parser.FallbackParser{}, p)
	})

	t.Run("merge", func(t *testing.T) {
		p, err := parser.Build(&config.ParserConfig{
			Mode:    "merge",
			Primary: config.ParserProviderConfig{Provider: "fake"},
		}, rules)
		require.NoError(t, err)
		assert.IsType(t, &parser.MergeParser{}, p)
	})

	t.Run("unknown_provider", func(t *testing.T) {
		_, err := parser.Build(&config.ParserConfig{
			Mode:    "merge",
			Primary: config.ParserProviderConfig{Provider: "nope"},
		}, rules)
		assert.Error(t, err)
	})

	t.Run("unknown_mode", func(t *testing.T) {
		_, err := parser.Build(&config.ParserConfig{
			Mode:    "vote",
			Primary: config.ParserProviderConfig{Provider: "fake"},
		}, rules)
		assert.ErrorContains(t, err, "unknown parser mode")
	})
}
