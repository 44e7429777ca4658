package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docex/internal/config"
	"docex/internal/extract"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "rules", cfg.Parser.Mode)
	assert.Empty(t, cfg.Parser.Providers())
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TokenExpiry)
	assert.Empty(t, cfg.S3.Bucket)
	assert.Equal(t, 1<<20, cfg.Extract.MaxTextBytes)
	assert.Nil(t, cfg.Extract.CompanyKeywords)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCEX_PARSER_MODE", "fallback")
	t.Setenv("DOCEX_PARSER_PRIMARY_PROVIDER", "claude")
	t.Setenv("DOCEX_PARSER_PRIMARY_API_KEY", "sk-test")
	t.Setenv("DOCEX_PARSER_SECONDARY_PROVIDER", "gemini")
	t.Setenv("DOCEX_EXTRACT_SELF_ENTITY", "ChargeHouse")
	t.Setenv("DOCEX_EXTRACT_SINGLE_CANDIDATE", "none")
	t.Setenv("DOCEX_EXTRACT_CITIES", "Hyderabad, Pune ,")
	t.Setenv("DOCEX_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "fallback", cfg.Parser.Mode)
	providers := cfg.Parser.Providers()
	require.Len(t, providers, 2)
	assert.Equal(t, "claude", providers[0].Provider)
	assert.Equal(t, "sk-test", providers[0].APIKey)
	assert.Equal(t, "gemini", providers[1].Provider)
	assert.Nil(t, cfg.Parser.TertiaryConfig())

	assert.Equal(t, []string{"Hyderabad", "Pune"}, cfg.Extract.Cities)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)

	opts := cfg.Extract.Options()
	assert.Equal(t, "ChargeHouse", opts.SelfEntity)
	assert.Equal(t, extract.SingleCandidateNone, opts.SingleCandidate)
}

func TestLoad_PortFromPlatform(t *testing.T) {
	t.Setenv("PORT", "9000")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)
}

func TestLoad_UnknownParserMode(t *testing.T) {
	t.Setenv("DOCEX_PARSER_MODE", "magic")
	_, err := config.Load()
	assert.Error(t, err)
}
