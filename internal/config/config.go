package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"docex/internal/extract"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	S3      S3Config
	Log     LogConfig
	Parser  ParserConfig
	CORS    CORSConfig
	Queue   QueueConfig
	Extract ExtractConfig
}

// QueueConfig holds extraction queue worker settings.
type QueueConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	PollIntervalSecs int  `mapstructure:"poll_interval_secs"`
	MaxRetries       int  `mapstructure:"max_retries"`
	Concurrency      int  `mapstructure:"concurrency"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig selects how documents are parsed. Mode "rules" uses only the
// rule engine; "fallback" tries the configured LLM providers in order and
// falls back to the rules; "merge" runs the primary provider and the rules
// together and merges field by field.
type ParserConfig struct {
	Mode string `mapstructure:"mode"`

	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, or nil if not configured.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return nil
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// Providers returns the configured providers in priority order.
func (p *ParserConfig) Providers() []*ParserProviderConfig {
	var out []*ParserProviderConfig
	for _, c := range []*ParserProviderConfig{p.PrimaryConfig(), p.SecondaryConfig(), p.TertiaryConfig()} {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}

// ExtractConfig holds the rule engine's deployment-specific heuristics.
type ExtractConfig struct {
	SelfEntity      string   `mapstructure:"self_entity"`
	SingleCandidate string   `mapstructure:"single_candidate"`
	CompanyKeywords []string `mapstructure:"company_keywords"`
	AddressKeywords []string `mapstructure:"address_keywords"`
	Regions         []string `mapstructure:"regions"`
	Cities          []string `mapstructure:"cities"`
	Countries       []string `mapstructure:"countries"`
	IssuerHeaders   []string `mapstructure:"issuer_headers"`
	ReceiverHeaders []string `mapstructure:"receiver_headers"`
	NeutralHeaders  []string `mapstructure:"neutral_headers"`
	MaxTextBytes    int      `mapstructure:"max_text_bytes"`
}

// Options maps the config onto extractor options. Empty lists keep the
// extractor's defaults.
func (e *ExtractConfig) Options() extract.Options {
	return extract.Options{
		SelfEntity:      e.SelfEntity,
		SingleCandidate: extract.ParseSingleCandidatePolicy(e.SingleCandidate),
		CompanyKeywords: e.CompanyKeywords,
		AddressKeywords: e.AddressKeywords,
		Regions:         e.Regions,
		Cities:          e.Cities,
		Countries:       e.Countries,
		IssuerHeaders:   e.IssuerHeaders,
		ReceiverHeaders: e.ReceiverHeaders,
		NeutralHeaders:  e.NeutralHeaders,
	}
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing settings for service tokens.
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
	Issuer      string        `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings. An empty bucket disables archiving.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the DOCEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docex")
	v.SetDefault("db.password", "docex_secret")
	v.SetDefault("db.name", "docex_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.token_expiry", "24h")
	v.SetDefault("jwt.issuer", "docex")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Queue defaults
	v.SetDefault("queue.enabled", true)
	v.SetDefault("queue.poll_interval_secs", 5)
	v.SetDefault("queue.max_retries", 3)
	v.SetDefault("queue.concurrency", 4)

	// Parser defaults
	v.SetDefault("parser.mode", "rules")
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+tier+".provider", "")
		v.SetDefault("parser."+tier+".api_key", "")
		v.SetDefault("parser."+tier+".default_model", "")
		v.SetDefault("parser."+tier+".max_retries", 2)
		v.SetDefault("parser."+tier+".timeout_secs", 120)
	}

	// Extraction heuristics. Empty lists keep the engine defaults.
	v.SetDefault("extract.self_entity", "")
	v.SetDefault("extract.single_candidate", string(extract.SingleCandidateReceiver))
	v.SetDefault("extract.company_keywords", "")
	v.SetDefault("extract.address_keywords", "")
	v.SetDefault("extract.regions", "")
	v.SetDefault("extract.cities", "")
	v.SetDefault("extract.countries", "")
	v.SetDefault("extract.issuer_headers", "")
	v.SetDefault("extract.receiver_headers", "")
	v.SetDefault("extract.neutral_headers", "")
	v.SetDefault("extract.max_text_bytes", 1<<20)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "DOCEX_SERVER_PORT",
		"server.read_timeout":            "DOCEX_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "DOCEX_SERVER_WRITE_TIMEOUT",
		"server.environment":             "DOCEX_SERVER_ENVIRONMENT",
		"db.host":                        "DOCEX_DB_HOST",
		"db.port":                        "DOCEX_DB_PORT",
		"db.user":                        "DOCEX_DB_USER",
		"db.password":                    "DOCEX_DB_PASSWORD",
		"db.name":                        "DOCEX_DB_NAME",
		"db.sslmode":                     "DOCEX_DB_SSLMODE",
		"db.max_open":                    "DOCEX_DB_MAX_OPEN",
		"db.max_idle":                    "DOCEX_DB_MAX_IDLE",
		"jwt.secret":                     "DOCEX_JWT_SECRET",
		"jwt.token_expiry":               "DOCEX_JWT_TOKEN_EXPIRY",
		"jwt.issuer":                     "DOCEX_JWT_ISSUER",
		"s3.region":                      "DOCEX_S3_REGION",
		"s3.bucket":                      "DOCEX_S3_BUCKET",
		"s3.endpoint":                    "DOCEX_S3_ENDPOINT",
		"s3.access_key":                  "DOCEX_S3_ACCESS_KEY",
		"s3.secret_key":                  "DOCEX_S3_SECRET_KEY",
		"s3.presign_expiry":              "DOCEX_S3_PRESIGN_EXPIRY",
		"log.level":                      "DOCEX_LOG_LEVEL",
		"log.format":                     "DOCEX_LOG_FORMAT",
		"cors.allowed_origins":           "DOCEX_CORS_ALLOWED_ORIGINS",
		"queue.enabled":                  "DOCEX_QUEUE_ENABLED",
		"queue.poll_interval_secs":       "DOCEX_QUEUE_POLL_INTERVAL_SECS",
		"queue.max_retries":              "DOCEX_QUEUE_MAX_RETRIES",
		"queue.concurrency":              "DOCEX_QUEUE_CONCURRENCY",
		"parser.mode":                    "DOCEX_PARSER_MODE",
		"parser.primary.provider":        "DOCEX_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "DOCEX_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "DOCEX_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.max_retries":     "DOCEX_PARSER_PRIMARY_MAX_RETRIES",
		"parser.primary.timeout_secs":    "DOCEX_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "DOCEX_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "DOCEX_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "DOCEX_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.max_retries":   "DOCEX_PARSER_SECONDARY_MAX_RETRIES",
		"parser.secondary.timeout_secs":  "DOCEX_PARSER_SECONDARY_TIMEOUT_SECS",
		"parser.tertiary.provider":       "DOCEX_PARSER_TERTIARY_PROVIDER",
		"parser.tertiary.api_key":        "DOCEX_PARSER_TERTIARY_API_KEY",
		"parser.tertiary.default_model":  "DOCEX_PARSER_TERTIARY_DEFAULT_MODEL",
		"parser.tertiary.max_retries":    "DOCEX_PARSER_TERTIARY_MAX_RETRIES",
		"parser.tertiary.timeout_secs":   "DOCEX_PARSER_TERTIARY_TIMEOUT_SECS",
		"extract.self_entity":            "DOCEX_EXTRACT_SELF_ENTITY",
		"extract.single_candidate":       "DOCEX_EXTRACT_SINGLE_CANDIDATE",
		"extract.company_keywords":       "DOCEX_EXTRACT_COMPANY_KEYWORDS",
		"extract.address_keywords":       "DOCEX_EXTRACT_ADDRESS_KEYWORDS",
		"extract.regions":                "DOCEX_EXTRACT_REGIONS",
		"extract.cities":                 "DOCEX_EXTRACT_CITIES",
		"extract.countries":              "DOCEX_EXTRACT_COUNTRIES",
		"extract.issuer_headers":         "DOCEX_EXTRACT_ISSUER_HEADERS",
		"extract.receiver_headers":       "DOCEX_EXTRACT_RECEIVER_HEADERS",
		"extract.neutral_headers":        "DOCEX_EXTRACT_NEUTRAL_HEADERS",
		"extract.max_text_bytes":         "DOCEX_EXTRACT_MAX_TEXT_BYTES",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platforms that inject PORT win unless DOCEX_SERVER_PORT is set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:      v.GetString("jwt.secret"),
		TokenExpiry: v.GetDuration("jwt.token_expiry"),
		Issuer:      v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	cfg.Parser = ParserConfig{
		Mode:      v.GetString("parser.mode"),
		Primary:   providerConfig(v, "primary"),
		Secondary: providerConfig(v, "secondary"),
		Tertiary:  providerConfig(v, "tertiary"),
	}

	cfg.Queue = QueueConfig{
		Enabled:          v.GetBool("queue.enabled"),
		PollIntervalSecs: v.GetInt("queue.poll_interval_secs"),
		MaxRetries:       v.GetInt("queue.max_retries"),
		Concurrency:      v.GetInt("queue.concurrency"),
	}

	cfg.Extract = ExtractConfig{
		SelfEntity:      v.GetString("extract.self_entity"),
		SingleCandidate: v.GetString("extract.single_candidate"),
		CompanyKeywords: splitList(v.GetString("extract.company_keywords")),
		AddressKeywords: splitList(v.GetString("extract.address_keywords")),
		Regions:         splitList(v.GetString("extract.regions")),
		Cities:          splitList(v.GetString("extract.cities")),
		Countries:       splitList(v.GetString("extract.countries")),
		IssuerHeaders:   splitList(v.GetString("extract.issuer_headers")),
		ReceiverHeaders: splitList(v.GetString("extract.receiver_headers")),
		NeutralHeaders:  splitList(v.GetString("extract.neutral_headers")),
		MaxTextBytes:    v.GetInt("extract.max_text_bytes"),
	}

	switch cfg.Parser.Mode {
	case "rules", "fallback", "merge":
	default:
		return nil, fmt.Errorf("config: unknown parser mode %q", cfg.Parser.Mode)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) ParserProviderConfig {
	prefix := "parser." + tier + "."
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		DefaultModel: v.GetString(prefix + "default_model"),
		MaxRetries:   v.GetInt(prefix + "max_retries"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

// splitList parses a comma-separated list, dropping empty entries. It
// returns nil for an empty string.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
