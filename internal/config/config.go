package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Catalog sources.
const (
	CatalogStatic   = "static"
	CatalogFile     = "file"
	CatalogPostgres = "postgres"
)

// Decode sources.
const (
	ScanSourceHTTP  = "http"
	ScanSourceStdin = "stdin"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	CORSAllowedOrigins []string
	HTTPBodyLimitBytes int64
	ShutdownTimeout    time.Duration

	CatalogSource   string
	CatalogFile     string
	DatabaseURL     string
	DatabaseMigrate bool
	RedisURL        string
	CatalogCacheTTL time.Duration

	PayeeUPIID   string
	PayeeName    string
	PayeeNote    string
	CurrencyCode string
	QRServiceURL string
	QRSize       string

	SellerName    string
	SellerGSTIN   string
	SellerEmail   string
	ShipmentType  string
	InvoicePrefix string

	ScanSource     string
	ScanRateLimit  int
	ScanRateWindow time.Duration

	LogFormat          string
	LogLevel           string
	MetricsEnabled     bool
	MetricsNamespace   string
	MetricsBuckets     string
	TracingExporter    string
	OTLPEndpoint       string
	TracingSampleRatio float64
	PprofEnabled       bool
	PprofUser          string
	PprofPass          string
	SecureHeaders      bool
	SecureHSTS         bool
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		HTTPBodyLimitBytes: int64(parseInt(k.String("HTTP_BODY_LIMIT_BYTES"), 64<<10)),
		ShutdownTimeout:    parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),

		CatalogSource:   strings.ToLower(valueOrDefault(k.String("CATALOG_SOURCE"), CatalogStatic)),
		CatalogFile:     strings.TrimSpace(k.String("CATALOG_FILE")),
		DatabaseURL:     strings.TrimSpace(k.String("DATABASE_URL")),
		DatabaseMigrate: parseBool(k.String("DATABASE_MIGRATE"), false),
		RedisURL:        strings.TrimSpace(k.String("REDIS_URL")),
		CatalogCacheTTL: parseDuration(k.String("CATALOG_CACHE_TTL"), "5m"),

		PayeeUPIID:   valueOrDefault(k.String("PAYEE_UPI_ID"), "8919348949@ybl"),
		PayeeName:    valueOrDefault(k.String("PAYEE_NAME"), "Technosports"),
		PayeeNote:    strings.TrimSpace(k.String("PAYEE_NOTE")),
		CurrencyCode: strings.ToUpper(valueOrDefault(k.String("CURRENCY_CODE"), "INR")),
		QRServiceURL: valueOrDefault(k.String("QR_SERVICE_URL"), "https://api.qrserver.com/v1/create-qr-code/"),
		QRSize:       valueOrDefault(k.String("QR_SIZE"), "200x200"),

		SellerName:    valueOrDefault(k.String("SELLER_NAME"), "Technosports"),
		SellerGSTIN:   valueOrDefault(k.String("SELLER_GSTIN"), "29ABCDE1234F1Z5"),
		SellerEmail:   valueOrDefault(k.String("SELLER_EMAIL"), "support@technosports.in"),
		ShipmentType:  valueOrDefault(k.String("SHIPMENT_TYPE"), "COD"),
		InvoicePrefix: valueOrDefault(k.String("INVOICE_PREFIX"), "TS"),

		ScanSource:     strings.ToLower(valueOrDefault(k.String("SCAN_SOURCE"), ScanSourceHTTP)),
		ScanRateLimit:  parseInt(k.String("SCAN_RATE_LIMIT"), 50),
		ScanRateWindow: parseDuration(k.String("SCAN_RATE_WINDOW"), "1s"),

		LogFormat:          valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:           valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		MetricsEnabled:     parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace:   valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "kasir"),
		MetricsBuckets:     strings.TrimSpace(k.String("OBS_METRICS_BUCKETS_MS")),
		TracingExporter:    valueOrDefault(k.String("OBS_TRACING_EXPORTER"), "none"),
		OTLPEndpoint:       strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampleRatio: parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1),
		PprofEnabled:       parseBool(k.String("OBS_ENABLE_PPROF"), false),
		PprofUser:          strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_USER")),
		PprofPass:          strings.TrimSpace(k.String("SECURE_PPROF_BASIC_AUTH_PASS")),
		SecureHeaders:      parseBool(k.String("SECURE_HEADERS"), true),
		SecureHSTS:         parseBool(k.String("SECURE_HSTS"), false),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.CatalogSource {
	case CatalogStatic:
	case CatalogFile:
		if c.CatalogFile == "" {
			errs = append(errs, errors.New("CATALOG_FILE is required when CATALOG_SOURCE=file"))
		}
	case CatalogPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when CATALOG_SOURCE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("CATALOG_SOURCE %q is not one of static, file, postgres", c.CatalogSource))
	}
	if !isCurrencyCode(c.CurrencyCode) {
		errs = append(errs, fmt.Errorf("CURRENCY_CODE %q must be three letters", c.CurrencyCode))
	}
	switch c.ScanSource {
	case ScanSourceHTTP, ScanSourceStdin:
	default:
		errs = append(errs, fmt.Errorf("SCAN_SOURCE %q is not one of http, stdin", c.ScanSource))
	}
	if c.ScanRateLimit <= 0 || c.ScanRateWindow <= 0 {
		errs = append(errs, errors.New("SCAN_RATE_LIMIT and SCAN_RATE_WINDOW must be positive"))
	}
	return errors.Join(errs...)
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func isCurrencyCode(v string) bool {
	if len(v) != 3 {
		return false
	}
	for _, r := range v {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(value string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
