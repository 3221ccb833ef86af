package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezone lookups must not depend on the host zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FLEET_FISCAL_VAT_NUMBER
const EnvPrefix = "FLEET"

// Config holds all application configuration
type Config struct {
	App        AppConfig
	Log        LogConfig
	Settlement SettlementConfig
	Fiscal     FiscalConfig
	Arrears    ArrearsConfig
	Telemetry  TelemetryConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string `validate:"required"`
	Env  string `validate:"oneof=development testing production"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn warning error"` // debug, info, warn, error
	Format string `validate:"oneof=json console"`
	Output string `validate:"required"` // stdout, stderr, or file path
}

// SettlementConfig holds the return-charge tariff
type SettlementConfig struct {
	PricePerFuelQuarter decimal.Decimal
	PricePerExcessKm    decimal.Decimal
	Timezone            string `validate:"required"` // IANA name used to read due dates
	Currency            string `validate:"len=3,uppercase"`
}

// FiscalConfig holds the seller identity printed on invoices
type FiscalConfig struct {
	SellerName string `validate:"max=255"`
	VATNumber  string `validate:"omitempty,numeric,len=15"`
	VATRate    decimal.Decimal
}

// ArrearsConfig holds risk classification settings
type ArrearsConfig struct {
	RiskThreshold     decimal.Decimal
	HighRiskThreshold decimal.Decimal
	Language          string `validate:"required,bcp47_language_tag"` // collection plan language
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to export traces and metrics
	CollectorEndpoint string  `validate:"omitempty,hostname_port"` // OTLP gRPC endpoint, e.g. "localhost:4317"
	SamplingRatio     float64 `validate:"gte=0,lte=1"`
	ServiceName       string  `validate:"required"`
	Insecure          bool    // Use a non-TLS connection (development only)
	ExportInterval    time.Duration
}

// Load loads configuration from config.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with FLEET_ prefix (e.g., FLEET_FISCAL_VAT_RATE)
// 2. config.toml in ., ./config or /etc/fleetcore
// 3. Built-in defaults
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fleetcore")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return build(v)
}

// LoadFile loads configuration from an explicit TOML file. A missing file
// is an error.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return build(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Zero is a legitimate tariff, so numeric defaults go through viper
	// rather than applyDefaults.
	v.SetDefault("settlement.price_per_fuel_quarter", "50")
	v.SetDefault("settlement.price_per_excess_km", "0.5")
	v.SetDefault("fiscal.vat_rate", "0.15")
	v.SetDefault("arrears.risk_threshold", "1500")
	v.SetDefault("arrears.high_risk_threshold", "5000")
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	return v
}

func build(v *viper.Viper) (*Config, error) {
	var errs []error
	dec := func(key string) decimal.Decimal {
		d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
		return d
	}

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Settlement: SettlementConfig{
			PricePerFuelQuarter: dec("settlement.price_per_fuel_quarter"),
			PricePerExcessKm:    dec("settlement.price_per_excess_km"),
			Timezone:            v.GetString("settlement.timezone"),
			Currency:            v.GetString("settlement.currency"),
		},
		Fiscal: FiscalConfig{
			SellerName: v.GetString("fiscal.seller_name"),
			VATNumber:  v.GetString("fiscal.vat_number"),
			VATRate:    dec("fiscal.vat_rate"),
		},
		Arrears: ArrearsConfig{
			RiskThreshold:     dec("arrears.risk_threshold"),
			HighRiskThreshold: dec("arrears.high_risk_threshold"),
			Language:          v.GetString("arrears.language"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid decimal setting: %w", errors.Join(errs...))
	}

	// Apply defaults for empty values
	applyDefaults(cfg)

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "fleetcore"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Settlement.Timezone == "" {
		cfg.Settlement.Timezone = "Asia/Riyadh"
	}
	if cfg.Settlement.Currency == "" {
		cfg.Settlement.Currency = "SAR"
	}
	if cfg.Arrears.Language == "" {
		cfg.Arrears.Language = "en"
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317" // Default gRPC endpoint
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "fleetcore"
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 30 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%s failed the %q check (value %v)", configKey(fe.Namespace()), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if _, err := c.Settlement.Location(); err != nil {
		return fmt.Errorf("settlement.timezone: %w", err)
	}
	if c.Settlement.PricePerFuelQuarter.IsNegative() {
		return fmt.Errorf("settlement.price_per_fuel_quarter cannot be negative")
	}
	if c.Settlement.PricePerExcessKm.IsNegative() {
		return fmt.Errorf("settlement.price_per_excess_km cannot be negative")
	}
	if c.Fiscal.VATRate.IsNegative() || c.Fiscal.VATRate.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("fiscal.vat_rate must be between 0 and 1, got %s", c.Fiscal.VATRate)
	}
	if c.Arrears.RiskThreshold.IsNegative() {
		return fmt.Errorf("arrears.risk_threshold cannot be negative")
	}
	if c.Arrears.HighRiskThreshold.LessThan(c.Arrears.RiskThreshold) {
		return fmt.Errorf("arrears.high_risk_threshold (%s) cannot be below arrears.risk_threshold (%s)",
			c.Arrears.HighRiskThreshold, c.Arrears.RiskThreshold)
	}

	// Production-specific validations
	if c.App.Env == "production" {
		if c.Fiscal.SellerName == "" {
			return fmt.Errorf("fiscal.seller_name is required in production")
		}
		if c.Fiscal.VATNumber == "" {
			return fmt.Errorf("fiscal.vat_number is required in production")
		}
		if c.Telemetry.Enabled && c.Telemetry.Insecure {
			return fmt.Errorf("telemetry.insecure cannot be true in production")
		}
	}

	return nil
}

// Location resolves the configured timezone
func (s SettlementConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// configKey turns a validator namespace such as "Config.Fiscal.VATNumber"
// into the TOML key "fiscal.vat_number"
func configKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
