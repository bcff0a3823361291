package contract

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/prefscore/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 25
	MaxResultLimit     = 10000
	DefaultPrecision   = 2
	MaxPrecision       = 6
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// Config holds the runtime configuration for rating.
// This struct is the "final, validated" config.
type Config struct {
	CatalogPath string
	UserID      string
	ProductID   int64
	HasProduct  bool
	Algorithm   string

	Rating schema.RatingConfig

	ResultLimit int // 0 = no limit
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	LogLevel  string
	LogFormat string
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	profile.Enabled = profilePrefix != ""
	profile.Prefix = profilePrefix
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Inputs ---
	Catalog   string `mapstructure:"catalog"`
	User      string `mapstructure:"user"`
	Product   string `mapstructure:"product"`
	Algorithm string `mapstructure:"algorithm"`

	// --- Rating constants ---
	MeanUserPreference    float64 `mapstructure:"mean-user-preference" validate:"gte=0"`
	MaxAllowedAssociation float64 `mapstructure:"max-allowed-association" validate:"gt=0"`
	MeanProductRating     float64 `mapstructure:"mean-product-rating" validate:"gte=0"`
	RatingScale           float64 `mapstructure:"rating-scale" validate:"gt=0"`

	// --- Run and output ---
	Limit      int    `mapstructure:"limit" validate:"gte=0,lte=10000"`
	Workers    int    `mapstructure:"workers" validate:"gt=0"`
	Precision  int    `mapstructure:"precision" validate:"gte=1,lte=6"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Width      int    `mapstructure:"width" validate:"gte=0"`
	Color      string `mapstructure:"color"`

	// --- Store ---
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`

	// --- Logging ---
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := ValidateStruct(input); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processRatingConfig(cfg, input); err != nil {
		return err
	}
	if err := processTargets(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates the store backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := input.StoreBackend
	if backend == "" {
		backend = string(schema.SQLiteBackend)
	}
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// validateSimpleInputs processes and validates the output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.CatalogPath = input.Catalog
	cfg.OutputFile = input.OutputFile
	cfg.ResultLimit = input.Limit
	cfg.Workers = input.Workers
	cfg.Precision = input.Precision
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.LogLevel = strings.ToLower(input.LogLevel)
	if cfg.LogLevel != "" && !ValidLogLevel(cfg.LogLevel) {
		return fmt.Errorf("invalid log level '%s'", input.LogLevel)
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	switch cfg.LogFormat {
	case "", ConsoleLogFormat, JSONLogFormat:
	default:
		return fmt.Errorf("invalid log format '%s'. must be console, json", input.LogFormat)
	}
	return nil
}

// processRatingConfig copies the rating constants and checks them as a whole.
func processRatingConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.Rating = schema.RatingConfig{
		MeanUserPreference:    input.MeanUserPreference,
		MaxAllowedAssociation: input.MaxAllowedAssociation,
		MeanProductRating:     input.MeanProductRating,
		RatingScale:           input.RatingScale,
	}
	if err := ValidateStruct(cfg.Rating); err != nil {
		return fmt.Errorf("invalid rating configuration: %w", err)
	}
	if cfg.Rating.MeanProductRating < cfg.Rating.RatingScale {
		return fmt.Errorf("mean-product-rating (%g) must be at least rating-scale (%g) so ratings stay non-negative",
			cfg.Rating.MeanProductRating, cfg.Rating.RatingScale)
	}
	return nil
}

// processTargets resolves the user, product and algorithm selections.
func processTargets(cfg *Config, input *ConfigRawInput) error {
	cfg.UserID = strings.TrimSpace(input.User)
	cfg.Algorithm = strings.ToLower(strings.TrimSpace(input.Algorithm))
	if cfg.Algorithm == "" {
		cfg.Algorithm = schema.DefaultAlgorithm
	}

	cfg.HasProduct = false
	cfg.ProductID = 0
	if p := strings.TrimSpace(input.Product); p != "" {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id '%s': %w", input.Product, err)
		}
		cfg.ProductID = id
		cfg.HasProduct = true
	}
	return nil
}
