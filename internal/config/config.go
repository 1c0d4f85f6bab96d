package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/w-flo/eu-emission-factors/internal/errors"
)

// Config represents the application configuration
type Config struct {
	Processing ProcessingConfig `yaml:"processing" envconfig:"PROCESSING"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Metrics    MetricsConfig    `yaml:"metrics" envconfig:"METRICS"`
	Tracing    TracingConfig    `yaml:"tracing" envconfig:"TRACING"`
	Output     OutputConfig     `yaml:"output" envconfig:"OUTPUT"`
	Store      StoreConfig      `yaml:"store" envconfig:"STORE"`
}

// ProcessingConfig controls a single emission factor run
type ProcessingConfig struct {
	Year                  int     `yaml:"year" envconfig:"YEAR" validate:"omitempty,min=2020,max=2025"`
	DataDir               string  `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	Interactive           bool    `yaml:"interactive" envconfig:"INTERACTIVE"`
	AcceptStaleDegreeDays bool    `yaml:"accept_stale_degree_days" envconfig:"ACCEPT_STALE_DEGREE_DAYS"`
	PlausibleMin          float64 `yaml:"plausible_min" envconfig:"PLAUSIBLE_MIN" validate:"gte=0"`
	PlausibleMax          float64 `yaml:"plausible_max" envconfig:"PLAUSIBLE_MAX" validate:"gtfield=PlausibleMin"`
	ArchiveWorkers        int     `yaml:"archive_workers" envconfig:"ARCHIVE_WORKERS" validate:"min=1,max=12"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// MetricsConfig controls the Prometheus textfile written after each run
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled" envconfig:"ENABLED"`
	TextfilePath string `yaml:"textfile_path" envconfig:"TEXTFILE_PATH"`
}

// TracingConfig controls OpenTelemetry span export
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	Exporter    string `yaml:"exporter" envconfig:"EXPORTER" validate:"oneof=stdout file"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_if=Exporter file"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
}

// OutputConfig selects the optional result formats next to the CSV files
type OutputConfig struct {
	Workbook bool `yaml:"workbook" envconfig:"WORKBOOK"`
	PDF      bool `yaml:"pdf" envconfig:"PDF"`
}

// StoreConfig contains the optional Postgres results sink
type StoreConfig struct {
	Enabled bool          `yaml:"enabled" envconfig:"ENABLED"`
	DSN     string        `yaml:"dsn" envconfig:"DSN" validate:"required_if=Enabled true"`
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT"`
}

// Load loads configuration from defaults, an optional YAML file and environment
// variables, in increasing order of precedence. An empty configFile searches the
// usual locations.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	// envconfig leaves fields alone when their variable is unset
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration. It is exported so callers can re-check
// after applying command line flags.
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.NewConfigError("config validation failed", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, describeFieldError(fe))
	}
	appErr := apperrors.NewConfigError("config validation failed: "+strings.Join(problems, "; "), nil)
	for _, fe := range fieldErrs {
		appErr.WithContext(fieldPath(fe), fe.Value())
	}
	return appErr
}

// fieldPath strips the root struct name from the namespace ("Config.processing.year")
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describeFieldError(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required", "required_if", "required_unless":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be >= %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be <= %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be greater than %s", field, snakeCase(fe.Param()))
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}

// snakeCase turns a Go field name into its yaml key, "PlausibleMin" -> "plausible_min"
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if 'A' <= r && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Paths returns the file layout for the configured data directory and year
func (c *Config) Paths() *Paths {
	return NewPaths(c.Processing.DataDir, c.Processing.Year)
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Processing: ProcessingConfig{
			DataDir:        DefaultDataDir,
			Interactive:    true,
			PlausibleMin:   DefaultPlausibleMin,
			PlausibleMax:   DefaultPlausibleMax,
			ArchiveWorkers: DefaultArchiveWorkers,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/emission-factors.log",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Tracing: TracingConfig{
			Enabled:     false,
			Exporter:    "stdout",
			ServiceName: "eu-emission-factors",
		},
		Output: OutputConfig{
			Workbook: true,
			PDF:      false,
		},
		Store: StoreConfig{
			Enabled: false,
			Timeout: DefaultStoreTimeout,
		},
	}
}
