package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Dashboard DashboardConfig `yaml:"dashboard" envconfig:"DASHBOARD"`
}

// ServerConfig contains HTTP server configuration. An empty Host binds
// to all interfaces.
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" validate:"gt=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" validate:"gt=0"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" validate:"min=1,dive,required"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gt=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gt=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PathsConfig contains file system paths configuration. Relative paths
// are resolved against the executable directory, never the working
// directory, so binaries behave the same wherever they are launched from.
type PathsConfig struct {
	ExecutableDir string `yaml:"executable_dir" envconfig:"EXECUTABLE_DIR"`
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ReportsDir    string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// DashboardConfig describes the dashboards the server exposes: which
// workbook backs each one, which month column the performance view reads,
// and the label lists that drive filtering and sorting.
type DashboardConfig struct {
	ExpenseResource     string        `yaml:"expense_resource" envconfig:"EXPENSE_RESOURCE" validate:"required"`
	PerformanceResource string        `yaml:"performance_resource" envconfig:"PERFORMANCE_RESOURCE" validate:"required"`
	MonthColumn         string        `yaml:"month_column" envconfig:"MONTH_COLUMN" validate:"required"`
	CategoryLabels      []string      `yaml:"category_labels" envconfig:"CATEGORY_LABELS" validate:"min=1,dive,required"`
	AlertPriorities     []string      `yaml:"alert_priorities" envconfig:"ALERT_PRIORITIES" validate:"min=1,dive,required"`
	UpstreamURL         string        `yaml:"upstream_url" envconfig:"UPSTREAM_URL" validate:"omitempty,url"`
	FetchTimeout        time.Duration `yaml:"fetch_timeout" envconfig:"FETCH_TIMEOUT" validate:"gt=0"`
}

var validate = validator.New()

// Load builds the configuration in three layers: built-in defaults, then
// an optional YAML file, then environment variables with the FINBOARD
// prefix. Later layers win. The result is validated and its paths
// resolved before it is returned.
func Load() (*Config, error) {
	cfg := Default()

	if configFile := findConfigFile(); configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("FINBOARD", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays values from a YAML file onto cfg. Fields absent
// from the file keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filePath, err)
	}

	return nil
}

// Validate checks the configuration against the struct rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// resolvePaths converts the configured directories to absolute paths
// rooted at the executable directory.
func (c *Config) resolvePaths() error {
	paths, err := ResolvePaths(c.Paths)
	if err != nil {
		return err
	}
	paths.LogPathResolution()

	c.Paths.ExecutableDir = paths.ExecutableDir
	c.Paths.DataDir = paths.DataDir
	c.Paths.ReportsDir = paths.ReportsDir
	c.Paths.LogsDir = paths.LogsDir

	return nil
}

// EnsurePaths creates the configured directories if missing.
func (c *Config) EnsurePaths() error {
	paths := &Paths{
		ExecutableDir: c.Paths.ExecutableDir,
		DataDir:       c.Paths.DataDir,
		ReportsDir:    c.Paths.ReportsDir,
		LogsDir:       c.Paths.LogsDir,
	}
	return paths.EnsureDirectories()
}

// GetDataDir returns the resolved workbook directory.
func (c *Config) GetDataDir() string { return c.Paths.DataDir }

// GetReportsDir returns the resolved report output directory.
func (c *Config) GetReportsDir() string { return c.Paths.ReportsDir }

// GetLogsDir returns the resolved log directory.
func (c *Config) GetLogsDir() string { return c.Paths.LogsDir }

// findConfigFile returns the path to the config file
func findConfigFile() string {
	locations := []string{
		"finboard.yaml",
		"configs/finboard.yaml",
		"../configs/finboard.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:       DefaultLogLevel,
			Format:      DefaultLogFormat,
			Output:      "both",
			FilePath:    "logs/finboard.log",
			Development: false,
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ReportsDir: DefaultReportsDir,
			LogsDir:    DefaultLogsDir,
		},
		Dashboard: DashboardConfig{
			ExpenseResource:     DefaultExpenseResource,
			PerformanceResource: DefaultPerformanceResource,
			MonthColumn:         DefaultMonthColumn,
			CategoryLabels:      DefaultCategoryLabels(),
			AlertPriorities:     DefaultAlertPriorities(),
			FetchTimeout:        DefaultFetchTimeout,
		},
	}
}
