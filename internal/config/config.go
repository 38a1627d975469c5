package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/tax"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Rent      RentConfig      `yaml:"rent"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// RentConfig contains rent order defaults and numbering settings
type RentConfig struct {
	DefaultDurationUnit  string `yaml:"default_duration_unit"`  // "day", "month" or "year"
	DefaultInvoicePeriod string `yaml:"default_invoice_period"` // "once" or "monthly"
	RefPrefix            string `yaml:"ref_prefix"`
	RefWidth             int    `yaml:"ref_width"`
	// FiscalPositions maps a position name to its tax substitutions:
	// original tax name -> replacement taxes.
	FiscalPositions map[string]map[string][]TaxConfig `yaml:"fiscal_positions"`
}

// TaxConfig describes one replacement tax inside a fiscal position mapping
type TaxConfig struct {
	Name     string  `yaml:"name"`
	Rate     float64 `yaml:"rate"`
	Included bool    `yaml:"included"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	GenerateInvoices string `yaml:"generate_invoices"`
	CompleteOrders   string `yaml:"complete_orders"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Rent defaults
	if c.Rent.DefaultDurationUnit == "" {
		c.Rent.DefaultDurationUnit = string(domain.UnitDay)
	}
	if !domain.DurationUnit(c.Rent.DefaultDurationUnit).Valid() {
		return fmt.Errorf("invalid default duration unit: %s", c.Rent.DefaultDurationUnit)
	}
	if c.Rent.DefaultInvoicePeriod == "" {
		c.Rent.DefaultInvoicePeriod = "once"
	}
	if c.Rent.RefPrefix == "" {
		c.Rent.RefPrefix = "RO"
	}
	if c.Rent.RefWidth <= 0 {
		c.Rent.RefWidth = 6
	}

	// Scheduler defaults
	if c.Scheduler.GenerateInvoices == "" {
		c.Scheduler.GenerateInvoices = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.CompleteOrders == "" {
		c.Scheduler.CompleteOrders = "0 0 3 * * *" // 3 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// FiscalPositions converts the configured tax substitutions into the form
// the pricing engine consumes.
func (c *Config) FiscalPositions() map[string]*tax.FiscalPosition {
	positions := make(map[string]*tax.FiscalPosition, len(c.Rent.FiscalPositions))
	for name, mappings := range c.Rent.FiscalPositions {
		fp := &tax.FiscalPosition{
			Name:     name,
			Mappings: make(map[string][]domain.Tax, len(mappings)),
		}
		for from, taxes := range mappings {
			replacement := make([]domain.Tax, 0, len(taxes))
			for _, t := range taxes {
				replacement = append(replacement, domain.Tax{Name: t.Name, Rate: t.Rate, Included: t.Included})
			}
			fp.Mappings[from] = replacement
		}
		positions[name] = fp
	}
	return positions
}
