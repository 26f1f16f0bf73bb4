package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	sslModeDisable = "disable"
	sslModeRequire = "require"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	PasswordSchemePlain  = "plain"
	PasswordSchemeBcrypt = "bcrypt"

	// DefaultEmailPattern only admits gmail addresses with at least four characters before the @.
	DefaultEmailPattern = `^.{4,}@gmail\.com$`
)

var Module = fx.Provide(NewConfig)

type (
	Config struct {
		Host     string `mapstructure:"HOST"`
		Port     string `mapstructure:"PORT"`
		GRPCPort string `mapstructure:"GRPC_PORT"`

		DBDriver   string `mapstructure:"DB_DRIVER"`
		DBHost     string `mapstructure:"DB_HOST"`
		DBPort     string `mapstructure:"DB_PORT"`
		DBUser     string `mapstructure:"DB_USER"`
		DBPassword string `mapstructure:"DB_PASSWORD"`
		DBName     string `mapstructure:"DB_NAME"`
		DBSSLMode  string `mapstructure:"DB_SSL_MODE"`
		DBPath     string `mapstructure:"DB_PATH"`

		CatalogURL      string        `mapstructure:"CATALOG_URL"`
		CatalogAPIKey   string        `mapstructure:"CATALOG_API_KEY"`
		CatalogLanguage string        `mapstructure:"CATALOG_LANGUAGE"`
		CatalogTimeout  time.Duration `mapstructure:"CATALOG_TIMEOUT"`

		SearchRateLimit float64 `mapstructure:"SEARCH_RATE_LIMIT"`
		SearchRateBurst int     `mapstructure:"SEARCH_RATE_BURST"`

		EmailPattern   string `mapstructure:"EMAIL_PATTERN"`
		PasswordScheme string `mapstructure:"PASSWORD_SCHEME"`
		StaticDir      string `mapstructure:"STATIC_DIR"`

		LogLevel       string `mapstructure:"LOG_LEVEL"`
		LogDevelopment bool   `mapstructure:"LOG_DEVELOPMENT"`
	}
)

var defaults = map[string]interface{}{
	"HOST":              "0.0.0.0",
	"PORT":              "3000",
	"GRPC_PORT":         "9000",
	"DB_DRIVER":         DriverPostgres,
	"DB_HOST":           "0.0.0.0",
	"DB_PORT":           "5432",
	"DB_USER":           "user",
	"DB_PASSWORD":       "password",
	"DB_NAME":           "db",
	"DB_SSL_MODE":       sslModeDisable,
	"DB_PATH":           "movielist.db",
	"CATALOG_URL":       "https://api.themoviedb.org/3",
	"CATALOG_API_KEY":   "",
	"CATALOG_LANGUAGE":  "pt-BR",
	"CATALOG_TIMEOUT":   "10s",
	"SEARCH_RATE_LIMIT": 5,
	"SEARCH_RATE_BURST": 10,
	"EMAIL_PATTERN":     DefaultEmailPattern,
	"PASSWORD_SCHEME":   PasswordSchemePlain,
	"STATIC_DIR":        "",
	"LOG_LEVEL":         "info",
	"LOG_DEVELOPMENT":   false,
}

func NewConfig() (*Config, error) {
	// .env is optional, real environment variables win over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	viper.SetEnvPrefix("MOVIELIST")

	for key, value := range defaults {
		viper.SetDefault(key, value)
		if err := viper.BindEnv(key); err != nil {
			return nil, err
		}
	}

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// DSN builds the connection string understood by the configured gorm driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	case DriverSQLite:
		return c.DBPath
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
	}
}

func (c *Config) HTTPAddr() string {
	return c.Host + ":" + c.Port
}

func (c *Config) GRPCAddr() string {
	return c.Host + ":" + c.GRPCPort
}

func validate(cfg *Config) error {
	if !oneOf(cfg.DBSSLMode, sslModeDisable, sslModeRequire) {
		return errors.New(fmt.Sprintf("DB SSL mode is invalid: %s", cfg.DBSSLMode))
	}
	if !oneOf(cfg.DBDriver, DriverPostgres, DriverMySQL, DriverSQLite) {
		return errors.New(fmt.Sprintf("DB driver is invalid: %s", cfg.DBDriver))
	}
	if !oneOf(cfg.PasswordScheme, PasswordSchemePlain, PasswordSchemeBcrypt) {
		return errors.New(fmt.Sprintf("password scheme is invalid: %s", cfg.PasswordScheme))
	}
	if !oneOf(cfg.LogLevel, "debug", "info", "warn", "error") {
		return errors.New(fmt.Sprintf("log level is invalid: %s", cfg.LogLevel))
	}
	if _, err := regexp.Compile(cfg.EmailPattern); err != nil {
		return errors.Wrap(err, "email pattern")
	}
	if cfg.CatalogTimeout <= 0 {
		return errors.New(fmt.Sprintf("catalog timeout must be positive: %s", cfg.CatalogTimeout))
	}
	if cfg.SearchRateLimit <= 0 || cfg.SearchRateBurst <= 0 {
		return errors.New("search rate limit and burst must be positive")
	}
	return nil
}

func oneOf(value string, valid ...string) bool {
	for _, v := range valid {
		if value == v {
			return true
		}
	}
	return false
}
