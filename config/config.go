package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	GinMode        string        `mapstructure:"GIN_MODE"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	DBDriver       string        `mapstructure:"DB_DRIVER"`
	DBDSN          string        `mapstructure:"DB_DSN"`
	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	JWTTTL         time.Duration `mapstructure:"JWT_TTL"`
	AdminUsername  string        `mapstructure:"ADMIN_USERNAME"`
	AdminPassword  string        `mapstructure:"ADMIN_PASSWORD"`
	CORSOrigin     string        `mapstructure:"CORS_ORIGIN"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]interface{}{
	"PORT":             "8080",
	"GIN_MODE":         "debug",
	"LOG_LEVEL":        "info",
	"DB_DRIVER":        "sqlite",
	"DB_DSN":           "pos.db",
	"JWT_TTL":          "24h",
	"ADMIN_USERNAME":   "admin",
	"CORS_ORIGIN":      "*",
	"RATE_LIMIT_RPS":   20.0,
	"RATE_LIMIT_BURST": 40,
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	// missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	// AutomaticEnv only resolves keys viper already knows about
	for _, key := range []string{"JWT_SECRET", "ADMIN_PASSWORD"} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.GinMode == "release" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in release mode")
	}
	return nil
}

// InitDB opens the configured database. Timestamps are written in UTC so that
// range queries compare consistently on every driver.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.DBDriver) {
	case "mysql":
		dialector = mysql.Open(cfg.DBDSN)
	case "postgres":
		dialector = postgres.Open(cfg.DBDSN)
	default:
		dialector = sqlite.Open(cfg.DBDSN)
	}

	logLevel := logger.Warn
	if cfg.GinMode == "release" {
		logLevel = logger.Error
	}

	return gorm.Open(dialector, GormConfig(logLevel))
}

// GormConfig is shared by the server and the tests.
func GormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}
