package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL     string        `envconfig:"DATABASE_URL"      required:"true"`
	DBMaxOpenConns  int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	HTTPPort        string        `envconfig:"HTTP_PORT"         default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL"         default:"info"`
	JWTSecret       string        `envconfig:"JWT_SECRET"`
	JWTTTL          time.Duration `envconfig:"JWT_TTL"           default:"24h"`
	UploadDir       string        `envconfig:"UPLOAD_DIR"        default:"./uploads"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES"  default:"5242880"`
	PriceTolerance  string        `envconfig:"PRICE_TOLERANCE"   default:"0.01"`
	StockWorkers    int           `envconfig:"STOCK_WORKERS"     default:"4"`
	AdminEmail      string        `envconfig:"ADMIN_EMAIL"`
	AdminPassword   string        `envconfig:"ADMIN_PASSWORD"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT"  default:"10s"`
}

// Tolerance returns PriceTolerance as a decimal. Load has already validated it.
func (c *Config) Tolerance() decimal.Decimal {
	return decimal.RequireFromString(c.PriceTolerance)
}

// RequireJWTSecret fails when no signing secret is configured. Only the API server issues tokens.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	return nil
}

var (
	config Config
	once   sync.Once
)

// Load reads the environment into a fresh Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration from environment variables: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must not be empty")
	}
	tol, err := decimal.NewFromString(cfg.PriceTolerance)
	if err != nil || tol.IsNegative() {
		return nil, fmt.Errorf("PRICE_TOLERANCE must be a non-negative decimal, got %q", cfg.PriceTolerance)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", cfg.MaxUploadBytes)
	}
	if cfg.StockWorkers <= 0 {
		cfg.StockWorkers = 1
	}
	return &cfg, nil
}

// LoadConfig loads .env (if present) and the environment once per process.
func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		cfg, err := Load()
		if err != nil {
			logger.Fatalf("Configuration error: %v", err)
		}
		config = *cfg

		logger.Infof("Configuration loaded: HTTP Port=%s, LogLevel=%s, UploadDir=%s", config.HTTPPort, config.LogLevel, config.UploadDir)
	})
	return &config
}
