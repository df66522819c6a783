package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service
type Config struct {
	Server   ServerConfig
	Engine   EngineConfig
	API      APIConfig
	Logger   LoggerConfig
	Listing  ListingConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Feed     FeedConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// EngineConfig holds matching engine configuration
type EngineConfig struct {
	TradeHistorySize int
	TradeLogPath     string
	EventLogPath     string
	ReplayOnStart    bool
}

// APIConfig holds API-specific limits
type APIConfig struct {
	DefaultTradeLimit int
	MaxTradeLimit     int
	DefaultBookDepth  int
	MaxBookDepth      int
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level string // DEBUG, INFO, WARN, ERROR
}

// ListingConfig identifies the card listing this engine instance serves
type ListingConfig struct {
	SpecID         uint64
	Grade          string
	GradingCompany string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Enabled         bool
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	SSLMode         string
}

// RedisConfig holds Redis cache configuration
type RedisConfig struct {
	Enabled      bool
	Host         string
	Port         int
	Password     string
	DB           int
	MaxRetries   int
	PoolSize     int
	MinIdleConns int
	TLSEnabled   bool
	OrderTTL     time.Duration
	MaxTrades    int
}

// FeedConfig holds websocket trade feed configuration
type FeedConfig struct {
	Enabled          bool
	ClientBufferSize int
}

var instance *Config

// Load loads configuration from .env file (if present) and environment
// variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Engine: EngineConfig{
			TradeHistorySize: getEnvInt("TRADE_HISTORY_SIZE", 1000),
			TradeLogPath:     getEnv("TRADE_LOG_PATH", "trades.log"),
			EventLogPath:     getEnv("EVENT_LOG_PATH", "orders.log"),
			ReplayOnStart:    getEnvBool("REPLAY_ON_START", true),
		},
		API: APIConfig{
			DefaultTradeLimit: getEnvInt("DEFAULT_TRADE_LIMIT", 20),
			MaxTradeLimit:     getEnvInt("MAX_TRADE_LIMIT", 1000),
			DefaultBookDepth:  getEnvInt("DEFAULT_BOOK_DEPTH", 10),
			MaxBookDepth:      getEnvInt("MAX_BOOK_DEPTH", 100),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
		Listing: ListingConfig{
			SpecID:         uint64(getEnvInt("LISTING_SPEC_ID", 0)),
			Grade:          getEnv("LISTING_GRADE", ""),
			GradingCompany: getEnv("LISTING_GRADING_COMPANY", ""),
		},
		Database: DatabaseConfig{
			Enabled:         getEnvBool("DATABASE_ENABLED", false),
			Host:            getEnv("DATABASE_HOST", "localhost"),
			Port:            getEnvInt("DATABASE_PORT", 5432),
			Name:            getEnv("DATABASE_NAME", "slabmarket"),
			User:            getEnv("DATABASE_USER", "postgres"),
			Password:        getEnv("DATABASE_PASSWORD", ""),
			MaxConns:        getEnvInt("DATABASE_MAX_CONNECTIONS", 20),
			MinConns:        getEnvInt("DATABASE_MIN_CONNECTIONS", 2),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			SSLMode:         getEnv("DATABASE_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:      getEnvBool("REDIS_ENABLED", false),
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			MaxRetries:   getEnvInt("REDIS_MAX_RETRIES", 3),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			TLSEnabled:   getEnvBool("REDIS_TLS_ENABLED", false),
			OrderTTL:     getEnvDuration("REDIS_ORDER_TTL", 24*time.Hour),
			MaxTrades:    getEnvInt("REDIS_MAX_TRADES", 10000),
		},
		Feed: FeedConfig{
			Enabled:          getEnvBool("FEED_ENABLED", true),
			ClientBufferSize: getEnvInt("FEED_CLIENT_BUFFER", 64),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	instance = cfg
	return cfg, nil
}

// Get returns the singleton config instance
func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.Engine.TradeHistorySize < 1 {
		return fmt.Errorf("TRADE_HISTORY_SIZE must be > 0")
	}
	if c.Engine.TradeLogPath == "" {
		return fmt.Errorf("TRADE_LOG_PATH cannot be empty")
	}
	if c.Engine.EventLogPath == "" {
		return fmt.Errorf("EVENT_LOG_PATH cannot be empty")
	}

	if c.API.DefaultTradeLimit < 1 {
		return fmt.Errorf("DEFAULT_TRADE_LIMIT must be > 0")
	}
	if c.API.MaxTradeLimit < c.API.DefaultTradeLimit {
		return fmt.Errorf("MAX_TRADE_LIMIT must be >= DEFAULT_TRADE_LIMIT")
	}
	if c.API.DefaultBookDepth < 1 {
		return fmt.Errorf("DEFAULT_BOOK_DEPTH must be > 0")
	}
	if c.API.MaxBookDepth < c.API.DefaultBookDepth {
		return fmt.Errorf("MAX_BOOK_DEPTH must be >= DEFAULT_BOOK_DEPTH")
	}

	validLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: DEBUG, INFO, WARN, ERROR")
	}

	if c.Feed.ClientBufferSize < 1 {
		return fmt.Errorf("FEED_CLIENT_BUFFER must be > 0")
	}

	return nil
}

// Helper functions to read environment variables with defaults

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
