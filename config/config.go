package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// StorageType defines the type of storage backend to use.
type StorageType string

const (
	StorageTypeMongoDB StorageType = "mongodb"
	StorageTypeMemory  StorageType = "memory"
)

// ServerConfig holds all configuration for the server and the CLI.
// Tags use mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort       string      `mapstructure:"HTTP_PORT"`
	StorageBackend StorageType `mapstructure:"STORAGE_BACKEND"`
	MongoURI       string      `mapstructure:"MONGO_URI"`
	MongoDBName    string      `mapstructure:"MONGO_DB_NAME"`
	LogLevel       string      `mapstructure:"LOG_LEVEL"`
	LogPretty      bool        `mapstructure:"LOG_PRETTY"`

	OtelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	TracingEnabled  bool   `mapstructure:"TRACING_ENABLED"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Game server status
	MCServerAddr    string        `mapstructure:"MC_SERVER_ADDR"`
	MCStatusTimeout time.Duration `mapstructure:"MC_STATUS_TIMEOUT"`

	// Identity provider
	MojangProfileURL string        `mapstructure:"MOJANG_PROFILE_URL"`
	MojangSessionURL string        `mapstructure:"MOJANG_SESSION_URL"`
	MojangTimeout    time.Duration `mapstructure:"MOJANG_TIMEOUT"`
	IdentityCacheTTL time.Duration `mapstructure:"IDENTITY_CACHE_TTL"`
	RedisURL         string        `mapstructure:"REDIS_URL"`

	BootstrapAdmin   string `mapstructure:"BOOTSTRAP_ADMIN"`
	CORSAllowOrigins string `mapstructure:"CORS_ALLOW_ORIGINS"`
}

// AllowedOrigins splits CORSAllowOrigins on commas.
func (c *ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Validate checks the settings the server cannot start without.
func (c *ServerConfig) Validate() error {
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be set to at least 16 characters")
	}
	switch c.StorageBackend {
	case StorageTypeMongoDB:
		if c.MongoURI == "" || c.MongoDBName == "" {
			return errors.New("MONGO_URI and MONGO_DB_NAME are required for the mongodb storage backend")
		}
	case StorageTypeMemory:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be %q or %q", c.StorageBackend, StorageTypeMongoDB, StorageTypeMemory)
	}
	if c.MCServerAddr == "" {
		return errors.New("MC_SERVER_ADDR must be set")
	}
	return nil
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	// Set configuration file name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Set search paths for the configuration file
	v.AddConfigPath("/etc/mcportal/")
	v.AddConfigPath("$HOME/.mcportal")
	v.AddConfigPath(".")

	// Read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("STORAGE_BACKEND", string(StorageTypeMongoDB))
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB_NAME", "mcportal")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("OTEL_SERVICE_NAME", "mcportal")
	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("MC_SERVER_ADDR", "91.197.6.209:25598")
	v.SetDefault("MC_STATUS_TIMEOUT", "5s")
	v.SetDefault("MOJANG_PROFILE_URL", "https://api.mojang.com")
	v.SetDefault("MOJANG_SESSION_URL", "https://sessionserver.mojang.com")
	v.SetDefault("MOJANG_TIMEOUT", "10s")
	v.SetDefault("IDENTITY_CACHE_TTL", "5m")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("BOOTSTRAP_ADMIN", "")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")

	// Attempt to read the config file
	if err := v.ReadInConfig(); err != nil {
		// ConfigFileNotFoundError is acceptable, means we use defaults/env vars.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.StorageBackend = StorageType(strings.ToLower(string(cfg.StorageBackend)))

	return &cfg, nil
}
