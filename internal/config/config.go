package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	MongoDB  MongoDBConfig
	JWT      JWTConfig
	Lottery  LotteryConfig
	Ledger   LedgerConfig
	LogLevel string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	AllowedHosts []string
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// LotteryConfig holds the settlement core's tunables
type LotteryConfig struct {
	FeeRateBps        int64
	RevealGracePeriod time.Duration
	ClaimGracePeriod  time.Duration
	MaxTicketsPerRoom int64
}

// LedgerConfig holds the boundary token ledger configuration
type LedgerConfig struct {
	BaseURL    string
	APIKey     string
	MockLedger bool
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "lottoroom")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Lottery.FeeRateBps", 1000)
	viper.SetDefault("Lottery.RevealGracePeriod", "24h")
	viper.SetDefault("Lottery.ClaimGracePeriod", "72h")
	viper.SetDefault("Lottery.MaxTicketsPerRoom", 0)
	viper.SetDefault("Ledger.MockLedger", true)
	viper.SetDefault("LogLevel", "info")
}
