/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package config loads server configuration from the environment, with optional .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/suparena/eventgraph/datastore/ddb"
)

// Store backends.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendDynamoDB = "dynamodb"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Mongo    MongoConfig
	DynamoDB DynamoDBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	I18n     I18nConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*"
}

// StoreConfig selects the document store.
type StoreConfig struct {
	Backend string
}

// MongoConfig holds MongoDB connection settings.
type MongoConfig struct {
	URI      string
	Database string
}

// DynamoDBConfig holds the DynamoDB table and client settings.
type DynamoDBConfig struct {
	Table           string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // local DynamoDB, empty for AWS
}

// ClientConfig converts c for ddb.NewDynamoDBClient.
func (c DynamoDBConfig) ClientConfig() ddb.ClientConfig {
	return ddb.ClientConfig{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		Region:          c.Region,
		Endpoint:        c.Endpoint,
	}
}

// RedisConfig holds the transaction log Redis settings. An empty Addr keeps the log in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Capacity int
}

// JWTConfig holds token validation settings.
type JWTConfig struct {
	Secret      string
	ExpireHours int
}

// I18nConfig holds message catalog settings.
type I18nConfig struct {
	DefaultLanguage string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level zapcore.Level
}

// Load reads configuration from the environment after loading the given .env files, or .env
// when none are given. Missing files are ignored; variables already set take precedence.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}

	level, err := zapcore.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Store: StoreConfig{
			Backend: strings.ToLower(getEnv("STORE_BACKEND", BackendMemory)),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "eventgraph"),
		},
		DynamoDB: DynamoDBConfig{
			Table:           getEnv("AWS_DDB_TABLE", "eventgraph"),
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_DDB_ENDPOINT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Key:      getEnv("TXLOG_KEY", "eventgraph:txlog"),
			Capacity: getEnvInt("TXLOG_CAPACITY", 1000),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", ""),
			ExpireHours: getEnvInt("JWT_EXPIRE_HOURS", 24),
		},
		I18n: I18nConfig{
			DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "en"),
		},
		Log: LogConfig{Level: level},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendMongo, BackendDynamoDB:
	default:
		return fmt.Errorf("STORE_BACKEND: unknown backend %q", c.Store.Backend)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Redis.Capacity <= 0 {
		return fmt.Errorf("TXLOG_CAPACITY must be positive, got %d", c.Redis.Capacity)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
