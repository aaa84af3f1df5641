package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage backends for the autosaved paper
const (
	StorageFile   = "file"
	StorageMongo  = "mongo"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type StorageConfig struct {
	Backend string `yaml:"backend"` // file, mongo, redis or memory
	Key     string `yaml:"key"`     // fixed storage key of the paper
	File    string `yaml:"file"`    // path used by the file backend
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type RedisConfig struct {
	Addr string `yaml:"addr"`
}

type ConfirmConfig struct {
	Store string        `yaml:"store"` // memory or redis
	TTL   time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

type AuthConfig struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	JWTSecret string `yaml:"-"` // env only
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowedOrigins"`
	AllowedMethods string `yaml:"allowedMethods"`
	AllowedHeaders string `yaml:"allowedHeaders"`
}

// Config holds everything the server and CLI need
type Config struct {
	HTTPPort     string        `yaml:"httpPort"`
	IDScheme     string        `yaml:"idScheme"`
	StrictImport bool          `yaml:"strictImport"`
	Storage      StorageConfig `yaml:"storage"`
	Mongo        MongoConfig   `yaml:"mongo"`
	Redis        RedisConfig   `yaml:"redis"`
	Confirm      ConfirmConfig `yaml:"confirm"`
	Log          LogConfig     `yaml:"log"`
	Auth         AuthConfig    `yaml:"auth"`
	CORS         CORSConfig    `yaml:"cors"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		HTTPPort:     "8080",
		IDScheme:     "uuid",
		StrictImport: true,
		Storage: StorageConfig{
			Backend: StorageFile,
			Key:     "paper-builder",
			File:    "data/paper.json",
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "paperbuilder",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Confirm: ConfirmConfig{
			Store: "memory",
			TTL:   10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Auth: AuthConfig{
			Username:  "admin",
			Password:  "password123",
			JWTSecret: "super-secret-key-change-in-production",
		},
		CORS: CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
			AllowedHeaders: "Content-Type, Authorization",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when empty), then environment variables. A .env file in the working
// directory is read first and never overrides variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv("PAPER_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HTTPPort = getEnv("PORT", c.HTTPPort)
	c.IDScheme = getEnv("ID_SCHEME", c.IDScheme)
	c.StrictImport = getEnvBool("STRICT_IMPORT", c.StrictImport)

	c.Storage.Backend = getEnv("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.Key = getEnv("STORAGE_KEY", c.Storage.Key)
	c.Storage.File = getEnv("PAPER_FILE", c.Storage.File)

	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DB", c.Mongo.Database)

	c.Redis.Addr = getEnv("REDIS_URI", c.Redis.Addr)
	// Remove redis:// prefix if present
	c.Redis.Addr = strings.TrimPrefix(c.Redis.Addr, "redis://")

	c.Confirm.Store = getEnv("CONFIRM_STORE", c.Confirm.Store)
	c.Confirm.TTL = getEnvDuration("CONFIRM_TTL", c.Confirm.TTL)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Auth.Username = getEnv("AUTHOR_USERNAME", c.Auth.Username)
	c.Auth.Password = getEnv("AUTHOR_PASSWORD", c.Auth.Password)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.CORS.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.CORS.AllowedOrigins)
	c.CORS.AllowedMethods = getEnv("CORS_ALLOWED_METHODS", c.CORS.AllowedMethods)
	c.CORS.AllowedHeaders = getEnv("CORS_ALLOWED_HEADERS", c.CORS.AllowedHeaders)
}

// Validate rejects unknown backend names
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageFile, StorageMongo, StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Confirm.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown confirm store %q", c.Confirm.Store)
	}
	if c.Storage.Key == "" {
		return errors.New("storage key must not be empty")
	}
	return nil
}

// NeedsRedis reports whether any configured component talks to Redis
func (c *Config) NeedsRedis() bool {
	return c.Storage.Backend == StorageRedis || c.Confirm.Store == "redis"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultVal
}
