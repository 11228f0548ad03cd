// Package config loads server configuration from an optional .env file, an
// optional YAML file, and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	GeneratorMock = "mock"
	GeneratorAPI  = "api"
)

type DBConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Name         string `yaml:"name"`
	SSLMode      string `yaml:"sslmode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// URL is the form golang-migrate expects.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type GeneratorConfig struct {
	Mode   string `yaml:"mode"`
	Model  string `yaml:"model"`
	APIKey string `yaml:"api_key"`
}

type Config struct {
	Port            string          `yaml:"port"`
	Env             string          `yaml:"env"`
	Store           string          `yaml:"store"`
	DB              DBConfig        `yaml:"db"`
	JWTSecret       string          `yaml:"jwt_secret"`
	TokenTTL        time.Duration   `yaml:"token_ttl"`
	CORSOrigins     []string        `yaml:"cors_origins"`
	AdminEmails     []string        `yaml:"admin_emails"`
	Generator       GeneratorConfig `yaml:"generator"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
}

func defaults() *Config {
	return &Config{
		Port:  "8080",
		Env:   "dev",
		Store: StorePostgres,
		DB: DBConfig{
			Host:         "localhost",
			Port:         "5432",
			User:         "quiz_user",
			Password:     "quiz_password",
			Name:         "quizdeck",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		TokenTTL:        72 * time.Hour,
		CORSOrigins:     []string{"*"},
		Generator:       GeneratorConfig{Mode: GeneratorMock, Model: "claude-sonnet-4-5"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load builds a Config. path may be empty, in which case CONFIG_FILE is consulted.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, using environment variables")
	}

	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.Env = getEnv("APP_ENV", c.Env)
	c.Store = getEnv("STORE", c.Store)

	c.DB.Host = getEnv("DB_HOST", c.DB.Host)
	c.DB.Port = getEnv("DB_PORT", c.DB.Port)
	c.DB.User = getEnv("DB_USER", c.DB.User)
	c.DB.Password = getEnv("DB_PASSWORD", c.DB.Password)
	c.DB.Name = getEnv("DB_NAME", c.DB.Name)
	c.DB.SSLMode = getEnv("DB_SSLMODE", c.DB.SSLMode)
	c.DB.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", c.DB.MaxOpenConns)
	c.DB.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", c.DB.MaxIdleConns)

	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.TokenTTL = getEnvDuration("TOKEN_TTL", c.TokenTTL)
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv("ADMIN_EMAILS"); ok {
		c.AdminEmails = splitList(v)
	}

	c.Generator.Mode = getEnv("GENERATOR_MODE", c.Generator.Mode)
	c.Generator.Model = getEnv("GENERATOR_MODEL", c.Generator.Model)
	c.Generator.APIKey = getEnv("ANTHROPIC_API_KEY", c.Generator.APIKey)

	c.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", c.ShutdownTimeout)
}

func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		errs = append(errs, fmt.Errorf("store must be %q or %q, got %q", StorePostgres, StoreMemory, c.Store))
	}
	if c.JWTSecret == "" && c.IsProd() {
		errs = append(errs, errors.New("jwt_secret is required in production"))
	}
	switch c.Generator.Mode {
	case GeneratorMock:
	case GeneratorAPI:
		if c.Generator.APIKey == "" {
			errs = append(errs, errors.New("generator api mode requires ANTHROPIC_API_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("generator mode must be %q or %q, got %q", GeneratorMock, GeneratorAPI, c.Generator.Mode))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
