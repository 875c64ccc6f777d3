package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arnavshah/rota-api-go/pkg/scheduler"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrMissingSecret is returned by Load when a signing secret is unset
var ErrMissingSecret = errors.New("missing signing secret")

// Config is the server's runtime configuration
type Config struct {
	Port            string
	GinMode         string
	DatabaseURL     string
	DataPath        string
	JWTSecret       string
	APIMasterSecret string
	AdminUsername   string
	AdminPassword   string
	LogLevel        string
	ProfilePath     string

	Scheduling scheduler.Config
}

// Profile is the on-disk form of the scheduling constraints
type Profile struct {
	Days               []string      `yaml:"days"`
	Shifts             []string      `yaml:"shifts"`
	Quota              int           `yaml:"quota"`
	MaxDaysPerEmployee int           `yaml:"max_days_per_employee"`
	MaxAttempts        int           `yaml:"max_attempts"`
	Timeout            time.Duration `yaml:"timeout"`
	Workers            int           `yaml:"workers"`
}

// LoadEnv loads the first .env found in the working directory or its parents.
func LoadEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the environment (after LoadEnv) and the optional scheduling profile
func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{
		Port:            getenv("PORT", "8000"),
		GinMode:         os.Getenv("GIN_MODE"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        getenv("DATA_PATH", "rota.db"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		APIMasterSecret: os.Getenv("API_MASTER_SECRET"),
		AdminUsername:   getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getenv("ADMIN_PASSWORD", "admin123"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		ProfilePath:     os.Getenv("SCHEDULE_PROFILE"),
		Scheduling:      scheduler.DefaultConfig(),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("%w: JWT_SECRET is empty", ErrMissingSecret)
	}
	if cfg.APIMasterSecret == "" {
		return nil, fmt.Errorf("%w: API_MASTER_SECRET is empty", ErrMissingSecret)
	}

	if cfg.ProfilePath != "" {
		sc, err := LoadProfile(cfg.ProfilePath)
		if err != nil {
			return nil, err
		}
		cfg.Scheduling = sc
	}
	return cfg, nil
}

// LoadProfile reads a YAML profile; missing keys keep the reference defaults
func LoadProfile(path string) (scheduler.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scheduler.Config{}, fmt.Errorf("reading profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes a YAML profile document
func ParseProfile(data []byte) (scheduler.Config, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return scheduler.Config{}, fmt.Errorf("parsing profile: %w", err)
	}

	cfg := scheduler.DefaultConfig()
	if len(p.Days) > 0 {
		cfg.Days = p.Days
	}
	if len(p.Shifts) > 0 {
		cfg.Shifts = p.Shifts
	}
	if p.Quota != 0 {
		cfg.Quota = p.Quota
	}
	if p.MaxDaysPerEmployee != 0 {
		cfg.MaxDaysPerEmployee = p.MaxDaysPerEmployee
	}
	if p.MaxAttempts != 0 {
		cfg.MaxAttempts = p.MaxAttempts
	}
	if p.Timeout != 0 {
		cfg.Timeout = p.Timeout
	}
	if p.Workers != 0 {
		cfg.Workers = p.Workers
	}
	return cfg, nil
}

// NewLogger builds a logrus logger at the configured level
func (c *Config) NewLogger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	log := logrus.New()
	log.SetLevel(level)
	return log, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
