package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env             string
	Port            int
	LogLevel        string
	LogFormat       string
	DBType          string
	DBDSN           string
	DataFile        string
	FlushDelay      time.Duration
	StaticDir       string
	IndexFile       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the configuration once per process. A .env file in the working
// directory is applied first; variables already set in the environment win.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		c, err := FromEnv()
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

func FromEnv() (*Config, error) {
	c := &Config{
		Env:       getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
		DBType:    getEnv("STORAGE_BACKEND", "file"),
		DBDSN:     getEnv("POSTGRES_DSN", ""),
		DataFile:  getEnv("DATA_FILE", "data/data.json"),
		StaticDir: getEnv("STATIC_DIR", "public"),
		IndexFile: getEnv("INDEX_FILE", "views/index.html"),
	}

	var err error
	if c.Port, err = strconv.Atoi(getEnv("PORT", "3000")); err != nil {
		return nil, fmt.Errorf("PORT: %w", err)
	}
	durations := []struct {
		key  string
		def  string
		dest *time.Duration
	}{
		{"FLUSH_DELAY", "0s", &c.FlushDelay},
		{"READ_TIMEOUT", "10s", &c.ReadTimeout},
		{"WRITE_TIMEOUT", "10s", &c.WriteTimeout},
		{"SHUTDOWN_TIMEOUT", "5s", &c.ShutdownTimeout},
	}
	for _, d := range durations {
		if *d.dest, err = time.ParseDuration(getEnv(d.key, d.def)); err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.DBType != "file" && c.DBType != "postgres" {
		return errors.New("STORAGE_BACKEND must be one of: file, postgres")
	}
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && c.DataFile == "" {
		return errors.New("File storage requires DATA_FILE to be set")
	}
	if c.FlushDelay < 0 {
		return errors.New("FLUSH_DELAY must not be negative")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return errors.New("PORT must be between 1 and 65535")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
