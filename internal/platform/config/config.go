// Package config loads the runtime settings of the application from the
// environment, optionally seeded by .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPort            = "PORT"
	envHost            = "HOST"
	envAppName         = "APP_NAME"
	envAllowedOrigins  = "APP_ALLOWED_ORIGINS"
	envDocsPath        = "APP_DOCS_PATH"
	envShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"

	defaultPort            = "8080"
	defaultAppName         = "Hustly"
	defaultDocsPath        = "/api-docs"
	defaultShutdownTimeout = 10 * time.Second
)

// envFileNames are loaded in order; godotenv never overrides a variable that is
// already set, so .env.local wins over .env and the real environment wins over both.
var envFileNames = []string{".env.local", ".env"}

// ErrInvalid is wrapped by every validation failure returned from Load.
var ErrInvalid = errors.New("invalid configuration")

// Config is the host-supplied context the application boots with.
type Config struct {
	Name            string
	Host            string
	Port            string
	AllowedOrigins  []string
	DocsPath        string
	ShutdownTimeout time.Duration
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Name:            defaultAppName,
		Port:            defaultPort,
		AllowedOrigins:  []string{"*"},
		DocsPath:        defaultDocsPath,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// Load reads .env files from dir (best effort) and then the environment.
// An empty dir means the working directory.
func Load(dir string) (Config, error) {
	loadEnvFiles(dir)
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	cfg := Default()
	if v := strings.TrimSpace(os.Getenv(envAppName)); v != "" {
		cfg.Name = v
	}
	cfg.Host = strings.TrimSpace(os.Getenv(envHost))
	if v := strings.TrimSpace(os.Getenv(envPort)); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv(envAllowedOrigins); strings.TrimSpace(v) != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv(envDocsPath)); v != "" {
		cfg.DocsPath = v
	}
	if v := strings.TrimSpace(os.Getenv(envShutdownTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalid, envShutdownTimeout, err)
		}
		cfg.ShutdownTimeout = d
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("%w: port is empty", ErrInvalid)
	}
	for _, r := range c.Port {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: port %q is not numeric", ErrInvalid, c.Port)
		}
	}
	if c.DocsPath != "" && !strings.HasPrefix(c.DocsPath, "/") {
		return fmt.Errorf("%w: docs path %q must start with /", ErrInvalid, c.DocsPath)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown timeout must be positive", ErrInvalid)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadEnvFiles(dir string) {
	var files []string
	for _, name := range envFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			files = append(files, candidate)
		}
	}
	if len(files) == 0 {
		return
	}
	_ = godotenv.Load(files...)
}
