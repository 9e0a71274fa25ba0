// ABOUTME: Runtime configuration from the environment and .env files
// ABOUTME: Selects the Google or local SQLite backend and the log level
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v6"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/harperreed/leadsheet/crm"
)

const (
	// AppName names the XDG config and data directories.
	AppName = "leadsheet"

	// LocalFolder is the folder id used by the local backend when none is set.
	LocalFolder = "local"
)

// Backend selects where the CRM document lives.
type Backend string

const (
	BackendAuto   Backend = "auto"
	BackendGoogle Backend = "google"
	BackendLocal  Backend = "local"
)

// Config holds every setting the CRM tools read.
type Config struct {
	CredentialsFile string  `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	FolderID        string  `env:"GOOGLE_DRIVE_FOLDER_ID"`
	Subject         string  `env:"GOOGLE_IMPERSONATE_USER"`
	DocumentName    string  `env:"CRM_DOCUMENT_NAME" envDefault:"リード管理CRM"`
	Backend         Backend `env:"CRM_BACKEND" envDefault:"auto"`
	LocalDB         string  `env:"CRM_LOCAL_DB"`
	LogLevel        string  `env:"CRM_LOG_LEVEL" envDefault:"info"`
}

// EnvFiles lists the dotenv files Load reads, in priority order.
func EnvFiles() []string {
	return []string{
		".env",
		filepath.Join(xdg.ConfigHome, AppName, "env"),
	}
}

// Load reads the process environment, then fills unset variables from the
// dotenv files. Real environment variables always win.
func Load() (*Config, error) {
	return load(environ(), EnvFiles()...)
}

func load(environment map[string]string, files ...string) (*Config, error) {
	merged := make(map[string]string, len(environment))
	for k, v := range environment {
		merged[k] = v
	}
	for _, f := range files {
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
		for k, v := range values {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg, env.Options{Environment: merged}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.LocalDB == "" {
		cfg.LocalDB = filepath.Join(xdg.DataHome, AppName, "crm.db")
	}
	return cfg, nil
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}

// GoogleConfigured reports whether both the key file and folder are set.
func (c *Config) GoogleConfigured() bool {
	return c.CredentialsFile != "" && c.FolderID != ""
}

// ResolveBackend turns the configured backend into a concrete one.
func (c *Config) ResolveBackend() (Backend, error) {
	switch c.Backend {
	case BackendGoogle:
		if !c.GoogleConfigured() {
			return "", fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS and GOOGLE_DRIVE_FOLDER_ID must be set: %w", crm.ErrNotConfigured)
		}
		return BackendGoogle, nil
	case BackendLocal:
		return BackendLocal, nil
	case BackendAuto, "":
		if c.GoogleConfigured() {
			return BackendGoogle, nil
		}
		return BackendLocal, nil
	}
	return "", fmt.Errorf("unknown backend %q: %w", c.Backend, crm.ErrValidation)
}

// Settings returns the document settings for the given backend.
func (c *Config) Settings(backend Backend) crm.Settings {
	s := crm.Settings{DocumentName: c.DocumentName, FolderID: c.FolderID}
	if backend == BackendLocal && s.FolderID == "" {
		s.FolderID = LocalFolder
	}
	return s
}

// Level parses the configured log level, falling back to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
