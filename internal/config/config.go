// Package config loads the CLI harness's configuration: an optional
// scandex.toml naming the database path/URL and backend, plus an
// optional .env supplying secrets such as a Postgres connection
// string. The core scandex package never reads either file itself;
// only cmd/scandex does, keeping the library side-effect free.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config is the decoded shape of scandex.toml.
type Config struct {
	// Path is the SQLite file path.
	Path string `toml:"path"`
	// Backend ("sqlite" or "postgres"), PostgresURL and Schema are
	// decoded from the file, but cmd/scandex does not read them: it
	// always opens Path through scandex.OpenWithOptions (SQLite).
	Backend     string `toml:"backend"`
	PostgresURL string `toml:"postgres_url"`
	Schema      string `toml:"schema"`
	// InitialTableEnabled is the default passed to scandex.OpenWithOptions.
	InitialTableEnabled bool `toml:"initial_table_enabled"`

	// ConfigFilePath is the resolved location scandex.toml was loaded
	// from; not part of the TOML document itself.
	ConfigFilePath string `toml:"-"`
}

// Load walks up from the current directory looking for scandex.toml,
// stopping at the first project boundary (a .git directory or
// go.mod), exactly as the teacher's getConfigPath/isProjectRoot does.
// A missing file is not an error: Load returns a zero Config so the
// CLI can fall back to flags and environment variables.
func Load() (*Config, error) {
	path, err := findConfigPath()
	if err != nil {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.ConfigFilePath = path
	return &cfg, nil
}

func findConfigPath() (string, error) {
	startDir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := startDir
	for {
		candidate := filepath.Join(dir, "scandex.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		if isProjectRoot(dir) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("scandex.toml not found")
}

func isProjectRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
		return true
	}
	return false
}

// LoadDotenv reads path (defaulting to ".env" in the current
// directory when path is empty) and returns its key/value pairs. A
// missing file yields an empty map, not an error, matching
// godotenv's typical CLI usage of being optional.
func LoadDotenv(path string) (map[string]string, error) {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}
