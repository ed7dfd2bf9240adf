// Package settings persists the user's analysis settings as a single YAML blob.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/prospector/internal/scoring"
)

// UserProfile describes the user the prospects are evaluated against.
type UserProfile struct {
	Title    string `yaml:"title" json:"title"`
	Industry string `yaml:"industry" json:"industry"`
	// Skills is a comma separated list of skills or services.
	Skills string `yaml:"skills" json:"skills"`
}

// Config is the settings snapshot an analysis runs with.
type Config struct {
	Profile UserProfile  `yaml:"user_profile" json:"userProfile"`
	APIKey  string       `yaml:"gemini_api_key" json:"-"`
	Goal    scoring.Goal `yaml:"analysis_goal" json:"analysisGoal"`
}

// Default returns the settings of a new user.
func Default() Config {
	return Config{Goal: scoring.DefaultGoal}
}

// HasCredential reports whether an AI api key is configured.
func (c Config) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Store reads and writes the settings file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the stored settings, or the defaults when nothing has been saved yet.
func (s *Store) Load() (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading settings file %q: %w", s.path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing settings file %q: %w", s.path, err)
	}

	if strings.TrimSpace(string(cfg.Goal)) == "" {
		cfg.Goal = scoring.DefaultGoal
	}
	if goal, ok := scoring.ParseGoal(string(cfg.Goal)); ok {
		cfg.Goal = goal
	}

	return cfg, nil
}

// Save replaces the stored settings with cfg.
func (s *Store) Save(cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temporary settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting settings file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing settings file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing settings file: %w", err)
	}

	return nil
}
