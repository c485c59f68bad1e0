package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"github.com/utmux/ag/pkg/fsx"
	"github.com/utmux/ag/pkg/slogx"
)

const (
	// EnvConfigDir overrides the directory holding config.json and the session history.
	EnvConfigDir = "AG_CONFIG_DIR"

	fileName = "config.json"
	filePerm = 0o600
)

// DefaultDir returns $AG_CONFIG_DIR, or ~/.config/ag when it is unset.
func DefaultDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ag"), nil
}

// Store reads and writes the configuration file inside a directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the configuration directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the location of the configuration file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

// EnsureExists writes the default configuration when the file is absent.
// It reports whether a file was created.
func (s *Store) EnsureExists() (bool, error) {
	_, err := os.Stat(s.Path())
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat %s: %w", s.Path(), err)
	}

	if err := s.Save(Default()); err != nil {
		return false, err
	}
	slog.Warn("configuration file created, edit it to add your API keys", slogx.Path(s.Path()))
	return true, nil
}

// Load reads the configuration, creating it first when necessary. Content that
// is not valid JSON or fails validation yields ErrConfigCorrupt.
func (s *Store) Load() (*RootConfig, error) {
	if _, err := s.EnsureExists(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Path(), err)
	}
	return decode(s.Path(), data)
}

func decode(path string, data []byte) (*RootConfig, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s: invalid json", ErrConfigCorrupt, path)
	}

	var cfg RootConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigCorrupt, path, err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigCorrupt, path, err)
	}
	return &cfg, nil
}

// Save replaces the configuration file with cfg.
func (s *Store) Save(cfg *RootConfig) error {
	if cfg.Providers == nil {
		cfg.Providers = NewProviders()
	}
	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return fsx.WriteFile(s.Path(), append(data, '\n'), filePerm)
}

// Patch sets top-level keys of the stored document and leaves everything else,
// including keys unknown to RootConfig, as it is on disk.
func (s *Store) Patch(values map[string]any) error {
	if _, err := s.EnsureExists(); err != nil {
		return err
	}
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", s.Path(), err)
	}
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: %s: invalid json", ErrConfigCorrupt, s.Path())
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		data, err = sjson.SetBytes(data, k, values[k])
		if err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	return fsx.WriteFile(s.Path(), data, filePerm)
}
