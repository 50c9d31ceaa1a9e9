// Package config handles workspace configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/extract"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/logger"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
)

// Config represents workspace configuration stored in .rvc/config.yml or
// .rvc/config.toml.
type Config struct {
	CoverageMode     string         `yaml:"coverage_mode" toml:"coverage_mode" json:"coverage_mode"`
	LogMode          string         `yaml:"log_mode,omitempty" toml:"log_mode,omitempty" json:"log_mode,omitempty"`
	Researcher       string         `yaml:"researcher,omitempty" toml:"researcher,omitempty" json:"researcher,omitempty"`
	ExportDir        string         `yaml:"export_dir,omitempty" toml:"export_dir,omitempty" json:"export_dir,omitempty"`
	PrincipalColumns []string       `yaml:"principal_columns,omitempty" toml:"principal_columns,omitempty" json:"principal_columns,omitempty"`
	IdentifierRules  []extract.Rule `yaml:"identifier_rules,omitempty" toml:"identifier_rules,omitempty" json:"identifier_rules,omitempty"`
}

const (
	WorkspaceDir   = ".rvc"
	ConfigFile     = "config.yml"
	TOMLConfigFile = "config.toml"
	CollectionsDir = "collections"
	CacheDir       = "cache"
	DBFile         = "runs.db"
	LockFile       = "run.lock"
	EnvFile        = ".env"
)

// Environment variables that override file values.
const (
	EnvCoverageMode = "RVC_COVERAGE_MODE"
	EnvLogMode      = "RVC_LOG_MODE"
)

// WorkspacePath returns the path to the .rvc directory from a root path.
func WorkspacePath(root string) string {
	return filepath.Join(root, WorkspaceDir)
}

// ConfigPath returns the path to config.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, WorkspaceDir, ConfigFile)
}

// TOMLConfigPath returns the path to config.toml from a root path.
func TOMLConfigPath(root string) string {
	return filepath.Join(root, WorkspaceDir, TOMLConfigFile)
}

// CollectionsPath returns the directory holding collection snapshots.
func CollectionsPath(root string) string {
	return filepath.Join(root, WorkspaceDir, CollectionsDir)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir)
}

// DBPath returns the path to the run history database from a root path.
func DBPath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir, DBFile)
}

// LockPath returns the path to the run lock file from a root path.
func LockPath(root string) string {
	return filepath.Join(root, WorkspaceDir, LockFile)
}

// IsWorkspace checks if the given path contains a workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(WorkspacePath(root))
	return err == nil && info.IsDir()
}

// ErrNoWorkspace is returned when no .rvc directory is found.
var ErrNoWorkspace = errors.New("not in a workspace (no .rvc directory found)")

// FindWorkspace walks up from the given path to find a workspace.
// Returns the workspace root path or ErrNoWorkspace.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoWorkspace
		}
		abs = parent
	}
}

// Default returns the configuration of a fresh workspace.
func Default() *Config {
	return &Config{
		CoverageMode: string(reconcile.CoverageSymmetric),
		LogMode:      logger.ModeDevelopment,
	}
}

// Load reads configuration from the workspace at the given root. The YAML
// file wins when both files exist; with neither, defaults are returned.
// Environment overrides are applied and the result is validated.
func Load(root string) (*Config, error) {
	cfg := Default()

	if data, err := os.ReadFile(ConfigPath(root)); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", ConfigFile, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	} else if data, err := os.ReadFile(TOMLConfigPath(root)); err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", TOMLConfigFile, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads root/.env into the process environment. Variables that
// are already set are kept. A missing file is not an error.
func LoadDotEnv(root string) error {
	path := filepath.Join(root, EnvFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides file values with RVC_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvCoverageMode); v != "" {
		c.CoverageMode = v
	}
	if v := getenv(EnvLogMode); v != "" {
		c.LogMode = v
	}
}

// Save writes configuration to the workspace at the given root, in TOML when
// the workspace already uses config.toml and in YAML otherwise.
func (c *Config) Save(root string) error {
	if _, err := os.Stat(TOMLConfigPath(root)); err == nil {
		if _, err := os.Stat(ConfigPath(root)); os.IsNotExist(err) {
			data, err := toml.Marshal(c)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			return writeConfig(TOMLConfigPath(root), data)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return writeConfig(ConfigPath(root), buf.Bytes())
}

func writeConfig(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// FieldError reports an invalid configuration field.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := reconcile.ParseCoverageMode(c.CoverageMode); err != nil {
		return &FieldError{Field: "coverage_mode", Err: err}
	}
	if _, err := logger.ParseMode(c.LogMode); err != nil {
		return &FieldError{Field: "log_mode", Err: err}
	}
	if len(c.IdentifierRules) > 0 {
		if _, err := extract.NewClassifier(c.IdentifierRules); err != nil {
			return &FieldError{Field: "identifier_rules", Err: err}
		}
	}
	for i, p := range c.PrincipalColumns {
		if strings.TrimSpace(p) == "" {
			return &FieldError{Field: fmt.Sprintf("principal_columns[%d]", i), Err: errors.New("empty pattern")}
		}
	}
	return nil
}

// Mode returns the configured coverage mode.
func (c *Config) Mode() reconcile.CoverageMode {
	m, err := reconcile.ParseCoverageMode(c.CoverageMode)
	if err != nil {
		return reconcile.CoverageSymmetric
	}
	return m
}

// Classifier builds the identifier column classifier, falling back to the
// default rules.
func (c *Config) Classifier() (*extract.Classifier, error) {
	if len(c.IdentifierRules) == 0 {
		return extract.DefaultClassifier(), nil
	}
	return extract.NewClassifier(c.IdentifierRules)
}

// Principal returns the principal column patterns of the unique view.
func (c *Config) Principal() []string {
	if len(c.PrincipalColumns) == 0 {
		return report.DefaultPrincipalColumns
	}
	return c.PrincipalColumns
}

// ExportPath resolves the export directory against the workspace root.
// The empty value means the workspace root itself.
func (c *Config) ExportPath(root string) string {
	dir := ExpandPath(c.ExportDir)
	if dir == "" {
		return root
	}
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// Keys lists the settable keys, in display order.
var Keys = []string{"coverage-mode", "log-mode", "researcher", "export-dir"}

// Get returns the value of a settable key.
func (c *Config) Get(key string) (string, error) {
	switch normalizeKey(key) {
	case "coverage-mode":
		return c.CoverageMode, nil
	case "log-mode":
		return c.LogMode, nil
	case "researcher":
		return c.Researcher, nil
	case "export-dir":
		return c.ExportDir, nil
	}
	return "", fmt.Errorf("unknown configuration key: %s (valid: %s)", key, strings.Join(Keys, ", "))
}

// Set assigns a settable key and validates the result.
func (c *Config) Set(key, value string) error {
	next := *c
	switch normalizeKey(key) {
	case "coverage-mode":
		next.CoverageMode = value
	case "log-mode":
		next.LogMode = value
	case "researcher":
		next.Researcher = value
	case "export-dir":
		next.ExportDir = value
	default:
		return fmt.Errorf("unknown configuration key: %s (valid: %s)", key, strings.Join(Keys, ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// normalizeKey accepts coverage_mode, coverage-mode and CoverageMode.
func normalizeKey(key string) string {
	key = strings.ReplaceAll(strings.ToLower(key), "_", "-")
	switch key {
	case "coveragemode":
		return "coverage-mode"
	case "logmode":
		return "log-mode"
	case "exportdir":
		return "export-dir"
	}
	return key
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
