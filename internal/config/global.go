package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/rvc/config.yml.
type GlobalConfig struct {
	WorkspacePath string `yaml:"workspace_path,omitempty"`
	LogMode       string `yaml:"log_mode,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "rvc"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/rvc/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.WorkspacePath != "" {
		cfg.WorkspacePath = ExpandPath(cfg.WorkspacePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// ErrWorkspacePathNotExist is returned when the configured workspace_path
// doesn't hold a workspace.
var ErrWorkspacePathNotExist = errors.New("workspace_path is not a workspace")

// ResolveWorkspace finds the workspace for a command: the nearest .rvc
// directory above start, else the global workspace_path.
func ResolveWorkspace(start string) (string, error) {
	root, err := FindWorkspace(start)
	if err == nil {
		return root, nil
	}
	if !errors.Is(err, ErrNoWorkspace) {
		return "", err
	}

	cfg, gerr := LoadGlobalConfig()
	if gerr != nil {
		return "", gerr
	}
	if cfg.WorkspacePath == "" {
		return "", ErrNoWorkspace
	}
	if !IsWorkspace(cfg.WorkspacePath) {
		return "", fmt.Errorf("%w: %s", ErrWorkspacePathNotExist, cfg.WorkspacePath)
	}
	return cfg.WorkspacePath, nil
}

// HelpfulConfigMessage returns a helpful message when no workspace is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No rvc workspace found.

Run 'rvc init' in the directory holding your exports, or create %s
to set a default workspace:
  mkdir -p %s
  echo 'workspace_path: /path/to/your/workspace' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
