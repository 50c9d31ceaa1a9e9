package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeGlobalConfig(t *testing.T, content string) string {
	t.Helper()
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return configHome
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/rvc/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	want := filepath.Join(home, ".config", "rvc", "config.yml")
	if got := GlobalConfigPath(); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg == nil || cfg.WorkspacePath != "" {
		t.Errorf("LoadGlobalConfig() = %+v, want empty config", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	writeGlobalConfig(t, "workspace_path: ~/biblio\nlog_mode: quiet\n")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "biblio"); cfg.WorkspacePath != want {
		t.Errorf("WorkspacePath = %q, want %q", cfg.WorkspacePath, want)
	}
	if cfg.LogMode != "quiet" {
		t.Errorf("LogMode = %q, want quiet", cfg.LogMode)
	}
}

func TestLoadGlobalConfig_Cached(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	configHome := writeGlobalConfig(t, "log_mode: quiet\n")

	first, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}

	path := filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
	if err := os.WriteFile(path, []byte("log_mode: prod\n"), 0644); err != nil {
		t.Fatal(err)
	}

	second, _ := LoadGlobalConfig()
	if second != first || second.LogMode != "quiet" {
		t.Errorf("LoadGlobalConfig() did not return the cached config")
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	writeGlobalConfig(t, "workspace_path: [unclosed\n")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() expected error for invalid YAML")
	}
}

func TestResolveWorkspace(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	local := newWorkspace(t)
	global := newWorkspace(t)
	writeGlobalConfig(t, "workspace_path: "+global+"\n")

	got, err := ResolveWorkspace(local)
	if err != nil || got != local {
		t.Errorf("ResolveWorkspace(local) = (%q, %v), want %q", got, err, local)
	}

	got, err = ResolveWorkspace(t.TempDir())
	if err != nil || got != global {
		t.Errorf("ResolveWorkspace(elsewhere) = (%q, %v), want %q", got, err, global)
	}
}

func TestResolveWorkspace_Errors(t *testing.T) {
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := ResolveWorkspace(t.TempDir()); !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("ResolveWorkspace() error = %v, want ErrNoWorkspace", err)
	}

	ResetGlobalConfigCache()
	writeGlobalConfig(t, "workspace_path: "+t.TempDir()+"\n")
	if _, err := ResolveWorkspace(t.TempDir()); !errors.Is(err, ErrWorkspacePathNotExist) {
		t.Errorf("ResolveWorkspace() error = %v, want ErrWorkspacePathNotExist", err)
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	msg := HelpfulConfigMessage()
	for _, want := range []string{"rvc init", "/custom/config/rvc/config.yml", "workspace_path:"} {
		if !strings.Contains(msg, want) {
			t.Errorf("HelpfulConfigMessage() missing %q:\n%s", want, msg)
		}
	}
}
