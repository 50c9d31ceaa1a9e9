package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Loris-rss/Research-Visbility-Checker/internal/identifier"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/reconcile"
	"github.com/Loris-rss/Research-Visbility-Checker/internal/report"
)

func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.Mkdir(WorkspacePath(root), 0755); err != nil {
		t.Fatalf("Failed to create %s: %v", WorkspaceDir, err)
	}
	return root
}

func TestPathFunctions(t *testing.T) {
	root := "/test/ws"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"WorkspacePath", WorkspacePath, "/test/ws/.rvc"},
		{"ConfigPath", ConfigPath, "/test/ws/.rvc/config.yml"},
		{"TOMLConfigPath", TOMLConfigPath, "/test/ws/.rvc/config.toml"},
		{"CollectionsPath", CollectionsPath, "/test/ws/.rvc/collections"},
		{"CachePath", CachePath, "/test/ws/.rvc/cache"},
		{"DBPath", DBPath, "/test/ws/.rvc/cache/runs.db"},
		{"LockPath", LockPath, "/test/ws/.rvc/run.lock"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestIsWorkspace(t *testing.T) {
	tmpDir := t.TempDir()

	if IsWorkspace(tmpDir) {
		t.Error("IsWorkspace() = true for plain directory")
	}

	if err := os.Mkdir(WorkspacePath(tmpDir), 0755); err != nil {
		t.Fatal(err)
	}
	if !IsWorkspace(tmpDir) {
		t.Error("IsWorkspace() = false for workspace directory")
	}
}

func TestIsWorkspace_FileNotDir(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(WorkspacePath(tmpDir), []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}
	if IsWorkspace(tmpDir) {
		t.Error("IsWorkspace() = true when .rvc is a file")
	}
}

func TestFindWorkspace(t *testing.T) {
	root := newWorkspace(t)
	nested := filepath.Join(root, "exports", "2024")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	for _, start := range []string{nested, root} {
		found, err := FindWorkspace(start)
		if err != nil {
			t.Fatalf("FindWorkspace(%q) error = %v", start, err)
		}
		if found != root {
			t.Errorf("FindWorkspace(%q) = %q, want %q", start, found, root)
		}
	}
}

func TestFindWorkspace_NotFound(t *testing.T) {
	_, err := FindWorkspace(t.TempDir())
	if !errors.Is(err, ErrNoWorkspace) {
		t.Errorf("FindWorkspace() error = %v, want ErrNoWorkspace", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvCoverageMode, "")
	t.Setenv(EnvLogMode, "")
	root := newWorkspace(t)

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode() != reconcile.CoverageSymmetric {
		t.Errorf("Mode() = %q, want symmetric", cfg.Mode())
	}
	if !reflect.DeepEqual(cfg.Principal(), report.DefaultPrincipalColumns) {
		t.Errorf("Principal() = %v, want defaults", cfg.Principal())
	}
	if cfg.ExportPath(root) != root {
		t.Errorf("ExportPath() = %q, want %q", cfg.ExportPath(root), root)
	}
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv(EnvCoverageMode, "")
	t.Setenv(EnvLogMode, "")
	root := newWorkspace(t)

	yml := `coverage_mode: source
log_mode: quiet
researcher: Humbert, Marc
export_dir: out
principal_columns: [titre, doi]
identifier_rules:
  - pattern: doi
    type: doi
  - pattern: pmid
    type: pubmed
`
	if err := os.WriteFile(ConfigPath(root), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode() != reconcile.CoverageSource {
		t.Errorf("Mode() = %q, want source", cfg.Mode())
	}
	if cfg.Researcher != "Humbert, Marc" || cfg.LogMode != "quiet" {
		t.Errorf("cfg = %+v", cfg)
	}
	if got := cfg.ExportPath(root); got != filepath.Join(root, "out") {
		t.Errorf("ExportPath() = %q", got)
	}

	cls, err := cfg.Classifier()
	if err != nil {
		t.Fatalf("Classifier() error = %v", err)
	}
	m, ok := cls.Classify("PMID")
	if !ok || m.Type != identifier.TypePubMed {
		t.Errorf("Classify(PMID) = (%+v, %v), want pubmed", m, ok)
	}
}

func TestLoad_TOML(t *testing.T) {
	t.Setenv(EnvCoverageMode, "")
	t.Setenv(EnvLogMode, "")
	root := newWorkspace(t)

	data := `coverage_mode = "source"
principal_columns = ["title"]

[[identifier_rules]]
pattern = "ut"
type = "wos"
`
	if err := os.WriteFile(TOMLConfigPath(root), []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode() != reconcile.CoverageSource {
		t.Errorf("Mode() = %q, want source", cfg.Mode())
	}
	if len(cfg.IdentifierRules) != 1 || cfg.IdentifierRules[0].Type != identifier.TypeWoS {
		t.Errorf("IdentifierRules = %+v", cfg.IdentifierRules)
	}
}

func TestLoad_YAMLWinsOverTOML(t *testing.T) {
	t.Setenv(EnvCoverageMode, "")
	t.Setenv(EnvLogMode, "")
	root := newWorkspace(t)

	if err := os.WriteFile(ConfigPath(root), []byte("coverage_mode: symmetric\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(TOMLConfigPath(root), []byte("coverage_mode = \"source\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode() != reconcile.CoverageSymmetric {
		t.Errorf("Mode() = %q, want symmetric", cfg.Mode())
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	root := newWorkspace(t)
	if err := os.WriteFile(ConfigPath(root), []byte("coverage_mode: symmetric\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvCoverageMode, "source")
	t.Setenv(EnvLogMode, "prod")

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mode() != reconcile.CoverageSource || cfg.LogMode != "prod" {
		t.Errorf("cfg = %+v, want env values", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(EnvCoverageMode, "")
	t.Setenv(EnvLogMode, "")

	tests := []struct {
		name  string
		yml   string
		field string
	}{
		{"coverage mode", "coverage_mode: both\n", "coverage_mode"},
		{"log mode", "log_mode: loud\n", "log_mode"},
		{"rule type", "identifier_rules:\n  - pattern: doi\n    type: isbn\n", "identifier_rules"},
		{"empty principal", "principal_columns: [\"  \"]\n", "principal_columns[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := newWorkspace(t)
			if err := os.WriteFile(ConfigPath(root), []byte(tt.yml), 0644); err != nil {
				t.Fatal(err)
			}

			_, err := Load(root)
			var fe *FieldError
			if !errors.As(err, &fe) {
				t.Fatalf("Load() error = %v, want FieldError", err)
			}
			if fe.Field != tt.field {
				t.Errorf("FieldError.Field = %q, want %q", fe.Field, tt.field)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	root := newWorkspace(t)
	if err := os.WriteFile(ConfigPath(root), []byte("coverage_mode: [unclosed\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root); err == nil {
		t.Error("Load() expected error for malformed YAML")
	}
}

func TestConfig_SaveAndLoad(t *testing.T) {
	t.Setenv(EnvCoverageMode, "")
	t.Setenv(EnvLogMode, "")
	root := newWorkspace(t)

	cfg := Default()
	cfg.Researcher = "Dupont, Marie"
	cfg.PrincipalColumns = []string{"titre"}
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(ConfigPath(root)); err != nil {
		t.Fatalf("config.yml not written: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded, cfg) {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}
}

func TestConfig_SaveKeepsTOML(t *testing.T) {
	t.Setenv(EnvCoverageMode, "")
	t.Setenv(EnvLogMode, "")
	root := newWorkspace(t)
	if err := os.WriteFile(TOMLConfigPath(root), []byte("coverage_mode = \"symmetric\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if err := cfg.Set("coverage-mode", "source"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(ConfigPath(root)); !os.IsNotExist(err) {
		t.Error("Save() created config.yml in a TOML workspace")
	}
	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Mode() != reconcile.CoverageSource {
		t.Errorf("Mode() = %q, want source", loaded.Mode())
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
	}{
		{"coverage-mode", "source"},
		{"coverage_mode", "symmetric"},
		{"CoverageMode", "source"},
		{"log-mode", "quiet"},
		{"researcher", "Martin, Paul"},
		{"export_dir", "~/exports"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q) error = %v", tt.key, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) error = %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("coverage-mode", "both"); err == nil {
		t.Error("Set(coverage-mode, both) expected error")
	}
	if cfg.CoverageMode != string(reconcile.CoverageSymmetric) {
		t.Errorf("CoverageMode = %q after rejected Set", cfg.CoverageMode)
	}
	if err := cfg.Set("nope", "x"); err == nil {
		t.Error("Set(nope) expected error")
	}
	if _, err := cfg.Get("nope"); err == nil {
		t.Error("Get(nope) expected error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	root := t.TempDir()

	if err := LoadDotEnv(root); err != nil {
		t.Fatalf("LoadDotEnv(missing) error = %v", err)
	}

	t.Setenv(EnvCoverageMode, "")
	os.Unsetenv(EnvCoverageMode)
	if err := os.WriteFile(filepath.Join(root, EnvFile), []byte(EnvCoverageMode+"=source\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(root); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}
	if got := os.Getenv(EnvCoverageMode); got != "source" {
		t.Errorf("%s = %q, want source", EnvCoverageMode, got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~/exports", filepath.Join(home, "exports")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
