package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/FocuswithJustin/MuseScoreTools/internal/config"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoadDefaultsWhenAbsent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(tempHome, ".config", "mst", "config.toml") {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if !cfg.Convert.Backup {
		t.Fatal("expected backups enabled by default")
	}
	if cfg.Convert.RemoveClefs || cfg.Convert.CopyTitles {
		t.Fatal("expected transforms disabled by default")
	}
	if cfg.Split.CollisionRetries != 1 {
		t.Fatalf("unexpected collision retries: %d", cfg.Split.CollisionRetries)
	}
	if cfg.Output.Indent != "" {
		t.Fatalf("expected verbatim output by default, got indent %q", cfg.Output.Indent)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "auto" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadProjectConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	workDir := t.TempDir()
	chdir(t, workDir)
	writeConfig(t, filepath.Join(workDir, "mst.toml"), "[convert]\nremove_clefs = true\n")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || filepath.Base(resolved) != "mst.toml" {
		t.Fatalf("expected project config, got %q exists=%v", resolved, exists)
	}
	if !cfg.Convert.RemoveClefs {
		t.Fatal("expected remove_clefs from project config")
	}
	if !cfg.Convert.Backup {
		t.Fatal("unset keys should keep defaults")
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeConfig(t, path, `
[convert]
copy_titles = true
backup = false

[output]
indent = "  "

[split]
collision_retries = 5

[logging]
level = "DEBUG"
format = "json"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if !cfg.Convert.CopyTitles || cfg.Convert.Backup {
		t.Fatalf("unexpected convert section: %+v", cfg.Convert)
	}
	if cfg.Output.Indent != "  " {
		t.Fatalf("unexpected indent: %q", cfg.Output.Indent)
	}
	if cfg.Split.CollisionRetries != 5 {
		t.Fatalf("unexpected retries: %d", cfg.Split.CollisionRetries)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected normalized level, got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing custom path to be reported absent")
	}
	if cfg.Split.CollisionRetries != config.Default().Split.CollisionRetries {
		t.Fatal("expected defaults for missing custom path")
	}
}

func TestLoadRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", "[convert\n", "parse config"},
		{"unknown key", "[convert]\nremove_everything = true\n", "parse config"},
		{"bad indent", "[output]\nindent = \"xx\"\n", "output.indent"},
		{"zero retries", "[split]\ncollision_retries = 0\n", "split.collision_retries"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeConfig(t, path, tt.content)
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample should load cleanly: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if *cfg != config.Default() {
		t.Fatalf("sample should match defaults: %+v", *cfg)
	}
}

func TestMarshal(t *testing.T) {
	cfg := config.Default()
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !strings.Contains(string(data), "collision_retries = 1") {
		t.Fatalf("unexpected TOML output:\n%s", data)
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
