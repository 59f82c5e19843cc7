package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"

	"github.com/megancady/Space-Defense-Pilot/internal/config"
	"github.com/megancady/Space-Defense-Pilot/internal/model"
	"github.com/megancady/Space-Defense-Pilot/internal/scheduler"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, name := range []string{"SPACE_DEFENSE_SUBJECT", "SPACE_DEFENSE_EXPORT_DIR", "SPACE_DEFENSE_LEVELS_FILE", "SPACE_DEFENSE_DEBUG"} {
		t.Setenv(name, "")
	}
	return dir
}

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestResolveConfigDefaults(t *testing.T) {
	isolateEnv(t)
	cmd := newRootCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, _, err := resolveConfig(cmd, &playFlags)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Repeats != 3 || cfg.RoundSeconds != 20 || !cfg.Practice || len(cfg.Levels) != 6 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ExportDir != config.DefaultExportDir() {
		t.Fatalf("unexpected export dir %q", cfg.ExportDir)
	}
}

func TestResolveConfigPrecedence(t *testing.T) {
	isolateEnv(t)
	writeConfig(t, `
[session]
repeats = 2
round-seconds = 5.0
practice = false
export-dir = "/from/file"
`)
	t.Setenv("SPACE_DEFENSE_EXPORT_DIR", "/from/env")
	t.Setenv("SPACE_DEFENSE_SUBJECT", "021")

	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--round-seconds", "7"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, _, err := resolveConfig(cmd, &playFlags)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Repeats != 2 || cfg.Practice {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if cfg.RoundSeconds != 7 {
		t.Fatalf("expected flag to win, got %v", cfg.RoundSeconds)
	}
	if cfg.ExportDir != "/from/env" || cfg.Subject != "021" {
		t.Fatalf("expected env values, got %+v", cfg)
	}

	cmd = newRootCmd()
	if err := cmd.ParseFlags([]string{"--out", "/from/flag", "--subject", "003"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, _, err = resolveConfig(cmd, &playFlags)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.ExportDir != "/from/flag" || cfg.Subject != "003" {
		t.Fatalf("expected flag values, got %+v", cfg)
	}
}

func TestResolveConfigLevelsFileFromEnv(t *testing.T) {
	dir := isolateEnv(t)
	path := filepath.Join(dir, "levels.yaml")
	body := "levels:\n  - label: \"90%\"\n    p: 0.9\n  - label: \"10%\"\n    p: 0.1\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write levels: %v", err)
	}
	t.Setenv("SPACE_DEFENSE_LEVELS_FILE", path)
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"--repeats", "2"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, _, err := resolveConfig(cmd, &playFlags)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(cfg.Levels) != 2 || cfg.Levels[0].Label != "90%" {
		t.Fatalf("unexpected levels: %+v", cfg.Levels)
	}
}

func TestResolveConfigRejectsInfeasibleSchedule(t *testing.T) {
	isolateEnv(t)
	writeConfig(t, `
[[levels]]
label = "only"
p = 0.5
`)
	cmd := newRootCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	_, _, err := resolveConfig(cmd, &playFlags)
	if !errors.Is(err, scheduler.ErrTooFewLabels) {
		t.Fatalf("expected ErrTooFewLabels, got %v", err)
	}
}

func TestValidateConfig(t *testing.T) {
	base := model.Config{Levels: model.DefaultLevels(), Repeats: 3, RoundSeconds: 20}
	if err := validateConfig(base); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := base
	bad.Repeats = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected repeats error")
	}
	bad = base
	bad.RoundSeconds = 0
	if err := validateConfig(bad); err == nil {
		t.Fatalf("expected round-seconds error")
	}
}

func TestIsSubjectID(t *testing.T) {
	for _, ok := range []string{"000", "007", "999"} {
		if !isSubjectID(ok) {
			t.Fatalf("expected %q to be valid", ok)
		}
	}
	for _, bad := range []string{"", "07", "0071", "a07", " 07"} {
		if isSubjectID(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestDefaultConfigTemplateIsInert(t *testing.T) {
	var cfg config.FileConfig
	if _, err := toml.Decode(defaultConfigTemplate(), &cfg); err != nil {
		t.Fatalf("template does not parse: %v", err)
	}
	if cfg.Session.Repeats != nil || len(cfg.Levels) != 0 {
		t.Fatalf("template should not set values: %+v", cfg)
	}
}

func TestScheduleCommand(t *testing.T) {
	isolateEnv(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"schedule", "--seed", "7", "--repeats", "1"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("expected header, practice and 6 rounds, got %d lines:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "yes") {
		t.Fatalf("expected practice round first: %q", lines[1])
	}
}

func TestLevelsCommand(t *testing.T) {
	isolateEnv(t)
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"levels"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out.String(), "#b983ff") {
		t.Fatalf("expected default levels, got:\n%s", out.String())
	}
}
