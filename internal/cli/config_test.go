package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pegtower/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
	if cfg.Blocks != 10 {
		t.Errorf("Blocks = %d, want 10", cfg.Blocks)
	}

	ac := cfg.AnimateConfig()
	if ac.Iterations != 10 || ac.Step.Milliseconds() != 300 || ac.Slack.Milliseconds() != 500 {
		t.Errorf("AnimateConfig() = %+v", ac)
	}

	g := cfg.PegGeometry()
	if g.Origin.X != 50 || g.Origin.Y != 120 || g.BlockHeight != 9 || g.StackWidth != 100 || g.MaxBlockWidth != 90 {
		t.Errorf("PegGeometry() = %+v", g)
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
blocks = 7
seed = 42
step_ms = 100

[geometry]
stack_width = 120

[serve]
addr = ":9090"
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Blocks != 7 || cfg.Seed != 42 || cfg.StepMS != 100 {
		t.Errorf("top-level keys not applied: %+v", cfg)
	}
	if cfg.Geometry.StackWidth != 120 {
		t.Errorf("StackWidth = %d, want 120", cfg.Geometry.StackWidth)
	}
	if cfg.Geometry.BlockHeight != 9 {
		t.Errorf("BlockHeight = %d, want default 9", cfg.Geometry.BlockHeight)
	}
	if cfg.SlackMS != 500 {
		t.Errorf("SlackMS = %d, want default 500", cfg.SlackMS)
	}
	if cfg.Serve.Addr != ":9090" || cfg.Serve.MaxRuns != 64 {
		t.Errorf("Serve = %+v", cfg.Serve)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "blocks = 3\ncolour = \"red\"\n"},
		{"syntax", "blocks = \n"},
		{"zero step", "step_ms = 0\n"},
		{"negative iterations", "iterations = -1\n"},
		{"zero scale", "[render]\nscale = 0.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.content))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("loadConfig() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing default file should yield defaults, got %+v", cfg)
	}

	_, err = loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("explicit missing file error = %v, want INVALID_CONFIG", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got, err := defaultConfigPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "pegtower", "config.toml"); got != want {
		t.Errorf("defaultConfigPath() = %q, want %q", got, want)
	}
}

func TestRunFlagsApply(t *testing.T) {
	var f runFlags
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd, &f)
	if err := cmd.ParseFlags([]string{"--blocks", "3", "--step", "1s", "--strict"}); err != nil {
		t.Fatal(err)
	}

	base := DefaultConfig()
	base.Iterations = 4
	base.Seed = 9

	cfg, err := f.apply(cmd, base)
	if err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if cfg.Blocks != 3 || cfg.StepMS != 1000 || !cfg.Strict {
		t.Errorf("explicit flags not applied: %+v", cfg)
	}
	if cfg.Iterations != 4 || cfg.Seed != 9 || cfg.SlackMS != 500 {
		t.Errorf("unset flags overrode config: %+v", cfg)
	}
}

func TestRunFlagsApplyInvalid(t *testing.T) {
	var f runFlags
	cmd := &cobra.Command{Use: "test"}
	addRunFlags(cmd, &f)
	if err := cmd.ParseFlags([]string{"--step", "0s"}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.apply(cmd, DefaultConfig()); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("apply() error = %v, want INVALID_CONFIG", err)
	}
}

func TestConfigCommand(t *testing.T) {
	path := writeConfig(t, "blocks = 4\n")

	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--config", path, "config"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config command error: %v", err)
	}

	var got Config
	if _, err := toml.Decode(out.String(), &got); err != nil {
		t.Fatalf("config output is not TOML: %v\n%s", err, out.String())
	}
	if got.Blocks != 4 {
		t.Errorf("printed blocks = %d, want 4", got.Blocks)
	}
	if !strings.Contains(out.String(), "[geometry]") {
		t.Errorf("output missing geometry table:\n%s", out.String())
	}
}
