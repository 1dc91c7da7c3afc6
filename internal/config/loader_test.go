package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	cfg, err := Parse(DefaultYAML())
	if err != nil {
		t.Fatalf("Parse(embedded) failed: %v", err)
	}
	def := DefaultConfig()

	if cfg.Engine != def.Engine {
		t.Errorf("embedded engine = %+v, hardcoded = %+v", cfg.Engine, def.Engine)
	}
	if cfg.Dialog != def.Dialog {
		t.Errorf("embedded dialog = %+v, hardcoded = %+v", cfg.Dialog, def.Dialog)
	}
	if len(cfg.Keys) != len(def.Keys) {
		t.Errorf("embedded has %d key bindings, hardcoded %d", len(cfg.Keys), len(def.Keys))
	}
}

func TestLoadCustomPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := []byte("engine:\n  tick_delay_ms: 10\nlog_level: debug\nkeys:\n  fire: [x]\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, src, err := LoadWithSource(path)
	if err != nil {
		t.Fatalf("LoadWithSource() failed: %v", err)
	}
	if src != path {
		t.Errorf("source = %q, expected %q", src, path)
	}
	if cfg.TickDelay() != 10*time.Millisecond {
		t.Errorf("TickDelay() = %v, expected 10ms", cfg.TickDelay())
	}
	// Unset values keep their defaults
	if cfg.Intermission() != 5*time.Second {
		t.Errorf("Intermission() = %v, expected default 5s", cfg.Intermission())
	}
	if cfg.Level() != log.DebugLevel {
		t.Errorf("Level() = %v, expected debug", cfg.Level())
	}
	if got := cfg.Keys["fire"]; len(got) != 1 || got[0] != "x" {
		t.Errorf("keys.fire = %v, expected [x]", got)
	}
	if len(cfg.Keys["up"]) == 0 {
		t.Error("keys.up should keep its default binding")
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for a missing custom config")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("engine:\n  tick_delay_ms: 0\n"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("expected validation error for tick_delay_ms: 0")
	}

	broken := filepath.Join(dir, "broken.yaml")
	os.WriteFile(broken, []byte("engine: [\n"), 0o644)
	if _, err := Load(broken); err == nil {
		t.Error("expected parse error for broken YAML")
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home := t.TempDir()
	work := t.TempDir()
	t.Setenv("HOME", home)
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	// Nothing on disk: embedded file
	_, src, err := LoadWithSource("")
	if err != nil {
		t.Fatalf("LoadWithSource() failed: %v", err)
	}
	if src != "embedded" {
		t.Errorf("source = %q, expected embedded", src)
	}

	// Local configs directory
	os.MkdirAll(filepath.Join(work, "configs"), 0o755)
	os.WriteFile(filepath.Join(work, "configs", FileName), []byte("engine:\n  refresh_hz: 30\n"), 0o644)
	cfg, src, _ := LoadWithSource("")
	if src != filepath.Join("configs", FileName) || cfg.Engine.RefreshHz != 30 {
		t.Errorf("expected local config, got %q with refresh %d", src, cfg.Engine.RefreshHz)
	}

	// Home directory wins over the local one
	os.MkdirAll(filepath.Join(home, ".gridrunner"), 0o755)
	os.WriteFile(filepath.Join(home, ".gridrunner", "config.yaml"), []byte("engine:\n  refresh_hz: 50\n"), 0o644)
	cfg, src, _ = LoadWithSource("")
	if src != filepath.Join(home, ".gridrunner", "config.yaml") || cfg.Engine.RefreshHz != 50 {
		t.Errorf("expected home config, got %q with refresh %d", src, cfg.Engine.RefreshHz)
	}

	// An invalid home file is skipped
	os.WriteFile(filepath.Join(home, ".gridrunner", "config.yaml"), []byte("engine:\n  refresh_hz: 500\n"), 0o644)
	cfg, _, _ = LoadWithSource("")
	if cfg.Engine.RefreshHz != 30 {
		t.Errorf("invalid home config should fall through to local, got refresh %d", cfg.Engine.RefreshHz)
	}
}

func TestRuntime(t *testing.T) {
	cfg := DefaultConfig()
	rt := cfg.Runtime(100, 30)
	if rt.ScreenW != 100 || rt.ScreenH != 30 {
		t.Errorf("screen = %dx%d", rt.ScreenW, rt.ScreenH)
	}
	if rt.TickDelay != 40*time.Millisecond || rt.RefreshInterval() != 40*time.Millisecond {
		t.Errorf("unexpected timing: %+v", rt)
	}
}
