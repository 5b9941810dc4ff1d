package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.FOV != 60 || cfg.Graphics.Near != 1 || cfg.Graphics.Far != 100 {
		t.Errorf("expected projection 60/1/100, got %v/%v/%v", cfg.Graphics.FOV, cfg.Graphics.Near, cfg.Graphics.Far)
	}

	if cfg.Camera.MoveSensitivity != 0.15 {
		t.Errorf("expected move sensitivity 0.15, got %f", cfg.Camera.MoveSensitivity)
	}
	if cfg.Camera.RotateSensitivity != 0.07 {
		t.Errorf("expected rotate sensitivity 0.07, got %f", cfg.Camera.RotateSensitivity)
	}
	if cfg.Camera.Keys.Forward != "W" || cfg.Camera.Keys.Left != "A" {
		t.Errorf("unexpected key bindings %+v", cfg.Camera.Keys)
	}
	if cfg.Camera.StartPosition != [3]float32{0, 4, 12} {
		t.Errorf("unexpected start position %v", cfg.Camera.StartPosition)
	}

	if !cfg.Picking.Enabled {
		t.Error("expected picking to be enabled by default")
	}
	if len(cfg.Scene.Preset) != 0 {
		t.Errorf("expected empty preset, got %d entries", len(cfg.Scene.Preset))
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fov: 45

camera:
  pan_sensitivity: 0.02
  keys:
    forward: "Up"

picking:
  enabled: false

scene:
  preset:
    - model: res/models/sedan.obj
      texture: res/textures/colormap2.png
      position: [1.5, 0, -3]
      yaw: -90
      scale: 2

logging:
  level: "debug"
  log_file: "composer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.FOV != 45 {
		t.Errorf("expected fov 45, got %v", cfg.Graphics.FOV)
	}
	// Untouched keys keep their defaults.
	if cfg.Graphics.Far != 100 {
		t.Errorf("expected default far plane, got %v", cfg.Graphics.Far)
	}

	if cfg.Camera.PanSensitivity != 0.02 {
		t.Errorf("expected pan sensitivity 0.02, got %f", cfg.Camera.PanSensitivity)
	}
	if cfg.Camera.Keys.Forward != "Up" || cfg.Camera.Keys.Back != "S" {
		t.Errorf("unexpected keys %+v", cfg.Camera.Keys)
	}

	if cfg.Picking.Enabled {
		t.Error("expected picking to be disabled")
	}

	if len(cfg.Scene.Preset) != 1 {
		t.Fatalf("expected 1 preset entry, got %d", len(cfg.Scene.Preset))
	}
	p := cfg.Scene.Preset[0]
	if p.Model != "res/models/sedan.obj" || p.Yaw != -90 || p.Scale != 2 {
		t.Errorf("unexpected placement %+v", p)
	}
	if p.Position != [3]float32{1.5, 0, -3} {
		t.Errorf("unexpected position %v", p.Position)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "composer.log" {
		t.Errorf("expected log file 'composer.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "typo.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  widht: 800\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error for unknown key, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(configPath, nil, 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Errorf("empty file should load, got %v", err)
	}
	if cfg.Graphics.Width != 1280 {
		t.Errorf("empty file changed defaults: width %d", cfg.Graphics.Width)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"fov too wide", func(c *Config) { c.Graphics.FOV = 180 }},
		{"far before near", func(c *Config) { c.Graphics.Far = 0.5 }},
		{"preset without model", func(c *Config) { c.Scene.Preset = []Placement{{Scale: 1}} }},
		{"negative preset scale", func(c *Config) { c.Scene.Preset = []Placement{{Model: "a.obj", Scale: -1}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "assets flag prepends root",
			setup: func() { *flagAssets = "/srv/assets" },
			verify: func(t *testing.T, cfg *Config) {
				if len(cfg.Assets.Roots) != 2 || cfg.Assets.Roots[0] != "/srv/assets" {
					t.Errorf("unexpected roots %v", cfg.Assets.Roots)
				}
			},
			teardown: func() { *flagAssets = "" },
		},
		{
			name: "empty flag clears preset",
			setup: func() {
				*flagEmpty = true
			},
			verify: func(t *testing.T, cfg *Config) {
				if len(cfg.Scene.Preset) != 0 {
					t.Errorf("expected no preset, got %d", len(cfg.Scene.Preset))
				}
			},
			teardown: func() { *flagEmpty = false },
		},
		{
			name:  "no-picking flag",
			setup: func() { *flagNoPicking = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Picking.Enabled {
					t.Error("expected picking disabled")
				}
			},
			teardown: func() { *flagNoPicking = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			cfg.Scene.Preset = []Placement{{Model: "a.obj", Scale: 1}}
			applyFlags(cfg)

			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Camera.ZoomSensitivity = 0.5
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Camera.ZoomSensitivity != 0.5 {
		t.Errorf("expected zoom sensitivity 0.5, got %f", loaded.Camera.ZoomSensitivity)
	}
}
