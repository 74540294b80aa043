package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if cfg.Scene.SceneIndex != -1 {
		t.Errorf("expected scene index -1, got %d", cfg.Scene.SceneIndex)
	}
	if !cfg.Scene.RequireNormalTexture {
		t.Error("expected normal textures to be required by default")
	}
	if cfg.Scene.Composition != CompositionMatrix {
		t.Errorf("expected matrix composition, got %s", cfg.Scene.Composition)
	}
	if cfg.Animation.FPS != 60 {
		t.Errorf("expected 60 fps, got %v", cfg.Animation.FPS)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "scenetool.yaml")

	yamlContent := `
logging:
  level: "debug"
  log_file: "scenetool.log"

scene:
  scene_index: 2
  require_normal_texture: false
  composition: trs

animation:
  clip: 1
  fps: 30
  frames: 90
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "scenetool.log" {
		t.Errorf("expected log file 'scenetool.log', got %s", cfg.Logging.LogFile)
	}
	if cfg.Scene.SceneIndex != 2 {
		t.Errorf("expected scene index 2, got %d", cfg.Scene.SceneIndex)
	}
	if cfg.Scene.RequireNormalTexture {
		t.Error("expected require_normal_texture to be false")
	}
	if cfg.Scene.Composition != CompositionTRS {
		t.Errorf("expected trs composition, got %s", cfg.Scene.Composition)
	}
	if cfg.Animation.Clip != 1 || cfg.Animation.FPS != 30 || cfg.Animation.Frames != 90 {
		t.Errorf("unexpected animation settings %+v", cfg.Animation)
	}
}

func TestLoadFromFilePartialKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "scenetool.yaml")
	if err := os.WriteFile(configPath, []byte("animation:\n  frames: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Animation.Frames != 5 {
		t.Errorf("expected 5 frames, got %d", cfg.Animation.Frames)
	}
	if cfg.Animation.FPS != 60 {
		t.Errorf("expected default fps to survive, got %v", cfg.Animation.FPS)
	}
	if !cfg.Scene.RequireNormalTexture {
		t.Error("expected default normal texture requirement to survive")
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
animation:
  fps: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"trs", func(c *Config) { c.Scene.Composition = CompositionTRS }, false},
		{"unknown composition", func(c *Config) { c.Scene.Composition = "quaternion" }, true},
		{"zero fps", func(c *Config) { c.Animation.FPS = 0 }, true},
		{"negative frames", func(c *Config) { c.Animation.Frames = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
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
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "scenetool.yaml")
	if err := os.WriteFile(configPath, []byte("animation:\n  fps: 24\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find scenetool.yaml in current directory")
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
			name:  "lenient flag",
			setup: func() { *flagLenient = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.RequireNormalTexture {
					t.Error("expected lenient flag to drop the normal texture requirement")
				}
			},
			teardown: func() { *flagLenient = false },
		},
		{
			name:  "trs flag",
			setup: func() { *flagTRS = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.Composition != CompositionTRS {
					t.Errorf("expected trs composition, got %s", cfg.Scene.Composition)
				}
			},
			teardown: func() { *flagTRS = false },
		},
		{
			name: "animation flags",
			setup: func() {
				*flagClip = 3
				*flagFPS = 24
				*flagFrames = 48
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Animation.Clip != 3 {
					t.Errorf("expected clip 3, got %d", cfg.Animation.Clip)
				}
				if cfg.Animation.FPS != 24 {
					t.Errorf("expected fps 24, got %v", cfg.Animation.FPS)
				}
				if cfg.Animation.Frames != 48 {
					t.Errorf("expected 48 frames, got %d", cfg.Animation.Frames)
				}
			},
			teardown: func() {
				*flagClip = -1
				*flagFPS = 0
				*flagFrames = 0
			},
		},
		{
			name:  "scene flag",
			setup: func() { *flagScene = 1 },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Scene.SceneIndex != 1 {
					t.Errorf("expected scene 1, got %d", cfg.Scene.SceneIndex)
				}
			},
			teardown: func() { *flagScene = -1 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "scenetool.yaml")

	yamlContent := `
animation:
  fps: 30
  frames: 12
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagFPS = 120
	defer func() {
		*flagConfig = ""
		*flagFPS = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// fps comes from the flag, frames from the file.
	if cfg.Animation.FPS != 120 {
		t.Errorf("expected fps 120 from flag, got %v", cfg.Animation.FPS)
	}
	if cfg.Animation.Frames != 12 {
		t.Errorf("expected 12 frames from file, got %d", cfg.Animation.Frames)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "scenetool.yaml")

	cfg := Default()
	cfg.Scene.Composition = CompositionTRS
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loadFromFile: %v", err)
	}
	if loaded.Scene.Composition != CompositionTRS {
		t.Errorf("expected saved composition to round-trip, got %s", loaded.Scene.Composition)
	}
}
