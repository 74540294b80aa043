// Package config handles scenetool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Scene     SceneConfig     `yaml:"scene"`
	Animation AnimationConfig `yaml:"animation"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// SceneConfig controls how interchange files become scene graphs.
type SceneConfig struct {
	SceneIndex           int    `yaml:"scene_index"`            // -1: document default
	RequireNormalTexture bool   `yaml:"require_normal_texture"` // reject materials without normal maps
	Composition          string `yaml:"composition"`            // "matrix" or "trs"
}

// AnimationConfig controls playback in the animate command.
type AnimationConfig struct {
	Clip   int     `yaml:"clip"`
	FPS    float32 `yaml:"fps"`
	Frames int     `yaml:"frames"`
}

// Composition modes.
const (
	CompositionMatrix = "matrix"
	CompositionTRS    = "trs"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Scene: SceneConfig{
			SceneIndex:           -1,
			RequireNormalTexture: true,
			Composition:          CompositionMatrix,
		},
		Animation: AnimationConfig{
			Clip:   0,
			FPS:    60,
			Frames: 10,
		},
	}
}
