package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagLenient = flag.Bool("lenient", false, "Accept materials without a normal texture")
	flagTRS     = flag.Bool("trs", false, "Compose transforms channel-wise instead of by matrix")
	flagScene   = flag.Int("scene", -1, "Scene index to load (-1 = document default)")
	flagClip    = flag.Int("clip", -1, "Animation clip to play")
	flagFPS     = flag.Float64("fps", 0, "Animation tick rate")
	flagFrames  = flag.Int("frames", 0, "Number of animation frames to step")
)

// ParseFlags parses command-line flags from args (typically the arguments
// after the subcommand) and returns the remaining positional arguments.
func ParseFlags(args []string) ([]string, error) {
	if err := flag.CommandLine.Parse(args); err != nil {
		return nil, err
	}
	return flag.CommandLine.Args(), nil
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLenient {
		cfg.Scene.RequireNormalTexture = false
	}
	if *flagTRS {
		cfg.Scene.Composition = CompositionTRS
	}
	if *flagScene >= 0 {
		cfg.Scene.SceneIndex = *flagScene
	}
	if *flagClip >= 0 {
		cfg.Animation.Clip = *flagClip
	}
	if *flagFPS > 0 {
		cfg.Animation.FPS = float32(*flagFPS)
	}
	if *flagFrames > 0 {
		cfg.Animation.Frames = *flagFrames
	}
}
