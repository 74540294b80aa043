// scenetool is a CLI utility for inspecting glTF scene graphs: buffer
// statistics, ordered draw lists and animation playback.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/scenegraph/internal/animation"
	"github.com/Faultbox/scenegraph/internal/config"
	"github.com/Faultbox/scenegraph/internal/gltfsource"
	"github.com/Faultbox/scenegraph/internal/logger"
	"github.com/Faultbox/scenegraph/internal/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "draw":
		cmdDraw(args)
	case "animate", "play":
		cmdAnimate(args)
	case "init":
		cmdInit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenetool - glTF scene graph utility

Usage:
  scenetool <command> [options] <file>

Commands:
  info <file>      Show node, mesh, material and buffer counts
  draw <file>      List draw units in traversal order
  animate <file>   Step an animation clip and print animated world positions
  init [path]      Write a default config file (default ./scenetool.yaml)

Options:
  -config <path>   Config file
  -debug           Debug logging
  -lenient         Accept materials without a normal texture
  -trs             Compose transforms channel-wise
  -scene <n>       Scene index (-1 = document default)
  -clip <n>        Animation clip (animate)
  -fps <n>         Tick rate (animate)
  -frames <n>      Frames to step (animate)

Examples:
  scenetool info model.glb
  scenetool draw -lenient model.gltf
  scenetool animate -clip 1 -fps 30 -frames 60 model.glb`)
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	logger.Sync()
	os.Exit(1)
}

// setup parses flags, loads config and initialises logging. It returns the
// positional arguments left after the flags.
func setup(args []string) (*config.Config, []string) {
	rest, err := config.ParseFlags(args)
	if err != nil {
		fail("%v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fail("%v", err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fail("init logger: %v", err)
	}
	return cfg, rest
}

func buildOptions(cfg *config.Config) scene.BuildOptions {
	opts := scene.DefaultBuildOptions()
	opts.RequireNormalTexture = cfg.Scene.RequireNormalTexture
	if cfg.Scene.Composition == config.CompositionTRS {
		opts.Composition = scene.CompositionTRS
	}
	return opts
}

// load opens the file named in rest and builds its scene graph.
func load(cfg *config.Config, rest []string, usage string) (*gltfsource.Asset, *scene.Model) {
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: scenetool "+usage)
		os.Exit(1)
	}

	asset, err := gltfsource.Open(rest[0], cfg.Scene.SceneIndex)
	if err != nil {
		fail("%v", err)
	}
	model, err := scene.Build(&asset.Source, buildOptions(cfg))
	if err != nil {
		fail("%v", err)
	}
	logger.Info("scene loaded",
		zap.String("file", rest[0]),
		zap.Int("nodes", len(model.Nodes)),
		zap.Int("primitives", model.PrimitiveCount()))
	return asset, model
}

func cmdInfo(args []string) {
	cfg, rest := setup(args)
	asset, model := load(cfg, rest, "info <file>")
	defer logger.Sync()

	fmt.Printf("File:       %s\n", rest[0])
	fmt.Printf("Nodes:      %d (%d roots)\n", len(model.Nodes), len(model.Roots))
	fmt.Printf("Meshes:     %d\n", len(asset.Source.Meshes))
	fmt.Printf("Primitives: %d\n", model.PrimitiveCount())
	fmt.Printf("Materials:  %d\n", len(model.Materials))
	fmt.Printf("Textures:   %d\n", len(model.Textures))
	fmt.Printf("Images:     %d\n", len(model.Images))
	fmt.Printf("Clips:      %d\n", len(asset.Clips))
	fmt.Println()
	fmt.Printf("Vertices:   %d (%.2f KB)\n", len(model.Vertices), float64(len(model.Vertices)*scene.VertexStride)/1024)
	fmt.Printf("Indices:    %d (%.2f KB)\n", len(model.Indices), float64(len(model.Indices)*4)/1024)
	fmt.Printf("Bounds:     %v - %v\n", model.Bounds.Min, model.Bounds.Max)

	if len(asset.Clips) > 0 {
		fmt.Println()
		fmt.Println("Clips:")
		for i, c := range asset.Clips {
			fmt.Printf("  %2d  %-24s %d channels\n", i, c.Name, len(c.Channels))
		}
	}
}

func cmdDraw(args []string) {
	cfg, rest := setup(args)
	_, model := load(cfg, rest, "draw <file>")
	defer logger.Sync()

	fmt.Printf("%-4s %-24s %-28s %-16s %-8s %s\n", "#", "node", "world translation", "indices", "material", "slots")
	n := 0
	model.Traverse(func(u scene.DrawUnit) {
		t := u.World.Translation()
		fmt.Printf("%-4d %-24s %-28s %-16s %-8s %v\n",
			n,
			model.Nodes[u.Node].Name,
			fmt.Sprintf("(%.3f, %.3f, %.3f)", t.X, t.Y, t.Z),
			fmt.Sprintf("%d+%d", u.FirstIndex, u.IndexCount),
			u.Material,
			u.Binding.Slots)
		n++
	})
	fmt.Fprintf(os.Stderr, "\n(%d draw units)\n", n)
}

func cmdAnimate(args []string) {
	cfg, rest := setup(args)
	asset, model := load(cfg, rest, "animate <file>")
	defer logger.Sync()

	if len(asset.Clips) == 0 {
		fail("%s has no animations", rest[0])
	}
	idx := cfg.Animation.Clip
	if idx < 0 || idx >= len(asset.Clips) {
		fail("clip %d out of range [0,%d)", idx, len(asset.Clips))
	}

	src := asset.Clips[idx]
	clip, err := animation.NewClip(model, src.Name, src.Channels)
	if err != nil {
		fail("%v", err)
	}
	player := animation.NewPlayer(model, clip)
	nodes := player.Nodes()

	dt := 1 / cfg.Animation.FPS
	fmt.Printf("Clip %q: %d tracks, %.3fs loop, %d frames at %.1f fps\n",
		clip.Name, len(clip.Tracks), clip.Duration(), cfg.Animation.Frames, cfg.Animation.FPS)

	for frame := 1; frame <= cfg.Animation.Frames; frame++ {
		if err := player.Tick(dt); err != nil {
			fail("frame %d: %v", frame, err)
		}
		fmt.Printf("frame %d (t=%.3f)\n", frame, float32(frame)*dt)
		for _, node := range nodes {
			t := model.World(node).Translation()
			fmt.Printf("  %-24s (%.3f, %.3f, %.3f)\n", model.Nodes[node].Name, t.X, t.Y, t.Z)
		}
	}
}

func cmdInit(args []string) {
	rest, err := config.ParseFlags(args)
	if err != nil {
		fail("%v", err)
	}
	path := "scenetool.yaml"
	if len(rest) > 0 {
		path = rest[0]
	}
	if _, err := os.Stat(path); err == nil {
		fail("%s already exists", path)
	}
	if err := config.Default().SaveTo(path); err != nil {
		fail("%v", err)
	}
	fmt.Printf("Wrote %s\n", path)
}
