package main

import (
	"context"
	"os"
	"reflect"
	"syscall"
	"time"

	"culling3d/internal/config"
	"culling3d/internal/pvs"
	"culling3d/internal/world"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

// Keeps the option names readable when the binary is obfuscated.
var _ = reflect.TypeOf(options{})

type options struct {
	Scene     string `cli:"" env:"CULLBAKE_SCENE"      help:"The scene file to bake."`
	Output    string `cli:"" env:"CULLBAKE_OUTPUT"     help:"The bake file to write."`
	Config    string `cli:"" env:"CULLBAKE_CONFIG"     help:"The YAML culling configuration. Defaults apply when empty."`
	LogLevel  string `cli:"" env:"CULLBAKE_LOG_LEVEL"  help:"Log level (debug|info|warning|error). Overrides the configuration."`
	LogIndent bool   `cli:"" env:"CULLBAKE_LOG_INDENT" help:"Indent logs."`
	WriteIDs  bool   `cli:"" env:"-"                   help:"Write generated object ids back to the scene file."`
	Help      bool   `cli:"" env:"-"                   help:"Show help."`
}

func main() {
	opts := options{
		Scene:  "scene.json",
		Output: "scene.pvs",
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Bakes the static visibility tree of a scene.").
		Options(&opts)
	cli.Load()

	cfg := config.Default()
	if opts.Config != "" {
		var err error
		if cfg, err = config.Load(opts.Config); err != nil {
			logs.Fatal(err)
		}
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}

	logs.SetLevel(logs.ParseLevel(cfg.LogLevel))
	logs.Encoder = json.Marshal
	if opts.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}
	errors.Encoder = json.Marshal

	if err := bake(ctx, opts, cfg); err != nil {
		logs.Fatal(err)
	}
}

func bake(ctx context.Context, opts options, cfg config.Config) error {
	start := time.Now()

	w := world.New(cfg)
	generated, err := w.LoadScene(opts.Scene)
	if err != nil {
		return err
	}
	if generated > 0 {
		if !opts.WriteIDs {
			return errors.New("scene has objects without ids, bake targets would not resolve").
				WithTag("scene", opts.Scene).
				WithTag("missing_ids", generated)
		}
		if err := w.SaveScene(opts.Scene); err != nil {
			return err
		}
		logs.WithTag("scene", opts.Scene).
			WithTag("ids", generated).
			Info("object ids written")
	}
	w.Initialize()

	if err := ctx.Err(); err != nil {
		return errors.New("bake interrupted").Wrap(err)
	}

	tree, err := w.Bake(pvs.DistanceSampler{ViewDistance: cfg.Bake.ViewDistance})
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return errors.New("bake interrupted").Wrap(err)
	}

	f, err := os.Create(opts.Output)
	if err != nil {
		return errors.New("creating bake file failed").
			WithTag("path", opts.Output).
			Wrap(err)
	}
	defer f.Close()

	if err := tree.Save(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return errors.New("closing bake file failed").Wrap(err)
	}

	stats := tree.Stats()
	logs.WithTag("output", opts.Output).
		WithTag("nodes", stats.Nodes).
		WithTag("leaves", stats.Leaves).
		WithTag("depth", stats.Depth).
		WithTag("targets", stats.Targets).
		WithTag("references", stats.References).
		WithTag("duration", time.Since(start).String()).
		Info("static visibility baked")
	return nil
}
