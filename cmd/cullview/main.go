package main

import (
	"context"
	"net/http"
	"os"
	"reflect"
	"syscall"

	"culling3d/internal/config"
	"culling3d/internal/world"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

// Keeps the option names readable when the binary is obfuscated.
var _ = reflect.TypeOf(options{})

type options struct {
	Scene       string `cli:"" env:"CULLVIEW_SCENE"        help:"The scene file to display."`
	Bake        string `cli:"" env:"CULLVIEW_BAKE"         help:"The bake file produced by cullbake. Static culling is off when empty."`
	Config      string `cli:"" env:"CULLVIEW_CONFIG"       help:"The YAML culling configuration. Defaults apply when empty."`
	LogLevel    string `cli:"" env:"CULLVIEW_LOG_LEVEL"    help:"Log level (debug|info|warning|error). Overrides the configuration."`
	MetricsAddr string `cli:"" env:"CULLVIEW_METRICS_ADDR" help:"Listening address for Prometheus metrics. Disabled when empty."`
	Help        bool   `cli:"" env:"-"                     help:"Show help."`
}

func main() {
	opts := options{
		Scene: "scene.json",
	}

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Displays a scene with static and dynamic culling.").
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
	errors.Encoder = json.Marshal

	if opts.MetricsAddr != "" {
		go serveMetrics(opts.MetricsAddr)
	}

	w := world.New(cfg)
	if _, err := w.LoadScene(opts.Scene); err != nil {
		logs.Fatal(err)
	}
	w.Initialize()

	if opts.Bake != "" {
		if err := loadBake(w, opts.Bake); err != nil {
			logs.Fatal(err)
		}
	}

	newViewer(w).Run(ctx)
}

func loadBake(w *world.World, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.New("opening bake file failed").
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()
	return w.LoadBake(f)
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	logs.WithTag("addr", addr).Info("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logs.Warn(errors.New("metrics server stopped").
			WithTag("addr", addr).
			Wrap(err))
	}
}
