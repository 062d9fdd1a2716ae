// Package config reads the culling configuration from YAML.
package config

import (
	"io"
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const ErrTypeInvalidConfig = "invalid_config"

const (
	SplitLongest = "longest"
	SplitCycle   = "cycle"
)

type Config struct {
	LogLevel string  `yaml:"log_level" default:"info" validate:"oneof=debug info warning error"`
	Static   Static  `yaml:"static"`
	Dynamic  Dynamic `yaml:"dynamic"`
	Bake     Bake    `yaml:"bake"`
}

// Static configures the precomputed visibility tree.
type Static struct {
	MinCellSize float32 `yaml:"min_cell_size" default:"1" validate:"gt=0"`
	MaxDepth    int     `yaml:"max_depth" default:"32" validate:"min=1,max=64"`
	Split       string  `yaml:"split" default:"longest" validate:"oneof=longest cycle"`

	// Tolerance is added, in world units, to every query radius.
	Tolerance float32 `yaml:"tolerance" validate:"gte=0"`

	// CellRadius is the query radius in cells.
	CellRadius    float32 `yaml:"cell_radius" default:"1.5" validate:"gt=0"`
	MoveThreshold float32 `yaml:"move_threshold" default:"0.25" validate:"gte=0"`
}

type Dynamic struct {
	// ObjectsLifetime is the number of ticks a target stays visible after
	// its last proxy hit.
	ObjectsLifetime int  `yaml:"objects_lifetime" default:"30" validate:"min=1"`
	KeepShadows     bool `yaml:"keep_shadows" default:"true"`
	RayFan          int  `yaml:"ray_fan" default:"24" validate:"min=1,max=256"`
}

type Bake struct {
	ViewDistance float32 `yaml:"view_distance" default:"20" validate:"gt=0"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	// defaults only fails on malformed tags
	if err := defaults.Set(&c); err != nil {
		panic(err)
	}
	return c
}

// Load reads a YAML file. Missing keys keep their defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, errors.New("opening config file failed").
			WithType(ErrTypeInvalidConfig).
			WithTag("path", path).
			Wrap(err)
	}
	defer f.Close()

	c, err := Decode(f)
	if err != nil {
		return Config{}, errors.New("loading config failed").
			WithType(ErrTypeInvalidConfig).
			WithTag("path", path).
			Wrap(err)
	}
	return c, nil
}

func Decode(r io.Reader) (Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return Config{}, errors.New("decoding yaml failed").
			WithType(ErrTypeInvalidConfig).
			Wrap(err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return errors.New("invalid config").
			WithType(ErrTypeInvalidConfig).
			Wrap(err)
	}
	return nil
}
