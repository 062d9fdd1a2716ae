package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, "info", c.LogLevel)
	require.Equal(t, float32(1), c.Static.MinCellSize)
	require.Equal(t, 32, c.Static.MaxDepth)
	require.Equal(t, SplitLongest, c.Static.Split)
	require.Equal(t, float32(1.5), c.Static.CellRadius)
	require.Equal(t, 30, c.Dynamic.ObjectsLifetime)
	require.True(t, c.Dynamic.KeepShadows)
	require.Equal(t, float32(20), c.Bake.ViewDistance)
	require.NoError(t, c.Validate())
}

func TestDecodeKeepsDefaults(t *testing.T) {
	c, err := Decode(strings.NewReader(`
static:
  min_cell_size: 2
  split: cycle
dynamic:
  keep_shadows: false
`))
	require.NoError(t, err)
	require.Equal(t, float32(2), c.Static.MinCellSize)
	require.Equal(t, SplitCycle, c.Static.Split)
	require.False(t, c.Dynamic.KeepShadows)
	require.Equal(t, 32, c.Static.MaxDepth)
	require.Equal(t, 30, c.Dynamic.ObjectsLifetime)
}

func TestDecodeEmpty(t *testing.T) {
	c, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestDecodeInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "negative cell size", yaml: "static:\n  min_cell_size: -1\n"},
		{name: "unknown split", yaml: "static:\n  split: diagonal\n"},
		{name: "zero lifetime", yaml: "dynamic:\n  objects_lifetime: 0\n"},
		{name: "bad log level", yaml: "log_level: loud\n"},
		{name: "malformed", yaml: "static: [\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(test.yaml))
			require.Error(t, err)
			require.Equal(t, ErrTypeInvalidConfig, errors.Type(err))
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "culling.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bake:\n  view_distance: 42\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, float32(42), c.Bake.ViewDistance)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Equal(t, ErrTypeInvalidConfig, errors.Type(err))
}
