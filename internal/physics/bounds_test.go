package physics

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/stretchr/testify/require"
)

func TestNewBoundsNormalizesSize(t *testing.T) {
	b := NewBounds(rl.Vector3{}, rl.Vector3{X: -2, Y: 4, Z: -6})
	require.Equal(t, rl.Vector3{X: 2, Y: 4, Z: 6}, b.Size)
	require.Equal(t, rl.Vector3{X: -1, Y: -2, Z: -3}, b.Min())
	require.Equal(t, rl.Vector3{X: 1, Y: 2, Z: 3}, b.Max())
}

func TestBoundsContains(t *testing.T) {
	b := NewBounds(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})

	require.True(t, b.Contains(rl.Vector3{}))
	require.True(t, b.Contains(rl.Vector3{X: 1, Y: 1, Z: 1}), "surface points are inside")
	require.False(t, b.Contains(rl.Vector3{X: 1.01}))
}

func TestBoundsSqrDistance(t *testing.T) {
	b := NewBoundsMinMax(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})

	tests := []struct {
		name  string
		point rl.Vector3
		want  float32
	}{
		{name: "inside", point: rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}, want: 0},
		{name: "corner", point: rl.Vector3{}, want: 0},
		{name: "face", point: rl.Vector3{X: 3, Y: 0.5, Z: 0.5}, want: 4},
		{name: "edge", point: rl.Vector3{X: -1, Y: -1, Z: 0.5}, want: 2},
		{name: "vertex", point: rl.Vector3{X: 2, Y: 2, Z: 2}, want: 3},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.InDelta(t, test.want, b.SqrDistance(test.point), 1e-6)
		})
	}
}

func TestBoundsSqrDistanceBounds(t *testing.T) {
	a := NewBounds(rl.Vector3{}, rl.Vector3{X: 2, Y: 2, Z: 2})

	require.Zero(t, a.SqrDistanceBounds(NewBounds(rl.Vector3{X: 1.5}, rl.Vector3{X: 1, Y: 1, Z: 1})))
	require.Zero(t, a.SqrDistanceBounds(NewBounds(rl.Vector3{X: 2}, rl.Vector3{X: 2, Y: 2, Z: 2})), "touching faces")
	require.InDelta(t, 4, a.SqrDistanceBounds(NewBounds(rl.Vector3{X: 4}, rl.Vector3{X: 2, Y: 2, Z: 2})), 1e-6)
	require.InDelta(t, 8, a.SqrDistanceBounds(NewBounds(rl.Vector3{X: 4, Y: -4}, rl.Vector3{X: 2, Y: 2, Z: 2})), 1e-6)
}

func TestBoundsEncapsulate(t *testing.T) {
	a := NewBoundsMinMax(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	b := NewBoundsMinMax(rl.Vector3{X: 2, Y: -1, Z: 0}, rl.Vector3{X: 3, Y: 0, Z: 1})

	u := a.Encapsulate(b)
	require.Equal(t, rl.Vector3{X: 0, Y: -1, Z: 0}, u.Min())
	require.Equal(t, rl.Vector3{X: 3, Y: 1, Z: 1}, u.Max())
	require.Equal(t, u, b.Encapsulate(a))
}

func TestBoundsSplit(t *testing.T) {
	b := NewBoundsMinMax(rl.Vector3{}, rl.Vector3{X: 8, Y: 4, Z: 2})
	require.Equal(t, AxisX, b.LongestAxis())

	lower, upper := b.Split(AxisX)
	require.Equal(t, rl.Vector3{}, lower.Min())
	require.Equal(t, rl.Vector3{X: 4, Y: 4, Z: 2}, lower.Max())
	require.Equal(t, rl.Vector3{X: 4}, upper.Min())
	require.Equal(t, b.Max(), upper.Max())
	require.Equal(t, b, lower.Encapsulate(upper))
}

func TestLongestAxisTieBreak(t *testing.T) {
	b := NewBounds(rl.Vector3{}, rl.Vector3{X: 1, Y: 2, Z: 2})
	require.Equal(t, AxisY, b.LongestAxis())
}

func TestBoundsTransformed(t *testing.T) {
	local := NewBounds(rl.Vector3{X: 1}, rl.Vector3{X: 2, Y: 2, Z: 2})
	world := local.Transformed(rl.Vector3{Y: 5}, rl.Vector3{X: 2, Y: 1, Z: 1})

	require.Equal(t, rl.Vector3{X: 2, Y: 5}, world.Center)
	require.Equal(t, rl.Vector3{X: 4, Y: 2, Z: 2}, world.Size)
}

func TestRaycastBounds(t *testing.T) {
	b := NewBounds(rl.Vector3{Z: 10}, rl.Vector3{X: 2, Y: 2, Z: 2})

	hit, ok := RaycastBounds(rl.Vector3{}, rl.Vector3{Z: 1}, b, 100)
	require.True(t, ok)
	require.InDelta(t, 9, hit.Distance, 1e-5)
	require.Equal(t, rl.Vector3{Z: -1}, hit.Normal)

	_, ok = RaycastBounds(rl.Vector3{}, rl.Vector3{Z: 1}, b, 5)
	require.False(t, ok, "beyond max distance")

	_, ok = RaycastBounds(rl.Vector3{}, rl.Vector3{Z: -1}, b, 100)
	require.False(t, ok, "pointing away")

	_, ok = RaycastBounds(rl.Vector3{X: 5}, rl.Vector3{Z: 1}, b, 100)
	require.False(t, ok, "parallel miss")
}
