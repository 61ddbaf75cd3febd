package camera

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ThatOtherAndrew/Layerview/internal/models"
)

func assertOrthonormal(t *testing.T, m mgl64.Mat3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, 1, m.Row(i).Len(), 1e-9, "row %d length", i)
		for j := i + 1; j < 3; j++ {
			assert.InDelta(t, 0, m.Row(i).Dot(m.Row(j)), 1e-9, "rows %d,%d", i, j)
		}
	}
	assert.InDelta(t, 1, m.Det(), 1e-9)
}

func TestDefaultIsOrthonormal(t *testing.T) {
	s := Default()
	assertOrthonormal(t, s.Rotation)
	assert.Equal(t, 1.0, s.Scale)
	assert.Zero(t, s.OffsetX)
	assert.Zero(t, s.Rotation2D)
}

func TestRotateByStaysOrthonormal(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := Default()
	for range 10000 {
		dx := rng.Float64()*400 - 200
		dy := rng.Float64()*400 - 200
		s = s.RotateBy(dx, dy, DefaultSensitivity.At(math.Hypot(dx, dy)))
	}
	assertOrthonormal(t, s.Rotation)
}

func TestRotateByComposesInCurrentFrame(t *testing.T) {
	s := State{Rotation: mgl64.Ident3(), Scale: 1}

	s = s.RotateBy(100, 0, 0.01)
	want := mgl64.Rotate3DY(1)
	assert.True(t, s.Rotation.ApproxEqualThreshold(want, 1e-12))

	s = s.RotateBy(0, -50, 0.01)
	want = mgl64.Rotate3DX(0.5).Mul3(mgl64.Rotate3DY(1))
	assert.True(t, s.Rotation.ApproxEqualThreshold(want, 1e-12))
}

func TestRotateByKeepsLastGoodOnNaN(t *testing.T) {
	s := Default()
	got := s.RotateBy(math.NaN(), 1, 0.01)
	assert.Equal(t, s.Rotation, got.Rotation)

	got = s.RotateBy(math.Inf(1), 0, 0.01)
	assert.Equal(t, s.Rotation, got.Rotation)
}

func TestZoomClamps(t *testing.T) {
	s := Default()
	for range 200 {
		s = s.Zoom(1, 0.5)
		require.GreaterOrEqual(t, s.Scale, MinScale)
	}
	assert.Equal(t, MinScale, s.Scale)

	for range 200 {
		s = s.Zoom(-1, 0.5)
		require.LessOrEqual(t, s.Scale, float64(MaxScale))
	}
	assert.Equal(t, float64(MaxScale), s.Scale)

	s = Default().ZoomBy(1e9)
	assert.Equal(t, float64(MaxScale), s.Scale)
	s = Default().ZoomBy(0)
	assert.Equal(t, MinScale, s.Scale)
	s = Default().ZoomBy(math.NaN())
	assert.Equal(t, 1.0, s.Scale)
}

func TestZoomDirection(t *testing.T) {
	assert.InDelta(t, 0.9, Default().Zoom(3, 0.1).Scale, 1e-12)
	assert.InDelta(t, 1.1, Default().Zoom(-3, 0.1).Scale, 1e-12)
	assert.Equal(t, Default(), Default().Zoom(0, 0.1))
}

func TestPanDamped(t *testing.T) {
	s := Default().Pan(10, -20, 0.8)
	assert.InDelta(t, 8, s.OffsetX, 1e-12)
	assert.InDelta(t, -16, s.OffsetY, 1e-12)

	s = s.Pan(math.NaN(), 1, 0.8)
	assert.InDelta(t, 8, s.OffsetX, 1e-12)
}

func TestValueSemantics(t *testing.T) {
	s := Default()
	before := s
	_ = s.RotateBy(10, 10, 0.01).Pan(5, 5, 1).ZoomBy(2)
	assert.Equal(t, before, s)
}

func TestProject3D(t *testing.T) {
	s := State{Rotation: mgl64.Ident3(), Scale: 2}

	p := s.Project(mgl64.Vec3{10, 5, 0}, models.View3D, 400, 1)
	assert.InDelta(t, 20, p.X, 1e-12)
	assert.InDelta(t, 10, p.Y, 1e-12)
	assert.Zero(t, p.Depth)

	p = s.Project(mgl64.Vec3{10, 0, 400}, models.View3D, 400, 1)
	assert.InDelta(t, 10, p.X, 1e-12)
	assert.Equal(t, 400.0, p.Depth)
}

func TestProjectBehindEyeStaysFinite(t *testing.T) {
	s := State{Rotation: mgl64.Ident3(), Scale: 1}
	for _, z := range []float64{-400, -399.999, -1000} {
		p := s.Project(mgl64.Vec3{1, 1, z}, models.View3D, 400, 1)
		assert.False(t, math.IsInf(p.X, 0) || math.IsNaN(p.X), "z=%v", z)
	}
}

func TestProject2D(t *testing.T) {
	s := Default()
	s.Rotation2D = math.Pi / 2

	p := s.Project(mgl64.Vec3{1, 0, 99}, models.View2D, 400, 10)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, 10, p.Y, 1e-9)
	assert.Zero(t, p.Depth)

	s.Rotation2D = 0
	p = s.Project(mgl64.Vec3{0, 1, 0}, models.View2D, 400, 10)
	assert.InDelta(t, -10, p.Y, 1e-9)
}

func TestPresets(t *testing.T) {
	s := Default().Pan(30, 30, 1).ZoomBy(3)

	top := s.Apply(Top)
	assert.Equal(t, mgl64.Ident3(), top.Rotation)
	assert.Equal(t, s.Scale, top.Scale)
	assert.Equal(t, s.OffsetX, top.OffsetX)

	for _, p := range []Preset{Front, Side, Isometric} {
		assertOrthonormal(t, s.Apply(p).Rotation)
	}
	assert.True(t, s.Apply(Front).Rotation.ApproxEqual(mgl64.Rotate3DX(math.Pi/2)))
	assert.True(t, s.Apply(Side).Rotation.ApproxEqual(mgl64.Rotate3DY(math.Pi/2)))

	assert.Equal(t, Default(), s.Apply(Reset))
}

func TestParsePreset(t *testing.T) {
	for in, want := range map[string]Preset{
		"top": Top, " Front ": Front, "SIDE": Side, "iso": Isometric, "isometric": Isometric, "reset": Reset,
	} {
		got, err := ParsePreset(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParsePreset("bottom")
	assert.Error(t, err)
}

func TestSensitivity(t *testing.T) {
	s := DefaultSensitivity
	assert.InDelta(t, 0.006, s.At(0), 1e-12)
	assert.InDelta(t, 0.008, s.At(100), 1e-12)
	assert.InDelta(t, 0.012, s.At(1000), 1e-12)
	assert.Less(t, s.At(10), s.At(200))
}
