package light

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleGridCoversLight(t *testing.T) {
	l := NewAreaLight(WithPosition(mgl32.Vec3{0, 100, 0}), WithSize(32), WithSampleCount(64))
	require.Equal(t, 64, l.SampleCount())
	assert.Equal(t, float32(16), l.Radius())

	var sum mgl32.Vec3
	for k := 0; k < l.SampleCount(); k++ {
		eye := l.Eye(k)
		// samples lie on the plane of the light, inside its square
		assert.InDelta(t, 100, eye.Y(), 1e-4)
		assert.LessOrEqual(t, abs(eye.X()), float32(16))
		assert.LessOrEqual(t, abs(eye.Z()), float32(16))
		sum = sum.Add(eye)
	}
	mean := sum.Mul(1.0 / 64)
	assert.True(t, mean.ApproxEqualThreshold(l.Eye(CenterSample), 1e-3))
}

func TestZeroSizeSamplesCoincide(t *testing.T) {
	l := NewAreaLight(WithSize(0), WithSampleCount(16))
	for k := 0; k < 16; k++ {
		assert.Equal(t, l.Eye(CenterSample), l.Eye(k))
	}
}

func TestTranslationAndRotation(t *testing.T) {
	l := NewAreaLight(WithPosition(mgl32.Vec3{10, 100, 0}))
	l.Translate(mgl32.Vec3{0, 5, 0})
	assert.Equal(t, mgl32.Vec3{10, 105, 0}, l.Eye(CenterSample))

	l.SetRotation(180)
	eye := l.Eye(CenterSample)
	assert.InDelta(t, -10, eye.X(), 1e-4)

	mirrored := l.ShadingEye(CenterSample)
	assert.InDelta(t, 10, mirrored.X(), 1e-4)
}

func TestInvalidSampleCountPanics(t *testing.T) {
	assert.Panics(t, func() { NewAreaLight(WithSampleCount(0)) })
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestShadowUniformsLayout(t *testing.T) {
	var u GPUShadowUniforms
	assert.Equal(t, 416, u.Size())
	assert.Equal(t, uintptr(320), unsafe.Offsetof(u.LightEye))
	assert.Equal(t, uintptr(384), unsafe.Offsetof(u.Iteration))
	assert.Equal(t, uintptr(400), unsafe.Offsetof(u.ShadowMapSize))
	assert.Contains(t, GPUShadowUniformsSource, "struct ShadowUniforms")
	assert.Contains(t, GPUShadowUniformsSource, "shadow_map_size: f32")
}
