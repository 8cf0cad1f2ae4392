package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestPerspectiveDepthRange(t *testing.T) {
	const near, far = float32(1), float32(200)
	proj := Perspective(mgl32.DegToRad(90), 1, near, far)

	specs := []struct {
		name string
		dist float32
	}{
		{"near plane", near},
		{"midway", 100},
		{"far plane", far},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			clip := proj.Mul4x1(mgl32.Vec4{0, 0, -spec.dist, 1})
			ndc := clip.Z() / clip.W()
			assert.GreaterOrEqual(t, ndc, float32(-1e-6))
			assert.LessOrEqual(t, ndc, float32(1+1e-6))
			assert.InDelta(t, NormalizedDistance(spec.dist, near, far), LinearizeDepth(ndc, near, far), 1e-4)
		})
	}
}

func TestLog2AndPowerOfTwo(t *testing.T) {
	specs := []struct {
		n      int
		log    int
		isPow2 bool
	}{
		{1, 0, true},
		{2, 1, true},
		{3, 1, false},
		{64, 6, true},
		{1000, 9, false},
		{1024, 10, true},
		{0, 0, false},
	}

	for _, spec := range specs {
		assert.Equal(t, spec.log, Log2(spec.n), "Log2(%d)", spec.n)
		assert.Equal(t, spec.isPow2, IsPowerOfTwo(spec.n), "IsPowerOfTwo(%d)", spec.n)
	}
	assert.Equal(t, 11, MipLevelCount(1024))
	assert.Equal(t, 1, MipSize(4, 5))
}

func TestSceneTransformOrder(t *testing.T) {
	m := SceneTransform(mgl32.Vec3{10, 0, 0}, mgl32.Vec3{0, 90, 0})
	p := m.Mul4x1(mgl32.Vec4{1, 0, 0, 1})

	// rotation is applied to the point before the translation
	assert.InDelta(t, 10, p.X(), 1e-5)
	assert.InDelta(t, 0, p.Y(), 1e-5)
	assert.InDelta(t, -1, p.Z(), 1e-5)

	r := RotateAboutY(mgl32.Vec3{0, 0, 1}, 180)
	assert.InDelta(t, -1, r.Z(), 1e-5)
}
