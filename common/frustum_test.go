package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestFrustumBoxTests(t *testing.T) {
	// looking down -Y from (0, 100, 0) with a 90 degree fov: the ground at y=0 is covered out to 100
	view := mgl32.LookAtV(mgl32.Vec3{0, 100, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 0, 1})
	f := ExtractFrustum(Perspective(mgl32.DegToRad(90), 1, 1, 1000).Mul4(view))

	specs := []struct {
		name       string
		lo, hi     mgl32.Vec3
		model      mgl32.Mat4
		contains   bool
		intersects bool
	}{
		{"small box at center", mgl32.Vec3{-10, 0, -10}, mgl32.Vec3{10, 10, 10}, mgl32.Ident4(), true, true},
		{"wide ground", mgl32.Vec3{-200, 0, -200}, mgl32.Vec3{200, 0, 200}, mgl32.Ident4(), false, true},
		{"beside the light", mgl32.Vec3{300, 0, 300}, mgl32.Vec3{320, 10, 320}, mgl32.Ident4(), false, false},
		{"above the light", mgl32.Vec3{-5, 120, -5}, mgl32.Vec3{5, 130, 5}, mgl32.Ident4(), false, false},
		{"translated out", mgl32.Vec3{-10, 0, -10}, mgl32.Vec3{10, 10, 10}, mgl32.Translate3D(500, 0, 0), false, false},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			corners := BoxCorners(spec.lo, spec.hi, spec.model)
			assert.Equal(t, spec.contains, f.ContainsBox(corners))
			assert.Equal(t, spec.intersects, f.IntersectsBox(corners))
		})
	}
}

func TestFrustumContainsPoint(t *testing.T) {
	f := ExtractFrustum(Perspective(mgl32.DegToRad(90), 1, 1, 100))

	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, -50}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, -0.5}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{0, 0, -150}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{60, 0, -50}))
}
