package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestTranslateMovesEyeAndTarget(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{0, 10, 0}), WithAt(mgl32.Vec3{0, 0, 0}))
	c.Translate(mgl32.Vec3{1, 0, -2})

	assert.Equal(t, mgl32.Vec3{1, 10, -2}, c.Eye())
	assert.Equal(t, mgl32.Vec3{1, 0, -2}, c.At())
}

func TestOrbitKeepsDistance(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{0, 0, 10}), WithAt(mgl32.Vec3{0, 0, 0}))
	c.Orbit(0, 90)

	at := c.At()
	assert.InDelta(t, 10, at.Sub(c.Eye()).Len(), 1e-4)
	assert.InDelta(t, -10, at.X(), 1e-4)
}

func TestViewMatrixLooksDownTarget(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{0, 50, 0}), WithAt(mgl32.Vec3{0, 0, 0}), WithUp(mgl32.Vec3{0, 0, 1}))
	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})

	// the target sits on the view axis, 50 units in front of the eye
	assert.InDelta(t, 0, p.X(), 1e-4)
	assert.InDelta(t, 0, p.Y(), 1e-4)
	assert.InDelta(t, -50, p.Z(), 1e-4)

	c.SetAspect(-1)
	assert.InDelta(t, 16.0/9.0, c.Aspect(), 1e-6)
}

func TestRollKeepsViewDirection(t *testing.T) {
	c := NewCamera(WithEye(mgl32.Vec3{0, 0, 10}), WithAt(mgl32.Vec3{0, 0, 0}), WithUp(mgl32.Vec3{0, 1, 0}))
	c.Roll(90)

	up := c.Up()
	assert.InDelta(t, 1, up.X(), 1e-4)
	assert.InDelta(t, 0, up.Y(), 1e-4)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, c.At())
}
