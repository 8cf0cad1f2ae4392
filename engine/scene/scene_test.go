package scene

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundsCoverEveryMesh(t *testing.T) {
	s := NewScene(WithMeshes(
		model.Box("a", mgl32.Vec3{-1, 0, -1}, mgl32.Vec3{1, 2, 1}, common.ColorWhite),
		model.Box("b", mgl32.Vec3{4, -3, 0}, mgl32.Vec3{6, 1, 8}, common.ColorWhite),
	))

	lo, hi := s.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, -3, -1}, lo)
	assert.Equal(t, mgl32.Vec3{6, 2, 8}, hi)
	assert.Equal(t, mgl32.Vec3{2.5, -0.5, 3.5}, s.Centroid())
}

func TestTransformComposesTranslationAndRotation(t *testing.T) {
	s := NewScene()
	s.Translate(mgl32.Vec3{1, 0, 0})
	s.Translate(mgl32.Vec3{0, 2, 0})
	s.Rotate(mgl32.Vec3{0, 90, 0})

	assert.Equal(t, mgl32.Vec3{1, 2, 0}, s.Translation())
	assert.Equal(t, mgl32.Vec3{0, 90, 0}, s.Rotation())

	// +X rotated 90 degrees about Y lands on -Z, then the translation applies
	p := s.Transform().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1, p.X(), 1e-5)
	assert.InDelta(t, 2, p.Y(), 1e-5)
	assert.InDelta(t, -1, p.Z(), 1e-5)
}

func TestMeshesReturnsCopy(t *testing.T) {
	s := NewDefaultScene()
	meshes := s.Meshes()
	require.Len(t, meshes, len(DefaultMeshes()))

	meshes[0] = nil
	assert.NotNil(t, s.Meshes()[0])
	assert.Equal(t, "default", s.Name())
}

func TestAnimationStateMachine(t *testing.T) {
	a := NewAnimation()
	assert.False(t, a.Enabled())
	assert.Zero(t, a.Step())

	a.Toggle()
	assert.True(t, a.Enabled())
	assert.Equal(t, float32(-180), a.Step())
	assert.InDelta(t, -179.4, a.Step(), 1e-4)

	a.Toggle()
	assert.True(t, a.Frozen())
	frozen := a.Degrees()
	a.Step()
	a.Step()
	assert.Equal(t, frozen, a.Degrees())

	a.Toggle()
	assert.False(t, a.Frozen())
	a.Step()
	assert.Greater(t, a.Degrees(), frozen)
}

func TestAnimationWraps(t *testing.T) {
	a := NewAnimation()
	a.Toggle()

	steps := (AnimationEnd - AnimationStart) / AnimationStep
	for range steps - 1 {
		a.Step()
	}
	assert.InDelta(t, 179.4, a.Step(), 1e-4)
	assert.Equal(t, float32(-180), a.Degrees())
}
