package input

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTarget() *Target {
	return &Target{
		Config: technique.NewConfig(),
		Scene:  scene.NewScene(),
		Camera: camera.NewCamera(camera.WithEye(mgl32.Vec3{0, 10, 10}), camera.WithAt(mgl32.Vec3{0, 0, 0})),
		Light:  light.NewAreaLight(),
		Modes:  &Modes{},
	}
}

func press(t *testing.T, c Controller, target *Target, keys ...Key) {
	t.Helper()
	for _, k := range keys {
		require.True(t, c.KeyDown(k), "key %s", k)
	}
	require.NoError(t, c.Drain(target))
}

func TestTechniqueKeys(t *testing.T) {
	specs := []struct {
		key  Key
		want technique.Technique
	}{
		{Key1, technique.MonteCarlo},
		{Key2, technique.PCSS},
		{Key3, technique.SAVSM},
		{Key4, technique.VSSM},
		{Key5, technique.ESSM},
		{Key6, technique.MSSM},
	}
	for _, spec := range specs {
		t.Run(spec.want.String(), func(t *testing.T) {
			target := newTarget()
			press(t, NewController(), target, spec.key)
			assert.Equal(t, spec.want, target.Config.Selected())
		})
	}
}

func TestPCSSKeyDisablesSAT(t *testing.T) {
	target := newTarget()
	c := NewController()
	press(t, c, target, KeyS)
	require.True(t, target.Config.UseSAT())

	press(t, c, target, Key2)
	assert.False(t, target.Config.UseSAT())
}

func TestModeToggles(t *testing.T) {
	m := &Modes{}
	m.Toggle(ModeTranslation)
	assert.True(t, m.Translation)

	m.Toggle(ModeRotation)
	assert.True(t, m.Rotation)
	assert.False(t, m.Translation)

	m.Toggle(ModeTranslation)
	m.Toggle(ModeLightTranslation)
	assert.True(t, m.LightTranslation)
	assert.False(t, m.Translation)

	m.Toggle(ModeCamera)
	m.Toggle(ModeCamera)
	assert.False(t, m.Camera)
}

func TestMoveTargetsFollowModes(t *testing.T) {
	specs := []struct {
		name  string
		modes []Mode
		key   Key
		check func(t *testing.T, target *Target)
	}{
		{
			name:  "scene translation",
			modes: []Mode{ModeTranslation},
			key:   KeyUp,
			check: func(t *testing.T, target *Target) {
				assert.Equal(t, mgl32.Vec3{0, 1, 0}, target.Scene.Translation())
			},
		},
		{
			name:  "scene rotation",
			modes: []Mode{ModeRotation},
			key:   KeyLeft,
			check: func(t *testing.T, target *Target) {
				assert.Equal(t, mgl32.Vec3{-5, 0, 0}, target.Scene.Rotation())
			},
		},
		{
			name:  "camera translation",
			modes: []Mode{ModeCamera, ModeTranslation},
			key:   KeyPageDown,
			check: func(t *testing.T, target *Target) {
				assert.Equal(t, mgl32.Vec3{0, 10, 9}, target.Camera.Eye())
				assert.Equal(t, mgl32.Vec3{0, 0, -1}, target.Camera.At())
				assert.Equal(t, mgl32.Vec3{}, target.Scene.Translation())
			},
		},
		{
			name:  "light translation",
			modes: []Mode{ModeLightTranslation},
			key:   KeyRight,
			check: func(t *testing.T, target *Target) {
				assert.Equal(t, mgl32.Vec3{5, 0, 0}, target.Light.Translation())
			},
		},
		{
			name:  "intensity kernel and blocker",
			modes: []Mode{ModeShadowIntensity, ModeKernelSize, ModeBlockerSearchSize},
			key:   KeyDown,
			check: func(t *testing.T, target *Target) {
				snap := target.Config.Snapshot()
				assert.InDelta(t, technique.DefaultShadowIntensity-IntensityStep, snap.ShadowIntensity, 1e-6)
				assert.Equal(t, technique.DefaultKernelSize-1, snap.KernelSize)
				assert.Equal(t, technique.DefaultBlockerSearchSize-1, snap.BlockerSearchSize)
			},
		},
		{
			name:  "horizontal keys leave tunables alone",
			modes: []Mode{ModeKernelSize},
			key:   KeyLeft,
			check: func(t *testing.T, target *Target) {
				assert.Equal(t, technique.DefaultKernelSize, target.Config.Snapshot().KernelSize)
			},
		},
	}
	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			target := newTarget()
			for _, m := range spec.modes {
				target.Modes.Toggle(m)
			}
			press(t, NewController(), target, spec.key)
			spec.check(t, target)
		})
	}
}

func TestCameraRotationKeepsEye(t *testing.T) {
	target := newTarget()
	target.Modes.Toggle(ModeCamera)
	target.Modes.Toggle(ModeRotation)

	before := target.Camera.At().Sub(target.Camera.Eye()).Len()
	press(t, NewController(), target, KeyUp, KeyLeft, KeyPageUp)

	assert.Equal(t, mgl32.Vec3{0, 10, 10}, target.Camera.Eye())
	assert.InDelta(t, before, target.Camera.At().Sub(target.Camera.Eye()).Len(), 1e-4)
	assert.Equal(t, mgl32.Vec3{}, target.Scene.Rotation())
}

func TestAnimationAndQuitCommands(t *testing.T) {
	target := newTarget()
	quit := 0
	target.Quit = func() { quit++ }

	press(t, NewController(), target, KeyA, KeyV, KeyP, KeyEscape)
	assert.True(t, target.Scene.Animation().Enabled())
	assert.True(t, target.Config.Snapshot().VisibilityOnly)
	assert.Equal(t, 1, quit)
}

type failing struct{}

func (failing) Execute(*Target) error { return errors.New("boom") }
func (failing) String() string        { return "failing" }

func TestDrainRunsInOrderAndJoinsErrors(t *testing.T) {
	target := newTarget()
	c := NewController(WithQueueSize(4))
	c.Bind(KeyS, failing{})

	assert.True(t, c.KeyDown(Key2))
	assert.True(t, c.KeyDown(KeyS))
	assert.True(t, c.Enqueue(SelectTechnique{Technique: technique.ESSM}))
	assert.False(t, c.KeyDown(KeyUnknown))
	assert.Equal(t, 3, c.Pending())

	err := c.Drain(target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing: boom")
	assert.Equal(t, technique.ESSM, target.Config.Selected())
	assert.Zero(t, c.Pending())
}

func TestFullQueueDrops(t *testing.T) {
	c := NewController(WithQueueSize(1))
	assert.True(t, c.Enqueue(ToggleSAT{}))
	assert.False(t, c.Enqueue(ToggleSAT{}))

	c.Bind(KeyS, nil)
	assert.Nil(t, c.Binding(KeyS))
}

func TestMoveRejectsBadAxis(t *testing.T) {
	assert.Error(t, Move{Axis: 3, Sign: 1}.Execute(newTarget()))
}
