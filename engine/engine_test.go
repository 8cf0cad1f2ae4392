package engine

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/input"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/shadow"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadless(t *testing.T, options ...EngineBuilderOption) Engine {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeCPU, nil, renderer.WithScreenSize(32, 32), renderer.WithWorkerCount(2))
	require.NoError(t, err)

	cam := camera.NewCamera(
		camera.WithEye(mgl32.Vec3{0, 150, 150}),
		camera.WithUp(mgl32.Vec3{0, 1, 0}),
		camera.WithAspect(1),
	)
	l := light.NewAreaLight(light.WithSampleCount(16), light.WithProjection(90, 1, 300))
	cfg := technique.NewConfig(technique.WithAccumulationFactor(1.0 / 16.0))

	opts := append([]EngineBuilderOption{WithOrchestratorOptions(shadow.WithShadowMapSize(16))}, options...)
	e, err := NewEngine(r, scene.NewDefaultScene(), cam, l, cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, e.Init())
	t.Cleanup(e.Release)
	return e
}

func TestRunStopsAfterMaxFrames(t *testing.T) {
	var seen []int
	e := newHeadless(t, WithMaxFrames(3), WithFrameCallback(func(frame int) { seen = append(seen, frame) }))

	require.NoError(t, e.Run())
	assert.Equal(t, 3, e.Frames())
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestCommandsApplyBeforeFrame(t *testing.T) {
	e := newHeadless(t)
	require.True(t, e.Controller().KeyDown(input.Key1))

	require.NoError(t, e.RenderFrame())
	assert.Equal(t, technique.MonteCarlo, e.Config().Selected())
	assert.Equal(t, shadow.MonteCarloFlow, e.Orchestrator().Flow())

	require.True(t, e.Controller().KeyDown(input.Key4))
	require.NoError(t, e.RenderFrame())
	assert.Equal(t, shadow.DirectShadowFlow, e.Orchestrator().Flow())
}

func TestLightRadiusReachesConfig(t *testing.T) {
	specs := []struct {
		name string
		size float32
		want float32
	}{
		{"point light", 0, 0},
		{"small light", 10, 5},
		{"default light", light.DefaultLightSize, light.DefaultLightSize / 2},
	}
	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			r, err := renderer.NewRenderer(renderer.BackendTypeCPU, nil, renderer.WithScreenSize(4, 4))
			require.NoError(t, err)
			defer r.Release()

			cfg := technique.NewConfig(technique.WithLightSourceRadius(99))
			l := light.NewAreaLight(light.WithSize(spec.size))
			e, err := NewEngine(r, scene.NewDefaultScene(), camera.NewCamera(), l, cfg, WithOrchestratorOptions(shadow.WithShadowMapSize(16)))
			require.NoError(t, err)

			assert.Equal(t, spec.want, e.Config().Snapshot().LightSourceRadius)
		})
	}
}

func TestEscapeQuits(t *testing.T) {
	e := newHeadless(t)
	require.True(t, e.Controller().KeyDown(input.KeyEscape))

	require.NoError(t, e.Run())
	assert.Equal(t, 1, e.Frames())
}

func TestResizeAppliesOnNextFrame(t *testing.T) {
	e := newHeadless(t)
	e.(*engine).queueResize(8, 8)
	e.(*engine).queueResize(48, 24)

	require.NoError(t, e.RenderFrame())
	w, h := e.Renderer().ScreenSize()
	assert.Equal(t, 48, w)
	assert.Equal(t, 24, h)
}

func TestReloadKeepsRendering(t *testing.T) {
	e := newHeadless(t)
	e.(*engine).queueReload(shader.ProgramSoftShadow)
	e.(*engine).queueReload("lib/shadow_common")

	require.NoError(t, e.RenderFrame())
	assert.NotNil(t, e.Renderer().Pipeline(shader.ProgramSoftShadow))
}

func TestFrameErrorStopsRun(t *testing.T) {
	e := newHeadless(t, WithMaxFrames(5))
	// the weight no longer matches the sample count
	e.(*engine).config = technique.NewConfig(technique.WithAccumulationFactor(0.5))
	require.True(t, e.Controller().Enqueue(input.SelectTechnique{Technique: technique.MonteCarlo}))

	err := e.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, shadow.ErrSampleCountMismatch)
	assert.Zero(t, e.Frames())
}
