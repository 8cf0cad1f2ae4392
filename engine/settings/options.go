package settings

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/shadow"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/go-gl/mathgl/mgl32"
)

var defaultMeshColor = [4]float32{0.8, 0.8, 0.8, 1}

func (v Vec3) vec() mgl32.Vec3 {
	return mgl32.Vec3(v)
}

func color(c [4]float32) common.Color {
	if c == ([4]float32{}) {
		c = defaultMeshColor
	}
	return common.Color{R: c[0], G: c[1], B: c[2], A: c[3]}
}

// RendererOptions returns the renderer builder options.
func (s Settings) RendererOptions() []renderer.RendererBuilderOption {
	mode := renderer.PresentModeUncapped
	if s.Renderer.VSync {
		mode = renderer.PresentModeVSync
	}
	return []renderer.RendererBuilderOption{
		renderer.WithScreenSize(s.Window.Width, s.Window.Height),
		renderer.WithWorkerCount(s.Renderer.Workers),
		renderer.WithPresentMode(mode),
		renderer.WithForceSoftwareRenderer(s.Renderer.ForceSoftware),
	}
}

// ProviderOptions returns the shader provider options.
func (s Settings) ProviderOptions() []shader.ProviderBuilderOption {
	opts := []shader.ProviderBuilderOption{shader.WithValidation(s.Renderer.Validate)}
	if s.Renderer.ShaderDir != "" {
		opts = append(opts, shader.WithOverrideDir(s.Renderer.ShaderDir))
	}
	return opts
}

// OrchestratorOptions returns the orchestrator builder options. The shader provider is
// supplied by the caller since it also owns the hot-reload watcher.
//
// Parameters:
//   - provider: the shader provider, or nil for the embedded programs
//
// Returns:
//   - []shadow.OrchestratorBuilderOption: the options
func (s Settings) OrchestratorOptions(provider shader.Provider) []shadow.OrchestratorBuilderOption {
	opts := []shadow.OrchestratorBuilderOption{
		shadow.WithShadowMapSize(s.Shadow.MapSize),
		shadow.WithReceiverBias(s.Shadow.ReceiverBias),
		shadow.WithExponent(s.Shadow.Exponent),
	}
	if provider != nil {
		opts = append(opts, shadow.WithProvider(provider))
	}
	return opts
}

// TechniqueOptions returns the technique config options. The light source radius follows
// the light size and the accumulation factor defaults to one over the sample count.
func (s Settings) TechniqueOptions() []technique.ConfigBuilderOption {
	t := s.Technique
	factor := common.Coalesce(t.AccumulationFactor, 1/float32(s.Light.Samples))
	return []technique.ConfigBuilderOption{
		technique.WithTechnique(t.Technique),
		technique.WithSAT(t.SAT),
		technique.WithShadowIntensity(t.ShadowIntensity),
		technique.WithKernelSize(t.KernelSize),
		technique.WithBlockerSearchSize(t.BlockerSearchSize),
		technique.WithLightSourceRadius(s.Light.Size / 2),
		technique.WithAccumulationFactor(factor),
		technique.WithVisibilityOnly(t.VisibilityOnly),
	}
}

// LightOptions returns the area light options.
func (s Settings) LightOptions() []light.LightBuilderOption {
	l := s.Light
	return []light.LightBuilderOption{
		light.WithPosition(l.Position.vec()),
		light.WithAt(l.At.vec()),
		light.WithUp(l.Up.vec()),
		light.WithSize(l.Size),
		light.WithSampleCount(l.Samples),
		light.WithProjection(l.Fov, l.Near, l.Far),
	}
}

// CameraOptions returns the camera options with the aspect of the configured window.
func (s Settings) CameraOptions() []camera.CameraBuilderOption {
	c := s.Camera
	return []camera.CameraBuilderOption{
		camera.WithEye(c.Eye.vec()),
		camera.WithAt(c.At.vec()),
		camera.WithUp(c.Up.vec()),
		camera.WithFov(c.Fov),
		camera.WithAspect(float32(s.Window.Width) / float32(s.Window.Height)),
		camera.WithClipPlanes(c.Near, c.Far),
	}
}

// Meshes builds the configured geometry: the default meshes when enabled, then every
// plane and box in file order.
func (s Settings) Meshes() []model.Mesh {
	var meshes []model.Mesh
	if s.Scene.DefaultMeshes {
		meshes = append(meshes, scene.DefaultMeshes()...)
	}
	for _, p := range s.Scene.Planes {
		meshes = append(meshes, model.Plane(p.Name, p.Center.vec(), p.Size, color(p.Color)))
	}
	for _, b := range s.Scene.Boxes {
		meshes = append(meshes, model.Box(b.Name, b.Min.vec(), b.Max.vec(), color(b.Color)))
	}
	return meshes
}

// SceneOptions returns the scene options.
func (s Settings) SceneOptions() []scene.SceneBuilderOption {
	opts := []scene.SceneBuilderOption{
		scene.WithName(s.Scene.Name),
		scene.WithMeshes(s.Meshes()...),
	}
	if s.Scene.Animate {
		a := scene.NewAnimation()
		a.Toggle()
		opts = append(opts, scene.WithAnimation(a))
	}
	return opts
}
