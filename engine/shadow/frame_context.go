package shadow

import (
	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/render_target"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameTransforms are the light-space matrices of the light sample most recently captured.
type FrameTransforms struct {
	Sample          int
	LightEye        mgl32.Vec3
	LightView       mgl32.Mat4
	LightProjection mgl32.Mat4
	LightMV         mgl32.Mat4
	LightMVP        mgl32.Mat4
}

// FrameContext carries everything a pass needs for one frame. It is built once per frame
// by the orchestrator and handed to every stage of the active technique.
type FrameContext struct {
	Config        technique.Snapshot
	Renderer      renderer.Renderer
	Targets       render_target.Registry
	Camera        camera.Camera
	Light         light.AreaLight
	Model         mgl32.Mat4
	ShadowMapSize int
	ReceiverBias  float32
	Exponent      float32

	Transforms FrameTransforms
}

// SetLightSample recomputes the light transforms for a sample of the area light.
//
// Parameters:
//   - sample: sample index, or light.CenterSample
func (fc *FrameContext) SetLightSample(sample int) {
	view := fc.Light.ViewMatrix(sample)
	projection := fc.Light.ProjectionMatrix()
	mv := view.Mul4(fc.Model)
	fc.Transforms = FrameTransforms{
		Sample:          sample,
		LightEye:        fc.Light.Eye(sample),
		LightView:       view,
		LightProjection: projection,
		LightMV:         mv,
		LightMVP:        projection.Mul4(mv),
	}
}

// LightUniforms returns the uniform block for a pass rendered from the current light sample.
func (fc *FrameContext) LightUniforms() *light.GPUShadowUniforms {
	u := fc.uniforms()
	u.View = fc.Transforms.LightView
	u.Projection = fc.Transforms.LightProjection
	u.LightEye = fc.Transforms.LightEye
	return u
}

// CameraUniforms returns the uniform block for a pass rendered from the camera. The light
// eye used for shading is the mirrored center of the area light.
func (fc *FrameContext) CameraUniforms() *light.GPUShadowUniforms {
	u := fc.uniforms()
	u.View = fc.Camera.ViewMatrix()
	u.Projection = fc.Camera.ProjectionMatrix()
	u.LightEye = fc.Light.ShadingEye(light.CenterSample)
	return u
}

// FullscreenUniforms returns the uniform block of a fullscreen pass with the given iteration.
func (fc *FrameContext) FullscreenUniforms(iteration int) *light.GPUShadowUniforms {
	u := fc.uniforms()
	u.Iteration = uint32(iteration)
	return u
}

func (fc *FrameContext) uniforms() *light.GPUShadowUniforms {
	width, height := fc.Renderer.ScreenSize()
	cfg := fc.Config
	return &light.GPUShadowUniforms{
		Model:              fc.Model,
		LightMVP:           fc.Transforms.LightMVP,
		LightMV:            fc.Transforms.LightMV,
		LightRadius:        cfg.LightSourceRadius,
		CameraEye:          fc.Camera.Eye(),
		ShadowIntensity:    cfg.ShadowIntensity,
		KernelSize:         float32(cfg.KernelSize),
		BlockerSearchSize:  float32(cfg.BlockerSearchSize),
		AccumulationFactor: cfg.AccumulationFactor,
		ReceiverBias:       fc.ReceiverBias,
		Near:               fc.Light.Near(),
		Far:                fc.Light.Far(),
		LightFovTan:        math32.Tan(fc.Light.Fov() / 2),
		Exponent:           fc.Exponent,
		Technique:          uint32(cfg.Technique),
		UseSAT:             light.Bool32(cfg.BuildsSAT()),
		VisibilityOnly:     light.Bool32(cfg.VisibilityOnly),
		ShadowMapSize:      float32(fc.ShadowMapSize),
		TargetWidth:        float32(width),
		TargetHeight:       float32(height),
	}
}

// draw submits one pass, resolving the target from a framebuffer.
func (fc *FrameContext) draw(fb render_target.FramebufferID, cmd renderer.DrawCommand) error {
	target, err := fc.Targets.Target(fb)
	if err != nil {
		return err
	}
	cmd.Target = target
	return fc.Renderer.Draw(cmd)
}

// textures resolves registry ids to pass inputs.
func (fc *FrameContext) textures(ids ...render_target.TextureID) ([]renderer.Texture, error) {
	out := make([]renderer.Texture, 0, len(ids))
	for _, id := range ids {
		tex, err := fc.Targets.Texture(id)
		if err != nil {
			return nil, err
		}
		out = append(out, tex)
	}
	return out, nil
}
