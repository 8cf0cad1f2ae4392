package shadow

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/render_target"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
)

// CaptureProgram returns the light-pass program a technique stores its occluders with.
func CaptureProgram(t technique.Technique) string {
	switch {
	case t.CapturesMoments():
		return shader.ProgramMoments
	case t.CapturesExponential():
		return shader.ProgramExponential
	default:
		return shader.ProgramScene
	}
}

// Capture renders the scene from one light sample into the shadow framebuffer.
//
// Parameters:
//   - fc: the frame context; its transforms are updated to the sample
//   - sample: the light sample, or light.CenterSample
//   - clear: the color the shadow color is cleared to
//
// Returns:
//   - error: error if the pass fails
func Capture(fc *FrameContext, sample int, clear common.Color) error {
	fc.SetLightSample(sample)
	program := CaptureProgram(fc.Config.Technique)
	return fc.draw(render_target.Shadow, renderer.DrawCommand{
		Label:    fmt.Sprintf("capture %s sample %d", program, sample),
		Pipeline: program,
		Viewport: common.Square(fc.ShadowMapSize),
		Clear:    &clear,
		Uniforms: fc.LightUniforms(),
	})
}

// GenerateShadowMipmaps rebuilds the mip chain of the shadow color from its base level.
func GenerateShadowMipmaps(fc *FrameContext) error {
	color, err := fc.Targets.Texture(render_target.ShadowMapColor)
	if err != nil {
		return err
	}
	return fc.Renderer.GenerateMipmaps(color)
}
