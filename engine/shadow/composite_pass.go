package shadow

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/render_target"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
)

// Composite renders the scene from the camera onto the screen with the given program and
// shadow inputs, clearing to the sky color.
//
// Parameters:
//   - fc: the frame context
//   - program: the final program
//   - inputs: the shadow textures the program reads, in declaration order
//
// Returns:
//   - error: error if an input is missing or the pass fails
func Composite(fc *FrameContext, program string, inputs ...render_target.TextureID) error {
	textures, err := fc.textures(inputs...)
	if err != nil {
		return err
	}
	fc.SetLightSample(light.CenterSample)
	return fc.Renderer.Draw(renderer.DrawCommand{
		Label:    "composite " + program,
		Pipeline: program,
		Target:   renderer.RenderTarget{Label: "screen", Screen: true},
		Clear:    &common.ColorSky,
		Inputs:   textures,
		Uniforms: fc.CameraUniforms(),
	})
}
