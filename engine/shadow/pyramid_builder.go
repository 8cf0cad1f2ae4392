package shadow

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/render_target"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
)

// BuildPyramid fills the hierarchical shadow map with per-texel (min, max) occluder depth.
// Level 0 is prepared from the raw shadow color; every coarser level i reduces 2x2 blocks of
// level i-1 into the temp shadow map at mip i and is then copied into the pyramid at mip i.
// Mip rebinding is scoped, so both framebuffers are back at mip 0 when the build returns.
//
// Parameters:
//   - fc: the frame context
//
// Returns:
//   - error: error if a pass or a rebinding fails
func BuildPyramid(fc *FrameContext) error {
	in, err := fc.textures(render_target.ShadowMapColor, render_target.HierarchicalShadowMapColor, render_target.TempShadowMapColor)
	if err != nil {
		return err
	}
	raw, pyramid, temp := in[0], in[1], in[2]

	err = fc.draw(render_target.HierarchicalShadow, renderer.DrawCommand{
		Label:    "pyramid level 0",
		Pipeline: shader.ProgramPrepareMinMax,
		Viewport: common.Square(fc.ShadowMapSize),
		Inputs:   []renderer.Texture{raw},
	})
	if err != nil {
		return err
	}

	levels := common.Log2(fc.ShadowMapSize)
	for i := 1; i < levels; i++ {
		viewport := common.Square(common.MipSize(fc.ShadowMapSize, i))

		reduce := []render_target.Override{
			{Slot: render_target.SlotColor0, Texture: render_target.TempShadowMapColor, MipLevel: i},
			{Slot: render_target.SlotDepth, Texture: render_target.NoTexture},
		}
		err := fc.Targets.WithAttachments(render_target.TempShadow, reduce, func(target renderer.RenderTarget) error {
			return fc.Renderer.Draw(renderer.DrawCommand{
				Label:    fmt.Sprintf("pyramid min max %d", i),
				Pipeline: shader.ProgramMinMax,
				Target:   target,
				Viewport: viewport,
				Inputs:   []renderer.Texture{pyramid},
				Uniforms: fc.FullscreenUniforms(i),
			})
		})
		if err != nil {
			return err
		}

		store := []render_target.Override{
			{Slot: render_target.SlotColor0, Texture: render_target.HierarchicalShadowMapColor, MipLevel: i},
			{Slot: render_target.SlotDepth, Texture: render_target.NoTexture},
		}
		err = fc.Targets.WithAttachments(render_target.HierarchicalShadow, store, func(target renderer.RenderTarget) error {
			return fc.Renderer.Draw(renderer.DrawCommand{
				Label:    fmt.Sprintf("pyramid copy %d", i),
				Pipeline: shader.ProgramCopy,
				Target:   target,
				Viewport: viewport,
				Inputs:   []renderer.Texture{temp},
				Uniforms: fc.FullscreenUniforms(i),
			})
		})
		if err != nil {
			return err
		}
	}
	return nil
}
