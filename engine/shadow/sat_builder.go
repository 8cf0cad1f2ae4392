package shadow

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/render_target"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
)

// BuildSummedAreaTable turns the shadow color into a summed-area table in log2(N) doubling
// iterations. Each iteration adds, along one axis, the value stride 2^i texels back: a
// horizontal pass into the temp shadow map, then a vertical pass into the SAT map.
//
// Parameters:
//   - fc: the frame context
//
// Returns:
//   - error: error if a pass fails
func BuildSummedAreaTable(fc *FrameContext) error {
	shadowColor, err := fc.textures(render_target.ShadowMapColor, render_target.TempShadowMapColor, render_target.SATShadowMapColor)
	if err != nil {
		return err
	}
	raw, temp, sat := shadowColor[0], shadowColor[1], shadowColor[2]
	viewport := common.Square(fc.ShadowMapSize)

	for i := range common.Log2(fc.ShadowMapSize) {
		source := sat
		if i == 0 {
			source = raw
		}
		err := fc.draw(render_target.TempShadow, renderer.DrawCommand{
			Label:    fmt.Sprintf("sat horizontal %d", i),
			Pipeline: shader.ProgramSATHorizontal,
			Viewport: viewport,
			Inputs:   []renderer.Texture{source},
			Uniforms: fc.FullscreenUniforms(i),
		})
		if err != nil {
			return err
		}
		err = fc.draw(render_target.SATShadow, renderer.DrawCommand{
			Label:    fmt.Sprintf("sat vertical %d", i),
			Pipeline: shader.ProgramSATVertical,
			Viewport: viewport,
			Inputs:   []renderer.Texture{temp},
			Uniforms: fc.FullscreenUniforms(i),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
