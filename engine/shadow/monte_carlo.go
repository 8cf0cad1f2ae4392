package shadow

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/render_target"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/chewxy/math32"
)

// ErrSampleCountMismatch is returned when the per-sample weight does not average the light
// samples, i.e. accumulationFactor * sampleCount differs from 1.
var ErrSampleCountMismatch = errors.New("accumulation factor does not match the light sample count")

// accumulationTolerance bounds |accumulationFactor * N - 1|.
const accumulationTolerance = 1e-3

// CheckAccumulation verifies that the accumulation factor weights samples light samples
// into a mean.
//
// Parameters:
//   - factor: the per-sample weight
//   - samples: the number of light samples
//
// Returns:
//   - error: ErrSampleCountMismatch when factor * samples is not 1
func CheckAccumulation(factor float32, samples int) error {
	if samples <= 0 || math32.Abs(factor*float32(samples)-1) > accumulationTolerance {
		return fmt.Errorf("%w: %g x %d samples", ErrSampleCountMismatch, factor, samples)
	}
	return nil
}

// clearAccumulation zeroes the accumulation map. The shadow color is bound as the clear
// program's nominal input.
func clearAccumulation(fc *FrameContext) error {
	in, err := fc.textures(render_target.ShadowMapColor)
	if err != nil {
		return err
	}
	return fc.draw(render_target.Accumulation, renderer.DrawCommand{
		Label:    "accumulation clear",
		Pipeline: shader.ProgramClear,
		Inputs:   in,
	})
}

// captureGBuffer stores object-space position and normal of every visible pixel. Pixels
// without geometry keep position w = 0.
func captureGBuffer(fc *FrameContext) error {
	fc.SetLightSample(light.CenterSample)
	return fc.draw(render_target.GBuffer, renderer.DrawCommand{
		Label:    "gbuffer",
		Pipeline: shader.ProgramGBuffer,
		Clear:    &common.ColorTransparent,
		Uniforms: fc.CameraUniforms(),
	})
}

// accumulateSample adds the hard-shadow visibility of the current light sample to the
// accumulation map: shade into the temp accumulation map, then copy it back.
func accumulateSample(fc *FrameContext) error {
	in, err := fc.textures(render_target.AccumulationMapColor, render_target.VertexMapColor, render_target.ShadowMapColor, render_target.TempAccumulationMapColor)
	if err != nil {
		return err
	}
	sample := fc.Transforms.Sample
	err = fc.draw(render_target.TempAccumulation, renderer.DrawCommand{
		Label:    fmt.Sprintf("accumulate sample %d", sample),
		Pipeline: shader.ProgramShadow,
		Inputs:   in[:3],
		Uniforms: fc.FullscreenUniforms(0),
	})
	if err != nil {
		return err
	}
	return fc.draw(render_target.Accumulation, renderer.DrawCommand{
		Label:    fmt.Sprintf("accumulation copy %d", sample),
		Pipeline: shader.ProgramCopy,
		Inputs:   in[3:],
		Uniforms: fc.FullscreenUniforms(0),
	})
}

// Accumulate averages the hard shadows of every light sample into the accumulation map.
// Samples are visited in ascending order so repeated frames are bit-identical.
//
// Parameters:
//   - fc: the frame context
//
// Returns:
//   - error: ErrSampleCountMismatch before any pass runs, or the first pass error
func Accumulate(fc *FrameContext) error {
	samples := fc.Light.SampleCount()
	if err := CheckAccumulation(fc.Config.AccumulationFactor, samples); err != nil {
		return err
	}
	if err := clearAccumulation(fc); err != nil {
		return err
	}
	if err := captureGBuffer(fc); err != nil {
		return err
	}
	for k := range samples {
		if err := Capture(fc, k, common.ColorWhite); err != nil {
			return fmt.Errorf("light sample %d: %w", k, err)
		}
		if err := accumulateSample(fc); err != nil {
			return fmt.Errorf("light sample %d: %w", k, err)
		}
	}
	fc.SetLightSample(light.CenterSample)
	return nil
}
