package shadow

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/render_target"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
)

// Flow is the orchestrator state a frame runs in.
type Flow int

const (
	// MonteCarloFlow accumulates hard shadows over every light sample.
	MonteCarloFlow Flow = iota
	// DirectShadowFlow captures once and filters the capture.
	DirectShadowFlow
)

func (f Flow) String() string {
	if f == MonteCarloFlow {
		return "monte carlo"
	}
	return "direct"
}

// FlowFor returns the flow a technique renders with.
func FlowFor(t technique.Technique) Flow {
	if t == technique.MonteCarlo {
		return MonteCarloFlow
	}
	return DirectShadowFlow
}

// ShadowTechnique is one frame's worth of shadow work, split into the stages every technique
// shares.
type ShadowTechnique interface {
	// Flow reports the orchestrator state the technique belongs to.
	Flow() Flow

	// Capture renders occluder information from the light.
	Capture(fc *FrameContext) error

	// Derive builds the filtering structures the composite reads.
	Derive(fc *FrameContext) error

	// Composite renders the shaded scene from the camera.
	Composite(fc *FrameContext) error
}

// MonteCarloTechnique renders the reference soft shadow as the mean of per-sample hard shadows.
type MonteCarloTechnique struct{}

var _ ShadowTechnique = MonteCarloTechnique{}

func (MonteCarloTechnique) Flow() Flow {
	return MonteCarloFlow
}

// Capture checks the sample weighting. The per-sample captures run inside Derive.
func (MonteCarloTechnique) Capture(fc *FrameContext) error {
	return CheckAccumulation(fc.Config.AccumulationFactor, fc.Light.SampleCount())
}

func (MonteCarloTechnique) Derive(fc *FrameContext) error {
	return Accumulate(fc)
}

func (MonteCarloTechnique) Composite(fc *FrameContext) error {
	return Composite(fc, shader.ProgramRender, render_target.AccumulationMapColor)
}

// DirectTechnique captures the center of the light once and estimates the penumbra by
// filtering: PCSS reads the depth map, the moment techniques read either the summed-area
// table or the mip-filtered shadow color, and VSSM also reads the min/max pyramid.
type DirectTechnique struct{}

var _ ShadowTechnique = DirectTechnique{}

func (DirectTechnique) Flow() Flow {
	return DirectShadowFlow
}

// Capture renders the center sample and regenerates the shadow color mips the composite
// filters through.
func (DirectTechnique) Capture(fc *FrameContext) error {
	if err := Capture(fc, light.CenterSample, common.ColorTransparent); err != nil {
		return err
	}
	return GenerateShadowMipmaps(fc)
}

// Derive builds the summed-area table when it is enabled, otherwise the pyramid when the
// technique needs one. Never both.
func (DirectTechnique) Derive(fc *FrameContext) error {
	cfg := fc.Config
	switch {
	case cfg.BuildsSAT():
		return BuildSummedAreaTable(fc)
	case cfg.Technique.UsesPyramid():
		return BuildPyramid(fc)
	default:
		return nil
	}
}

func (DirectTechnique) Composite(fc *FrameContext) error {
	color := render_target.ShadowMapColor
	if fc.Config.BuildsSAT() {
		color = render_target.SATShadowMapColor
	}
	return Composite(fc, shader.ProgramSoftShadow,
		render_target.ShadowMapDepth, color, render_target.HierarchicalShadowMapColor)
}

// TechniqueFor returns the strategy that renders t.
func TechniqueFor(t technique.Technique) ShadowTechnique {
	if FlowFor(t) == MonteCarloFlow {
		return MonteCarloTechnique{}
	}
	return DirectTechnique{}
}
