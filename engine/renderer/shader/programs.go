package shader

// Program names. Each maps to assets/programs/<name>.wgsl and can be overridden by a file
// with the same relative path in the provider's override directory.
const (
	ProgramScene         = "scene"
	ProgramMoments       = "moments/moments"
	ProgramExponential   = "exponential"
	ProgramSATHorizontal = "moments/sat_horizontal"
	ProgramSATVertical   = "moments/sat_vertical"
	ProgramPrepareMinMax = "moments/prepare_min_max"
	ProgramMinMax        = "moments/min_max"
	ProgramClear         = "monte_carlo/clear"
	ProgramCopy          = "monte_carlo/copy"
	ProgramGBuffer       = "monte_carlo/gbuffer"
	ProgramShadow        = "monte_carlo/shadow"
	ProgramRender        = "monte_carlo/render"
	ProgramSoftShadow    = "soft_shadow"
	ProgramDownsample    = "internal/downsample"
)

// Programs returns every program name the engine registers.
func Programs() []string {
	return []string{
		ProgramScene,
		ProgramMoments,
		ProgramExponential,
		ProgramSATHorizontal,
		ProgramSATVertical,
		ProgramPrepareMinMax,
		ProgramMinMax,
		ProgramClear,
		ProgramCopy,
		ProgramGBuffer,
		ProgramShadow,
		ProgramRender,
		ProgramSoftShadow,
		ProgramDownsample,
	}
}
