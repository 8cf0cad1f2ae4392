package shadow

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
)

// passPrograms are the programs the shadow passes draw with. The downsample program is
// owned by the renderer's mipmap generation.
var passPrograms = []string{
	shader.ProgramScene,
	shader.ProgramMoments,
	shader.ProgramExponential,
	shader.ProgramSATHorizontal,
	shader.ProgramSATVertical,
	shader.ProgramPrepareMinMax,
	shader.ProgramMinMax,
	shader.ProgramClear,
	shader.ProgramCopy,
	shader.ProgramGBuffer,
	shader.ProgramShadow,
	shader.ProgramRender,
	shader.ProgramSoftShadow,
}

// pipelineOptions returns the fixed state of a program's pipeline.
func pipelineOptions(name string) []pipeline.PipelineBuilderOption {
	switch name {
	case shader.ProgramScene, shader.ProgramMoments, shader.ProgramExponential:
		return []pipeline.PipelineBuilderOption{
			pipeline.WithDepthBias(light.DepthBiasConstant, light.DepthBiasSlopeScale),
		}
	case shader.ProgramGBuffer:
		return []pipeline.PipelineBuilderOption{
			pipeline.WithColorTargets(pipeline.TargetFormatRGBA32F, pipeline.TargetFormatRGBA32F),
		}
	case shader.ProgramRender, shader.ProgramSoftShadow:
		return []pipeline.PipelineBuilderOption{
			pipeline.WithColorTargets(pipeline.TargetFormatSurface),
		}
	default:
		return []pipeline.PipelineBuilderOption{
			pipeline.WithGeometry(pipeline.GeometryFullscreen),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
		}
	}
}

// NewPassPipeline loads a program and wraps it in a pipeline with the program's fixed state.
//
// Parameters:
//   - provider: the shader provider
//   - name: the program name
//
// Returns:
//   - pipeline.Pipeline: the unregistered pipeline
//   - error: error if the program cannot be loaded
func NewPassPipeline(provider shader.Provider, name string) (pipeline.Pipeline, error) {
	program, err := provider.Program(name)
	if err != nil {
		return nil, fmt.Errorf("loading program %s: %w", name, err)
	}
	opts := append([]pipeline.PipelineBuilderOption{pipeline.WithProgram(program)}, pipelineOptions(name)...)
	return pipeline.NewPipeline(name, opts...), nil
}

// RegisterPipelines builds and registers the pipeline of every shadow pass program.
//
// Parameters:
//   - r: the renderer to register with
//   - provider: the shader provider
//
// Returns:
//   - error: the first load or registration error
func RegisterPipelines(r renderer.Renderer, provider shader.Provider) error {
	pipelines := make([]pipeline.Pipeline, 0, len(passPrograms))
	for _, name := range passPrograms {
		p, err := NewPassPipeline(provider, name)
		if err != nil {
			return err
		}
		pipelines = append(pipelines, p)
	}
	return r.RegisterPipelines(pipelines...)
}

// ReloadPipeline drops the cached program and registers a fresh pipeline for it. A failed
// reload leaves the previous pipeline in place.
//
// Parameters:
//   - r: the renderer
//   - provider: the shader provider
//   - name: the changed program
//
// Returns:
//   - error: error if the new program does not load or register
func ReloadPipeline(r renderer.Renderer, provider shader.Provider, name string) error {
	provider.Invalidate(name)
	p, err := NewPassPipeline(provider, name)
	if err != nil {
		return err
	}
	if err := r.RegisterPipelines(p); err != nil {
		return err
	}
	log.Infof("reloaded program %s", name)
	return nil
}

// ReloadSource reloads after a source file changed on disk. A changed pass program reloads
// alone; any other file may be included by every program, so all of them reload.
//
// Parameters:
//   - r: the renderer
//   - provider: the shader provider
//   - name: the changed file as a program-style name
//
// Returns:
//   - error: the joined reload errors
func ReloadSource(r renderer.Renderer, provider shader.Provider, name string) error {
	if slices.Contains(passPrograms, name) {
		return ReloadPipeline(r, provider, name)
	}
	var errs []error
	for _, program := range passPrograms {
		if err := ReloadPipeline(r, provider, program); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
