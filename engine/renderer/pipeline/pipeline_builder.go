package pipeline

import (
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption is a functional option used to configure a Pipeline during construction.
type PipelineBuilderOption func(*pipeline)

// WithProgram sets the program (vertex and fragment stage) for this pipeline.
//
// Parameters:
//   - s: the pre-processed program
//
// Returns:
//   - PipelineBuilderOption: a function that sets the program for this pipeline
func WithProgram(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.program = s
	}
}

// WithGeometry sets what draws with this pipeline rasterize.
//
// Parameters:
//   - g: GeometryScene or GeometryFullscreen
//
// Returns:
//   - PipelineBuilderOption: a function that sets the geometry for this pipeline
func WithGeometry(g Geometry) PipelineBuilderOption {
	return func(p *pipeline) {
		p.geometry = g
	}
}

// WithColorTargets sets the formats of the color outputs in location order.
//
// Parameters:
//   - targets: one format per fragment output
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color targets for this pipeline
func WithColorTargets(targets ...TargetFormat) PipelineBuilderOption {
	return func(p *pipeline) {
		p.colorTargets = targets
	}
}

// WithDepthTestEnabled sets whether depth testing is enabled for this pipeline.
// With testing disabled the compare function is Always so a bound depth attachment is ignored.
//
// Parameters:
//   - enabled: true to enable depth testing, false to disable
//
// Returns:
//   - PipelineBuilderOption: a function that sets whether depth testing is enabled for this pipeline
func WithDepthTestEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthTestEnabled = enabled
	}
}

// WithDepthWriteEnabled sets whether depth writing is enabled for this pipeline.
//
// Parameters:
//   - enabled: true to enable depth writing, false to disable
//
// Returns:
//   - PipelineBuilderOption: a function that sets whether depth writing is enabled for this pipeline
func WithDepthWriteEnabled(enabled bool) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthWriteEnabled = enabled
	}
}

// WithDepthBias sets the polygon offset applied while rasterizing.
//
// Parameters:
//   - bias: the constant depth bias in depth units
//   - slopeScale: the slope-scaled depth bias factor
//
// Returns:
//   - PipelineBuilderOption: a function that sets the depth bias for this pipeline
func WithDepthBias(bias int32, slopeScale float32) PipelineBuilderOption {
	return func(p *pipeline) {
		p.depthBias = bias
		p.depthBiasSlopeScale = slopeScale
	}
}

// WithCullMode sets the cull mode for this pipeline.
//
// Parameters:
//   - mode: the cull mode to use
//
// Returns:
//   - PipelineBuilderOption: a function that sets the cull mode for this pipeline
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.cullMode = mode
	}
}

// WithTopology sets the primitive topology for this pipeline.
//
// Parameters:
//   - topology: the primitive topology to use
//
// Returns:
//   - PipelineBuilderOption: a function that sets the primitive topology for this pipeline
func WithTopology(topology wgpu.PrimitiveTopology) PipelineBuilderOption {
	return func(p *pipeline) {
		p.topology = topology
	}
}

// WithFrontFace sets the front face winding order for this pipeline.
//
// Parameters:
//   - frontFace: the front face winding order to use
//
// Returns:
//   - PipelineBuilderOption: a function that sets the front face winding order for this pipeline
func WithFrontFace(frontFace wgpu.FrontFace) PipelineBuilderOption {
	return func(p *pipeline) {
		p.frontFace = frontFace
	}
}

// WithWriteMask sets the color write mask for this pipeline.
//
// Parameters:
//   - writeMask: the color write mask to use
//
// Returns:
//   - PipelineBuilderOption: a function that sets the color write mask for this pipeline
func WithWriteMask(writeMask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = writeMask
	}
}
