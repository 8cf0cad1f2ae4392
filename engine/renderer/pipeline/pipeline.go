package pipeline

import (
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// Geometry identifies what a draw using the pipeline rasterizes.
type Geometry int

const (
	// GeometryScene draws every uploaded scene mesh with the shared vertex layout.
	GeometryScene Geometry = iota

	// GeometryFullscreen draws a single viewport-covering triangle with no vertex buffer.
	GeometryFullscreen
)

// TargetFormat is the format of one color output of a pipeline.
type TargetFormat int

const (
	// TargetFormatRGBA32F writes to an offscreen RGBA32 float render target.
	TargetFormatRGBA32F TargetFormat = iota

	// TargetFormatSurface writes to the presentation surface (or its offscreen stand-in).
	TargetFormatSurface
)

// pipeline is the implementation of the Pipeline interface.
// It holds the program, its fixed-function state and the backend pipeline object once created.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, usually the program name
	pipelineKey string

	// program holds both stages, it is required to be set before the backend creates the pipeline
	program shader.Shader

	geometry     Geometry
	colorTargets []TargetFormat

	// backendPipeline is whatever the renderer backend compiled for this pipeline
	backendPipeline any

	depthTestEnabled    bool
	depthWriteEnabled   bool
	depthBias           int32
	depthBiasSlopeScale float32
	cullMode            wgpu.CullMode
	topology            wgpu.PrimitiveTopology
	frontFace           wgpu.FrontFace
	writeMask           wgpu.ColorWriteMask
}

// Pipeline describes one render program together with the fixed-function state a backend
// needs to compile it: geometry source, color target formats, depth and rasterizer settings.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Program returns the pre-processed program holding the vertex and fragment stage.
	//
	// Returns:
	//   - shader.Shader: the program, or nil if not set
	Program() shader.Shader

	// Geometry returns what draws with this pipeline rasterize.
	//
	// Returns:
	//   - Geometry: scene meshes or a fullscreen triangle
	Geometry() Geometry

	// ColorTargets returns the format of every color output in location order.
	//
	// Returns:
	//   - []TargetFormat: one entry per @location output
	ColorTargets() []TargetFormat

	// Pipeline returns the backend pipeline object.
	// Note: The caller is responsible for type asserting the returned value to the backend type.
	//
	// Returns:
	//   - any: the backend pipeline object, nil until a backend registers the pipeline
	Pipeline() any

	// DepthTestEnabled returns whether depth testing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth testing is enabled, false otherwise
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled for this pipeline.
	//
	// Returns:
	//   - bool: true if depth writing is enabled, false otherwise
	DepthWriteEnabled() bool

	// DepthBias returns the constant depth bias (polygon offset units) for this pipeline.
	//
	// Returns:
	//   - int32: the depth bias value for this pipeline
	DepthBias() int32

	// DepthBiasSlopeScale returns the slope-scaled depth bias (polygon offset factor).
	//
	// Returns:
	//   - float32: the depth bias slope scale for this pipeline
	DepthBiasSlopeScale() float32

	// CullMode returns the cull mode configured for this pipeline.
	//
	// Returns:
	//   - wgpu.CullMode: the cull mode for this pipeline
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology configured for this pipeline.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: the primitive topology for this pipeline
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order configured for this pipeline.
	//
	// Returns:
	//   - wgpu.FrontFace: the front face winding order for this pipeline
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask configured for this pipeline.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: the color write mask for this pipeline
	WriteMask() wgpu.ColorWriteMask

	// SetPipeline stores the backend pipeline object.
	//
	// Parameters:
	//   - p: the backend pipeline to set
	SetPipeline(p any)
}

var _ Pipeline = &pipeline{}

// NewPipeline is the entry point to create a new Pipeline interface. By default the pipeline
// draws scene geometry into one RGBA32F target with depth test and depth write enabled.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:       pipelineKey,
		geometry:          GeometryScene,
		colorTargets:      []TargetFormat{TargetFormatRGBA32F},
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Program() shader.Shader {
	return p.program
}

func (p *pipeline) Geometry() Geometry {
	return p.geometry
}

func (p *pipeline) ColorTargets() []TargetFormat {
	return p.colorTargets
}

func (p *pipeline) Pipeline() any {
	return p.backendPipeline
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) DepthBias() int32 {
	return p.depthBias
}

func (p *pipeline) DepthBiasSlopeScale() float32 {
	return p.depthBiasSlopeScale
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) SetPipeline(bp any) {
	p.backendPipeline = bp
}
