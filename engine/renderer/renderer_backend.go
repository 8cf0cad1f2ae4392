package renderer

import (
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota

	// BackendTypeCPU selects the CPU reference backend. It runs every program in Go, needs no
	// window or GPU and renders the screen into an in-memory buffer.
	BackendTypeCPU
)

// String returns the backend name.
func (t RendererBackendType) String() string {
	switch t {
	case BackendTypeWGPU:
		return "wgpu"
	case BackendTypeCPU:
		return "cpu"
	default:
		return "unknown"
	}
}

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// Surface is what the WebGPU backend needs from a window.
type Surface interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// RendererBackend executes draws for the Renderer. Every method is called from the render
// goroutine; a Draw is complete (or at least ordered before any later call) when it returns.
type RendererBackend interface {
	// Type returns the backend type.
	Type() RendererBackendType

	// CreateTexture allocates a texture usable as render attachment and program input.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - Texture: the new texture
	//   - error: error if the descriptor is invalid or allocation fails
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture uploads texel data (Channels() floats per texel, row-major) into one mip level.
	WriteTexture(t Texture, level int, data []float32) error

	// ReadTexture reads back one mip level as row-major floats.
	ReadTexture(t Texture, level int) ([]float32, error)

	// RegisterPipeline compiles the pipeline's program for this backend and stores the result on it.
	RegisterPipeline(p pipeline.Pipeline) error

	// UploadMesh adds a mesh to the scene geometry drawn by GeometryScene pipelines.
	UploadMesh(m model.Mesh) error

	// ClearMeshes drops every uploaded mesh.
	ClearMeshes()

	// Draw executes one render pass.
	//
	// Parameters:
	//   - p: the registered pipeline
	//   - cmd: the pass description
	//
	// Returns:
	//   - error: error if the target or inputs do not fit the pipeline
	Draw(p pipeline.Pipeline, cmd DrawCommand) error

	// GenerateMipmaps rebuilds levels 1..n-1 of a color texture by 2x2 box filtering.
	GenerateMipmaps(t Texture) error

	// BeginFrame acquires the screen target for the frame.
	BeginFrame() error

	// Present shows the screen target and releases it.
	Present()

	// ScreenSize returns the current screen extent.
	ScreenSize() (int, int)

	// Resize changes the screen extent.
	Resize(width, height int)

	// ReadScreen reads the last presented (or current) screen as RGBA floats.
	ReadScreen() ([]float32, int, int, error)

	// Release frees every backend resource.
	Release()
}
