package renderer

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithScreenSize sets the screen extent of the CPU backend. The WebGPU backend takes its size
// from the window surface instead.
//
// Parameters:
//   - width: screen width in pixels
//   - height: screen height in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the screen size option to a renderer
func WithScreenSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.screenWidth = width
		r.screenHeight = height
	}
}

// WithWorkerCount sets how many workers the CPU backend splits each pass across.
// Zero (the default) uses runtime.NumCPU.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker count option to a renderer
func WithWorkerCount(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workerCount = n
	}
}
