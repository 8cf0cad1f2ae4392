package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/engine/input"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/shadow"
)

type builder struct {
	engine              *engine
	orchestratorOptions []shadow.OrchestratorBuilderOption
}

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*builder)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, logs frame statistics once per second
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(b *builder) {
		b.engine.profilingEnabled = enabled
	}
}

// WithWindow attaches a window. Its key presses feed the input controller and its resizes
// reach the orchestrator before the next frame.
//
// Parameters:
//   - w: an opened window
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w Window) EngineBuilderOption {
	return func(b *builder) {
		b.engine.window = w
	}
}

// WithController replaces the default input controller.
func WithController(c input.Controller) EngineBuilderOption {
	return func(b *builder) {
		b.engine.controller = c
	}
}

// WithProvider sets the shader provider the pipelines load from.
func WithProvider(p shader.Provider) EngineBuilderOption {
	return func(b *builder) {
		b.engine.provider = p
	}
}

// WithHotReload watches the provider's override directory and rebuilds pipelines whose
// sources change.
//
// Parameters:
//   - enabled: if true, starts the watcher at Init
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithHotReload(enabled bool) EngineBuilderOption {
	return func(b *builder) {
		b.engine.hotReload = enabled
	}
}

// WithOrchestratorOptions forwards options to the shadow orchestrator.
func WithOrchestratorOptions(options ...shadow.OrchestratorBuilderOption) EngineBuilderOption {
	return func(b *builder) {
		b.orchestratorOptions = append(b.orchestratorOptions, options...)
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(b *builder) {
		if fps <= 0 {
			b.engine.renderFrameLimit = 0
			return
		}
		b.engine.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxFrames stops the render loop after n frames. Zero renders until Quit.
func WithMaxFrames(n int) EngineBuilderOption {
	return func(b *builder) {
		b.engine.maxFrames = max(n, 0)
	}
}

// WithFrameCallback registers a function called on the render goroutine after every
// presented frame.
//
// Parameters:
//   - callback: receives the 1-based frame number
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameCallback(callback func(frame int)) EngineBuilderOption {
	return func(b *builder) {
		b.engine.frameCallback = callback
	}
}
