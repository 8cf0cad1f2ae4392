package shadow

import "github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"

// OrchestratorBuilderOption is a functional option for configuring an Orchestrator.
type OrchestratorBuilderOption func(*orchestrator)

// WithShadowMapSize sets the edge length of every light-space target. It must be a power of two.
//
// Parameters:
//   - size: texels per edge
//
// Returns:
//   - OrchestratorBuilderOption: a function that applies the size
func WithShadowMapSize(size int) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.shadowMapSize = size
	}
}

// WithReceiverBias sets the depth subtracted from receivers before occlusion tests.
func WithReceiverBias(bias float32) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.receiverBias = bias
	}
}

// WithExponent sets the exponential shadow map warp constant.
func WithExponent(c float32) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		if c > 0 {
			o.exponent = c
		}
	}
}

// WithProvider sets the shader provider programs are loaded from. The default provider
// serves the embedded programs.
//
// Parameters:
//   - provider: the shader provider
//
// Returns:
//   - OrchestratorBuilderOption: a function that applies the provider
func WithProvider(provider shader.Provider) OrchestratorBuilderOption {
	return func(o *orchestrator) {
		o.provider = provider
	}
}
