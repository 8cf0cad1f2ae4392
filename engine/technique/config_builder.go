package technique

import "github.com/Carmen-Shannon/oxy-shadows/common"

// ConfigBuilderOption is a functional option for configuring a Config.
type ConfigBuilderOption func(*config)

// WithTechnique sets the initially selected technique. Invalid values are ignored.
//
// Parameters:
//   - t: the technique to select
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithTechnique(t Technique) ConfigBuilderOption {
	return func(c *config) {
		if t.Valid() {
			c.selectLocked(t)
		}
	}
}

// WithSAT sets the initial summed-area table flag.
func WithSAT(enabled bool) ConfigBuilderOption {
	return func(c *config) {
		c.useSAT = enabled
	}
}

// WithShadowIntensity sets the darkening applied to fully occluded points, clamped to [0, 1].
func WithShadowIntensity(intensity float32) ConfigBuilderOption {
	return func(c *config) {
		c.shadowIntensity = common.Clamp(intensity, 0, 1)
	}
}

// WithKernelSize sets the smallest filter kernel width in shadow-map texels. Wider
// penumbrae widen the kernel past it.
func WithKernelSize(size int) ConfigBuilderOption {
	return func(c *config) {
		c.kernelSize = max(size, MinKernelSize)
	}
}

// WithBlockerSearchSize sets the smallest blocker search width in shadow-map texels.
func WithBlockerSearchSize(size int) ConfigBuilderOption {
	return func(c *config) {
		c.blockerSearchSize = max(size, MinBlockerSearchSize)
	}
}

// WithLightSourceRadius sets the area light radius in world units.
func WithLightSourceRadius(radius float32) ConfigBuilderOption {
	return func(c *config) {
		c.lightSourceRadius = max(radius, 0)
	}
}

// WithAccumulationFactor sets the per-sample weight of the Monte-Carlo accumulator.
// It must equal 1/N for N light samples.
//
// Parameters:
//   - factor: the per-sample weight
//
// Returns:
//   - ConfigBuilderOption: option function to apply
func WithAccumulationFactor(factor float32) ConfigBuilderOption {
	return func(c *config) {
		c.accumulationFactor = factor
	}
}

// WithVisibilityOnly makes the composite pass output the raw shadow factor.
func WithVisibilityOnly(enabled bool) ConfigBuilderOption {
	return func(c *config) {
		c.visibilityOnly = enabled
	}
}
