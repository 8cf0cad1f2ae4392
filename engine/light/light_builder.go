package light

import "github.com/go-gl/mathgl/mgl32"

// LightBuilderOption is a functional option for configuring an AreaLight.
type LightBuilderOption func(*lightImpl)

// WithPosition sets the light center position in world space.
//
// Parameters:
//   - p: world-space position
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithPosition(p mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.position = p
	}
}

// WithAt sets the point the light center looks at.
//
// Parameters:
//   - at: world-space target
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithAt(at mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.at = at
	}
}

// WithUp sets the light up vector.
func WithUp(up mgl32.Vec3) LightBuilderOption {
	return func(l *lightImpl) {
		l.up = up
	}
}

// WithSize sets the edge length of the square light. A size of zero makes every sample coincide with the center.
//
// Parameters:
//   - size: edge length in world units
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithSize(size float32) LightBuilderOption {
	return func(l *lightImpl) {
		l.size = max(size, 0)
	}
}

// WithSampleCount sets the number of point samples on the light.
//
// Parameters:
//   - count: number of samples (a perfect square gives a full grid)
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithSampleCount(count int) LightBuilderOption {
	return func(l *lightImpl) {
		l.sampleCount = count
	}
}

// WithProjection sets the light frustum.
//
// Parameters:
//   - fovDegrees: vertical field of view in degrees
//   - near: near plane distance (must be > 0)
//   - far: far plane distance (must be > near)
//
// Returns:
//   - LightBuilderOption: option function to apply
func WithProjection(fovDegrees, near, far float32) LightBuilderOption {
	return func(l *lightImpl) {
		if fovDegrees > 0 {
			l.fov = mgl32.DegToRad(fovDegrees)
		}
		if near > 0 && far > near {
			l.near = near
			l.far = far
		}
	}
}
