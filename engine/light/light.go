package light

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

type lightImpl struct {
	mu *sync.Mutex

	position    mgl32.Vec3
	at          mgl32.Vec3
	up          mgl32.Vec3
	translation mgl32.Vec3
	rotation    float32

	size        float32
	sampleCount int
	gridSize    int

	fov  float32
	near float32
	far  float32
}

// AreaLight is a square light source discretized into a grid of point samples.
// Sample index CenterSample (-1) addresses the nominal center; indices 0..SampleCount()-1
// address the grid. Every light-space pass renders from exactly one sample.
type AreaLight interface {
	// Eye returns the position of a light sample, including user translation and the
	// animation rotation about the world Y axis.
	//
	// Parameters:
	//   - sample: sample index or CenterSample
	//
	// Returns:
	//   - mgl32.Vec3: world-space eye of the sample
	Eye(sample int) mgl32.Vec3

	// At returns the look-at point of a light sample.
	//
	// Parameters:
	//   - sample: sample index or CenterSample
	//
	// Returns:
	//   - mgl32.Vec3: world-space target of the sample
	At(sample int) mgl32.Vec3

	// ShadingEye returns the sample eye mirrored 180 degrees about the world Y axis,
	// which is the light position used for shading in camera-facing passes.
	ShadingEye(sample int) mgl32.Vec3

	// Up returns the light up vector.
	Up() mgl32.Vec3

	// ViewMatrix returns the world-to-light transform for a sample.
	ViewMatrix(sample int) mgl32.Mat4

	// ProjectionMatrix returns the light perspective projection with [0, 1] depth.
	ProjectionMatrix() mgl32.Mat4

	// Size returns the edge length of the square light.
	Size() float32

	// Radius returns half the edge length.
	Radius() float32

	// SampleCount returns the number of grid samples.
	SampleCount() int

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Near returns the near plane distance.
	Near() float32

	// Far returns the far plane distance.
	Far() float32

	// Position returns the untranslated center position.
	Position() mgl32.Vec3

	// SetPosition replaces the center position.
	SetPosition(p mgl32.Vec3)

	// SetAt replaces the center look-at point.
	SetAt(p mgl32.Vec3)

	// Translate accumulates a user translation applied to every sample eye.
	//
	// Parameters:
	//   - delta: world-space offset
	Translate(delta mgl32.Vec3)

	// Translation returns the accumulated user translation.
	Translation() mgl32.Vec3

	// SetRotation sets the rotation in degrees applied to every sample eye about the world Y axis.
	SetRotation(degrees float32)

	// Rotation returns the current rotation in degrees.
	Rotation() float32
}

var _ AreaLight = &lightImpl{}

// NewAreaLight creates a new AreaLight with the provided options.
// Defaults: positioned at (0, 100, 0) looking at the origin with up (0, 0, 1),
// size DefaultLightSize and DefaultSampleCount samples.
//
// Parameters:
//   - opts: functional options for light configuration
//
// Returns:
//   - AreaLight: the newly created light
func NewAreaLight(opts ...LightBuilderOption) AreaLight {
	l := &lightImpl{
		mu:          &sync.Mutex{},
		position:    mgl32.Vec3{0, 100, 0},
		up:          mgl32.Vec3{0, 0, 1},
		size:        DefaultLightSize,
		sampleCount: DefaultSampleCount,
		fov:         mgl32.DegToRad(DefaultShadowFov),
		near:        DefaultShadowNear,
		far:         DefaultShadowFar,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.sampleCount < 1 {
		panic(fmt.Sprintf("area light needs at least one sample, got %d", l.sampleCount))
	}
	l.gridSize = int(math32.Ceil(math32.Sqrt(float32(l.sampleCount))))
	return l
}

// sampleOffset returns the world-space offset of a grid sample from the light center,
// spread across the plane perpendicular to the light direction.
func (l *lightImpl) sampleOffset(sample int) mgl32.Vec3 {
	if sample < 0 || l.size == 0 {
		return mgl32.Vec3{}
	}
	sample %= l.sampleCount

	forward := l.at.Sub(l.position)
	if forward.Len() == 0 {
		forward = mgl32.Vec3{0, -1, 0}
	}
	forward = forward.Normalize()
	right := forward.Cross(l.up)
	if right.Len() < 1e-6 {
		right = forward.Cross(mgl32.Vec3{1, 0, 0})
	}
	right = right.Normalize()
	planeUp := right.Cross(forward)

	cell := l.size / float32(l.gridSize)
	u := -l.size/2 + (float32(sample%l.gridSize)+0.5)*cell
	v := -l.size/2 + (float32(sample/l.gridSize)+0.5)*cell
	return right.Mul(u).Add(planeUp.Mul(v))
}

func (l *lightImpl) Eye(sample int) mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	eye := l.position.Add(l.translation).Add(l.sampleOffset(sample))
	if l.rotation != 0 {
		eye = common.RotateAboutY(eye, l.rotation)
	}
	return eye
}

func (l *lightImpl) At(sample int) mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.at.Add(l.sampleOffset(sample))
}

func (l *lightImpl) ShadingEye(sample int) mgl32.Vec3 {
	return common.RotateAboutY(l.Eye(sample), 180)
}

func (l *lightImpl) Up() mgl32.Vec3 {
	return l.up
}

func (l *lightImpl) ViewMatrix(sample int) mgl32.Mat4 {
	return mgl32.LookAtV(l.Eye(sample), l.At(sample), l.up)
}

func (l *lightImpl) ProjectionMatrix() mgl32.Mat4 {
	return common.Perspective(l.fov, 1, l.near, l.far)
}

func (l *lightImpl) Size() float32 {
	return l.size
}

func (l *lightImpl) Radius() float32 {
	return l.size / 2
}

func (l *lightImpl) SampleCount() int {
	return l.sampleCount
}

func (l *lightImpl) Fov() float32 {
	return l.fov
}

func (l *lightImpl) Near() float32 {
	return l.near
}

func (l *lightImpl) Far() float32 {
	return l.far
}

func (l *lightImpl) Position() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.position
}

func (l *lightImpl) SetPosition(p mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.position = p
}

func (l *lightImpl) SetAt(p mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.at = p
}

func (l *lightImpl) Translate(delta mgl32.Vec3) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.translation = l.translation.Add(delta)
}

func (l *lightImpl) Translation() mgl32.Vec3 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.translation
}

func (l *lightImpl) SetRotation(degrees float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rotation = degrees
}

func (l *lightImpl) Rotation() float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rotation
}
