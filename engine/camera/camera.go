package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	eye mgl32.Vec3
	at  mgl32.Vec3
	up  mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32
}

// Camera defines the viewer used by every camera-facing pass.
// It holds a look-at frame plus perspective settings and derives view/projection matrices on demand.
type Camera interface {
	// Eye returns the camera position.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position in world space
	Eye() mgl32.Vec3

	// At returns the point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target in world space
	At() mgl32.Vec3

	// Up returns the camera up vector.
	Up() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	Aspect() float32

	// Near returns the near clipping plane distance.
	Near() float32

	// Far returns the far clipping plane distance.
	Far() float32

	// ViewMatrix returns the world-to-view transform.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix (column-major)
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the perspective projection with [0, 1] depth.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix (column-major)
	ProjectionMatrix() mgl32.Mat4

	// SetEye moves the camera.
	SetEye(eye mgl32.Vec3)

	// SetAt changes the look-at target.
	SetAt(at mgl32.Vec3)

	// SetAspect updates the aspect ratio, typically on window resize.
	//
	// Parameters:
	//   - aspect: width / height
	SetAspect(aspect float32)

	// Translate moves eye and target together by delta.
	//
	// Parameters:
	//   - delta: world-space offset
	Translate(delta mgl32.Vec3)

	// Orbit rotates the look-at target about the eye, around the world X axis (pitch) and Y axis (yaw).
	//
	// Parameters:
	//   - pitchDeg: rotation around X in degrees
	//   - yawDeg: rotation around Y in degrees
	Orbit(pitchDeg, yawDeg float32)

	// Roll rotates the up vector about the viewing direction.
	//
	// Parameters:
	//   - degrees: roll angle in degrees
	Roll(degrees float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the provided options.
// Defaults: eye (0, 0, 1), looking at the origin, up (0, 0, 1) as used by the
// default scene, 45 degree fov, aspect 16:9, near 1, far 1000.
//
// Parameters:
//   - options: functional options for camera configuration
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    mgl32.Vec3{0, 0, 1},
		up:     mgl32.Vec3{0, 0, 1},
		fov:    mgl32.DegToRad(45),
		aspect: 16.0 / 9.0,
		near:   1,
		far:    1000,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) At() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *cameraImpl) Up() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Fov() float32 {
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) Near() float32 {
	return c.near
}

func (c *cameraImpl) Far() float32 {
	return c.far
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return mgl32.LookAtV(c.eye, c.at, c.up)
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.Perspective(c.fov, c.aspect, c.near, c.far)
}

func (c *cameraImpl) SetEye(eye mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
}

func (c *cameraImpl) SetAt(at mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = at
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
}

func (c *cameraImpl) Translate(delta mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = c.eye.Add(delta)
	c.at = c.at.Add(delta)
}

func (c *cameraImpl) Orbit(pitchDeg, yawDeg float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rot := mgl32.Rotate3DY(mgl32.DegToRad(yawDeg)).Mul3(mgl32.Rotate3DX(mgl32.DegToRad(pitchDeg)))
	c.at = c.eye.Add(rot.Mul3x1(c.at.Sub(c.eye)))
}

func (c *cameraImpl) Roll(degrees float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	forward := c.at.Sub(c.eye)
	if forward.Len() == 0 {
		return
	}
	c.up = mgl32.HomogRotate3D(mgl32.DegToRad(degrees), forward.Normalize()).Mul4x1(c.up.Vec4(0)).Vec3()
}
