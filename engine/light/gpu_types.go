package light

import (
	_ "embed"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// GPUShadowUniformsSource is the canonical WGSL definition of the ShadowUniforms struct.
// Matches GPUShadowUniforms layout exactly (416 bytes).
//
//go:embed assets/shadow_uniforms.wgsl
var GPUShadowUniformsSource string

// GPUShadowUniforms is the single uniform block shared by every shadow program. Each pass
// fills the fields its program reads; the rest keep their zero value.
// Layout: five mat4x4 (320 bytes) followed by six 16-byte rows of scalars.
type GPUShadowUniforms struct {
	Model      mgl32.Mat4 // offset   0: global scene transform
	View       mgl32.Mat4 // offset  64: world-to-view of the current viewpoint
	Projection mgl32.Mat4 // offset 128: projection of the current viewpoint
	LightMVP   mgl32.Mat4 // offset 192: light projection * light view * model
	LightMV    mgl32.Mat4 // offset 256: light view * model

	LightEye    mgl32.Vec3 // offset 320: light position used for shading
	LightRadius float32    // offset 332: area light radius in world units

	CameraEye       mgl32.Vec3 // offset 336
	ShadowIntensity float32    // offset 348

	KernelSize         float32 // offset 352: filter width in texels
	BlockerSearchSize  float32 // offset 356: blocker search width in texels
	AccumulationFactor float32 // offset 360: Monte-Carlo per-sample weight
	ReceiverBias       float32 // offset 364

	Near        float32 // offset 368: light near plane
	Far         float32 // offset 372: light far plane
	LightFovTan float32 // offset 376: tan(fov / 2) of the light frustum
	Exponent    float32 // offset 380: exponential warp constant

	Iteration      uint32 // offset 384: SAT iteration or pyramid / copy source level
	Technique      uint32 // offset 388
	UseSAT         uint32 // offset 392
	VisibilityOnly uint32 // offset 396

	ShadowMapSize float32 // offset 400
	TargetWidth   float32 // offset 404
	TargetHeight  float32 // offset 408
	_             float32 // offset 412
}

// Size returns the size of the GPUShadowUniforms struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (u *GPUShadowUniforms) Size() int {
	return int(unsafe.Sizeof(*u))
}

// Bool32 converts a flag to the u32 representation used in WGSL uniforms.
func Bool32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
