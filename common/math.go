package common

import (
	"unsafe"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// Perspective creates a right-handed perspective projection that maps view-space depth
// into the WebGPU clip range [0, 1] (near plane to 0, far plane to 1).
// mgl32.Perspective targets the OpenGL [-1, 1] range and is not used for that reason.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func Perspective(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / math32.Tan(fovY/2.0)
	var m mgl32.Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = far / (near - far)
	m[11] = -1.0
	m[14] = (near * far) / (near - far)
	return m
}

// LinearizeDepth converts a [0, 1] clip-space depth produced by Perspective back into
// the normalized linear distance (dist - near) / (far - near).
//
// Parameters:
//   - ndc: depth value read from a depth attachment
//   - near: near plane used to produce the depth
//   - far: far plane used to produce the depth
//
// Returns:
//   - float32: linear depth in [0, 1]
func LinearizeDepth(ndc, near, far float32) float32 {
	dist := (far * near) / (far - ndc*(far-near))
	return (dist - near) / (far - near)
}

// NormalizedDistance maps a view-space distance onto [0, 1] between the near and far planes.
func NormalizedDistance(dist, near, far float32) float32 {
	return (dist - near) / (far - near)
}

// SceneTransform builds the global model matrix applied to the whole scene:
// translation followed by rotations about X, Y and Z (degrees), in that order.
//
// Parameters:
//   - translation: world-space translation
//   - rotationDegrees: rotation angles in degrees around X, Y and Z
//
// Returns:
//   - mgl32.Mat4: T * Rx * Ry * Rz
func SceneTransform(translation, rotationDegrees mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(translation.X(), translation.Y(), translation.Z())
	m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(rotationDegrees.X())))
	m = m.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(rotationDegrees.Y())))
	return m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(rotationDegrees.Z())))
}

// RotateAboutY rotates a point about the world Y axis through the origin.
//
// Parameters:
//   - v: the point to rotate
//   - degrees: rotation angle in degrees
//
// Returns:
//   - mgl32.Vec3: the rotated point
func RotateAboutY(v mgl32.Vec3, degrees float32) mgl32.Vec3 {
	return mgl32.Rotate3DY(mgl32.DegToRad(degrees)).Mul3x1(v)
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Log2 returns floor(log2(n)) for n >= 1 and 0 otherwise.
func Log2(n int) int {
	l := 0
	for n > 1 {
		n >>= 1
		l++
	}
	return l
}

// MipLevelCount returns the length of a full mip chain for a size x size texture.
func MipLevelCount(size int) int {
	return Log2(size) + 1
}

// MipSize returns the extent of mip level `level` for a base extent, never less than 1.
func MipSize(base, level int) int {
	s := base >> level
	if s < 1 {
		return 1
	}
	return s
}
