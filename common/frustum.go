package common

import "github.com/go-gl/mathgl/mgl32"

// Plane is the plane n·p + d = 0, with the positive half-space on the normal side.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the distance from the plane to p, positive on the inside.
func (p Plane) SignedDistance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.Distance
}

// Frustum holds the six inward-facing planes of a view volume.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// ExtractFrustum extracts the planes of a projection * view matrix with the Gribb/Hartmann
// method, for clip-space depth in [0, 1].
//
// Parameters:
//   - viewProj: the combined projection * view matrix
//
// Returns:
//   - Frustum: the frustum with normalized planes
func ExtractFrustum(viewProj mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 {
		return viewProj.Row(i)
	}
	planes := [6]mgl32.Vec4{
		row(3).Add(row(0)),
		row(3).Sub(row(0)),
		row(3).Add(row(1)),
		row(3).Sub(row(1)),
		row(2),
		row(3).Sub(row(2)),
	}

	var f Frustum
	for i, p := range planes {
		n := p.Vec3()
		length := n.Len()
		if length > 0 {
			n = n.Mul(1 / length)
			p[3] /= length
		}
		f.Planes[i] = Plane{Normal: n, Distance: p[3]}
	}
	return f
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.SignedDistance(p) < 0 {
			return false
		}
	}
	return true
}

// ContainsBox reports whether every corner of the box is inside the frustum.
func (f Frustum) ContainsBox(corners [8]mgl32.Vec3) bool {
	for _, c := range corners {
		if !f.ContainsPoint(c) {
			return false
		}
	}
	return true
}

// IntersectsBox conservatively reports whether the box may overlap the frustum. A box is only
// rejected when all its corners lie outside the same plane.
func (f Frustum) IntersectsBox(corners [8]mgl32.Vec3) bool {
	for _, plane := range f.Planes {
		outside := 0
		for _, c := range corners {
			if plane.SignedDistance(c) < 0 {
				outside++
			}
		}
		if outside == len(corners) {
			return false
		}
	}
	return true
}

// BoxCorners returns the corners of the axis-aligned box [lo, hi] transformed by m.
func BoxCorners(lo, hi mgl32.Vec3, m mgl32.Mat4) [8]mgl32.Vec3 {
	var corners [8]mgl32.Vec3
	for i := range corners {
		c := lo
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				c[axis] = hi[axis]
			}
		}
		corners[i] = mgl32.TransformCoordinate(c, m)
	}
	return corners
}
