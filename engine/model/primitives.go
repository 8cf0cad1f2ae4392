package model

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane builds a horizontal (XZ) square centered at center with an upward (+Y) normal.
//
// Parameters:
//   - name: mesh name
//   - center: world-space center of the plane
//   - size: edge length
//   - color: albedo
//
// Returns:
//   - Mesh: a two-triangle mesh
func Plane(name string, center mgl32.Vec3, size float32, color common.Color) Mesh {
	h := size / 2
	c := color.Vec4()
	n := [3]float32{0, 1, 0}
	corner := func(dx, dz float32) Vertex {
		return Vertex{Position: [3]float32{center.X() + dx, center.Y(), center.Z() + dz}, Normal: n, Color: c}
	}
	// counter-clockwise when seen from +Y
	vertices := []Vertex{corner(-h, -h), corner(-h, h), corner(h, h), corner(h, -h)}
	return NewMesh(WithName(name), WithVertices(vertices), WithIndices([]uint32{0, 1, 2, 0, 2, 3}))
}

// Box builds an axis-aligned box spanning lo..hi with per-face normals.
//
// Parameters:
//   - name: mesh name
//   - lo: minimum corner
//   - hi: maximum corner
//   - color: albedo
//
// Returns:
//   - Mesh: a 24-vertex, 12-triangle mesh
func Box(name string, lo, hi mgl32.Vec3, color common.Color) Mesh {
	c := color.Vec4()
	type face struct {
		normal  [3]float32
		corners [4][3]float32
	}
	x0, y0, z0 := lo.X(), lo.Y(), lo.Z()
	x1, y1, z1 := hi.X(), hi.Y(), hi.Z()

	// corners are listed counter-clockwise seen from outside the box
	faces := []face{
		{[3]float32{1, 0, 0}, [4][3]float32{{x1, y0, z1}, {x1, y0, z0}, {x1, y1, z0}, {x1, y1, z1}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{x0, y0, z0}, {x0, y0, z1}, {x0, y1, z1}, {x0, y1, z0}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{x0, y1, z1}, {x1, y1, z1}, {x1, y1, z0}, {x0, y1, z0}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{x0, y0, z0}, {x1, y0, z0}, {x1, y0, z1}, {x0, y0, z1}}},
		{[3]float32{0, 0, 1}, [4][3]float32{{x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1}, {x0, y1, z1}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{x1, y0, z0}, {x0, y0, z0}, {x0, y1, z0}, {x1, y1, z0}}},
	}

	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for _, p := range f.corners {
			vertices = append(vertices, Vertex{Position: p, Normal: f.normal, Color: c})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewMesh(WithName(name), WithVertices(vertices), WithIndices(indices))
}
