package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	// name identifies the mesh in logs and GPU labels.
	name string

	// vertices holds object-space vertex data.
	vertices []Vertex

	// indices holds triangle-list indices into vertices.
	indices []uint32
}

// Mesh is an indexed triangle list ready for upload to a renderer backend.
// Meshes are immutable once built; the scene transform is applied by the renderer.
type Mesh interface {
	// Name returns the mesh identifier.
	//
	// Returns:
	//   - string: the name given at construction
	Name() string

	// Vertices returns the vertex slice. Callers must not modify it.
	//
	// Returns:
	//   - []Vertex: the mesh vertices
	Vertices() []Vertex

	// Indices returns the triangle-list indices. Callers must not modify it.
	//
	// Returns:
	//   - []uint32: the mesh indices
	Indices() []uint32

	// IndexCount returns the number of indices (three per triangle).
	IndexCount() int

	// Bounds returns the axis-aligned bounding box of the vertex positions.
	//
	// Returns:
	//   - mgl32.Vec3: minimum corner
	//   - mgl32.Vec3: maximum corner
	Bounds() (mgl32.Vec3, mgl32.Vec3)

	// Centroid returns the mean of the vertex positions.
	Centroid() mgl32.Vec3

	// VertexData returns the serialized vertex buffer.
	VertexData() []byte

	// IndexData returns the serialized index buffer.
	IndexData() []byte
}

var _ Mesh = &mesh{}

// NewMesh creates a new Mesh with the provided options.
//
// Parameters:
//   - options: functional options for mesh configuration
//
// Returns:
//   - Mesh: the newly created mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &mesh{name: "mesh"}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Vertices() []Vertex {
	return m.vertices
}

func (m *mesh) Indices() []uint32 {
	return m.indices
}

func (m *mesh) IndexCount() int {
	return len(m.indices)
}

func (m *mesh) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(m.vertices) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	lo := mgl32.Vec3(m.vertices[0].Position)
	hi := lo
	for _, v := range m.vertices[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	return lo, hi
}

func (m *mesh) Centroid() mgl32.Vec3 {
	if len(m.vertices) == 0 {
		return mgl32.Vec3{}
	}
	var sum mgl32.Vec3
	for _, v := range m.vertices {
		sum = sum.Add(mgl32.Vec3(v.Position))
	}
	return sum.Mul(1 / float32(len(m.vertices)))
}

func (m *mesh) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *mesh) IndexData() []byte {
	return MarshalIndices(m.indices)
}
