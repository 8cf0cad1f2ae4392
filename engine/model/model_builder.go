package model

// MeshBuilderOption is a functional option for configuring a Mesh.
type MeshBuilderOption func(*mesh)

// WithName sets the mesh name.
//
// Parameters:
//   - name: the mesh identifier
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithName(name string) MeshBuilderOption {
	return func(m *mesh) {
		m.name = name
	}
}

// WithVertices sets the mesh vertex data.
//
// Parameters:
//   - vertices: object-space vertices
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithVertices(vertices []Vertex) MeshBuilderOption {
	return func(m *mesh) {
		m.vertices = vertices
	}
}

// WithIndices sets the triangle-list indices.
//
// Parameters:
//   - indices: indices into the vertex slice, three per triangle
//
// Returns:
//   - MeshBuilderOption: option function to apply
func WithIndices(indices []uint32) MeshBuilderOption {
	return func(m *mesh) {
		m.indices = indices
	}
}
