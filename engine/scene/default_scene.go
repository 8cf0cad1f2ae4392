package scene

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	groundColor = common.Color{R: 0.8, G: 0.8, B: 0.8, A: 1}
	boxColor    = common.Color{R: 0.85, G: 0.45, B: 0.3, A: 1}
)

// DefaultMeshes returns the built-in demo geometry: a ground plane, a floating slab that
// casts a wide penumbra and a few boxes standing on the ground.
func DefaultMeshes() []model.Mesh {
	return []model.Mesh{
		model.Plane("ground", mgl32.Vec3{0, 0, 0}, 400, groundColor),
		model.Box("slab", mgl32.Vec3{-30, 40, -30}, mgl32.Vec3{30, 42, 30}, boxColor),
		model.Box("pillar", mgl32.Vec3{50, 0, -10}, mgl32.Vec3{60, 30, 0}, boxColor),
		model.Box("crate", mgl32.Vec3{-70, 0, 40}, mgl32.Vec3{-50, 20, 60}, boxColor),
		model.Box("wall", mgl32.Vec3{-10, 0, -90}, mgl32.Vec3{10, 15, -60}, boxColor),
	}
}

// NewDefaultScene creates a scene holding DefaultMeshes.
//
// Parameters:
//   - options: functional options applied after the default meshes
//
// Returns:
//   - Scene: the demo scene
func NewDefaultScene(options ...SceneBuilderOption) Scene {
	return NewScene(append([]SceneBuilderOption{WithName("default"), WithMeshes(DefaultMeshes()...)}, options...)...)
}
