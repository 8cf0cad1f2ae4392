package scene

import (
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		if name != "" {
			s.name = name
		}
	}
}

// WithMeshes adds initial meshes to the scene.
//
// Parameters:
//   - meshes: the meshes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMeshes(meshes ...model.Mesh) SceneBuilderOption {
	return func(s *scene) {
		s.meshes = append(s.meshes, meshes...)
	}
}

// WithTranslation sets the initial global translation.
func WithTranslation(t mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.translation = t
	}
}

// WithRotation sets the initial global rotation angles in degrees.
func WithRotation(r mgl32.Vec3) SceneBuilderOption {
	return func(s *scene) {
		s.rotation = r
	}
}

// WithAnimation replaces the light animation state, e.g. one that starts enabled.
//
// Parameters:
//   - a: the animation
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAnimation(a Animation) SceneBuilderOption {
	return func(s *scene) {
		if a != nil {
			s.animation = a
		}
	}
}
