// Package scene holds the static geometry of the rendered world together with the global
// transform and the light animation driven by user input.
package scene

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

var log = logger.New("scene")

// Scene is a named set of meshes rendered under one global model transform.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Meshes returns the scene geometry in insertion order.
	//
	// Returns:
	//   - []model.Mesh: a copy of the mesh list
	Meshes() []model.Mesh

	// Add appends meshes to the scene. Meshes added after the renderer uploaded the scene
	// are not drawn until the next upload.
	//
	// Parameters:
	//   - meshes: the meshes to add
	Add(meshes ...model.Mesh)

	// Bounds returns the untransformed axis-aligned bounds of every mesh.
	//
	// Returns:
	//   - mgl32.Vec3: minimum corner
	//   - mgl32.Vec3: maximum corner
	Bounds() (mgl32.Vec3, mgl32.Vec3)

	// Centroid returns the center of Bounds.
	Centroid() mgl32.Vec3

	// Transform returns the global model matrix T * Rx * Ry * Rz.
	//
	// Returns:
	//   - mgl32.Mat4: the model matrix
	Transform() mgl32.Mat4

	// Translate adds delta to the global translation.
	//
	// Parameters:
	//   - delta: world-space offset
	Translate(delta mgl32.Vec3)

	// Rotate adds delta to the global rotation angles.
	//
	// Parameters:
	//   - delta: rotation in degrees around X, Y and Z
	Rotate(delta mgl32.Vec3)

	// Translation returns the global translation.
	Translation() mgl32.Vec3

	// Rotation returns the global rotation angles in degrees.
	Rotation() mgl32.Vec3

	// Animation returns the light animation state.
	Animation() Animation
}

type scene struct {
	mu *sync.RWMutex

	name   string
	meshes []model.Mesh

	translation mgl32.Vec3
	rotation    mgl32.Vec3

	animation Animation
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the provided options.
// Defaults: named "scene", no meshes, identity transform, animation off.
//
// Parameters:
//   - options: functional options for scene configuration
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:        &sync.RWMutex{},
		name:      "scene",
		animation: NewAnimation(),
	}
	for _, opt := range options {
		opt(s)
	}
	log.Debugf("scene %q created with %d meshes", s.name, len(s.meshes))
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Meshes() []model.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Mesh, len(s.meshes))
	copy(out, s.meshes)
	return out
}

func (s *scene) Add(meshes ...model.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meshes = append(s.meshes, meshes...)
}

func (s *scene) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lo, hi mgl32.Vec3
	for i, m := range s.meshes {
		mlo, mhi := m.Bounds()
		if i == 0 {
			lo, hi = mlo, mhi
			continue
		}
		for k := range 3 {
			lo[k] = min(lo[k], mlo[k])
			hi[k] = max(hi[k], mhi[k])
		}
	}
	return lo, hi
}

func (s *scene) Centroid() mgl32.Vec3 {
	lo, hi := s.Bounds()
	return lo.Add(hi).Mul(0.5)
}

func (s *scene) Transform() mgl32.Mat4 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return common.SceneTransform(s.translation, s.rotation)
}

func (s *scene) Translate(delta mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translation = s.translation.Add(delta)
}

func (s *scene) Rotate(delta mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation = s.rotation.Add(delta)
}

func (s *scene) Translation() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.translation
}

func (s *scene) Rotation() mgl32.Vec3 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rotation
}

func (s *scene) Animation() Animation {
	return s.animation
}
