package renderer

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
)

var log = logger.New("renderer")

// ErrUnknownPipeline is returned by Draw when the pipeline key was never registered.
var ErrUnknownPipeline = errors.New("unknown pipeline")

// ErrInputMismatch is returned by Draw when the inputs do not match the program's texture declarations.
var ErrInputMismatch = errors.New("draw inputs do not match program textures")

// ErrTargetMismatch is returned by Draw when the target does not fit the pipeline's color targets.
var ErrTargetMismatch = errors.New("render target does not match pipeline")

// ErrFeedbackLoop is returned by Draw when a texture is both sampled and written by the pass.
var ErrFeedbackLoop = errors.New("texture is both input and attachment")

// PassStat counts the draws issued with one pipeline during the current frame.
type PassStat struct {
	Pipeline string
	Draws    int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pipelineCache map[string]pipeline.Pipeline

	backendType RendererBackendType
	backend     RendererBackend

	frameDraws map[string]int

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	screenWidth          int
	screenHeight         int
	workerCount          int
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API designed to simplify the multi-pass shadow pipeline into a streamlined and
// idiomatic flow. The Renderer manages a cache of pipelines and forwards textures, meshes and
// draws to a backend, which allows for multiple backend implementations to exist.
type Renderer interface {
	// Type returns the backend type in use.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	Type() RendererBackendType

	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines registers one or more pipelines by compiling them on the backend and caching
	// them by PipelineKey. A pipeline whose key is already registered replaces the cached one so a
	// reloaded program takes effect on the next draw.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// CreateTexture allocates a backend texture.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - Texture: the new texture
	//   - error: error if creation fails
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// WriteTexture uploads row-major float texels into one mip level.
	WriteTexture(t Texture, level int, data []float32) error

	// ReadTexture reads back one mip level as row-major floats.
	ReadTexture(t Texture, level int) ([]float32, error)

	// UploadMeshes replaces the scene geometry with the given meshes.
	//
	// Parameters:
	//   - meshes: the meshes to draw with scene pipelines
	//
	// Returns:
	//   - error: an error if an upload fails
	UploadMeshes(meshes ...model.Mesh) error

	// Draw looks up the pipeline named by the command and executes the pass.
	//
	// Parameters:
	//   - cmd: the pass description
	//
	// Returns:
	//   - error: ErrUnknownPipeline, ErrInputMismatch or a backend error
	Draw(cmd DrawCommand) error

	// GenerateMipmaps rebuilds the mip chain of a color texture from level 0.
	GenerateMipmaps(t Texture) error

	// BeginFrame acquires the screen and resets the per-frame draw statistics.
	BeginFrame() error

	// Present shows the frame.
	Present()

	// FrameStats returns the draws issued since BeginFrame, grouped by pipeline and sorted by key.
	FrameStats() []PassStat

	// ScreenSize returns the screen extent in pixels.
	ScreenSize() (int, int)

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// ReadScreen reads back the screen as RGBA floats.
	ReadScreen() ([]float32, int, int, error)

	// Release frees every backend resource.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type.
// The surface is only used by the WebGPU backend and may be nil for the CPU backend, which takes
// its screen size from WithScreenSize.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - surface: the window providing the WebGPU surface descriptor, or nil
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: error if the backend cannot be created
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		frameDraws:    make(map[string]int),
		screenWidth:   800,
		screenHeight:  600,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeCPU:
		r.backend = newCPURendererBackend(r.screenWidth, r.screenHeight, r.workerCount)
	case BackendTypeWGPU:
		if surface == nil {
			return nil, errors.New("the wgpu backend requires a window surface")
		}
		presentMode := PresentModeUncapped
		if r.pendingPresentMode != nil {
			presentMode = *r.pendingPresentMode
		}
		backend, err := newWGPURendererBackend(surface, r.forceFallbackAdapter, presentMode)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	default:
		return nil, fmt.Errorf("unsupported backend type %d", backendType)
	}

	w, h := r.backend.ScreenSize()
	log.Infof("%s backend ready, screen %dx%d", backendType, w, h)
	return r, nil
}

func (r *renderer) Type() RendererBackendType {
	return r.backendType
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		if p.Program() == nil {
			return fmt.Errorf("pipeline %q has no program", p.PipelineKey())
		}
		if err := r.backend.RegisterPipeline(p); err != nil {
			return fmt.Errorf("registering pipeline %q: %w", p.PipelineKey(), err)
		}
		r.pipelineCache[p.PipelineKey()] = p
	}
	return nil
}

func (r *renderer) CreateTexture(desc TextureDescriptor) (Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if desc.MipLevels <= 0 {
		desc.MipLevels = 1
	}
	return r.backend.CreateTexture(desc)
}

func (r *renderer) WriteTexture(t Texture, level int, data []float32) error {
	return r.backend.WriteTexture(t, level, data)
}

func (r *renderer) ReadTexture(t Texture, level int) ([]float32, error) {
	return r.backend.ReadTexture(t, level)
}

func (r *renderer) UploadMeshes(meshes ...model.Mesh) error {
	r.backend.ClearMeshes()
	for _, m := range meshes {
		if err := r.backend.UploadMesh(m); err != nil {
			return fmt.Errorf("uploading mesh %q: %w", m.Name(), err)
		}
	}
	return nil
}

func (r *renderer) Draw(cmd DrawCommand) error {
	r.mu.Lock()
	p, exists := r.pipelineCache[cmd.Pipeline]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("%w: %q", ErrUnknownPipeline, cmd.Pipeline)
	}
	program := p.Program()
	if len(cmd.Inputs) != len(program.Textures()) {
		return fmt.Errorf("%w: %s expects %d, got %d", ErrInputMismatch, cmd.Pipeline, len(program.Textures()), len(cmd.Inputs))
	}
	if program.HasUniforms() && cmd.Uniforms == nil {
		return fmt.Errorf("pass %q: program %s needs uniforms", cmd.Label, cmd.Pipeline)
	}
	if err := validateTarget(p, cmd); err != nil {
		return fmt.Errorf("pass %q: %w", cmd.Label, err)
	}

	if err := r.backend.Draw(p, cmd); err != nil {
		return fmt.Errorf("pass %q: %w", cmd.Label, err)
	}

	r.mu.Lock()
	r.frameDraws[cmd.Pipeline]++
	r.mu.Unlock()
	return nil
}

// validateTarget checks the target against the pipeline's color targets and rejects passes
// that read a texture they also write.
func validateTarget(p pipeline.Pipeline, cmd DrawCommand) error {
	targets := p.ColorTargets()
	surface := len(targets) == 1 && targets[0] == pipeline.TargetFormatSurface
	if surface != cmd.Target.Screen {
		return fmt.Errorf("%w: %s draws to the screen only when its color target is the surface", ErrTargetMismatch, p.PipelineKey())
	}
	if cmd.Target.Screen {
		return nil
	}
	if len(cmd.Target.Color) != len(targets) {
		return fmt.Errorf("%w: %s writes %d color targets, %q has %d", ErrTargetMismatch, p.PipelineKey(), len(targets), cmd.Target.Label, len(cmd.Target.Color))
	}
	for _, in := range cmd.Inputs {
		if in == cmd.Target.Depth.Texture {
			return fmt.Errorf("%w: %q", ErrFeedbackLoop, in.Label())
		}
		for _, a := range cmd.Target.Color {
			if in == a.Texture {
				return fmt.Errorf("%w: %q", ErrFeedbackLoop, in.Label())
			}
		}
	}
	return nil
}

func (r *renderer) GenerateMipmaps(t Texture) error {
	if t.Format() != TextureFormatRGBA32F {
		return fmt.Errorf("texture %q: mipmaps are only generated for color textures", t.Label())
	}
	if t.MipLevels() < 2 {
		return nil
	}
	if err := r.backend.GenerateMipmaps(t); err != nil {
		return err
	}
	// One downsample per level below the base.
	r.mu.Lock()
	r.frameDraws[shader.ProgramDownsample] += t.MipLevels() - 1
	r.mu.Unlock()
	return nil
}

func (r *renderer) BeginFrame() error {
	r.mu.Lock()
	clear(r.frameDraws)
	r.mu.Unlock()
	return r.backend.BeginFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) FrameStats() []PassStat {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := make([]PassStat, 0, len(r.frameDraws))
	for key, n := range r.frameDraws {
		stats = append(stats, PassStat{Pipeline: key, Draws: n})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Pipeline < stats[j].Pipeline })
	return stats
}

func (r *renderer) ScreenSize() (int, int) {
	return r.backend.ScreenSize()
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.Resize(width, height)
}

func (r *renderer) ReadScreen() ([]float32, int, int, error) {
	return r.backend.ReadScreen()
}

func (r *renderer) Release() {
	r.backend.Release()
}
