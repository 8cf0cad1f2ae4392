// Package shadow sequences the passes of every soft-shadow technique: light captures,
// summed-area tables, min/max pyramids, Monte-Carlo accumulation and the final composite.
package shadow

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/render_target"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/go-gl/mathgl/mgl32"
)

var log = logger.New("shadow")

// ErrNotPowerOfTwo is returned when the shadow-map size cannot be halved down to one texel.
var ErrNotPowerOfTwo = errors.New("shadow map size is not a power of two")

// Scene supplies the geometry and global transform of the rendered scene.
type Scene interface {
	// Meshes returns the static geometry, uploaded once at Init.
	Meshes() []model.Mesh

	// Transform returns the global model matrix of the current frame.
	Transform() mgl32.Mat4
}

type orchestrator struct {
	mu *sync.Mutex

	renderer renderer.Renderer
	targets  render_target.Registry
	provider shader.Provider
	scene    Scene
	camera   camera.Camera
	light    light.AreaLight

	shadowMapSize int
	receiverBias  float32
	exponent      float32

	flow        Flow
	initialized bool
}

// Orchestrator renders frames with the technique selected in each frame's config snapshot.
type Orchestrator interface {
	// Init registers every pass pipeline, uploads the scene and allocates and binds every
	// render target. It must be called once before RenderFrame.
	//
	// Returns:
	//   - error: error if a program fails to load or a resource cannot be allocated
	Init() error

	// RenderFrame renders and presents one frame. A frame that fails part-way is not presented.
	//
	// Parameters:
	//   - cfg: the configuration snapshot taken at frame start
	//
	// Returns:
	//   - error: the first error of the frame's passes
	RenderFrame(cfg technique.Snapshot) error

	// Resize resizes the screen and re-allocates the window-sized targets.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	//
	// Returns:
	//   - error: error if a target cannot be re-allocated
	Resize(width, height int) error

	// Flow returns the flow of the most recent frame.
	Flow() Flow

	// Targets returns the render target registry.
	Targets() render_target.Registry

	// ShadowMapSize returns the edge length of the light-space targets.
	ShadowMapSize() int

	// Release frees every render target.
	Release()
}

var _ Orchestrator = &orchestrator{}

// NewOrchestrator creates an orchestrator for a scene, camera and light.
//
// Parameters:
//   - r: the renderer every pass draws with
//   - s: the scene
//   - cam: the viewer camera
//   - l: the area light
//   - options: functional options for the orchestrator
//
// Returns:
//   - Orchestrator: the orchestrator, not yet initialized
//   - error: ErrNotPowerOfTwo for an unusable shadow-map size
func NewOrchestrator(r renderer.Renderer, s Scene, cam camera.Camera, l light.AreaLight, options ...OrchestratorBuilderOption) (Orchestrator, error) {
	o := &orchestrator{
		mu:            &sync.Mutex{},
		renderer:      r,
		targets:       render_target.NewRegistry(r),
		scene:         s,
		camera:        cam,
		light:         l,
		shadowMapSize: light.ShadowMapResolution,
		receiverBias:  light.DefaultReceiverBias,
		exponent:      light.DefaultExponent,
		flow:          DirectShadowFlow,
	}
	for _, opt := range options {
		opt(o)
	}
	if !common.IsPowerOfTwo(o.shadowMapSize) || o.shadowMapSize < 2 {
		return nil, fmt.Errorf("%w: %d", ErrNotPowerOfTwo, o.shadowMapSize)
	}
	if o.provider == nil {
		o.provider = shader.NewProvider()
	}
	return o, nil
}

func (o *orchestrator) Init() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := RegisterPipelines(o.renderer, o.provider); err != nil {
		return err
	}
	if err := o.renderer.UploadMeshes(o.scene.Meshes()...); err != nil {
		return fmt.Errorf("uploading scene: %w", err)
	}
	if err := o.acquireShadowMaps(); err != nil {
		return err
	}
	width, height := o.renderer.ScreenSize()
	if err := o.acquireWindowTargets(width, height); err != nil {
		return err
	}
	if err := o.bindFramebuffers(); err != nil {
		return err
	}
	o.checkLightCoverage()
	o.initialized = true
	log.Infof("initialized: shadow map %d, screen %dx%d", o.shadowMapSize, width, height)
	return nil
}

// checkLightCoverage reports meshes that the center light capture does not fully see. Receivers
// outside the light frustum sample outside the shadow map and are never shadowed.
func (o *orchestrator) checkLightCoverage() {
	frustum := common.ExtractFrustum(o.light.ProjectionMatrix().Mul4(o.light.ViewMatrix(light.CenterSample)))
	model := o.scene.Transform()
	for _, m := range o.scene.Meshes() {
		lo, hi := m.Bounds()
		corners := common.BoxCorners(lo, hi, model)
		switch {
		case !frustum.IntersectsBox(corners):
			log.Warningf("mesh %s is outside the light frustum", m.Name())
		case !frustum.ContainsBox(corners):
			log.Debugf("mesh %s extends past the light frustum", m.Name())
		}
	}
}

type textureSpec struct {
	id     render_target.TextureID
	format renderer.TextureFormat
	filter renderer.FilterMode
	mips   bool
}

var shadowMapTextures = []textureSpec{
	{render_target.ShadowMapDepth, renderer.TextureFormatDepth32F, renderer.FilterNearest, false},
	{render_target.ShadowMapColor, renderer.TextureFormatRGBA32F, renderer.FilterLinear, true},
	{render_target.TempShadowMapDepth, renderer.TextureFormatDepth32F, renderer.FilterNearest, false},
	{render_target.TempShadowMapColor, renderer.TextureFormatRGBA32F, renderer.FilterNearest, true},
	{render_target.SATShadowMapDepth, renderer.TextureFormatDepth32F, renderer.FilterNearest, false},
	{render_target.SATShadowMapColor, renderer.TextureFormatRGBA32F, renderer.FilterNearest, true},
	{render_target.HierarchicalShadowMapDepth, renderer.TextureFormatDepth32F, renderer.FilterNearest, false},
	{render_target.HierarchicalShadowMapColor, renderer.TextureFormatRGBA32F, renderer.FilterNearest, true},
}

var windowTextures = []textureSpec{
	{render_target.AccumulationMapDepth, renderer.TextureFormatDepth32F, renderer.FilterNearest, false},
	{render_target.AccumulationMapColor, renderer.TextureFormatRGBA32F, renderer.FilterNearest, false},
	{render_target.TempAccumulationMapDepth, renderer.TextureFormatDepth32F, renderer.FilterNearest, false},
	{render_target.TempAccumulationMapColor, renderer.TextureFormatRGBA32F, renderer.FilterNearest, false},
	{render_target.GBufferMapDepth, renderer.TextureFormatDepth32F, renderer.FilterNearest, false},
	{render_target.VertexMapColor, renderer.TextureFormatRGBA32F, renderer.FilterNearest, false},
	{render_target.NormalMapColor, renderer.TextureFormatRGBA32F, renderer.FilterNearest, false},
}

func (o *orchestrator) acquireShadowMaps() error {
	for _, spec := range shadowMapTextures {
		mips := 1
		if spec.mips {
			mips = common.MipLevelCount(o.shadowMapSize)
		}
		if _, err := o.targets.Acquire(spec.id, spec.format, o.shadowMapSize, o.shadowMapSize, spec.filter, mips); err != nil {
			return err
		}
	}
	return nil
}

func (o *orchestrator) acquireWindowTargets(width, height int) error {
	for _, spec := range windowTextures {
		if _, err := o.targets.Acquire(spec.id, spec.format, width, height, spec.filter, 1); err != nil {
			return err
		}
	}
	return nil
}

type framebufferSpec struct {
	fb    render_target.FramebufferID
	depth render_target.TextureID
	color []render_target.TextureID
}

var framebuffers = []framebufferSpec{
	{render_target.Shadow, render_target.ShadowMapDepth, []render_target.TextureID{render_target.ShadowMapColor}},
	{render_target.TempShadow, render_target.TempShadowMapDepth, []render_target.TextureID{render_target.TempShadowMapColor}},
	{render_target.SATShadow, render_target.SATShadowMapDepth, []render_target.TextureID{render_target.SATShadowMapColor}},
	{render_target.HierarchicalShadow, render_target.HierarchicalShadowMapDepth, []render_target.TextureID{render_target.HierarchicalShadowMapColor}},
	{render_target.Accumulation, render_target.AccumulationMapDepth, []render_target.TextureID{render_target.AccumulationMapColor}},
	{render_target.TempAccumulation, render_target.TempAccumulationMapDepth, []render_target.TextureID{render_target.TempAccumulationMapColor}},
	{render_target.GBuffer, render_target.GBufferMapDepth, []render_target.TextureID{render_target.VertexMapColor, render_target.NormalMapColor}},
}

func (o *orchestrator) bindFramebuffers() error {
	for _, spec := range framebuffers {
		if err := o.targets.Bind(spec.fb, render_target.SlotDepth, spec.depth, 0); err != nil {
			return err
		}
		for i, id := range spec.color {
			if err := o.targets.Bind(spec.fb, render_target.SlotColor0+render_target.Slot(i), id, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *orchestrator) RenderFrame(cfg technique.Snapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.initialized {
		return errors.New("orchestrator used before Init")
	}

	tech := TechniqueFor(cfg.Technique)
	if tech.Flow() != o.flow {
		log.Debugf("flow %s -> %s", o.flow, tech.Flow())
		o.flow = tech.Flow()
	}
	fc := o.newFrameContext(cfg)

	if err := o.renderer.BeginFrame(); err != nil {
		return fmt.Errorf("beginning frame: %w", err)
	}
	if err := tech.Capture(fc); err != nil {
		return fmt.Errorf("%s capture: %w", cfg.Technique, err)
	}
	if err := tech.Derive(fc); err != nil {
		return fmt.Errorf("%s derive: %w", cfg.Technique, err)
	}
	if err := tech.Composite(fc); err != nil {
		return fmt.Errorf("%s composite: %w", cfg.Technique, err)
	}
	o.renderer.Present()
	return nil
}

func (o *orchestrator) newFrameContext(cfg technique.Snapshot) *FrameContext {
	return &FrameContext{
		Config:        cfg,
		Renderer:      o.renderer,
		Targets:       o.targets,
		Camera:        o.camera,
		Light:         o.light,
		Model:         o.scene.Transform(),
		ShadowMapSize: o.shadowMapSize,
		ReceiverBias:  o.receiverBias,
		Exponent:      o.exponent,
	}
}

func (o *orchestrator) Resize(width, height int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if width <= 0 || height <= 0 {
		return nil
	}
	o.renderer.Resize(width, height)
	o.camera.SetAspect(float32(width) / float32(height))
	if !o.initialized {
		return nil
	}
	return o.acquireWindowTargets(width, height)
}

func (o *orchestrator) Flow() Flow {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.flow
}

func (o *orchestrator) Targets() render_target.Registry {
	return o.targets
}

func (o *orchestrator) ShadowMapSize() int {
	return o.shadowMapSize
}

func (o *orchestrator) Release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.targets.Release()
	o.initialized = false
}
