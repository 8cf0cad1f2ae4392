// Package engine runs the interactive soft-shadow application: it owns the render
// goroutine, drains input commands between frames, advances the light animation, applies
// window resizes and shader reloads and hands each frame to the shadow orchestrator.
package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/input"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/Carmen-Shannon/oxy-shadows/engine/profiler"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/shadow"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
)

var log = logger.New("engine")

// Window is the part of a platform window the engine drives. window.Window satisfies it.
type Window interface {
	SetResizeCallback(callback func(width, height int))
	SetKeyDownCallback(callback func(key input.Key))
	ProcessMessages()
	RequestClose()
}

type size struct {
	width, height int
}

// engine implements the Engine interface.
// Coordinates the render goroutine with the window thread.
type engine struct {
	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once
	errMu       sync.Mutex
	err         error

	window Window

	renderer     renderer.Renderer
	orchestrator shadow.Orchestrator
	provider     shader.Provider
	hotReload    bool

	config     technique.Config
	scene      scene.Scene
	camera     camera.Camera
	light      light.AreaLight
	controller input.Controller
	modes      input.Modes

	resizeChannel chan size
	reloadChannel chan string

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	maxFrames        int           // 0 = until quit
	frames           atomic.Int64
	frameCallback    func(frame int)
}

// Engine is the main entry point of the application.
// It owns the render loop and routes window events into it.
type Engine interface {
	// Init initializes the orchestrator, wires the window callbacks and starts the shader
	// watcher when hot reload is enabled.
	//
	// Returns:
	//   - error: error if the orchestrator or the watcher cannot start
	Init() error

	// RenderFrame runs one frame on the calling goroutine: queued commands, pending resizes
	// and reloads, the animation step, then the orchestrator frame.
	//
	// Returns:
	//   - error: the first error of the frame
	RenderFrame() error

	// Run starts the render goroutine and blocks. With a window it runs the window message
	// loop on the calling thread; without one it waits for Quit or the frame limit.
	//
	// Returns:
	//   - error: the error that stopped the render loop, or nil on a normal quit
	Run() error

	// Quit signals the render goroutine to stop and closes the window.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Controller returns the input controller keys are routed through.
	Controller() input.Controller

	// Config returns the live technique configuration.
	Config() technique.Config

	// Orchestrator returns the shadow orchestrator.
	Orchestrator() shadow.Orchestrator

	// Renderer returns the renderer.
	Renderer() renderer.Renderer

	// Frames returns the number of frames rendered so far.
	Frames() int

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Release stops the shader watcher and frees every GPU resource.
	Release()
}

// NewEngine creates a new Engine around a renderer and the scene objects. The orchestrator
// is created here; WithOrchestratorOptions forwards options to it.
//
// Parameters:
//   - r: the renderer, CPU or WebGPU
//   - s: the scene
//   - cam: the viewer camera
//   - l: the area light
//   - cfg: the technique configuration
//   - options: functional options for the engine
//
// Returns:
//   - Engine: the engine, not yet initialized
//   - error: error if the orchestrator rejects its options
func NewEngine(r renderer.Renderer, s scene.Scene, cam camera.Camera, l light.AreaLight, cfg technique.Config, options ...EngineBuilderOption) (Engine, error) {
	b := &builder{
		engine: &engine{
			quitChannel:   make(chan struct{}),
			renderer:      r,
			config:        cfg,
			scene:         s,
			camera:        cam,
			light:         l,
			resizeChannel: make(chan size, 1),
			reloadChannel: make(chan string, 16),
			profiler:      profiler.NewProfiler(time.Second),
		},
	}
	for _, opt := range options {
		opt(b)
	}
	e := b.engine
	if e.controller == nil {
		e.controller = input.NewController()
	}
	if e.provider == nil {
		e.provider = shader.NewProvider()
	}
	// Penumbra estimation uses the radius of the light actually being rendered.
	cfg.SetLightSourceRadius(l.Radius())

	o, err := shadow.NewOrchestrator(r, s, cam, l, append(b.orchestratorOptions, shadow.WithProvider(e.provider))...)
	if err != nil {
		return nil, err
	}
	e.orchestrator = o
	return e, nil
}

func (e *engine) Init() error {
	if err := e.orchestrator.Init(); err != nil {
		return fmt.Errorf("initializing orchestrator: %w", err)
	}
	if e.window != nil {
		e.window.SetKeyDownCallback(func(key input.Key) {
			e.controller.KeyDown(key)
		})
		e.window.SetResizeCallback(e.queueResize)
	}
	if e.hotReload {
		if err := e.provider.Watch(e.queueReload); err != nil {
			return err
		}
	}
	log.Infof("engine ready: %s backend, technique %s", e.renderer.Type(), e.config.Selected())
	return nil
}

// queueResize keeps only the newest pending size.
func (e *engine) queueResize(width, height int) {
	s := size{width, height}
	for {
		select {
		case e.resizeChannel <- s:
			return
		default:
			select {
			case <-e.resizeChannel:
			default:
			}
		}
	}
}

func (e *engine) queueReload(name string) {
	select {
	case e.reloadChannel <- name:
	default:
		log.Warningf("reload queue full, dropping %s", name)
	}
}

func (e *engine) target() *input.Target {
	return &input.Target{
		Config: e.config,
		Scene:  e.scene,
		Camera: e.camera,
		Light:  e.light,
		Modes:  &e.modes,
		Quit:   e.Quit,
	}
}

func (e *engine) RenderFrame() error {
	start := time.Now()

	if err := e.controller.Drain(e.target()); err != nil {
		log.Warningf("input: %v", err)
	}
	if err := e.applyPending(); err != nil {
		return err
	}

	e.light.SetRotation(e.scene.Animation().Step())
	cfg := e.config.Snapshot()
	if err := e.orchestrator.RenderFrame(cfg); err != nil {
		return err
	}

	frame := int(e.frames.Add(1))
	if e.profilingEnabled {
		e.profiler.Tick(cfg.Technique.String(), time.Since(start))
	}
	if e.frameCallback != nil {
		e.frameCallback(frame)
	}
	return nil
}

// applyPending applies the newest resize and every queued reload. A failed reload keeps the
// previous pipeline and is only logged.
func (e *engine) applyPending() error {
	select {
	case s := <-e.resizeChannel:
		log.Debugf("resize to %dx%d", s.width, s.height)
		if err := e.orchestrator.Resize(s.width, s.height); err != nil {
			return fmt.Errorf("resizing: %w", err)
		}
	default:
	}
	for {
		select {
		case name := <-e.reloadChannel:
			if err := shadow.ReloadSource(e.renderer, e.provider, name); err != nil {
				log.Errorf("reloading %s: %v", name, err)
			}
		default:
			return nil
		}
	}
}

func (e *engine) Run() error {
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.Quit()
	}
	e.wg.Wait()

	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.err
}

func (e *engine) Quit() {
	e.signalQuit(nil)
}

// signalQuit records the first error and closes the quit channel exactly once.
func (e *engine) signalQuit(err error) {
	e.quitOnce.Do(func() {
		e.errMu.Lock()
		e.err = err
		e.errMu.Unlock()
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handle launches the render and quit goroutines.
func (e *engine) handle() {
	e.running.Store(true)
	e.wg.Add(2)
	go e.handleRender()
	go e.handleQuit()
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Criticalf("render goroutine recovered from panic: %v", r)
			e.signalQuit(fmt.Errorf("render panic: %v", r))
		}
	}()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		frameStart := time.Now()
		if err := e.RenderFrame(); err != nil {
			log.Errorf("frame %d: %v", e.Frames()+1, err)
			e.signalQuit(err)
			return
		}
		if e.maxFrames > 0 && e.Frames() >= e.maxFrames {
			e.Quit()
			return
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then closes the window.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
	if e.window != nil {
		e.window.RequestClose()
	}
}

func (e *engine) Controller() input.Controller {
	return e.controller
}

func (e *engine) Config() technique.Config {
	return e.config
}

func (e *engine) Orchestrator() shadow.Orchestrator {
	return e.orchestrator
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Frames() int {
	return int(e.frames.Load())
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Release() {
	if e.running.Load() {
		log.Warning("releasing a running engine")
	}
	if err := e.provider.Close(); err != nil {
		log.Warningf("closing shader provider: %v", err)
	}
	e.orchestrator.Release()
	e.renderer.Release()
}
