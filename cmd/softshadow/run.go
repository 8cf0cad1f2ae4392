package main

import (
	"github.com/Carmen-Shannon/oxy-shadows/engine"
	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/Carmen-Shannon/oxy-shadows/engine/window"
	"github.com/urfave/cli"
)

// RunInteractive opens a window and renders until it is closed or Escape is pressed.
func RunInteractive(ctx *cli.Context) error {
	s, err := loadSettings(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	backend, err := s.BackendType()
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	if ctx.IsSet("hot-reload") {
		s.Renderer.HotReload = ctx.Bool("hot-reload")
	}
	frameLimit := float64(s.Window.FrameLimit)
	if ctx.IsSet("frame-limit") {
		frameLimit = ctx.Float64("frame-limit")
	}

	w := window.NewWindow(
		window.WithTitle(s.Window.Title),
		window.WithSize(s.Window.Width, s.Window.Height),
	)
	defer w.Close()

	// the window may have opened with a different framebuffer size
	s.Window.Width, s.Window.Height = w.Width(), w.Height()

	var surface renderer.Surface
	if backend == renderer.BackendTypeWGPU {
		surface = w
	}
	r, err := renderer.NewRenderer(backend, surface, s.RendererOptions()...)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	e, err := engine.NewEngine(r,
		scene.NewScene(s.SceneOptions()...),
		camera.NewCamera(s.CameraOptions()...),
		light.NewAreaLight(s.LightOptions()...),
		technique.NewConfig(s.TechniqueOptions()...),
		engine.WithWindow(w),
		engine.WithProvider(shader.NewProvider(s.ProviderOptions()...)),
		engine.WithHotReload(s.Renderer.HotReload),
		engine.WithOrchestratorOptions(s.OrchestratorOptions(nil)...),
		engine.WithProfiling(ctx.Bool("profile")),
		engine.WithRenderFrameLimit(frameLimit),
	)
	if err != nil {
		r.Release()
		return cli.NewExitError(err.Error(), 1)
	}
	defer e.Release()

	if err := e.Init(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	if err := e.Run(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	log.Infof("rendered %d frames", e.Frames())
	return nil
}
