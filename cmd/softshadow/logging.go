package main

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/Carmen-Shannon/oxy-shadows/engine/settings"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/urfave/cli"
)

var log = logger.New("softshadow")

func setupLogging(ctx *cli.Context, s settings.Settings) {
	s.LogLevel()
	if ctx.GlobalBool("v") {
		logger.SetLevel(logger.Info)
	}
	if ctx.GlobalBool("vv") {
		logger.SetLevel(logger.Debug)
	}
}

// overrides are the command-line values that replace settings file values. Zero values
// leave the file value in place.
type overrides struct {
	technique      string
	sat            bool
	visibilityOnly bool
	width          int
	height         int
	mapSize        int
	samples        int
	shaderDir      string
	backend        string
}

func overridesFrom(ctx *cli.Context) overrides {
	return overrides{
		technique:      ctx.String("technique"),
		sat:            ctx.Bool("sat"),
		visibilityOnly: ctx.Bool("visibility-only"),
		width:          ctx.Int("width"),
		height:         ctx.Int("height"),
		mapSize:        ctx.Int("map-size"),
		samples:        ctx.Int("samples"),
		shaderDir:      ctx.String("shader-dir"),
		backend:        ctx.String("backend"),
	}
}

func (o overrides) apply(s *settings.Settings) error {
	if o.technique != "" {
		t, err := technique.Parse(o.technique)
		if err != nil {
			return err
		}
		s.Technique.Technique = t
	}
	if o.sat {
		s.Technique.SAT = true
	}
	if o.visibilityOnly {
		s.Technique.VisibilityOnly = true
	}
	if o.width > 0 {
		s.Window.Width = o.width
	}
	if o.height > 0 {
		s.Window.Height = o.height
	}
	if o.mapSize > 0 {
		s.Shadow.MapSize = o.mapSize
	}
	if o.samples > 0 {
		s.Light.Samples = o.samples
	}
	if o.shaderDir != "" {
		s.Renderer.ShaderDir = o.shaderDir
	}
	if o.backend != "" {
		s.Renderer.Backend = o.backend
	}
	return s.Validate()
}

// loadSettings reads the global settings file, when given, applies the command's flags and
// configures logging.
func loadSettings(ctx *cli.Context) (settings.Settings, error) {
	s := settings.Default()
	if path := ctx.GlobalString("settings"); path != "" {
		var err error
		if s, err = settings.Load(path); err != nil {
			return s, err
		}
	}
	if err := overridesFrom(ctx).apply(&s); err != nil {
		return s, fmt.Errorf("command line: %w", err)
	}
	setupLogging(ctx, s)
	return s, nil
}
