// Package settings loads the TOML settings file and translates it into the builder options
// of the window, renderer, orchestrator, technique config, light, camera and scene.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/pelletier/go-toml/v2"
)

var log = logger.New("settings")

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid settings")

// Vec3 is a TOML-friendly three component vector.
type Vec3 [3]float32

// Settings is the root of the settings file. Every section is optional; missing values keep
// the defaults returned by Default.
type Settings struct {
	Window    WindowSettings    `toml:"window"`
	Renderer  RendererSettings  `toml:"renderer"`
	Shadow    ShadowSettings    `toml:"shadow"`
	Technique TechniqueSettings `toml:"technique"`
	Light     LightSettings     `toml:"light"`
	Camera    CameraSettings    `toml:"camera"`
	Scene     SceneSettings     `toml:"scene"`
	Log       LogSettings       `toml:"log"`
}

// WindowSettings configures the interactive window.
type WindowSettings struct {
	Title      string `toml:"title"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	FrameLimit int    `toml:"frame_limit"`
}

// RendererSettings selects and tunes the rendering backend.
type RendererSettings struct {
	Backend       string `toml:"backend"`
	Workers       int    `toml:"workers"`
	VSync         bool   `toml:"vsync"`
	ForceSoftware bool   `toml:"force_software"`
	ShaderDir     string `toml:"shader_dir,omitempty"`
	Validate      bool   `toml:"validate"`
	HotReload     bool   `toml:"hot_reload"`
}

// ShadowSettings configures the light-space targets.
type ShadowSettings struct {
	MapSize      int     `toml:"map_size"`
	ReceiverBias float32 `toml:"receiver_bias"`
	Exponent     float32 `toml:"exponent"`
}

// TechniqueSettings holds the initial algorithm configuration. A zero accumulation
// factor means one over the light sample count.
type TechniqueSettings struct {
	Technique          technique.Technique `toml:"technique"`
	SAT                bool                `toml:"sat"`
	ShadowIntensity    float32             `toml:"shadow_intensity"`
	KernelSize         int                 `toml:"kernel_size"`
	BlockerSearchSize  int                 `toml:"blocker_search_size"`
	AccumulationFactor float32             `toml:"accumulation_factor"`
	VisibilityOnly     bool                `toml:"visibility_only"`
}

// LightSettings places and sizes the area light.
type LightSettings struct {
	Position Vec3    `toml:"position"`
	At       Vec3    `toml:"at"`
	Up       Vec3    `toml:"up"`
	Size     float32 `toml:"size"`
	Samples  int     `toml:"samples"`
	Fov      float32 `toml:"fov"`
	Near     float32 `toml:"near"`
	Far      float32 `toml:"far"`
}

// CameraSettings places the viewer.
type CameraSettings struct {
	Eye  Vec3    `toml:"eye"`
	At   Vec3    `toml:"at"`
	Up   Vec3    `toml:"up"`
	Fov  float32 `toml:"fov"`
	Near float32 `toml:"near"`
	Far  float32 `toml:"far"`
}

// SceneSettings describes the geometry.
type SceneSettings struct {
	Name          string          `toml:"name"`
	DefaultMeshes bool            `toml:"default_meshes"`
	Animate       bool            `toml:"animate"`
	Planes        []PlaneSettings `toml:"planes,omitempty"`
	Boxes         []BoxSettings   `toml:"boxes,omitempty"`
}

// PlaneSettings is one horizontal square.
type PlaneSettings struct {
	Name   string     `toml:"name"`
	Center Vec3       `toml:"center"`
	Size   float32    `toml:"size"`
	Color  [4]float32 `toml:"color"`
}

// BoxSettings is one axis-aligned box.
type BoxSettings struct {
	Name  string     `toml:"name"`
	Min   Vec3       `toml:"min"`
	Max   Vec3       `toml:"max"`
	Color [4]float32 `toml:"color"`
}

// LogSettings configures the loggers.
type LogSettings struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Window: WindowSettings{
			Title:  "Soft Shadows",
			Width:  1280,
			Height: 720,
		},
		Renderer: RendererSettings{
			Backend:  renderer.BackendTypeWGPU.String(),
			VSync:    true,
			Validate: true,
		},
		Shadow: ShadowSettings{
			MapSize:      light.ShadowMapResolution,
			ReceiverBias: light.DefaultReceiverBias,
			Exponent:     light.DefaultExponent,
		},
		Technique: TechniqueSettings{
			Technique:         technique.DefaultTechnique,
			ShadowIntensity:   technique.DefaultShadowIntensity,
			KernelSize:        technique.DefaultKernelSize,
			BlockerSearchSize: technique.DefaultBlockerSearchSize,
		},
		Light: LightSettings{
			Position: Vec3{0, 100, 0},
			Up:       Vec3{0, 0, 1},
			Size:     light.DefaultLightSize,
			Samples:  light.DefaultSampleCount,
			Fov:      light.DefaultShadowFov,
			Near:     light.DefaultShadowNear,
			Far:      light.DefaultShadowFar,
		},
		Camera: CameraSettings{
			Eye:  Vec3{0, 120, 160},
			Up:   Vec3{0, 1, 0},
			Fov:  45,
			Near: 1,
			Far:  1000,
		},
		Scene: SceneSettings{
			Name:          "default",
			DefaultMeshes: true,
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Load reads a settings file on top of Default.
//
// Parameters:
//   - path: the TOML file path
//
// Returns:
//   - Settings: the merged, validated settings
//   - error: error if the file cannot be read, parsed or validated
func Load(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("opening settings: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Infof("loaded settings from %s", path)
	return s, nil
}

// Decode parses TOML on top of Default. Unknown keys are rejected.
//
// Parameters:
//   - r: the TOML source
//
// Returns:
//   - Settings: the merged, validated settings
//   - error: error if the source cannot be parsed or validated
func Decode(r io.Reader) (Settings, error) {
	s := Default()
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Settings{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Settings{}, fmt.Errorf("parsing settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Encode writes s as TOML.
//
// Parameters:
//   - w: the destination
//
// Returns:
//   - error: error if encoding or writing fails
func (s Settings) Encode(w io.Writer) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(s); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Validate checks every value the constructors cannot repair on their own.
//
// Returns:
//   - error: an ErrInvalid wrapped description of the first problem
func (s Settings) Validate() error {
	switch {
	case s.Window.Width <= 0 || s.Window.Height <= 0:
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, s.Window.Width, s.Window.Height)
	case !common.IsPowerOfTwo(s.Shadow.MapSize) || s.Shadow.MapSize < 2:
		return fmt.Errorf("%w: shadow map size %d is not a power of two", ErrInvalid, s.Shadow.MapSize)
	case !s.Technique.Technique.Valid():
		return fmt.Errorf("%w: %s", ErrInvalid, s.Technique.Technique)
	case s.Light.Samples <= 0:
		return fmt.Errorf("%w: light samples %d", ErrInvalid, s.Light.Samples)
	case s.Light.Near <= 0 || s.Light.Far <= s.Light.Near:
		return fmt.Errorf("%w: light clip planes %g..%g", ErrInvalid, s.Light.Near, s.Light.Far)
	case s.Camera.Near <= 0 || s.Camera.Far <= s.Camera.Near:
		return fmt.Errorf("%w: camera clip planes %g..%g", ErrInvalid, s.Camera.Near, s.Camera.Far)
	}
	if _, err := s.BackendType(); err != nil {
		return err
	}
	for _, b := range s.Scene.Boxes {
		for k := range 3 {
			if b.Min[k] > b.Max[k] {
				return fmt.Errorf("%w: box %q has min above max", ErrInvalid, b.Name)
			}
		}
	}
	return nil
}

// BackendType resolves the renderer backend name.
//
// Returns:
//   - renderer.RendererBackendType: the backend
//   - error: error if the name is unknown
func (s Settings) BackendType() (renderer.RendererBackendType, error) {
	switch strings.ToLower(s.Renderer.Backend) {
	case renderer.BackendTypeWGPU.String(), "":
		return renderer.BackendTypeWGPU, nil
	case renderer.BackendTypeCPU.String():
		return renderer.BackendTypeCPU, nil
	default:
		return 0, fmt.Errorf("%w: unknown backend %q", ErrInvalid, s.Renderer.Backend)
	}
}

// LogLevel applies the configured log level.
func (s Settings) LogLevel() {
	if s.Log.Level != "" {
		logger.SetLevel(logger.ParseLevel(s.Log.Level))
	}
}
