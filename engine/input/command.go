package input

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/go-gl/mathgl/mgl32"
)

// Step sizes of one key press.
const (
	Velocity             = float32(1)
	RotationStep         = 5 * Velocity
	LightTranslationStep = 5 * Velocity
	IntensityStep        = float32(0.05)
)

// Target is the state commands act on. Quit may be nil.
type Target struct {
	Config technique.Config
	Scene  scene.Scene
	Camera camera.Camera
	Light  light.AreaLight
	Modes  *Modes
	Quit   func()
}

// Command is one user action.
type Command interface {
	// Execute applies the action to t.
	//
	// Parameters:
	//   - t: the state to mutate
	//
	// Returns:
	//   - error: error if the action cannot be applied
	Execute(t *Target) error

	// String describes the action for logging.
	String() string
}

// SelectTechnique makes Technique the only active technique.
type SelectTechnique struct {
	Technique technique.Technique
}

func (c SelectTechnique) Execute(t *Target) error {
	if err := t.Config.Select(c.Technique); err != nil {
		return err
	}
	log.Infof("technique %s (sat %t)", c.Technique, t.Config.UseSAT())
	return nil
}

func (c SelectTechnique) String() string {
	return "select " + c.Technique.String()
}

// ToggleSAT flips the summed-area table flag.
type ToggleSAT struct{}

func (ToggleSAT) Execute(t *Target) error {
	log.Infof("summed-area table %t", t.Config.ToggleSAT())
	return nil
}

func (ToggleSAT) String() string {
	return "toggle sat"
}

// ToggleMode flips one input mode.
type ToggleMode struct {
	Mode Mode
}

func (c ToggleMode) Execute(t *Target) error {
	t.Modes.Toggle(c.Mode)
	log.Debugf("modes %+v", *t.Modes)
	return nil
}

func (c ToggleMode) String() string {
	return "toggle " + c.Mode.String()
}

// Move is an arrow or page key press along Axis (0 = X, 1 = Y, 2 = Z) in direction Sign.
// What it moves depends on the active modes; Y presses also step the tunables whose
// modes are on.
type Move struct {
	Axis int
	Sign float32
}

func (c Move) Execute(t *Target) error {
	if c.Axis < 0 || c.Axis > 2 {
		return fmt.Errorf("move axis %d out of range", c.Axis)
	}
	var unit mgl32.Vec3
	unit[c.Axis] = c.Sign
	m := t.Modes

	if m.Camera {
		if m.Translation {
			t.Camera.Translate(unit.Mul(Velocity))
		}
		if m.Rotation {
			c.rotateCamera(t.Camera)
		}
	} else {
		if m.Translation {
			t.Scene.Translate(unit.Mul(Velocity))
		}
		if m.Rotation {
			t.Scene.Rotate(unit.Mul(RotationStep))
		}
	}
	if m.LightTranslation {
		t.Light.Translate(unit.Mul(LightTranslationStep))
	}

	if c.Axis == 1 {
		step := int(c.Sign)
		if m.ShadowIntensity {
			log.Infof("shadow intensity %.2f", t.Config.AdjustShadowIntensity(IntensityStep*c.Sign))
		}
		if m.KernelSize {
			log.Infof("kernel size %d", t.Config.AdjustKernelSize(step))
		}
		if m.BlockerSearchSize {
			log.Infof("blocker search size %d", t.Config.AdjustBlockerSearchSize(step))
		}
	}
	return nil
}

// rotateCamera turns vertical presses into pitch, horizontal ones into yaw and page
// presses into roll.
func (c Move) rotateCamera(cam camera.Camera) {
	deg := RotationStep * c.Sign
	switch c.Axis {
	case 0:
		cam.Orbit(0, deg)
	case 1:
		cam.Orbit(deg, 0)
	case 2:
		cam.Roll(deg)
	}
}

func (c Move) String() string {
	return fmt.Sprintf("move axis %d by %+.0f", c.Axis, c.Sign)
}

// ToggleAnimation steps the light animation state machine.
type ToggleAnimation struct{}

func (ToggleAnimation) Execute(t *Target) error {
	t.Scene.Animation().Toggle()
	return nil
}

func (ToggleAnimation) String() string {
	return "toggle animation"
}

// ToggleVisibilityOnly switches the composite between shaded color and the raw shadow factor.
type ToggleVisibilityOnly struct{}

func (ToggleVisibilityOnly) Execute(t *Target) error {
	log.Infof("visibility only %t", t.Config.ToggleVisibilityOnly())
	return nil
}

func (ToggleVisibilityOnly) String() string {
	return "toggle visibility only"
}

// PrintData logs the light, camera and global transform.
type PrintData struct{}

func (PrintData) Execute(t *Target) error {
	eye, at := t.Light.Eye(light.CenterSample), t.Light.At(light.CenterSample)
	log.Infof("light position: %.3f %.3f %.3f", eye.X(), eye.Y(), eye.Z())
	log.Infof("light at: %.3f %.3f %.3f", at.X(), at.Y(), at.Z())
	eye, at = t.Camera.Eye(), t.Camera.At()
	log.Infof("camera position: %.3f %.3f %.3f", eye.X(), eye.Y(), eye.Z())
	log.Infof("camera at: %.3f %.3f %.3f", at.X(), at.Y(), at.Z())
	tr, rot := t.Scene.Translation(), t.Scene.Rotation()
	log.Infof("global translation: %.3f %.3f %.3f", tr.X(), tr.Y(), tr.Z())
	log.Infof("global rotation: %.3f %.3f %.3f", rot.X(), rot.Y(), rot.Z())
	return nil
}

func (PrintData) String() string {
	return "print data"
}

// Quit asks the engine to stop.
type Quit struct{}

func (Quit) Execute(t *Target) error {
	if t.Quit != nil {
		t.Quit()
	}
	return nil
}

func (Quit) String() string {
	return "quit"
}
