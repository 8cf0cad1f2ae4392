package input

// Mode is one of the switches that decide what the arrow and page keys act on.
type Mode int

const (
	// ModeTranslation moves the scene or camera.
	ModeTranslation Mode = iota
	// ModeRotation rotates the scene or camera.
	ModeRotation
	// ModeLightTranslation moves the light.
	ModeLightTranslation
	// ModeCamera redirects translation and rotation from the scene to the camera.
	ModeCamera
	// ModeShadowIntensity lets Up/Down change the shadow intensity.
	ModeShadowIntensity
	// ModeKernelSize lets Up/Down change the filter kernel width.
	ModeKernelSize
	// ModeBlockerSearchSize lets Up/Down change the blocker search width.
	ModeBlockerSearchSize
)

var modeNames = [...]string{
	ModeTranslation:       "translation",
	ModeRotation:          "rotation",
	ModeLightTranslation:  "light translation",
	ModeCamera:            "camera",
	ModeShadowIntensity:   "shadow intensity",
	ModeKernelSize:        "kernel size",
	ModeBlockerSearchSize: "blocker search size",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "unknown"
	}
	return modeNames[m]
}

// Modes holds the input switches. Every switch starts off.
type Modes struct {
	Translation       bool
	Rotation          bool
	LightTranslation  bool
	Camera            bool
	ShadowIntensity   bool
	KernelSize        bool
	BlockerSearchSize bool
}

// Toggle applies one mode switch. Translation and rotation are exclusive; enabling light
// translation or toggling it disables scene translation.
//
// Parameters:
//   - m: the mode to switch
func (s *Modes) Toggle(m Mode) {
	switch m {
	case ModeTranslation:
		s.Translation = true
		s.Rotation = false
	case ModeRotation:
		s.Rotation = true
		s.Translation = false
	case ModeLightTranslation:
		s.LightTranslation = !s.LightTranslation
		s.Translation = false
	case ModeCamera:
		s.Camera = !s.Camera
	case ModeShadowIntensity:
		s.ShadowIntensity = !s.ShadowIntensity
	case ModeKernelSize:
		s.KernelSize = !s.KernelSize
	case ModeBlockerSearchSize:
		s.BlockerSearchSize = !s.BlockerSearchSize
	}
}
