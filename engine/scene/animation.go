package scene

import "sync"

// Animation sweep constants. The angle is kept in tenths of a degree so the sweep wraps
// exactly.
const (
	AnimationStart = -1800
	AnimationEnd   = 1800
	AnimationStep  = 6
)

// Animation sweeps the light about the world Y axis, one step per rendered frame.
// Toggling a running animation freezes it in place; toggling a frozen one resumes it.
type Animation interface {
	// Toggle advances the state machine off -> running -> frozen -> running.
	Toggle()

	// Enabled reports whether the light is rotated at all.
	Enabled() bool

	// Frozen reports whether the sweep is paused.
	Frozen() bool

	// Step returns the light rotation for the current frame and advances the sweep
	// when it is running.
	//
	// Returns:
	//   - float32: rotation in degrees, zero while disabled
	Step() float32

	// Degrees returns the current rotation without advancing.
	Degrees() float32
}

type animation struct {
	mu *sync.Mutex

	enabled bool
	frozen  bool
	angle   int
}

var _ Animation = &animation{}

// NewAnimation creates a disabled animation at the start of its sweep.
func NewAnimation() Animation {
	return &animation{
		mu:    &sync.Mutex{},
		angle: AnimationStart,
	}
}

func (a *animation) Toggle() {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch {
	case !a.enabled:
		a.enabled = true
		a.frozen = false
	default:
		a.frozen = !a.frozen
	}
	log.Debugf("animation enabled=%t frozen=%t", a.enabled, a.frozen)
}

func (a *animation) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

func (a *animation) Frozen() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frozen
}

func (a *animation) Step() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return 0
	}
	degrees := float32(a.angle) / 10
	if !a.frozen {
		a.angle += AnimationStep
	}
	if a.angle >= AnimationEnd {
		a.angle = AnimationStart
	}
	return degrees
}

func (a *animation) Degrees() float32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return 0
	}
	return float32(a.angle) / 10
}
