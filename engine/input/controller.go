package input

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
)

var log = logger.New("input")

// DefaultQueueSize is the number of commands buffered between two drains.
const DefaultQueueSize = 64

// Controller maps keys to commands and queues them until the render goroutine drains
// the queue between frames.
type Controller interface {
	// Bind maps key to cmd, replacing any previous binding. A nil cmd removes the binding.
	//
	// Parameters:
	//   - key: the key
	//   - cmd: the command to queue on key down
	Bind(key Key, cmd Command)

	// Binding returns the command bound to key, or nil.
	Binding(key Key) Command

	// KeyDown queues the command bound to key. Safe to call from the window thread.
	//
	// Parameters:
	//   - key: the pressed key
	//
	// Returns:
	//   - bool: true if a command was queued
	KeyDown(key Key) bool

	// Enqueue queues cmd directly. A full queue drops the command.
	//
	// Returns:
	//   - bool: true if the command was queued
	Enqueue(cmd Command) bool

	// Drain executes every queued command in arrival order.
	//
	// Parameters:
	//   - t: the state commands act on
	//
	// Returns:
	//   - error: the joined errors of every failed command
	Drain(t *Target) error

	// Pending returns the number of queued commands.
	Pending() int
}

type controller struct {
	mu       *sync.RWMutex
	bindings map[Key]Command
	queue    chan Command
}

var _ Controller = &controller{}

// NewController creates a Controller with DefaultBindings and a DefaultQueueSize queue.
//
// Parameters:
//   - options: functional options for the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controller{
		mu:       &sync.RWMutex{},
		bindings: DefaultBindings(),
		queue:    make(chan Command, DefaultQueueSize),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// DefaultBindings returns the stock key map: 1-6 select a technique, S toggles the
// summed-area table, T/R/L/C/I/K/B toggle modes, arrows and page keys move, A toggles the
// animation, V toggles visibility-only output, P prints data and Escape quits.
func DefaultBindings() map[Key]Command {
	b := map[Key]Command{
		KeyS:        ToggleSAT{},
		KeyT:        ToggleMode{ModeTranslation},
		KeyR:        ToggleMode{ModeRotation},
		KeyL:        ToggleMode{ModeLightTranslation},
		KeyC:        ToggleMode{ModeCamera},
		KeyI:        ToggleMode{ModeShadowIntensity},
		KeyK:        ToggleMode{ModeKernelSize},
		KeyB:        ToggleMode{ModeBlockerSearchSize},
		KeyUp:       Move{Axis: 1, Sign: 1},
		KeyDown:     Move{Axis: 1, Sign: -1},
		KeyLeft:     Move{Axis: 0, Sign: -1},
		KeyRight:    Move{Axis: 0, Sign: 1},
		KeyPageUp:   Move{Axis: 2, Sign: 1},
		KeyPageDown: Move{Axis: 2, Sign: -1},
		KeyA:        ToggleAnimation{},
		KeyV:        ToggleVisibilityOnly{},
		KeyP:        PrintData{},
		KeyEscape:   Quit{},
	}
	for i, t := range technique.All() {
		b[Key1+Key(i)] = SelectTechnique{Technique: t}
	}
	return b
}

func (c *controller) Bind(key Key, cmd Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cmd == nil {
		delete(c.bindings, key)
		return
	}
	c.bindings[key] = cmd
}

func (c *controller) Binding(key Key) Command {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bindings[key]
}

func (c *controller) KeyDown(key Key) bool {
	cmd := c.Binding(key)
	if cmd == nil {
		return false
	}
	return c.Enqueue(cmd)
}

func (c *controller) Enqueue(cmd Command) bool {
	select {
	case c.queue <- cmd:
		return true
	default:
		log.Warningf("input queue full, dropping %s", cmd)
		return false
	}
}

func (c *controller) Drain(t *Target) error {
	var errs []error
	for {
		select {
		case cmd := <-c.queue:
			log.Debugf("executing %s", cmd)
			if err := cmd.Execute(t); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", cmd, err))
			}
		default:
			return errors.Join(errs...)
		}
	}
}

func (c *controller) Pending() int {
	return len(c.queue)
}
