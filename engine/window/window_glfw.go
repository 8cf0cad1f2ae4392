package window

import (
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-shadows/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent *engineWindow
	window *glfw.Window
}

var glfwKeys = map[glfw.Key]input.Key{
	glfw.Key1:        input.Key1,
	glfw.Key2:        input.Key2,
	glfw.Key3:        input.Key3,
	glfw.Key4:        input.Key4,
	glfw.Key5:        input.Key5,
	glfw.Key6:        input.Key6,
	glfw.KeyA:        input.KeyA,
	glfw.KeyB:        input.KeyB,
	glfw.KeyC:        input.KeyC,
	glfw.KeyI:        input.KeyI,
	glfw.KeyK:        input.KeyK,
	glfw.KeyL:        input.KeyL,
	glfw.KeyP:        input.KeyP,
	glfw.KeyR:        input.KeyR,
	glfw.KeyS:        input.KeyS,
	glfw.KeyT:        input.KeyT,
	glfw.KeyV:        input.KeyV,
	glfw.KeyUp:       input.KeyUp,
	glfw.KeyDown:     input.KeyDown,
	glfw.KeyLeft:     input.KeyLeft,
	glfw.KeyRight:    input.KeyRight,
	glfw.KeyPageUp:   input.KeyPageUp,
	glfw.KeyPageDown: input.KeyPageDown,
	glfw.KeyEscape:   input.KeyEscape,
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %v", err)
	}
	win.SetSizeLimits(w.minWidth, w.minHeight, limit(w.maxWidth), limit(w.maxHeight))

	gw := &glfwWindow{parent: w, window: win}
	w.internalWindow = gw

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press && action != glfw.Repeat {
			return
		}
		k, ok := glfwKeys[key]
		if !ok || w.onKeyDown == nil {
			return
		}
		w.onKeyDown(k)
	})

	// Framebuffer size is in pixels, which is what the surface is configured with.
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})

	w.width, w.height = win.GetFramebufferSize()
	return nil
}

func limit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	if w.internalWindow == nil {
		return nil
	}
	gw := w.internalWindow.(*glfwWindow)
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformIsRunningCheck returns whether the GLFW window is still active.
func platformIsRunningCheck(w *engineWindow) bool {
	if w.internalWindow == nil {
		return false
	}
	return !w.internalWindow.(*glfwWindow).window.ShouldClose()
}

// platformRequestClose flags the window; glfwSetWindowShouldClose may be called from any thread.
func platformRequestClose(w *engineWindow) {
	if w.internalWindow == nil {
		return
	}
	w.internalWindow.(*glfwWindow).window.SetShouldClose(true)
	glfw.PostEmptyEvent()
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
//
// Returns:
//   - error: error if the window is not initialized
func platformCloseWindow(w *engineWindow) error {
	if w.internalWindow == nil {
		return fmt.Errorf("window is not initialized")
	}
	gw := w.internalWindow.(*glfwWindow)
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	w.internalWindow = nil
	return nil
}

// platformProcessMessages polls GLFW for pending events without blocking.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformProcessMessages(w *engineWindow) bool {
	glfw.PollEvents()
	return platformIsRunningCheck(w)
}
