// Package input turns key presses into commands that mutate the configuration, scene,
// camera and light. Commands are queued from the window thread and executed on the
// render goroutine between frames.
package input

// Key is a window-system independent key identifier.
type Key int

const (
	KeyUnknown Key = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	KeyA
	KeyB
	KeyC
	KeyI
	KeyK
	KeyL
	KeyP
	KeyR
	KeyS
	KeyT
	KeyV
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPageUp
	KeyPageDown
	KeyEscape
)

var keyNames = map[Key]string{
	Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5", Key6: "6",
	KeyA: "A", KeyB: "B", KeyC: "C", KeyI: "I", KeyK: "K", KeyL: "L",
	KeyP: "P", KeyR: "R", KeyS: "S", KeyT: "T", KeyV: "V",
	KeyUp: "Up", KeyDown: "Down", KeyLeft: "Left", KeyRight: "Right",
	KeyPageUp: "PageUp", KeyPageDown: "PageDown", KeyEscape: "Escape",
}

func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "unknown"
}
