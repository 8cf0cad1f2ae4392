package input

// ControllerBuilderOption is a functional option for configuring a Controller.
type ControllerBuilderOption func(*controller)

// WithQueueSize sets how many commands can wait between two drains.
//
// Parameters:
//   - size: queue capacity, minimum 1
//
// Returns:
//   - ControllerBuilderOption: option function to apply
func WithQueueSize(size int) ControllerBuilderOption {
	return func(c *controller) {
		c.queue = make(chan Command, max(size, 1))
	}
}

// WithBindings replaces the default key map.
func WithBindings(bindings map[Key]Command) ControllerBuilderOption {
	return func(c *controller) {
		c.bindings = make(map[Key]Command, len(bindings))
		for k, cmd := range bindings {
			c.bindings[k] = cmd
		}
	}
}
