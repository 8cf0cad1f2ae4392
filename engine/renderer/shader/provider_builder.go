package shader

import "io/fs"

// ProviderBuilderOption is a functional option for configuring a Provider.
type ProviderBuilderOption func(*provider)

// WithOverrideDir sets a directory whose <name>.wgsl files replace the embedded programs.
//
// Parameters:
//   - dir: override directory, empty to disable
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithOverrideDir(dir string) ProviderBuilderOption {
	return func(p *provider) {
		p.overrideDir = dir
	}
}

// WithValidation enables naga validation of every program before it is handed out.
// GPU backends enable it so a broken program fails at load time with a readable error.
//
// Parameters:
//   - enabled: whether to validate
//
// Returns:
//   - ProviderBuilderOption: option function to apply
func WithValidation(enabled bool) ProviderBuilderOption {
	return func(p *provider) {
		p.validate = enabled
	}
}

// WithPrograms replaces the embedded program set, mainly for tests.
func WithPrograms(programs fs.FS) ProviderBuilderOption {
	return func(p *provider) {
		p.programs = programs
	}
}
