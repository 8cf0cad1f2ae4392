package shader

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/fsnotify/fsnotify"
	"github.com/gogpu/naga"
)

var log = logger.New("shader")

//go:embed assets/programs
var embeddedPrograms embed.FS

// ErrUnknownProgram is returned when no source exists for a program name.
var ErrUnknownProgram = errors.New("unknown shader program")

type provider struct {
	mu    sync.Mutex
	cache map[string]Shader

	programs    fs.FS
	overrideDir string
	validate    bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// Provider resolves logical program names to ready, pre-processed programs.
// Sources come from the embedded program set unless a file with the same relative path
// exists in the override directory.
type Provider interface {
	// Program loads (or returns the cached) program for name.
	//
	// Parameters:
	//   - name: logical program name, e.g. ProgramSoftShadow
	//
	// Returns:
	//   - Shader: the processed program
	//   - error: ErrUnknownProgram, a pre-processing error or a WGSL validation error
	Program(name string) (Shader, error)

	// Invalidate drops a cached program so the next Program call reloads it.
	Invalidate(name string)

	// Watch starts watching the override directory and calls onChange with the program
	// name of every modified .wgsl file. It is a no-op without an override directory.
	//
	// Parameters:
	//   - onChange: callback invoked from the watcher goroutine
	//
	// Returns:
	//   - error: error if the watcher cannot be created
	Watch(onChange func(name string)) error

	// Close stops the watcher, if any.
	Close() error
}

var _ Provider = &provider{}

// NewProvider creates a new Provider with the provided options.
//
// Parameters:
//   - options: functional options for provider configuration
//
// Returns:
//   - Provider: the newly created provider
func NewProvider(options ...ProviderBuilderOption) Provider {
	sub, err := fs.Sub(embeddedPrograms, "assets/programs")
	if err != nil {
		panic(fmt.Sprintf("embedded shader programs missing: %v", err))
	}
	p := &provider{
		cache:    map[string]Shader{},
		programs: sub,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *provider) Program(name string) (Shader, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.cache[name]; ok {
		return s, nil
	}

	source, origin, err := p.readSource(name)
	if err != nil {
		return nil, err
	}

	s, err := NewShader(name, source)
	if err != nil {
		return nil, err
	}

	if p.validate {
		if _, err := naga.Compile(s.Source()); err != nil {
			return nil, fmt.Errorf("shader %s (%s) failed validation: %w", name, origin, err)
		}
	}

	log.Debugf("loaded program %s from %s", name, origin)
	p.cache[name] = s
	return s, nil
}

func (p *provider) readSource(name string) (string, string, error) {
	rel := name + ".wgsl"
	if p.overrideDir != "" {
		file := filepath.Join(p.overrideDir, filepath.FromSlash(rel))
		data, err := os.ReadFile(file)
		if err == nil {
			return string(data), file, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("reading shader override %s: %w", file, err)
		}
	}

	data, err := fs.ReadFile(p.programs, path.Clean(rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", "", fmt.Errorf("%w: %s", ErrUnknownProgram, name)
		}
		return "", "", err
	}
	return string(data), "embedded:" + rel, nil
}

func (p *provider) Invalidate(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.cache, name)
}

func (p *provider) Watch(onChange func(name string)) error {
	if p.overrideDir == "" {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating shader watcher: %w", err)
	}

	err = filepath.WalkDir(p.overrideDir, func(dir string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return w.Add(dir)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("watching %s: %w", p.overrideDir, err)
	}

	p.mu.Lock()
	p.watcher = w
	p.done = make(chan struct{})
	p.mu.Unlock()

	go p.watch(w, onChange)
	log.Infof("watching %s for shader changes", p.overrideDir)
	return nil
}

func (p *provider) watch(w *fsnotify.Watcher, onChange func(name string)) {
	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			name, ok := p.programName(event.Name)
			if !ok {
				continue
			}
			p.Invalidate(name)
			log.Noticef("program %s changed on disk", name)
			if onChange != nil {
				onChange(name)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warningf("shader watcher: %v", err)
		case <-p.done:
			return
		}
	}
}

// programName maps a file path inside the override directory to its program name.
func (p *provider) programName(file string) (string, bool) {
	rel, err := filepath.Rel(p.overrideDir, file)
	if err != nil || !strings.HasSuffix(rel, ".wgsl") {
		return "", false
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), ".wgsl"), true
}

func (p *provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.watcher == nil {
		return nil
	}
	close(p.done)
	err := p.watcher.Close()
	p.watcher = nil
	return err
}
