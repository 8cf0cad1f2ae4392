package shader

import (
	"fmt"
	"sort"
)

// Entry points every program module must export.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

// TextureInput describes one texture binding declared with //@oxy:texture.
type TextureInput struct {
	Group   int
	Binding int
	Kind    AnnotationArg
	Name    string
}

type shader struct {
	key          string
	rawSource    string
	source       string
	declarations []Annotation
	textures     []TextureInput
}

// Shader is a pre-processed WGSL program module holding both the vertex and fragment
// stage of one render program.
type Shader interface {
	// Key returns the logical program name, such as "moments/min_max".
	//
	// Returns:
	//   - string: the program name
	Key() string

	// Source returns the pre-processed WGSL source.
	//
	// Returns:
	//   - string: WGSL ready for module creation
	Source() string

	// RawSource returns the source before pre-processing.
	RawSource() string

	// Declarations returns the uniform and texture annotations found in the source.
	Declarations() []Annotation

	// Textures returns the texture inputs ordered by (group, binding). DrawCommand inputs
	// are matched to this slice positionally.
	//
	// Returns:
	//   - []TextureInput: the declared texture inputs
	Textures() []TextureInput

	// HasUniforms reports whether the program declares the shared uniform block.
	HasUniforms() bool
}

var _ Shader = &shader{}

// NewShader pre-processes source and returns the resulting program module.
//
// Parameters:
//   - key: logical program name
//   - source: raw WGSL with @oxy annotations
//
// Returns:
//   - Shader: the processed shader
//   - error: error if pre-processing fails
func NewShader(key, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:          key,
		rawSource:    source,
		source:       processed,
		declarations: append([]Annotation(nil), pp.Declarations()...),
	}
	for _, d := range s.declarations {
		if d.Type != AnnotationTypeTexture {
			continue
		}
		s.textures = append(s.textures, TextureInput{
			Group:   *d.Group,
			Binding: *d.Binding,
			Kind:    d.Args[0],
			Name:    string(d.Args[1]),
		})
	}
	sort.Slice(s.textures, func(i, j int) bool {
		if s.textures[i].Group != s.textures[j].Group {
			return s.textures[i].Group < s.textures[j].Group
		}
		return s.textures[i].Binding < s.textures[j].Binding
	})
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) RawSource() string {
	return s.rawSource
}

func (s *shader) Declarations() []Annotation {
	return s.declarations
}

func (s *shader) Textures() []TextureInput {
	return s.textures
}

func (s *shader) HasUniforms() bool {
	for _, d := range s.declarations {
		if d.Type == AnnotationTypeUniform {
			return true
		}
	}
	return false
}
