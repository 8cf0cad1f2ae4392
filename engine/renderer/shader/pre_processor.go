// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for @oxy: annotations, replaces them with injected WGSL chunks or
// generated declarations, and collects the uniform and texture declarations that
// the renderer backends turn into bind group layouts.
package shader

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
)

//go:embed assets/lib/fullscreen.wgsl
var fullscreenSource string

//go:embed assets/lib/scene_vertex.wgsl
var sceneVertexSource string

//go:embed assets/lib/shadow_common.wgsl
var shadowCommonSource string

// registryEntry pairs a WGSL chunk with the type name it declares (empty for helper libraries).
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	registry     map[AnnotationArg]registryEntry
	declarations []Annotation
}

// PreProcessor processes raw WGSL shader source code containing @oxy: annotations.
type PreProcessor interface {
	// Process replaces annotations with their WGSL output. Each chunk is injected at most
	// once per source even when it is included (directly or transitively) several times.
	// The declarations list is reset at the start of each call.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code containing annotations
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error if any annotation is malformed
	Process(source string) (string, error)

	// Declarations returns the uniform and texture annotations collected during the most
	// recent call to Process, in source order.
	//
	// Returns:
	//   - []Annotation: the declarations collected during the last Process call
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a new PreProcessor with every chunk registered.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[AnnotationArg]registryEntry{
			AnnotationArgShadowUniforms: {Source: light.GPUShadowUniformsSource, Type: "ShadowUniforms"},
			annotationArgVertex:         {Source: model.GPUVertexSource, Type: "VertexInput"},
			annotationArgFullscreen:     {Source: fullscreenSource},
			annotationArgSceneVertex:    {Source: sceneVertexSource},
			annotationArgShadowCommon:   {Source: shadowCommonSource},
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	included := map[AnnotationArg]bool{}
	out, err := p.process(source, included)
	if err != nil {
		return "", err
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) process(source string, included map[AnnotationArg]bool) ([]string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return nil, err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			if included[a.Args[0]] {
				continue
			}
			included[a.Args[0]] = true
			entry, ok := p.registry[a.Args[0]]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, a.Args[0])
			}
			// chunks may include other chunks
			nested, err := p.process(entry.Source, included)
			if err != nil {
				return nil, fmt.Errorf("chunk %s: %w", a.Args[0], err)
			}
			out = append(out, nested...)
		case AnnotationTypeUniform:
			entry := p.registry[a.Args[1]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) var<uniform> %s: %s;", *a.Group, *a.Binding, a.Args[0], entry.Type))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeTexture:
			wgslType := "texture_2d<f32>"
			if a.Args[0] == TextureKindDepth {
				wgslType = "texture_depth_2d"
			}
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) var %s: %s;", *a.Group, *a.Binding, a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		default:
			return nil, fmt.Errorf("line %d: unknown annotation type %q", i+1, a.Type)
		}
	}
	return out, nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
