// annotations.go defines the annotation types, argument constants, and parser for the
// Oxy WGSL shader pre-processor. Annotations are single-line WGSL comments prefixed
// with @oxy: that drive struct and library injection, uniform declaration, and texture
// input declaration. The parsed results are stored as Annotation values and consumed
// by the PreProcessor and the renderer backends to build bind group layouts without
// hand-maintained tables.
package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix is the marker that identifies an Oxy annotation within a WGSL comment line.
const annotationPrefix = "@oxy:"

// AnnotationType identifies the kind of annotation parsed from a WGSL comment line.
type AnnotationType string

const (
	// annotationTypeInclude injects a registered WGSL chunk (struct definition or helper library).
	//
	// Syntax: //@oxy:include <chunk>
	//
	// Example: //@oxy:include shadow_uniforms
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeUniform generates the uniform buffer declaration for a registered struct.
	//
	// Syntax: //@oxy:uniform <group> <binding> <var_name> <struct>
	//
	// Example: //@oxy:uniform 0 0 u shadow_uniforms
	AnnotationTypeUniform AnnotationType = "uniform"

	// AnnotationTypeTexture generates a texture input declaration. Texture inputs are bound in
	// declaration order from the DrawCommand input list and are always read with textureLoad.
	//
	// Syntax: //@oxy:texture <group> <binding> <kind> <var_name>
	//
	// Example: //@oxy:texture 1 0 depth shadow_map
	AnnotationTypeTexture AnnotationType = "texture"
)

// AnnotationArg is a typed annotation argument.
type AnnotationArg string

const (
	// AnnotationArgShadowUniforms refers to the shared ShadowUniforms struct.
	AnnotationArgShadowUniforms AnnotationArg = "shadow_uniforms"
	// annotationArgVertex refers to the VertexInput struct.
	annotationArgVertex AnnotationArg = "vertex"
	// annotationArgFullscreen injects the fullscreen-triangle vertex stage.
	annotationArgFullscreen AnnotationArg = "fullscreen"
	// annotationArgSceneVertex injects the scene vertex stage and its varyings.
	annotationArgSceneVertex AnnotationArg = "scene_vertex"
	// annotationArgShadowCommon injects the shared filtering and estimation helpers.
	annotationArgShadowCommon AnnotationArg = "shadow_common"

	// TextureKindDepth declares a texture_depth_2d input.
	TextureKindDepth AnnotationArg = "depth"
	// TextureKindFloat declares an unfilterable texture_2d<f32> input.
	TextureKindFloat AnnotationArg = "float"
)

var validIncludes = []AnnotationArg{
	AnnotationArgShadowUniforms,
	annotationArgVertex,
	annotationArgFullscreen,
	annotationArgSceneVertex,
	annotationArgShadowCommon,
}

var validTextureKinds = []AnnotationArg{TextureKindDepth, TextureKindFloat}

// Annotation is a single parsed @oxy: annotation.
type Annotation struct {
	// Type is the annotation kind.
	Type AnnotationType

	// Args holds the non-numeric arguments in source order.
	Args []AnnotationArg

	// Line is the 1-based source line of the annotation.
	Line int

	// Group is the bind group index for uniform and texture annotations.
	Group *int

	// Binding is the binding index for uniform and texture annotations.
	Binding *int
}

// parseAnnotation parses a single source line. Lines that carry no annotation return (nil, nil).
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number used in error messages
//
// Returns:
//   - *Annotation: the parsed annotation or nil
//   - error: error if the annotation is malformed
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "//") {
		return nil, nil
	}
	_, after, ok := strings.Cut(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @oxy annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case annotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @oxy include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validIncludes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown chunk %q in @oxy include annotation", lineNum, args[1])
		}
		return &Annotation{Type: annotationTypeInclude, Args: []AnnotationArg{AnnotationArg(args[1])}, Line: lineNum}, nil
	case AnnotationTypeUniform:
		if len(args) != 5 {
			return nil, fmt.Errorf("line %d: @oxy uniform annotation requires four arguments (group, binding, var name, struct)", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if AnnotationArg(args[4]) != AnnotationArgShadowUniforms {
			return nil, fmt.Errorf("line %d: unknown uniform struct %q", lineNum, args[4])
		}
		return &Annotation{
			Type:    AnnotationTypeUniform,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	case AnnotationTypeTexture:
		if len(args) != 5 {
			return nil, fmt.Errorf("line %d: @oxy texture annotation requires four arguments (group, binding, kind, var name)", lineNum)
		}
		group, binding, err := parseSlot(args[1], args[2], lineNum)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(validTextureKinds, AnnotationArg(args[3])) {
			return nil, fmt.Errorf("line %d: unknown texture kind %q", lineNum, args[3])
		}
		return &Annotation{
			Type:    AnnotationTypeTexture,
			Args:    []AnnotationArg{AnnotationArg(args[3]), AnnotationArg(args[4])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, args[0])
	}
}

func parseSlot(groupArg, bindingArg string, lineNum int) (int, int, error) {
	group, err := strconv.Atoi(groupArg)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid group number %q: %v", lineNum, groupArg, err)
	}
	binding, err := strconv.Atoi(bindingArg)
	if err != nil {
		return 0, 0, fmt.Errorf("line %d: invalid binding number %q: %v", lineNum, bindingArg, err)
	}
	return group, binding, nil
}
