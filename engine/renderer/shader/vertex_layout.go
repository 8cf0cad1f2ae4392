package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// vertexFormat holds the wgpu vertex format of a WGSL type and its byte size.
type vertexFormat struct {
	format wgpu.VertexFormat
	size   uint64
}

var wgslVertexFormats = map[string]vertexFormat{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2f":     {wgpu.VertexFormatFloat32x2, 8},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3f":     {wgpu.VertexFormatFloat32x3, 12},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4f":     {wgpu.VertexFormatFloat32x4, 16},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"i32":       {wgpu.VertexFormatSint32, 4},
}

var (
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex    = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex     = regexp.MustCompile(`@builtin\(\w+\)`)
	vertexEntryRegex = regexp.MustCompile(`fn\s+` + VertexEntryPoint + `\s*\(([^)]*)\)`)

	// fieldRegex captures the name and type of a struct member after its attributes.
	fieldRegex = regexp.MustCompile(`(?:@\w+\([^)]*\)\s*)*(\w+)\s*:\s*(.+)`)
)

type structField struct {
	name     string
	typeName string
	location int
	builtin  bool
}

type structBlock struct {
	name   string
	fields []structField
}

// VertexLayout derives the vertex buffer layout of a program from the struct its vertex entry
// point takes: one whose members all carry @location and none @builtin. Members are packed in
// declaration order.
//
// Parameters:
//   - source: the pre-processed WGSL source
//
// Returns:
//   - wgpu.VertexBufferLayout: the layout
//   - bool: false if the program reads no vertex buffer or a member type has no vertex format
func VertexLayout(source string) (wgpu.VertexBufferLayout, bool) {
	source = stripComments(source)
	entry := vertexEntryRegex.FindStringSubmatch(source)
	if entry == nil {
		return wgpu.VertexBufferLayout{}, false
	}
	params := parseStructFields(entry[1])
	for _, block := range parseStructBlocks(source) {
		for _, param := range params {
			if param.typeName == block.name && block.isVertexInput() {
				return block.vertexBufferLayout()
			}
		}
	}
	return wgpu.VertexBufferLayout{}, false
}

func parseStructBlocks(source string) []structBlock {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	blocks := make([]structBlock, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, structBlock{name: m[1], fields: parseStructFields(m[2])})
	}
	return blocks
}

func parseStructFields(body string) []structField {
	var fields []structField
	for _, line := range splitAtTopLevelCommas(body) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fm := fieldRegex.FindStringSubmatch(line)
		if fm == nil {
			continue
		}
		f := structField{
			name:     fm[1],
			typeName: strings.TrimSpace(fm[2]),
			location: -1,
			builtin:  builtinRegex.MatchString(line),
		}
		if lm := locationRegex.FindStringSubmatch(line); lm != nil {
			f.location, _ = strconv.Atoi(lm[1])
		}
		fields = append(fields, f)
	}
	return fields
}

func (b structBlock) isVertexInput() bool {
	if len(b.fields) == 0 {
		return false
	}
	for _, f := range b.fields {
		if f.builtin || f.location < 0 {
			return false
		}
	}
	return true
}

func (b structBlock) vertexBufferLayout() (wgpu.VertexBufferLayout, bool) {
	attrs := make([]wgpu.VertexAttribute, 0, len(b.fields))
	var offset uint64
	for _, f := range b.fields {
		info, ok := wgslVertexFormats[f.typeName]
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		attrs = append(attrs, wgpu.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += info.size
	}
	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// splitAtTopLevelCommas splits a struct body at commas outside angle brackets, so
// array<f32, 4> stays one member.
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes line comments and nested block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		if i+1 < len(source) {
			switch {
			case source[i] == '/' && source[i+1] == '*':
				depth++
				i++
				continue
			case source[i] == '*' && source[i+1] == '/' && depth > 0:
				depth--
				i++
				continue
			case source[i] == '/' && source[i+1] == '/' && depth == 0:
				for i < len(source) && source[i] != '\n' {
					i++
				}
				if i < len(source) {
					sb.WriteByte('\n')
				}
				continue
			}
		}
		if depth == 0 {
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}
