package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnnotation(t *testing.T) {
	specs := []struct {
		name    string
		line    string
		expType AnnotationType
		expNil  bool
		expErr  bool
	}{
		{"plain code", "let x = 1.0;", "", true, false},
		{"plain comment", "// nothing to see", "", true, false},
		{"include", "//@oxy:include shadow_uniforms", annotationTypeInclude, false, false},
		{"include indented", "    //@oxy:include fullscreen", annotationTypeInclude, false, false},
		{"uniform", "//@oxy:uniform 0 0 u shadow_uniforms", AnnotationTypeUniform, false, false},
		{"texture", "//@oxy:texture 1 2 depth shadow_depth", AnnotationTypeTexture, false, false},
		{"unknown chunk", "//@oxy:include bogus", "", false, true},
		{"unknown type", "//@oxy:sampler 0 0 s", "", false, true},
		{"bad group", "//@oxy:texture x 0 float t", "", false, true},
		{"bad kind", "//@oxy:texture 1 0 cube t", "", false, true},
		{"unknown struct", "//@oxy:uniform 0 0 u camera", "", false, true},
		{"empty", "//@oxy:", "", false, true},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			a, err := parseAnnotation(spec.line, 3)
			if spec.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if spec.expNil {
				assert.Nil(t, a)
				return
			}
			require.NotNil(t, a)
			assert.Equal(t, spec.expType, a.Type)
			assert.Equal(t, 3, a.Line)
		})
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	src := strings.Join([]string{
		"//@oxy:include scene_vertex",
		"//@oxy:include shadow_common",
		"//@oxy:include shadow_uniforms",
		"//@oxy:uniform 0 0 u shadow_uniforms",
	}, "\n")

	pp := NewPreProcessor()
	out, err := pp.Process(src)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "struct ShadowUniforms"))
	assert.Equal(t, 1, strings.Count(out, "struct VertexInput"))
	assert.Contains(t, out, "fn light_coord(")
	assert.Contains(t, out, "@group(0) @binding(0) var<uniform> u: ShadowUniforms;")
	assert.NotContains(t, out, "@oxy:")
	require.Len(t, pp.Declarations(), 1)
}

func TestShaderTexturesSorted(t *testing.T) {
	src := strings.Join([]string{
		"//@oxy:texture 1 2 float c",
		"//@oxy:texture 1 0 depth a",
		"//@oxy:texture 1 1 float b",
	}, "\n")

	s, err := NewShader("test", src)
	require.NoError(t, err)
	assert.False(t, s.HasUniforms())

	textures := s.Textures()
	require.Len(t, textures, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{textures[0].Name, textures[1].Name, textures[2].Name})
	assert.Equal(t, TextureKindDepth, textures[0].Kind)
	assert.Contains(t, s.Source(), "var a: texture_depth_2d;")
	assert.Contains(t, s.Source(), "var c: texture_2d<f32>;")
}

func TestEmbeddedProgramsProcess(t *testing.T) {
	p := NewProvider()
	for _, name := range Programs() {
		t.Run(name, func(t *testing.T) {
			s, err := p.Program(name)
			require.NoError(t, err)
			assert.Equal(t, name, s.Key())
			assert.Contains(t, s.Source(), "fn "+VertexEntryPoint)
			assert.Contains(t, s.Source(), "fn "+FragmentEntryPoint)
		})
	}

	soft, err := p.Program(ProgramSoftShadow)
	require.NoError(t, err)
	require.Len(t, soft.Textures(), 3)
	assert.Equal(t, TextureKindDepth, soft.Textures()[0].Kind)
	assert.True(t, soft.HasUniforms())

	prepare, err := p.Program(ProgramPrepareMinMax)
	require.NoError(t, err)
	assert.False(t, prepare.HasUniforms())
}

func TestVertexLayout(t *testing.T) {
	p := NewProvider()

	scene, err := p.Program(ProgramScene)
	require.NoError(t, err)
	layout, ok := VertexLayout(scene.Source())
	require.True(t, ok)
	assert.Equal(t, uint64(40), layout.ArrayStride)
	require.Len(t, layout.Attributes, 3)
	assert.Equal(t, wgpu.VertexFormatFloat32x3, layout.Attributes[1].Format)
	assert.Equal(t, uint64(12), layout.Attributes[1].Offset)
	assert.Equal(t, uint32(2), layout.Attributes[2].ShaderLocation)

	copyPass, err := p.Program(ProgramCopy)
	require.NoError(t, err)
	_, ok = VertexLayout(copyPass.Source())
	assert.False(t, ok)

	specs := []struct {
		name   string
		source string
		expOK  bool
		stride uint64
	}{
		{"commented member", "struct V {\n @location(0) a: vec2f, // @location(1) b: f32,\n}\nfn vs_main(in: V) {}", true, 8},
		{"block comment", "/* struct V { @location(0) x: f32 } */ struct V { @location(0) a: vec4<f32> } fn vs_main(in: V) {}", true, 16},
		{"output struct ignored", "struct O { @location(0) a: vec4f, @location(1) b: vec4f } struct V { @location(0) p: vec3f } fn vs_main(v: V) {}", true, 12},
		{"builtin member", "struct V { @builtin(position) p: vec4f, @location(0) a: f32 } fn vs_main(in: V) {}", false, 0},
		{"unmapped type", "struct V { @location(0) m: mat2x2<f32> } fn vs_main(in: V) {}", false, 0},
		{"no vertex entry", "struct V { @location(0) a: f32 }", false, 0},
	}
	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			layout, ok := VertexLayout(spec.source)
			assert.Equal(t, spec.expOK, ok)
			assert.Equal(t, spec.stride, layout.ArrayStride)
		})
	}
}

func TestProviderUnknownProgram(t *testing.T) {
	p := NewProvider()
	_, err := p.Program("does/not/exist")
	assert.True(t, errors.Is(err, ErrUnknownProgram))
}

func TestProviderOverrideAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "monte_carlo"), 0o755))
	file := filepath.Join(dir, "monte_carlo", "clear.wgsl")
	require.NoError(t, os.WriteFile(file, []byte("// first\n"), 0o644))

	p := NewProvider(
		WithOverrideDir(dir),
		WithPrograms(fstest.MapFS{"scene.wgsl": {Data: []byte("// embedded scene\n")}}),
	)

	s, err := p.Program(ProgramClear)
	require.NoError(t, err)
	assert.Contains(t, s.Source(), "first")

	scene, err := p.Program(ProgramScene)
	require.NoError(t, err)
	assert.Contains(t, scene.Source(), "embedded scene")

	require.NoError(t, os.WriteFile(file, []byte("// second\n"), 0o644))
	cached, err := p.Program(ProgramClear)
	require.NoError(t, err)
	assert.Contains(t, cached.Source(), "first")

	p.Invalidate(ProgramClear)
	reloaded, err := p.Program(ProgramClear)
	require.NoError(t, err)
	assert.Contains(t, reloaded.Source(), "second")
}

func TestProviderProgramName(t *testing.T) {
	p := &provider{overrideDir: filepath.Join("a", "b")}

	name, ok := p.programName(filepath.Join("a", "b", "moments", "min_max.wgsl"))
	assert.True(t, ok)
	assert.Equal(t, ProgramMinMax, name)

	_, ok = p.programName(filepath.Join("a", "b", "notes.txt"))
	assert.False(t, ok)
}
