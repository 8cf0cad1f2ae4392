package renderer

import (
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, programs map[string][]pipeline.PipelineBuilderOption) Renderer {
	t.Helper()
	r, err := NewRenderer(BackendTypeCPU, nil, WithScreenSize(16, 16), WithWorkerCount(3))
	require.NoError(t, err)
	t.Cleanup(r.Release)

	provider := shader.NewProvider()
	for name, opts := range programs {
		program, err := provider.Program(name)
		require.NoError(t, err)
		opts = append([]pipeline.PipelineBuilderOption{pipeline.WithProgram(program)}, opts...)
		require.NoError(t, r.RegisterPipelines(pipeline.NewPipeline(name, opts...)))
	}
	return r
}

func fullscreen() []pipeline.PipelineBuilderOption {
	return []pipeline.PipelineBuilderOption{
		pipeline.WithGeometry(pipeline.GeometryFullscreen),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
	}
}

func colorTexture(t *testing.T, r Renderer, label string, size, levels int) Texture {
	t.Helper()
	tex, err := r.CreateTexture(TextureDescriptor{Label: label, Width: size, Height: size, Format: TextureFormatRGBA32F, MipLevels: levels})
	require.NoError(t, err)
	return tex
}

func TestCPUCopyPass(t *testing.T) {
	r := newTestRenderer(t, map[string][]pipeline.PipelineBuilderOption{shader.ProgramCopy: fullscreen()})
	src := colorTexture(t, r, "src", 4, 1)
	dst := colorTexture(t, r, "dst", 4, 1)

	data := make([]float32, 4*4*4)
	for i := range data {
		data[i] = float32(i)
	}
	require.NoError(t, r.WriteTexture(src, 0, data))

	err := r.Draw(DrawCommand{
		Label:    "copy",
		Pipeline: shader.ProgramCopy,
		Target:   RenderTarget{Color: []Attachment{{Texture: dst}}},
		Inputs:   []Texture{src},
		Uniforms: &light.GPUShadowUniforms{},
	})
	require.NoError(t, err)

	got, err := r.ReadTexture(dst, 0)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, []PassStat{{Pipeline: shader.ProgramCopy, Draws: 1}}, r.FrameStats())
}

func TestCPUViewportLimitsWrites(t *testing.T) {
	r := newTestRenderer(t, map[string][]pipeline.PipelineBuilderOption{shader.ProgramCopy: fullscreen()})
	src := colorTexture(t, r, "src", 4, 1)
	dst := colorTexture(t, r, "dst", 4, 1)

	ones := make([]float32, 4*4*4)
	for i := range ones {
		ones[i] = 1
	}
	require.NoError(t, r.WriteTexture(src, 0, ones))
	require.NoError(t, r.Draw(DrawCommand{
		Pipeline: shader.ProgramCopy,
		Target:   RenderTarget{Color: []Attachment{{Texture: dst}}},
		Viewport: common.Viewport{X: 0, Y: 0, Width: 2, Height: 2},
		Inputs:   []Texture{src},
		Uniforms: &light.GPUShadowUniforms{},
	}))

	got, err := r.ReadTexture(dst, 0)
	require.NoError(t, err)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			want := float32(0)
			if x < 2 && y < 2 {
				want = 1
			}
			assert.Equal(t, want, got[(y*4+x)*4], "texel %d,%d", x, y)
		}
	}
}

func TestCPUSceneDepth(t *testing.T) {
	r := newTestRenderer(t, map[string][]pipeline.PipelineBuilderOption{shader.ProgramScene: nil})
	require.NoError(t, r.UploadMeshes(model.Plane("ground", mgl32.Vec3{}, 40, common.ColorWhite)))

	color := colorTexture(t, r, "color", 8, 1)
	depth, err := r.CreateTexture(TextureDescriptor{Label: "depth", Width: 8, Height: 8, Format: TextureFormatDepth32F})
	require.NoError(t, err)

	view := mgl32.LookAtV(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1})
	u := &light.GPUShadowUniforms{
		Model:      mgl32.Ident4(),
		View:       view,
		Projection: common.Perspective(mgl32.DegToRad(90), 1, 1, 20),
		LightMV:    view,
		Near:       1,
		Far:        20,
	}
	require.NoError(t, r.Draw(DrawCommand{
		Pipeline: shader.ProgramScene,
		Target:   RenderTarget{Depth: Attachment{Texture: depth}, Color: []Attachment{{Texture: color}}},
		Clear:    &common.ColorTransparent,
		Uniforms: u,
	}))

	moments, err := r.ReadTexture(color, 0)
	require.NoError(t, err)
	depths, err := r.ReadTexture(depth, 0)
	require.NoError(t, err)

	// the plane is perpendicular to the view axis so every texel sees the same distance
	want := float32(9.0 / 19.0)
	for i := 0; i < 64; i++ {
		assert.InDelta(t, want, moments[i*4], 1e-4)
		assert.InDelta(t, want*want, moments[i*4+1], 1e-4)
		assert.InDelta(t, want, common.LinearizeDepth(depths[i], 1, 20), 1e-3)
	}
}

func TestCPUDepthTestKeepsNearest(t *testing.T) {
	r := newTestRenderer(t, map[string][]pipeline.PipelineBuilderOption{shader.ProgramScene: nil})
	require.NoError(t, r.UploadMeshes(
		model.Plane("far", mgl32.Vec3{0, 0, 0}, 40, common.ColorWhite),
		model.Plane("near", mgl32.Vec3{0, 5, 0}, 40, common.ColorWhite),
		model.Plane("behind", mgl32.Vec3{0, -2, 0}, 40, common.ColorWhite),
	))

	color := colorTexture(t, r, "color", 4, 1)
	depth, err := r.CreateTexture(TextureDescriptor{Label: "depth", Width: 4, Height: 4, Format: TextureFormatDepth32F})
	require.NoError(t, err)

	view := mgl32.LookAtV(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{}, mgl32.Vec3{0, 0, -1})
	u := &light.GPUShadowUniforms{
		Model:      mgl32.Ident4(),
		View:       view,
		Projection: common.Perspective(mgl32.DegToRad(90), 1, 1, 20),
		LightMV:    view,
		Near:       1,
		Far:        20,
	}
	require.NoError(t, r.Draw(DrawCommand{
		Pipeline: shader.ProgramScene,
		Target:   RenderTarget{Depth: Attachment{Texture: depth}, Color: []Attachment{{Texture: color}}},
		Clear:    &common.ColorTransparent,
		Uniforms: u,
	}))

	moments, err := r.ReadTexture(color, 0)
	require.NoError(t, err)
	for i := 0; i < 16; i++ {
		assert.InDelta(t, 4.0/19.0, moments[i*4], 1e-4)
	}
}

func TestCPUGenerateMipmaps(t *testing.T) {
	r := newTestRenderer(t, nil)
	tex := colorTexture(t, r, "chain", 4, 3)

	data := make([]float32, 4*4*4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			for c := 0; c < 4; c++ {
				data[(y*4+x)*4+c] = float32(y*4 + x)
			}
		}
	}
	require.NoError(t, r.WriteTexture(tex, 0, data))
	require.NoError(t, r.GenerateMipmaps(tex))

	level1, err := r.ReadTexture(tex, 1)
	require.NoError(t, err)
	require.Len(t, level1, 2*2*4)
	// (0 + 1 + 4 + 5) / 4
	assert.InDelta(t, 2.5, level1[0], 1e-6)
	// (10 + 11 + 14 + 15) / 4
	assert.InDelta(t, 12.5, level1[3*4], 1e-6)

	level2, err := r.ReadTexture(tex, 2)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, level2[0], 1e-6)

	assert.Equal(t, []PassStat{{Pipeline: shader.ProgramDownsample, Draws: 2}}, r.FrameStats())
}

func TestDrawValidation(t *testing.T) {
	r := newTestRenderer(t, map[string][]pipeline.PipelineBuilderOption{shader.ProgramCopy: fullscreen()})
	src := colorTexture(t, r, "src", 4, 1)
	dst := colorTexture(t, r, "dst", 4, 1)
	u := &light.GPUShadowUniforms{}

	specs := []struct {
		name string
		cmd  DrawCommand
		want error
	}{
		{
			name: "unknown pipeline",
			cmd:  DrawCommand{Pipeline: "missing"},
			want: ErrUnknownPipeline,
		},
		{
			name: "missing input",
			cmd:  DrawCommand{Pipeline: shader.ProgramCopy, Target: RenderTarget{Color: []Attachment{{Texture: dst}}}, Uniforms: u},
			want: ErrInputMismatch,
		},
		{
			name: "input is attachment",
			cmd:  DrawCommand{Pipeline: shader.ProgramCopy, Target: RenderTarget{Color: []Attachment{{Texture: dst}}}, Inputs: []Texture{dst}, Uniforms: u},
			want: ErrFeedbackLoop,
		},
		{
			name: "offscreen program on screen",
			cmd:  DrawCommand{Pipeline: shader.ProgramCopy, Target: RenderTarget{Screen: true}, Inputs: []Texture{src}, Uniforms: u},
			want: ErrTargetMismatch,
		},
		{
			name: "too many attachments",
			cmd:  DrawCommand{Pipeline: shader.ProgramCopy, Target: RenderTarget{Color: []Attachment{{Texture: dst}, {Texture: dst}}}, Inputs: []Texture{src}, Uniforms: u},
			want: ErrTargetMismatch,
		},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			assert.ErrorIs(t, r.Draw(spec.cmd), spec.want)
		})
	}
}

func TestCPUAttachmentSizeMismatch(t *testing.T) {
	r := newTestRenderer(t, map[string][]pipeline.PipelineBuilderOption{shader.ProgramCopy: fullscreen()})
	src := colorTexture(t, r, "src", 4, 1)
	chain := colorTexture(t, r, "chain", 8, 4)

	// level 1 of an 8x8 texture is 4x4 and a valid target
	require.NoError(t, r.Draw(DrawCommand{
		Pipeline: shader.ProgramCopy,
		Target:   RenderTarget{Color: []Attachment{{Texture: chain, MipLevel: 1}}},
		Inputs:   []Texture{src},
		Uniforms: &light.GPUShadowUniforms{},
	}))

	err := r.Draw(DrawCommand{
		Pipeline: shader.ProgramCopy,
		Target:   RenderTarget{Color: []Attachment{{Texture: chain, MipLevel: 4}}},
		Inputs:   []Texture{src},
		Uniforms: &light.GPUShadowUniforms{},
	})
	assert.Error(t, err)
}

func TestClipPolygon(t *testing.T) {
	in := func(x, y, z, w float32) clipVertex { return clipVertex{clip: mgl32.Vec4{x, y, z, w}} }

	specs := []struct {
		name string
		poly []clipVertex
		want int
	}{
		{"inside", []clipVertex{in(0, 0, 0.5, 1), in(1, 0, 0.5, 1), in(0, 1, 0.5, 1)}, 3},
		{"behind near plane", []clipVertex{in(0, 0, -1, 1), in(1, 0, -1, 1), in(0, 1, -1, 1)}, 0},
		{"one vertex behind", []clipVertex{in(0, 0, -0.5, 1), in(1, 0, 0.5, 1), in(0, 1, 0.5, 1)}, 4},
		{"beyond far plane", []clipVertex{in(0, 0, 2, 1), in(1, 0, 2, 1), in(0, 1, 2, 1)}, 0},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			out := clipPolygon(spec.poly)
			assert.Len(t, out, spec.want)
			for _, v := range out {
				assert.GreaterOrEqual(t, v.clip.Z(), float32(-1e-6))
				assert.LessOrEqual(t, v.clip.Z(), v.clip.W()+1e-6)
			}
		})
	}
}

func TestParallelRowsCoversEveryRowOnce(t *testing.T) {
	b := newCPURendererBackend(4, 4, 4)
	defer b.Release()

	var mu sync.Mutex
	seen := map[int]int{}
	parallelRows(b.pool, b.workers, 3, 40, func(y0, y1 int) {
		mu.Lock()
		defer mu.Unlock()
		for y := y0; y < y1; y++ {
			seen[y]++
		}
	})

	require.Len(t, seen, 37)
	for y := 3; y < 40; y++ {
		assert.Equal(t, 1, seen[y], "row %d", y)
	}
}

func TestChebyshev(t *testing.T) {
	specs := []struct {
		name           string
		mean, second   float32
		depth          float32
		wantVisibility float32
	}{
		{"receiver in front", 0.5, 0.25, 0.4, 1},
		{"receiver on mean", 0.5, 0.25, 0.5, 1},
		// variance 0.01, delta 0.1: 0.01 / 0.02
		{"one sigma behind", 0.5, 0.26, 0.6, 0.5},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			assert.InDelta(t, spec.wantVisibility, chebyshev(spec.mean, spec.second, spec.depth), 1e-4)
		})
	}
}

func TestHamburgerSingleOccluder(t *testing.T) {
	// a single occluder at depth 0.3 fully shadows receivers behind it and none in front
	z := float32(0.3)
	m := [4]float32{z, z * z, z * z * z, z * z * z * z}
	assert.InDelta(t, 1, hamburger(m, 0.6), 0.05)
	assert.InDelta(t, 0, hamburger(m, 0.1), 0.05)
}

func TestFilterWindowsFollowLightRadius(t *testing.T) {
	// receiver at eye depth 101, blocker at 51
	const receiver, blocker = 0.5, 0.25

	specs := []struct {
		name        string
		radius      float32
		wantFilter  int
		wantSearch  int
		mapSize     float32
		kernelSize  float32
		blockerSize float32
	}{
		{"point light keeps the kernel floor", 0, 7, 3, 1024, 15, 7},
		{"small light", 2, 10, 11, 1024, 15, 7},
		{"default light", 16, 80, 82, 1024, 15, 7},
		{"large light caps at an eighth of the map", 64, 128, 128, 1024, 15, 7},
		{"wide kernel floor", 2, 20, 11, 1024, 41, 7},
		{"small map", 16, 7, 6, 64, 15, 7},
		{"small map caps at an eighth", 64, 8, 8, 64, 15, 7},
	}
	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			ctx := &cpuShaderContext{u: &light.GPUShadowUniforms{
				LightRadius:       spec.radius,
				KernelSize:        spec.kernelSize,
				BlockerSearchSize: spec.blockerSize,
				Near:              1,
				Far:               201,
				LightFovTan:       1,
				ShadowMapSize:     spec.mapSize,
			}}
			assert.Equal(t, spec.wantFilter, ctx.penumbraHalf(receiver, blocker))
			assert.Equal(t, spec.wantSearch, ctx.blockerHalf(receiver))
		})
	}
}
