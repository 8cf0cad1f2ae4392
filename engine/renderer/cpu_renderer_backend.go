package renderer

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/pipeline"
)

// cpuRendererBackend runs every program in Go. Triangle setup is serial; scan conversion and
// fullscreen passes are split into row bands on a worker pool.
type cpuRendererBackend struct {
	screenColor *cpuTexture
	screenDepth *cpuTexture

	meshes []model.Mesh

	pool    worker.DynamicWorkerPool
	workers int
}

var _ RendererBackend = &cpuRendererBackend{}

// newCPURendererBackend creates the CPU backend with a width x height screen buffer.
//
// Parameters:
//   - width: screen width in pixels
//   - height: screen height in pixels
//   - workers: row bands per pass, or 0 for runtime.NumCPU
//
// Returns:
//   - *cpuRendererBackend: the backend
func newCPURendererBackend(width, height, workers int) *cpuRendererBackend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	b := &cpuRendererBackend{
		pool:    worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		workers: workers,
	}
	b.Resize(width, height)
	return b
}

func (b *cpuRendererBackend) Type() RendererBackendType {
	return BackendTypeCPU
}

func (b *cpuRendererBackend) CreateTexture(desc TextureDescriptor) (Texture, error) {
	if desc.MipLevels > common.MipLevelCount(max(desc.Width, desc.Height)) {
		return nil, fmt.Errorf("texture %q: %d mip levels exceed the chain of a %dx%d texture", desc.Label, desc.MipLevels, desc.Width, desc.Height)
	}
	return newCPUTexture(desc), nil
}

func (b *cpuRendererBackend) WriteTexture(t Texture, level int, data []float32) error {
	ct, err := asCPUTexture(t)
	if err != nil {
		return err
	}
	dst, err := ct.level(level)
	if err != nil {
		return err
	}
	if len(data) != len(dst) {
		return fmt.Errorf("texture %q level %d: expected %d floats, got %d", ct.Label(), level, len(dst), len(data))
	}
	copy(dst, data)
	return nil
}

func (b *cpuRendererBackend) ReadTexture(t Texture, level int) ([]float32, error) {
	ct, err := asCPUTexture(t)
	if err != nil {
		return nil, err
	}
	src, err := ct.level(level)
	if err != nil {
		return nil, err
	}
	return append([]float32(nil), src...), nil
}

func (b *cpuRendererBackend) RegisterPipeline(p pipeline.Pipeline) error {
	program, ok := cpuPrograms[p.Program().Key()]
	if !ok {
		return fmt.Errorf("no cpu rendition of program %q", p.Program().Key())
	}
	p.SetPipeline(program)
	return nil
}

func (b *cpuRendererBackend) UploadMesh(m model.Mesh) error {
	n := uint32(len(m.Vertices()))
	for _, idx := range m.Indices() {
		if idx >= n {
			return fmt.Errorf("index %d out of range for %d vertices", idx, n)
		}
	}
	b.meshes = append(b.meshes, m)
	return nil
}

func (b *cpuRendererBackend) ClearMeshes() {
	b.meshes = nil
}

func (b *cpuRendererBackend) Draw(p pipeline.Pipeline, cmd DrawCommand) error {
	program, ok := p.Pipeline().(cpuProgram)
	if !ok {
		return fmt.Errorf("pipeline %q was not registered on the cpu backend", p.PipelineKey())
	}

	target, err := b.resolveTarget(cmd.Target)
	if err != nil {
		return err
	}
	if len(target.color) != len(p.ColorTargets()) {
		return fmt.Errorf("pipeline %q writes %d color targets, target has %d", p.PipelineKey(), len(p.ColorTargets()), len(target.color))
	}

	vp := cmd.Viewport
	if vp.IsZero() {
		vp = common.Viewport{Width: target.width, Height: target.height}
	}
	if vp.X < 0 || vp.Y < 0 || vp.X+vp.Width > target.width || vp.Y+vp.Height > target.height {
		return fmt.Errorf("viewport %+v exceeds %dx%d target", vp, target.width, target.height)
	}

	d := &cpuDraw{
		program:  program,
		pipeline: p,
		target:   target,
		viewport: vp,
	}
	d.ctx.u = cmd.Uniforms
	if d.ctx.u == nil {
		d.ctx.u = &light.GPUShadowUniforms{}
	}
	for _, in := range cmd.Inputs {
		ct, err := asCPUTexture(in)
		if err != nil {
			return err
		}
		d.ctx.inputs = append(d.ctx.inputs, ct)
	}

	if cmd.Clear != nil {
		clearTarget(target, cmd.Clear.Vec4())
	}

	switch p.Geometry() {
	case pipeline.GeometryScene:
		tris := setupTriangles(b.meshes, d.ctx.u, p, vp)
		parallelRows(b.pool, b.workers, vp.Y, vp.Y+vp.Height, func(y0, y1 int) {
			d.rasterizeRows(tris, y0, y1)
		})
	case pipeline.GeometryFullscreen:
		parallelRows(b.pool, b.workers, vp.Y, vp.Y+vp.Height, d.fullscreenRows)
	default:
		return fmt.Errorf("pipeline %q has unknown geometry %d", p.PipelineKey(), p.Geometry())
	}
	return nil
}

func (b *cpuRendererBackend) resolveTarget(rt RenderTarget) (cpuTarget, error) {
	if rt.Screen {
		w, h := b.ScreenSize()
		return cpuTarget{
			color:  []cpuAttachment{{tex: b.screenColor}},
			depth:  &cpuAttachment{tex: b.screenDepth},
			width:  w,
			height: h,
		}, nil
	}

	var target cpuTarget
	size := func(a Attachment) error {
		w, h := a.Size()
		if target.width == 0 {
			target.width, target.height = w, h
			return nil
		}
		if w != target.width || h != target.height {
			return fmt.Errorf("target %q: attachment %q is %dx%d, expected %dx%d", rt.Label, a.Texture.Label(), w, h, target.width, target.height)
		}
		return nil
	}

	if rt.Depth.Texture != nil {
		ct, err := asCPUTexture(rt.Depth.Texture)
		if err != nil {
			return target, err
		}
		if ct.Format() != TextureFormatDepth32F {
			return target, fmt.Errorf("target %q: depth attachment %q is %s", rt.Label, ct.Label(), ct.Format())
		}
		if _, err := ct.level(rt.Depth.MipLevel); err != nil {
			return target, err
		}
		if err := size(rt.Depth); err != nil {
			return target, err
		}
		target.depth = &cpuAttachment{tex: ct, level: rt.Depth.MipLevel}
	}
	for _, a := range rt.Color {
		ct, err := asCPUTexture(a.Texture)
		if err != nil {
			return target, err
		}
		if ct.Format() != TextureFormatRGBA32F {
			return target, fmt.Errorf("target %q: color attachment %q is %s", rt.Label, ct.Label(), ct.Format())
		}
		if _, err := ct.level(a.MipLevel); err != nil {
			return target, err
		}
		if err := size(a); err != nil {
			return target, err
		}
		target.color = append(target.color, cpuAttachment{tex: ct, level: a.MipLevel})
	}
	if target.width == 0 {
		return target, fmt.Errorf("target %q has no attachments", rt.Label)
	}
	return target, nil
}

func clearTarget(t cpuTarget, color [4]float32) {
	for _, att := range t.color {
		data := att.tex.levels[att.level]
		for i := 0; i < len(data); i += 4 {
			copy(data[i:i+4], color[:])
		}
	}
	if t.depth != nil {
		data := t.depth.tex.levels[t.depth.level]
		for i := range data {
			data[i] = 1
		}
	}
}

func (b *cpuRendererBackend) GenerateMipmaps(t Texture) error {
	ct, err := asCPUTexture(t)
	if err != nil {
		return err
	}
	for level := 1; level < len(ct.levels); level++ {
		w, h := ct.MipSize(level)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				var sum [4]float32
				for _, o := range [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
					sum = add4(sum, ct.load(2*x+o[0], 2*y+o[1], level-1))
				}
				ct.store(x, y, level, [4]float32{sum[0] / 4, sum[1] / 4, sum[2] / 4, sum[3] / 4})
			}
		}
	}
	return nil
}

func (b *cpuRendererBackend) BeginFrame() error {
	return nil
}

// Present is a no-op; the screen buffer keeps the frame until the next draw to it.
func (b *cpuRendererBackend) Present() {}

func (b *cpuRendererBackend) ScreenSize() (int, int) {
	return b.screenColor.Width(), b.screenColor.Height()
}

func (b *cpuRendererBackend) Resize(width, height int) {
	b.screenColor = newCPUTexture(TextureDescriptor{Label: "screen color", Width: width, Height: height, Format: TextureFormatRGBA32F, MipLevels: 1})
	b.screenDepth = newCPUTexture(TextureDescriptor{Label: "screen depth", Width: width, Height: height, Format: TextureFormatDepth32F, MipLevels: 1})
}

func (b *cpuRendererBackend) ReadScreen() ([]float32, int, int, error) {
	w, h := b.ScreenSize()
	return append([]float32(nil), b.screenColor.levels[0]...), w, h, nil
}

func (b *cpuRendererBackend) Release() {
	b.pool.Stop()
	b.meshes = nil
	b.screenColor.Release()
	b.screenDepth.Release()
}
