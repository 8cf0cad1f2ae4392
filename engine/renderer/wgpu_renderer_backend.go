package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrScreenReadback is returned by ReadScreen on the WebGPU backend; swapchain images are not readable.
var ErrScreenReadback = errors.New("the wgpu backend cannot read back the swapchain")

// wgpuTexture keeps the texture, a view over every level for sampling and one single-level
// view per mip for attachments.
type wgpuTexture struct {
	desc    TextureDescriptor
	texture *wgpu.Texture
	all     *wgpu.TextureView
	levels  []*wgpu.TextureView
}

var _ Texture = &wgpuTexture{}

func (t *wgpuTexture) Label() string         { return t.desc.Label }
func (t *wgpuTexture) Format() TextureFormat { return t.desc.Format }
func (t *wgpuTexture) Filter() FilterMode    { return t.desc.Filter }
func (t *wgpuTexture) Width() int            { return t.desc.Width }
func (t *wgpuTexture) Height() int           { return t.desc.Height }
func (t *wgpuTexture) MipLevels() int        { return t.desc.MipLevels }

func (t *wgpuTexture) MipSize(level int) (int, int) {
	return common.MipSize(t.desc.Width, level), common.MipSize(t.desc.Height, level)
}

func (t *wgpuTexture) Release() {
	for _, v := range t.levels {
		v.Release()
	}
	t.levels = nil
	if t.all != nil {
		t.all.Release()
		t.all = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

func asWGPUTexture(t Texture) (*wgpuTexture, error) {
	wt, ok := t.(*wgpuTexture)
	if !ok || wt == nil {
		return nil, fmt.Errorf("texture %v was not created by the wgpu backend", t)
	}
	if wt.texture == nil {
		return nil, fmt.Errorf("texture %q was released", wt.desc.Label)
	}
	return wt, nil
}

func wgpuFormat(f TextureFormat) wgpu.TextureFormat {
	if f == TextureFormatDepth32F {
		return wgpu.TextureFormatDepth32Float
	}
	return wgpu.TextureFormatRGBA32Float
}

// wgpuPipeline is what RegisterPipeline stores on a pipeline.
type wgpuPipeline struct {
	render         *wgpu.RenderPipeline
	uniformLayout  *wgpu.BindGroupLayout
	textureLayout  *wgpu.BindGroupLayout
	usesDepth      bool
	textureInputs  []shader.TextureInput
	hasUniforms    bool
	fullscreenDraw bool
}

type wgpuMesh struct {
	vertex *wgpu.Buffer
	index  *wgpu.Buffer
	count  uint32
}

// wgpuRendererBackend is the WebGPU implementation of RendererBackend. Every Draw records
// one render pass into its own encoder and submits it immediately, so the shared uniform
// buffer can be rewritten between passes.
type wgpuRendererBackend struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	width         int
	height        int

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	uniforms   *wgpu.Buffer
	meshes     []wgpuMesh
	downsample *wgpuPipeline

	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackend{}

func newWGPURendererBackend(surface Surface, forceFallbackAdapter bool, mode PresentMode) (*wgpuRendererBackend, error) {
	runtime.LockOSThread()
	b := &wgpuRendererBackend{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
	}
	if mode == PresentModeVSync {
		b.presentMode = wgpu.PresentModeFifo
	}
	b.surface = b.instance.CreateSurface(surface.SurfaceDescriptor())

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("requesting adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("requesting device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	var u light.GPUShadowUniforms
	b.uniforms, err = d.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Shadow Uniforms",
		Size:  uint64(u.Size()),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	b.Resize(surface.Width(), surface.Height())
	return b, nil
}

func (b *wgpuRendererBackend) Type() RendererBackendType {
	return BackendTypeWGPU
}

func (b *wgpuRendererBackend) CreateTexture(desc TextureDescriptor) (Texture, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: desc.Label,
		Size: wgpu.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(desc.MipLevels),
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpuFormat(desc.Format),
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopySrc | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("creating texture %q: %w", desc.Label, err)
	}

	t := &wgpuTexture{desc: desc, texture: tex}
	t.all, err = tex.CreateView(b.viewDescriptor(desc, 0, desc.MipLevels))
	if err != nil {
		t.Release()
		return nil, err
	}
	for level := 0; level < desc.MipLevels; level++ {
		view, err := tex.CreateView(b.viewDescriptor(desc, level, 1))
		if err != nil {
			t.Release()
			return nil, err
		}
		t.levels = append(t.levels, view)
	}
	return t, nil
}

func (b *wgpuRendererBackend) viewDescriptor(desc TextureDescriptor, base, count int) *wgpu.TextureViewDescriptor {
	return &wgpu.TextureViewDescriptor{
		Label:           fmt.Sprintf("%s [%d+%d]", desc.Label, base, count),
		Format:          wgpuFormat(desc.Format),
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    uint32(base),
		MipLevelCount:   uint32(count),
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectAll,
	}
}

func (b *wgpuRendererBackend) WriteTexture(t Texture, level int, data []float32) error {
	wt, err := asWGPUTexture(t)
	if err != nil {
		return err
	}
	if level < 0 || level >= wt.desc.MipLevels {
		return fmt.Errorf("texture %q has no mip level %d", wt.Label(), level)
	}
	w, h := wt.MipSize(level)
	channels := wt.desc.Format.Channels()
	if len(data) != w*h*channels {
		return fmt.Errorf("texture %q level %d: expected %d floats, got %d", wt.Label(), level, w*h*channels, len(data))
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  wt.texture,
			MipLevel: uint32(level),
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		common.SliceToBytes(data),
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w * channels * 4),
			RowsPerImage: uint32(h),
		},
		&wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
	)
	return nil
}

// ReadTexture copies a level into a mappable buffer and waits for the map to complete.
// Rows are padded to the 256 byte copy alignment and unpadded on the way out.
func (b *wgpuRendererBackend) ReadTexture(t Texture, level int) ([]float32, error) {
	wt, err := asWGPUTexture(t)
	if err != nil {
		return nil, err
	}
	if level < 0 || level >= wt.desc.MipLevels {
		return nil, fmt.Errorf("texture %q has no mip level %d", wt.Label(), level)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	w, h := wt.MipSize(level)
	texelBytes := wt.desc.Format.Channels() * 4
	rowBytes := w * texelBytes
	paddedRow := (rowBytes + 255) &^ 255
	size := uint64(paddedRow * h)

	staging, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: wt.Label() + " Readback",
		Size:  size,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	defer staging.Release()

	aspect := wgpu.TextureAspectAll
	if wt.desc.Format == TextureFormatDepth32F {
		aspect = wgpu.TextureAspectDepthOnly
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, err
	}
	encoder.CopyTextureToBuffer(
		&wgpu.ImageCopyTexture{Texture: wt.texture, MipLevel: uint32(level), Aspect: aspect},
		&wgpu.ImageCopyBuffer{
			Buffer: staging,
			Layout: wgpu.TextureDataLayout{BytesPerRow: uint32(paddedRow), RowsPerImage: uint32(h)},
		},
		&wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	)
	cb, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return nil, err
	}
	b.queue.Submit(cb)
	cb.Release()
	encoder.Release()

	var status wgpu.BufferMapAsyncStatus
	done := false
	staging.MapAsync(wgpu.MapModeRead, 0, size, func(s wgpu.BufferMapAsyncStatus) {
		status = s
		done = true
	})
	for !done {
		b.device.Poll(true, nil)
	}
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("mapping readback of %q failed: %v", wt.Label(), status)
	}
	defer staging.Unmap()

	raw := staging.GetMappedRange(0, uint(size))
	out := make([]float32, 0, w*h*wt.desc.Format.Channels())
	for y := 0; y < h; y++ {
		row := raw[y*paddedRow : y*paddedRow+rowBytes]
		for i := 0; i < len(row); i += 4 {
			out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(row[i:])))
		}
	}
	return out, nil
}

func (b *wgpuRendererBackend) RegisterPipeline(p pipeline.Pipeline) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	program := p.Program()
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: program.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: program.Source(),
		},
	})
	if err != nil {
		return err
	}

	created := &wgpuPipeline{
		textureInputs:  program.Textures(),
		hasUniforms:    program.HasUniforms(),
		usesDepth:      p.Geometry() == pipeline.GeometryScene || p.DepthTestEnabled() || p.DepthWriteEnabled(),
		fullscreenDraw: p.Geometry() == pipeline.GeometryFullscreen,
	}

	var uniformEntries []wgpu.BindGroupLayoutEntry
	if created.hasUniforms {
		var u light.GPUShadowUniforms
		uniformEntries = append(uniformEntries, wgpu.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
			Buffer: wgpu.BufferBindingLayout{
				Type:           wgpu.BufferBindingTypeUniform,
				MinBindingSize: uint64(u.Size()),
			},
		})
	}
	created.uniformLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   p.PipelineKey() + " Uniforms",
		Entries: uniformEntries,
	})
	if err != nil {
		return err
	}

	textureEntries := make([]wgpu.BindGroupLayoutEntry, 0, len(created.textureInputs))
	for _, in := range created.textureInputs {
		sampleType := wgpu.TextureSampleTypeUnfilterableFloat
		if in.Kind == shader.TextureKindDepth {
			sampleType = wgpu.TextureSampleTypeDepth
		}
		textureEntries = append(textureEntries, wgpu.BindGroupLayoutEntry{
			Binding:    uint32(in.Binding),
			Visibility: wgpu.ShaderStageFragment,
			Texture: wgpu.TextureBindingLayout{
				SampleType:    sampleType,
				ViewDimension: wgpu.TextureViewDimension2D,
			},
		})
	}
	created.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   p.PipelineKey() + " Textures",
		Entries: textureEntries,
	})
	if err != nil {
		return err
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{created.uniformLayout, created.textureLayout},
	})
	if err != nil {
		return err
	}

	targets := make([]wgpu.ColorTargetState, 0, len(p.ColorTargets()))
	for _, f := range p.ColorTargets() {
		format := wgpu.TextureFormatRGBA32Float
		if f == pipeline.TargetFormatSurface {
			format = b.surfaceFormat
		}
		targets = append(targets, wgpu.ColorTargetState{Format: format, WriteMask: p.WriteMask()})
	}

	var buffers []wgpu.VertexBufferLayout
	if !created.fullscreenDraw {
		vertex, ok := shader.VertexLayout(program.Source())
		if !ok || vertex.ArrayStride != model.VertexStride {
			return fmt.Errorf("%s: vertex input does not match the %d byte mesh vertex", program.Key(), model.VertexStride)
		}
		buffers = []wgpu.VertexBufferLayout{vertex}
	}

	var depthStencil *wgpu.DepthStencilState
	if created.usesDepth {
		depthCompare := wgpu.CompareFunctionLess
		if !p.DepthTestEnabled() {
			depthCompare = wgpu.CompareFunctionAlways
		}
		depthStencil = &wgpu.DepthStencilState{
			Format:              wgpu.TextureFormatDepth32Float,
			DepthWriteEnabled:   p.DepthWriteEnabled(),
			DepthCompare:        depthCompare,
			DepthBias:           p.DepthBias(),
			DepthBiasSlopeScale: p.DepthBiasSlopeScale(),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	created.render, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets:    targets,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: depthStencil,
	})
	if err != nil {
		return err
	}

	p.SetPipeline(created)
	return nil
}

func (b *wgpuRendererBackend) UploadMesh(m model.Mesh) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	vertexData, indexData := m.VertexData(), m.IndexData()
	if len(vertexData) == 0 || len(indexData) == 0 {
		return errors.New("mesh has no geometry")
	}

	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	b.queue.WriteBuffer(vb, 0, vertexData)

	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return err
	}
	b.queue.WriteBuffer(ib, 0, indexData)

	b.meshes = append(b.meshes, wgpuMesh{vertex: vb, index: ib, count: uint32(m.IndexCount())})
	return nil
}

func (b *wgpuRendererBackend) ClearMeshes() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range b.meshes {
		m.vertex.Release()
		m.index.Release()
	}
	b.meshes = nil
}

func (b *wgpuRendererBackend) Draw(p pipeline.Pipeline, cmd DrawCommand) error {
	created, ok := p.Pipeline().(*wgpuPipeline)
	if !ok {
		return fmt.Errorf("pipeline %q was not registered on the wgpu backend", p.PipelineKey())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	desc, width, height, err := b.passDescriptor(cmd)
	if err != nil {
		return err
	}
	if !created.usesDepth {
		desc.DepthStencilAttachment = nil
	} else if desc.DepthStencilAttachment == nil {
		return fmt.Errorf("pipeline %q needs a depth attachment, target %q has none", p.PipelineKey(), cmd.Target.Label)
	}

	if created.hasUniforms {
		b.queue.WriteBuffer(b.uniforms, 0, common.StructToBytes(cmd.Uniforms))
	}
	views := make([]*wgpu.TextureView, 0, len(cmd.Inputs))
	for _, in := range cmd.Inputs {
		wt, err := asWGPUTexture(in)
		if err != nil {
			return err
		}
		views = append(views, wt.all)
	}
	uniformGroup, textureGroup, err := b.bindGroups(p.PipelineKey(), created, views)
	if err != nil {
		return err
	}
	defer uniformGroup.Release()
	defer textureGroup.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(desc)
	vp := cmd.Viewport
	if vp.IsZero() {
		vp = common.Viewport{Width: width, Height: height}
	}
	pass.SetViewport(float32(vp.X), float32(vp.Y), float32(vp.Width), float32(vp.Height), 0, 1)
	pass.SetPipeline(created.render)
	pass.SetBindGroup(0, uniformGroup, nil)
	pass.SetBindGroup(1, textureGroup, nil)
	if created.fullscreenDraw {
		pass.Draw(3, 1, 0, 0)
	} else {
		for _, m := range b.meshes {
			pass.SetVertexBuffer(0, m.vertex, 0, wgpu.WholeSize)
			pass.SetIndexBuffer(m.index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
			pass.DrawIndexed(m.count, 1, 0, 0, 0)
		}
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackend) passDescriptor(cmd DrawCommand) (*wgpu.RenderPassDescriptor, int, int, error) {
	loadOp := wgpu.LoadOpLoad
	clearValue := wgpu.Color{}
	if cmd.Clear != nil {
		loadOp = wgpu.LoadOpClear
		clearValue = wgpu.Color{R: float64(cmd.Clear.R), G: float64(cmd.Clear.G), B: float64(cmd.Clear.B), A: float64(cmd.Clear.A)}
	}

	if cmd.Target.Screen {
		if b.frameView == nil {
			return nil, 0, 0, errors.New("screen pass outside BeginFrame/Present")
		}
		return &wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       b.frameView,
				LoadOp:     loadOp,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearValue,
			}},
			DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
				View:            b.depthView,
				DepthLoadOp:     loadOp,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			},
		}, b.width, b.height, nil
	}

	desc := &wgpu.RenderPassDescriptor{}
	width, height := 0, 0
	sized := func(a Attachment) error {
		w, h := a.Size()
		if width == 0 {
			width, height = w, h
		} else if w != width || h != height {
			return fmt.Errorf("target %q: attachment %q is %dx%d, expected %dx%d", cmd.Target.Label, a.Texture.Label(), w, h, width, height)
		}
		return nil
	}
	view := func(a Attachment) (*wgpu.TextureView, error) {
		wt, err := asWGPUTexture(a.Texture)
		if err != nil {
			return nil, err
		}
		if a.MipLevel < 0 || a.MipLevel >= len(wt.levels) {
			return nil, fmt.Errorf("texture %q has no mip level %d", wt.Label(), a.MipLevel)
		}
		return wt.levels[a.MipLevel], sized(a)
	}

	if cmd.Target.Depth.Texture != nil {
		v, err := view(cmd.Target.Depth)
		if err != nil {
			return nil, 0, 0, err
		}
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            v,
			DepthLoadOp:     loadOp,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1.0,
		}
	}
	for _, a := range cmd.Target.Color {
		v, err := view(a)
		if err != nil {
			return nil, 0, 0, err
		}
		desc.ColorAttachments = append(desc.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:       v,
			LoadOp:     loadOp,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearValue,
		})
	}
	if width == 0 {
		return nil, 0, 0, fmt.Errorf("target %q has no attachments", cmd.Target.Label)
	}
	return desc, width, height, nil
}

func (b *wgpuRendererBackend) bindGroups(label string, created *wgpuPipeline, inputs []*wgpu.TextureView) (*wgpu.BindGroup, *wgpu.BindGroup, error) {
	var uniformEntries []wgpu.BindGroupEntry
	if created.hasUniforms {
		uniformEntries = append(uniformEntries, wgpu.BindGroupEntry{
			Binding: 0,
			Buffer:  b.uniforms,
			Offset:  0,
			Size:    wgpu.WholeSize,
		})
	}
	uniformGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + " Uniforms",
		Layout:  created.uniformLayout,
		Entries: uniformEntries,
	})
	if err != nil {
		return nil, nil, err
	}

	textureEntries := make([]wgpu.BindGroupEntry, 0, len(inputs))
	for i, view := range inputs {
		textureEntries = append(textureEntries, wgpu.BindGroupEntry{
			Binding:     uint32(created.textureInputs[i].Binding),
			TextureView: view,
		})
	}
	textureGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label + " Textures",
		Layout:  created.textureLayout,
		Entries: textureEntries,
	})
	if err != nil {
		uniformGroup.Release()
		return nil, nil, err
	}
	return uniformGroup, textureGroup, nil
}

// GenerateMipmaps renders each level from the one above it with the downsample program.
// The source is bound through its single-level view, so the program reads level 0 of that
// view (iteration 1) while the next level is attached.
func (b *wgpuRendererBackend) GenerateMipmaps(t Texture) error {
	wt, err := asWGPUTexture(t)
	if err != nil {
		return err
	}
	if b.downsample == nil {
		program, err := shader.NewProvider().Program(shader.ProgramDownsample)
		if err != nil {
			return err
		}
		p := pipeline.NewPipeline(shader.ProgramDownsample,
			pipeline.WithProgram(program),
			pipeline.WithGeometry(pipeline.GeometryFullscreen),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
		)
		if err := b.RegisterPipeline(p); err != nil {
			return fmt.Errorf("registering downsample pipeline: %w", err)
		}
		b.downsample = p.Pipeline().(*wgpuPipeline)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	u := light.GPUShadowUniforms{Iteration: 1}
	b.queue.WriteBuffer(b.uniforms, 0, common.StructToBytes(&u))

	for level := 1; level < len(wt.levels); level++ {
		uniformGroup, textureGroup, err := b.bindGroups(shader.ProgramDownsample, b.downsample, []*wgpu.TextureView{wt.levels[level-1]})
		if err != nil {
			return err
		}
		encoder, err := b.device.CreateCommandEncoder(nil)
		if err != nil {
			uniformGroup.Release()
			textureGroup.Release()
			return err
		}
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:    wt.levels[level],
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
			}},
		})
		pass.SetPipeline(b.downsample.render)
		pass.SetBindGroup(0, uniformGroup, nil)
		pass.SetBindGroup(1, textureGroup, nil)
		pass.Draw(3, 1, 0, 0)
		pass.End()

		commandBuffer, err := encoder.Finish(nil)
		encoder.Release()
		uniformGroup.Release()
		textureGroup.Release()
		if err != nil {
			return err
		}
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}
	return nil
}

func (b *wgpuRendererBackend) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A frame that failed mid-way is dropped instead of presented.
	if b.frameSurface != nil {
		log.Warningf("discarding unpresented frame")
		b.frameView.Release()
		b.frameView = nil
		b.frameSurface.Release()
		b.frameSurface = nil
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackend) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.frameView.Release()
	b.frameView = nil
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackend) ScreenSize() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width, b.height
}

func (b *wgpuRendererBackend) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	b.width, b.height = width, height

	if b.depthView != nil {
		b.depthView.Release()
		b.depthTexture.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Screen Depth",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		log.Errorf("creating screen depth %dx%d: %v", width, height, err)
		return
	}
	b.depthTexture = depthTexture
	b.depthView, err = depthTexture.CreateView(nil)
	if err != nil {
		log.Errorf("creating screen depth view: %v", err)
	}
}

func (b *wgpuRendererBackend) ReadScreen() ([]float32, int, int, error) {
	return nil, 0, 0, ErrScreenReadback
}

func (b *wgpuRendererBackend) Release() {
	b.ClearMeshes()

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.depthView != nil {
		b.depthView.Release()
		b.depthTexture.Release()
	}
	b.uniforms.Release()
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.surface.Release()
	b.instance.Release()
}
