package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/model"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/pipeline"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// attributeCount is the number of interpolated floats: object position, world position,
// normal, color and light depth.
const attributeCount = 14

type attributes [attributeCount]float32

func (a attributes) varyings() cpuVaryings {
	return cpuVaryings{
		ObjectPos:  mgl32.Vec3{a[0], a[1], a[2]},
		WorldPos:   mgl32.Vec3{a[3], a[4], a[5]},
		Normal:     mgl32.Vec3{a[6], a[7], a[8]},
		Color:      mgl32.Vec4{a[9], a[10], a[11], a[12]},
		LightDepth: a[13],
	}
}

type clipVertex struct {
	clip mgl32.Vec4
	attr attributes
}

func lerpVertex(a, b clipVertex, t float32) clipVertex {
	out := clipVertex{clip: a.clip.Add(b.clip.Sub(a.clip).Mul(t))}
	for i := range out.attr {
		out.attr[i] = a.attr[i] + (b.attr[i]-a.attr[i])*t
	}
	return out
}

// clipPlanes keep 0 <= z <= w and w > 0.
var clipPlanes = [...]func(v mgl32.Vec4) float32{
	func(v mgl32.Vec4) float32 { return v.Z() },
	func(v mgl32.Vec4) float32 { return v.W() - v.Z() },
	func(v mgl32.Vec4) float32 { return v.W() - 1e-6 },
}

// clipPolygon runs Sutherland-Hodgman against every clip plane.
func clipPolygon(poly []clipVertex) []clipVertex {
	for _, plane := range clipPlanes {
		if len(poly) == 0 {
			return nil
		}
		out := make([]clipVertex, 0, len(poly)+2)
		for i := range poly {
			a, b := poly[i], poly[(i+1)%len(poly)]
			da, db := plane(a.clip), plane(b.clip)
			if da >= 0 {
				out = append(out, a)
			}
			if (da >= 0) != (db >= 0) {
				out = append(out, lerpVertex(a, b, da/(da-db)))
			}
		}
		poly = out
	}
	return poly
}

// screenTriangle is a clipped triangle in viewport pixel coordinates, ready for scan conversion.
type screenTriangle struct {
	x, y, z [3]float32
	invW    [3]float32
	attrW   [3]attributes // attributes divided by w
	area    float32
	bias    float32

	minX, maxX, minY, maxY int
}

func edge(ax, ay, bx, by, px, py float32) float32 {
	return (bx-ax)*(py-ay) - (by-ay)*(px-ax)
}

// polygonOffset returns the depth bias of a triangle the way a Depth32Float attachment applies it.
func polygonOffset(t *screenTriangle, constant int32, slope float32) float32 {
	if constant == 0 && slope == 0 {
		return 0
	}
	dzdx := ((t.z[1]-t.z[0])*(t.y[2]-t.y[0]) - (t.z[2]-t.z[0])*(t.y[1]-t.y[0])) / t.area
	dzdy := ((t.x[1]-t.x[0])*(t.z[2]-t.z[0]) - (t.x[2]-t.x[0])*(t.z[1]-t.z[0])) / t.area
	bias := slope * max(math32.Abs(dzdx), math32.Abs(dzdy))
	maxZ := max(t.z[0], t.z[1], t.z[2])
	if maxZ > 0 {
		exponent := math32.Floor(math32.Log2(maxZ))
		bias += float32(constant) * math32.Pow(2, exponent-23)
	}
	return bias
}

// isFrontFacing reports whether a screen-space triangle (y down) faces the viewer.
func isFrontFacing(area float32, front wgpu.FrontFace) bool {
	ccw := area < 0
	return ccw == (front == wgpu.FrontFaceCCW)
}

// setupTriangles transforms every mesh through the uniforms and returns the visible screen
// triangles in submission order.
func setupTriangles(meshes []model.Mesh, u *light.GPUShadowUniforms, p pipeline.Pipeline, vp common.Viewport) []screenTriangle {
	mvp := u.Projection.Mul4(u.View)
	tris := make([]screenTriangle, 0, 256)
	for _, m := range meshes {
		vertices := m.Vertices()
		indices := m.Indices()
		transformed := make([]clipVertex, len(vertices))
		for i, v := range vertices {
			pos := mgl32.Vec4{v.Position[0], v.Position[1], v.Position[2], 1}
			world := u.Model.Mul4x1(pos)
			normal := u.Model.Mul4x1(mgl32.Vec4{v.Normal[0], v.Normal[1], v.Normal[2], 0}).Vec3()
			if normal.Len() > 0 {
				normal = normal.Normalize()
			}
			lightDepth := (-u.LightMV.Mul4x1(pos).Z() - u.Near) / (u.Far - u.Near)
			transformed[i] = clipVertex{
				clip: mvp.Mul4x1(world),
				attr: attributes{
					v.Position[0], v.Position[1], v.Position[2],
					world[0], world[1], world[2],
					normal[0], normal[1], normal[2],
					v.Color[0], v.Color[1], v.Color[2], v.Color[3],
					lightDepth,
				},
			}
		}

		for i := 0; i+2 < len(indices); i += 3 {
			poly := clipPolygon([]clipVertex{
				transformed[indices[i]],
				transformed[indices[i+1]],
				transformed[indices[i+2]],
			})
			for k := 1; k+1 < len(poly); k++ {
				if t, ok := toScreen(poly[0], poly[k], poly[k+1], p, vp); ok {
					tris = append(tris, t)
				}
			}
		}
	}
	return tris
}

func toScreen(a, b, c clipVertex, p pipeline.Pipeline, vp common.Viewport) (screenTriangle, bool) {
	var t screenTriangle
	for i, v := range [3]clipVertex{a, b, c} {
		invW := 1 / v.clip.W()
		t.x[i] = float32(vp.X) + (v.clip.X()*invW*0.5+0.5)*float32(vp.Width)
		t.y[i] = float32(vp.Y) + (0.5-v.clip.Y()*invW*0.5)*float32(vp.Height)
		t.z[i] = v.clip.Z() * invW
		t.invW[i] = invW
		for k := range v.attr {
			t.attrW[i][k] = v.attr[k] * invW
		}
	}
	t.area = edge(t.x[0], t.y[0], t.x[1], t.y[1], t.x[2], t.y[2])
	if t.area == 0 {
		return t, false
	}
	switch p.CullMode() {
	case wgpu.CullModeBack:
		if !isFrontFacing(t.area, p.FrontFace()) {
			return t, false
		}
	case wgpu.CullModeFront:
		if isFrontFacing(t.area, p.FrontFace()) {
			return t, false
		}
	}

	t.minX = max(int(math32.Floor(min(t.x[0], t.x[1], t.x[2]))), vp.X)
	t.maxX = min(int(math32.Ceil(max(t.x[0], t.x[1], t.x[2]))), vp.X+vp.Width-1)
	t.minY = max(int(math32.Floor(min(t.y[0], t.y[1], t.y[2]))), vp.Y)
	t.maxY = min(int(math32.Ceil(max(t.y[0], t.y[1], t.y[2]))), vp.Y+vp.Height-1)
	if t.minX > t.maxX || t.minY > t.maxY {
		return t, false
	}
	t.bias = polygonOffset(&t, p.DepthBias(), p.DepthBiasSlopeScale())
	return t, true
}

// cpuAttachment is a resolved mip level of a cpu texture.
type cpuAttachment struct {
	tex   *cpuTexture
	level int
}

// cpuTarget is what a draw writes to.
type cpuTarget struct {
	color  []cpuAttachment
	depth  *cpuAttachment
	width  int
	height int
}

// cpuDraw carries everything the fragment loop needs for one pass.
type cpuDraw struct {
	ctx      cpuShaderContext
	program  cpuProgram
	pipeline pipeline.Pipeline
	target   cpuTarget
	viewport common.Viewport
}

// fragment depth-tests and shades one pixel.
func (d *cpuDraw) fragment(x, y int, z float32, in *cpuVaryings) {
	if d.target.depth != nil {
		w, _ := d.target.depth.tex.MipSize(d.target.depth.level)
		depth := d.target.depth.tex.levels[d.target.depth.level]
		if d.pipeline.DepthTestEnabled() && !(z < depth[y*w+x]) {
			return
		}
		if d.pipeline.DepthWriteEnabled() {
			depth[y*w+x] = z
		}
	}
	out := d.program(&d.ctx, in)
	mask := d.pipeline.WriteMask()
	for i, att := range d.target.color {
		if i >= len(out) {
			break
		}
		v := out[i]
		if mask != wgpu.ColorWriteMaskAll {
			prev := att.tex.load(x, y, att.level)
			for c, bit := range [4]wgpu.ColorWriteMask{wgpu.ColorWriteMaskRed, wgpu.ColorWriteMaskGreen, wgpu.ColorWriteMaskBlue, wgpu.ColorWriteMaskAlpha} {
				if mask&bit == 0 {
					v[c] = prev[c]
				}
			}
		}
		att.tex.store(x, y, att.level, v)
	}
}

// rasterizeRows scan converts the triangles over rows [y0, y1).
func (d *cpuDraw) rasterizeRows(tris []screenTriangle, y0, y1 int) {
	var in cpuVaryings
	for ti := range tris {
		t := &tris[ti]
		lo, hi := max(t.minY, y0), min(t.maxY, y1-1)
		for y := lo; y <= hi; y++ {
			py := float32(y) + 0.5
			for x := t.minX; x <= t.maxX; x++ {
				px := float32(x) + 0.5
				w0 := edge(t.x[1], t.y[1], t.x[2], t.y[2], px, py) / t.area
				w1 := edge(t.x[2], t.y[2], t.x[0], t.y[0], px, py) / t.area
				w2 := edge(t.x[0], t.y[0], t.x[1], t.y[1], px, py) / t.area
				if w0 < 0 || w1 < 0 || w2 < 0 {
					continue
				}
				z := common.Clamp(w0*t.z[0]+w1*t.z[1]+w2*t.z[2]+t.bias, 0, 1)
				invW := w0*t.invW[0] + w1*t.invW[1] + w2*t.invW[2]
				var a attributes
				for k := range a {
					a[k] = (w0*t.attrW[0][k] + w1*t.attrW[1][k] + w2*t.attrW[2][k]) / invW
				}
				in = a.varyings()
				in.FragCoord = mgl32.Vec2{px, py}
				d.fragment(x, y, z, &in)
			}
		}
	}
}

// fullscreenRows runs the program once per pixel of the viewport over rows [y0, y1).
func (d *cpuDraw) fullscreenRows(y0, y1 int) {
	var in cpuVaryings
	vp := d.viewport
	for y := max(y0, vp.Y); y < min(y1, vp.Y+vp.Height); y++ {
		for x := vp.X; x < vp.X+vp.Width; x++ {
			in.FragCoord = mgl32.Vec2{float32(x) + 0.5, float32(y) + 0.5}
			d.fragment(x, y, 0, &in)
		}
	}
}

// parallelRows splits [y0, y1) into one band per worker and waits for every band.
// Bands own disjoint rows so no two workers touch the same texel.
func parallelRows(pool worker.DynamicWorkerPool, workers, y0, y1 int, fn func(y0, y1 int)) {
	rows := y1 - y0
	if rows <= 0 {
		return
	}
	if workers <= 1 || rows < 2*workers {
		fn(y0, y1)
		return
	}
	band := (rows + workers - 1) / workers

	var wg sync.WaitGroup
	taskID := 0
	for start := y0; start < y1; start += band {
		lo, hi := start, min(start+band, y1)
		wg.Add(1)
		id := taskID
		taskID++
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				fn(lo, hi)
				return nil, nil
			},
		})
	}
	wg.Wait()
}
