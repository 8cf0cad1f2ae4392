package renderer

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	minVariance  = float32(1e-6)
	momentBias   = float32(6e-5)
	shadeAmbient = float32(0.35)
)

// cpuVaryings are the interpolated vertex outputs a fragment program receives.
// Fullscreen draws only fill FragCoord.
type cpuVaryings struct {
	FragCoord  mgl32.Vec2
	ObjectPos  mgl32.Vec3
	WorldPos   mgl32.Vec3
	Normal     mgl32.Vec3
	Color      mgl32.Vec4
	LightDepth float32
}

// cpuShaderContext is what a fragment program can read besides its varyings.
type cpuShaderContext struct {
	u      *light.GPUShadowUniforms
	inputs []*cpuTexture
}

// cpuProgram is the Go rendition of one WGSL fragment stage. It returns up to two color outputs.
type cpuProgram func(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32

// cpuPrograms maps program names to their fragment stage.
var cpuPrograms = map[string]cpuProgram{
	shader.ProgramScene:         sceneProgram,
	shader.ProgramMoments:       momentsProgram,
	shader.ProgramExponential:   exponentialProgram,
	shader.ProgramSATHorizontal: satProgram(1, 0),
	shader.ProgramSATVertical:   satProgram(0, 1),
	shader.ProgramPrepareMinMax: prepareMinMaxProgram,
	shader.ProgramMinMax:        minMaxProgram,
	shader.ProgramClear:         clearProgram,
	shader.ProgramCopy:          copyProgram,
	shader.ProgramGBuffer:       gbufferProgram,
	shader.ProgramShadow:        monteCarloShadowProgram,
	shader.ProgramRender:        monteCarloRenderProgram,
	shader.ProgramSoftShadow:    softShadowProgram,
	shader.ProgramDownsample:    downsampleProgram,
}

func one(v [4]float32) [2][4]float32 {
	return [2][4]float32{v}
}

func pixel(in *cpuVaryings) (int, int) {
	return int(in.FragCoord.X()), int(in.FragCoord.Y())
}

func add4(a, b [4]float32) [4]float32 {
	return [4]float32{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

func sceneProgram(_ *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	z := in.LightDepth
	return one([4]float32{z, z * z, 0, 1})
}

func momentsProgram(_ *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	z := in.LightDepth
	z2 := z * z
	return one([4]float32{z, z2, z2 * z, z2 * z2})
}

func exponentialProgram(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	z := in.LightDepth
	c := ctx.u.Exponent
	return one([4]float32{math32.Exp(c * z), math32.Exp(-c * z), z, 1})
}

func satProgram(dx, dy int) cpuProgram {
	return func(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
		x, y := pixel(in)
		stride := 1 << ctx.u.Iteration
		src := ctx.inputs[0]
		sum := src.load(x, y, 0)
		if x*dx+y*dy >= stride {
			sum = add4(sum, src.load(x-dx*stride, y-dy*stride, 0))
		}
		return one(sum)
	}
}

func prepareMinMaxProgram(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	x, y := pixel(in)
	z := ctx.inputs[0].load(x, y, 0)[0]
	return one([4]float32{z, z, 0, 1})
}

func minMaxProgram(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	x, y := pixel(in)
	level := int(ctx.u.Iteration) - 1
	src := ctx.inputs[0]
	lo, hi := math32.Inf(1), math32.Inf(-1)
	for _, o := range [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		t := src.load(2*x+o[0], 2*y+o[1], level)
		lo = min(lo, t[0])
		hi = max(hi, t[1])
	}
	return one([4]float32{lo, hi, 0, 1})
}

func clearProgram(_ *cpuShaderContext, _ *cpuVaryings) [2][4]float32 {
	return one([4]float32{})
}

func copyProgram(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	x, y := pixel(in)
	return one(ctx.inputs[0].load(x, y, int(ctx.u.Iteration)))
}

func downsampleProgram(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	x, y := pixel(in)
	level := int(ctx.u.Iteration) - 1
	src := ctx.inputs[0]
	var sum [4]float32
	for _, o := range [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		sum = add4(sum, src.load(2*x+o[0], 2*y+o[1], level))
	}
	return one([4]float32{sum[0] * 0.25, sum[1] * 0.25, sum[2] * 0.25, sum[3] * 0.25})
}

func gbufferProgram(_ *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	n := in.Normal.Normalize()
	return [2][4]float32{
		{in.ObjectPos.X(), in.ObjectPos.Y(), in.ObjectPos.Z(), 1},
		{n.X(), n.Y(), n.Z(), 0},
	}
}

func monteCarloShadowProgram(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	x, y := pixel(in)
	acc := ctx.inputs[0].load(x, y, 0)
	pos := ctx.inputs[1].load(x, y, 0)
	if pos[3] == 0 {
		return one(acc)
	}
	lc := ctx.lightCoord(mgl32.Vec3{pos[0], pos[1], pos[2]})
	visibility := float32(1)
	if lc.inside && ctx.inputs[2].load(lc.texel[0], lc.texel[1], 0)[0] < lc.depth-ctx.u.ReceiverBias {
		visibility = 0
	}
	w := ctx.u.AccumulationFactor * visibility
	return one(add4(acc, [4]float32{w, w, w, w}))
}

func monteCarloRenderProgram(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	x, y := pixel(in)
	visibility := ctx.inputs[0].load(x, y, 0)[0]
	return one(ctx.shade(in, visibility))
}

func softShadowProgram(ctx *cpuShaderContext, in *cpuVaryings) [2][4]float32 {
	lc := ctx.lightCoord(in.ObjectPos)
	visibility := float32(1)
	if lc.inside {
		if ctx.u.Technique == uint32(technique.PCSS) {
			visibility = ctx.pcssVisibility(ctx.inputs[0], lc)
		} else {
			visibility = ctx.momentVisibility(ctx.inputs[1], ctx.inputs[2], lc)
		}
	}
	return one(ctx.shade(in, visibility))
}

// lightCoordinate locates a point in the shadow map.
type lightCoordinate struct {
	texel  [2]int
	depth  float32
	inside bool
}

// texelWindow is an inclusive texel rectangle clamped to the shadow map.
type texelWindow struct {
	lo, hi [2]int
}

func (w texelWindow) area() float32 {
	return float32((w.hi[0] - w.lo[0] + 1) * (w.hi[1] - w.lo[1] + 1))
}

func (ctx *cpuShaderContext) lightCoord(objectPos mgl32.Vec3) lightCoordinate {
	u := ctx.u
	p := objectPos.Vec4(1)
	clip := u.LightMVP.Mul4x1(p)
	view := u.LightMV.Mul4x1(p)
	lc := lightCoordinate{depth: (-view.Z() - u.Near) / (u.Far - u.Near)}
	if clip.W() <= 0 {
		return lc
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	n := u.ShadowMapSize
	last := int(n) - 1
	lc.texel = [2]int{
		common.Clamp(int(math32.Floor((ndc.X()*0.5+0.5)*n)), 0, last),
		common.Clamp(int(math32.Floor((0.5-ndc.Y()*0.5)*n)), 0, last),
	}
	lc.inside = math32.Abs(ndc.X()) <= 1 && math32.Abs(ndc.Y()) <= 1 && ndc.Z() >= 0 && ndc.Z() <= 1
	return lc
}

func (ctx *cpuShaderContext) linearDepth(ndc float32) float32 {
	return common.LinearizeDepth(ndc, ctx.u.Near, ctx.u.Far)
}

func (ctx *cpuShaderContext) windowAround(center [2]int, half int) texelWindow {
	last := int(ctx.u.ShadowMapSize) - 1
	return texelWindow{
		lo: [2]int{max(center[0]-half, 0), max(center[1]-half, 0)},
		hi: [2]int{min(center[0]+half, last), min(center[1]+half, last)},
	}
}

// windowMean averages a window, from four summed-area lookups or by direct averaging.
func (ctx *cpuShaderContext) windowMean(t *cpuTexture, w texelWindow) [4]float32 {
	var s [4]float32
	if ctx.u.UseSAT != 0 {
		a := t.load(w.hi[0], w.hi[1], 0)
		b := t.load(w.lo[0]-1, w.hi[1], 0)
		c := t.load(w.hi[0], w.lo[1]-1, 0)
		d := t.load(w.lo[0]-1, w.lo[1]-1, 0)
		for i := range s {
			s[i] = a[i] - b[i] - c[i] + d[i]
		}
	} else {
		for y := w.lo[1]; y <= w.hi[1]; y++ {
			for x := w.lo[0]; x <= w.hi[0]; x++ {
				s = add4(s, t.load(x, y, 0))
			}
		}
	}
	area := w.area()
	return [4]float32{s[0] / area, s[1] / area, s[2] / area, s[3] / area}
}

func (ctx *cpuShaderContext) eyeDepth(d float32) float32 {
	return d*(ctx.u.Far-ctx.u.Near) + ctx.u.Near
}

// maxHalf bounds every search and filter window.
func (ctx *cpuShaderContext) maxHalf() int {
	return max(int(ctx.u.ShadowMapSize)/8, 1)
}

// penumbraHalf returns the half width in texels of the filter for a receiver behind a
// blocker. The kernel size is a lower bound.
func (ctx *cpuShaderContext) penumbraHalf(receiver, blocker float32) int {
	u := ctx.u
	dr := ctx.eyeDepth(receiver)
	db := max(ctx.eyeDepth(blocker), u.Near)
	width := 2 * u.LightRadius * (dr - db) / db
	texels := width / (2 * dr * u.LightFovTan) * u.ShadowMapSize
	half := max(int(math32.Round(texels*0.5)), int(u.KernelSize)/2)
	return common.Clamp(half, 0, ctx.maxHalf())
}

// blockerHalf returns the half width in texels of the blocker search: the light's
// footprint through an occluder halfway to the receiver. The search size is a lower bound.
func (ctx *cpuShaderContext) blockerHalf(receiver float32) int {
	u := ctx.u
	texels := u.LightRadius / (2 * ctx.eyeDepth(receiver) * u.LightFovTan) * u.ShadowMapSize
	half := max(int(math32.Ceil(texels)), int(u.BlockerSearchSize)/2)
	return common.Clamp(half, 0, ctx.maxHalf())
}

func chebyshev(mean, second, d float32) float32 {
	if d <= mean {
		return 1
	}
	variance := max(second-mean*mean, minVariance)
	delta := d - mean
	return variance / (variance + delta*delta)
}

// chebyshevBlocker returns the average occluder depth implied by two moments, or -1 when
// nothing occludes d.
func chebyshevBlocker(mean, second, d float32) float32 {
	if d <= mean {
		return -1
	}
	p := chebyshev(mean, second, d)
	return max((mean-p*d)/max(1-p, 1e-4), 0)
}

// hamburger returns the shadow intensity bound of the Hamburger four-moment problem.
func hamburger(moments [4]float32, d float32) float32 {
	target := [4]float32{0.5, 1.0 / 3.0, 0.25, 0.2}
	var b [4]float32
	for i := range b {
		b[i] = moments[i] + (target[i]-moments[i])*momentBias
	}
	z0 := d
	l32d22 := -b[0]*b[1] + b[2]
	d22 := -b[0]*b[0] + b[1]
	sqVariance := -b[1]*b[1] + b[3]
	d33d22 := sqVariance*d22 - l32d22*l32d22
	invD22 := 1 / d22
	l32 := l32d22 * invD22

	c0, c1, c2 := float32(1), z0, z0*z0
	c1 -= b[0]
	c2 -= b[1] + l32*c1
	c1 *= invD22
	c2 *= d22 / d33d22
	c1 -= l32 * c2
	c0 -= c1*b[0] + c2*b[1]

	p := c1 / c2
	q := c0 / c2
	r := math32.Sqrt(max(p*p*0.25-q, 0))
	z1 := -p*0.5 - r
	z2 := -p*0.5 + r

	var sw [4]float32
	if z2 < z0 {
		sw = [4]float32{z1, z0, 1, 1}
	} else if z1 < z0 {
		sw = [4]float32{z0, z1, 0, 1}
	}
	quotient := (sw[0]*z2 - b[0]*(sw[0]+z2) + b[1]) / ((z2 - sw[1]) * (z0 - z1))
	return common.Clamp(sw[2]+sw[3]*quotient, 0, 1)
}

// pyramidBounds returns the min and max stored depth over a window from the coarsest
// pyramid level whose texels still cover at most two texels per axis of the window.
func (ctx *cpuShaderContext) pyramidBounds(pyramid *cpuTexture, w texelWindow) (float32, float32) {
	extent := max(w.hi[0]-w.lo[0], w.hi[1]-w.lo[1]) + 1
	top := common.Log2(int(ctx.u.ShadowMapSize)) - 1
	level := 0
	for 1<<level < extent && level < top {
		level++
	}
	lo, hi := math32.Inf(1), math32.Inf(-1)
	for y := w.lo[1] >> level; y <= w.hi[1]>>level; y++ {
		for x := w.lo[0] >> level; x <= w.hi[0]>>level; x++ {
			t := pyramid.load(x, y, level)
			lo = min(lo, t[0])
			hi = max(hi, t[1])
		}
	}
	return lo, hi
}

func (ctx *cpuShaderContext) pcssVisibility(depthMap *cpuTexture, lc lightCoordinate) float32 {
	d := lc.depth - ctx.u.ReceiverBias
	search := ctx.windowAround(lc.texel, ctx.blockerHalf(lc.depth))
	var blockers, sum float32
	for y := search.lo[1]; y <= search.hi[1]; y++ {
		for x := search.lo[0]; x <= search.hi[0]; x++ {
			z := ctx.linearDepth(depthMap.load(x, y, 0)[0])
			if z < d {
				blockers++
				sum += z
			}
		}
	}
	if blockers == 0 {
		return 1
	}

	pcf := ctx.windowAround(lc.texel, ctx.penumbraHalf(lc.depth, sum/blockers))
	var lit float32
	for y := pcf.lo[1]; y <= pcf.hi[1]; y++ {
		for x := pcf.lo[0]; x <= pcf.hi[0]; x++ {
			if ctx.linearDepth(depthMap.load(x, y, 0)[0]) >= d {
				lit++
			}
		}
	}
	return lit / pcf.area()
}

func (ctx *cpuShaderContext) momentVisibility(shadowColor, pyramid *cpuTexture, lc lightCoordinate) float32 {
	u := ctx.u
	d := lc.depth - u.ReceiverBias
	search := ctx.windowAround(lc.texel, ctx.blockerHalf(lc.depth))

	// The pyramid is only built when the summed-area table is off.
	if u.Technique == uint32(technique.VSSM) && u.UseSAT == 0 {
		lo, hi := ctx.pyramidBounds(pyramid, search)
		if d <= lo {
			return 1
		}
		if d > hi {
			return 0
		}
	}

	bm := ctx.windowMean(shadowColor, search)
	var blocker float32
	if u.Technique == uint32(technique.ESSM) {
		blocker = -math32.Log(max(bm[1], 1e-30)) / u.Exponent
		if blocker >= d {
			return 1
		}
	} else {
		blocker = chebyshevBlocker(bm[0], bm[1], d)
		if blocker < 0 {
			return 1
		}
	}

	m := ctx.windowMean(shadowColor, ctx.windowAround(lc.texel, ctx.penumbraHalf(lc.depth, blocker)))
	switch u.Technique {
	case uint32(technique.ESSM):
		return common.Clamp(m[0]*math32.Exp(-u.Exponent*d), 0, 1)
	case uint32(technique.MSSM):
		return 1 - hamburger(m, d)
	default:
		return chebyshev(m[0], m[1], d)
	}
}

func (ctx *cpuShaderContext) shade(in *cpuVaryings, visibility float32) [4]float32 {
	u := ctx.u
	factor := 1 - u.ShadowIntensity*(1-visibility)
	if u.VisibilityOnly != 0 {
		return [4]float32{factor, factor, factor, 1}
	}
	l := u.LightEye.Sub(in.WorldPos).Normalize()
	diffuse := max(in.Normal.Normalize().Dot(l), 0)
	k := (shadeAmbient + (1-shadeAmbient)*diffuse) * factor
	return [4]float32{in.Color.X() * k, in.Color.Y() * k, in.Color.Z() * k, in.Color.W()}
}
