package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadows/common"
)

// cpuTexture stores every mip level as a row-major float slice.
type cpuTexture struct {
	desc   TextureDescriptor
	levels [][]float32
}

var _ Texture = &cpuTexture{}

func newCPUTexture(desc TextureDescriptor) *cpuTexture {
	t := &cpuTexture{desc: desc, levels: make([][]float32, desc.MipLevels)}
	channels := desc.Format.Channels()
	for level := range t.levels {
		w, h := t.MipSize(level)
		t.levels[level] = make([]float32, w*h*channels)
	}
	if desc.Format == TextureFormatDepth32F {
		for _, level := range t.levels {
			for i := range level {
				level[i] = 1
			}
		}
	}
	return t
}

func (t *cpuTexture) Label() string         { return t.desc.Label }
func (t *cpuTexture) Format() TextureFormat { return t.desc.Format }
func (t *cpuTexture) Filter() FilterMode    { return t.desc.Filter }
func (t *cpuTexture) Width() int            { return t.desc.Width }
func (t *cpuTexture) Height() int           { return t.desc.Height }
func (t *cpuTexture) MipLevels() int        { return t.desc.MipLevels }

func (t *cpuTexture) MipSize(level int) (int, int) {
	return common.MipSize(t.desc.Width, level), common.MipSize(t.desc.Height, level)
}

func (t *cpuTexture) Release() {
	t.levels = nil
}

func (t *cpuTexture) level(level int) ([]float32, error) {
	if level < 0 || level >= len(t.levels) {
		return nil, fmt.Errorf("texture %q has no mip level %d", t.desc.Label, level)
	}
	return t.levels[level], nil
}

// load returns texel (x, y) of a level as four channels; depth textures return (d, 0, 0, 1).
// Coordinates outside the level return zero, matching textureLoad's out-of-bounds behavior
// closely enough for programs that clamp their own coordinates.
func (t *cpuTexture) load(x, y, level int) [4]float32 {
	if level < 0 || level >= len(t.levels) {
		return [4]float32{}
	}
	w, h := t.MipSize(level)
	if x < 0 || y < 0 || x >= w || y >= h {
		return [4]float32{}
	}
	data := t.levels[level]
	if t.desc.Format == TextureFormatDepth32F {
		return [4]float32{data[y*w+x], 0, 0, 1}
	}
	i := (y*w + x) * 4
	return [4]float32{data[i], data[i+1], data[i+2], data[i+3]}
}

func (t *cpuTexture) store(x, y, level int, v [4]float32) {
	w, _ := t.MipSize(level)
	data := t.levels[level]
	if t.desc.Format == TextureFormatDepth32F {
		data[y*w+x] = v[0]
		return
	}
	i := (y*w + x) * 4
	copy(data[i:i+4], v[:])
}

func asCPUTexture(t Texture) (*cpuTexture, error) {
	ct, ok := t.(*cpuTexture)
	if !ok || ct == nil {
		return nil, fmt.Errorf("texture %v was not created by the cpu backend", t)
	}
	if ct.levels == nil {
		return nil, fmt.Errorf("texture %q was released", ct.desc.Label)
	}
	return ct, nil
}
