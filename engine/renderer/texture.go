package renderer

import (
	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
)

// TextureFormat is the storage format of a render target texture.
type TextureFormat int

const (
	// TextureFormatDepth32F is a single-channel 32-bit float depth texture.
	TextureFormatDepth32F TextureFormat = iota

	// TextureFormatRGBA32F is a four-channel 32-bit float color texture.
	TextureFormatRGBA32F
)

// String returns the format name.
func (f TextureFormat) String() string {
	switch f {
	case TextureFormatDepth32F:
		return "Depth32F"
	case TextureFormatRGBA32F:
		return "RGBA32F"
	default:
		return "Unknown"
	}
}

// Channels returns the number of float32 values per texel.
func (f TextureFormat) Channels() int {
	if f == TextureFormatDepth32F {
		return 1
	}
	return 4
}

// FilterMode is the filtering a texture is created for. Programs read every texture with
// textureLoad, so the mode only matters to code that samples it outside the pipeline.
type FilterMode int

const (
	FilterLinear FilterMode = iota
	FilterNearest
)

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	Label     string
	Width     int
	Height    int
	Format    TextureFormat
	Filter    FilterMode
	MipLevels int
}

// Texture is a backend texture with an optional mip chain.
type Texture interface {
	// Label returns the debug label the texture was created with.
	Label() string

	// Format returns the storage format.
	Format() TextureFormat

	// Filter returns the filter mode the texture was created for.
	Filter() FilterMode

	// Width returns the width of mip level 0.
	Width() int

	// Height returns the height of mip level 0.
	Height() int

	// MipLevels returns the number of mip levels.
	MipLevels() int

	// MipSize returns the extent of the given mip level.
	//
	// Parameters:
	//   - level: the mip level
	//
	// Returns:
	//   - int: width at that level
	//   - int: height at that level
	MipSize(level int) (int, int)

	// Release frees the backend resources held by the texture.
	Release()
}

// Attachment addresses one mip level of a texture bound to a render target slot.
type Attachment struct {
	Texture  Texture
	MipLevel int
}

// Size returns the extent of the attachment at its mip level.
func (a Attachment) Size() (int, int) {
	if a.Texture == nil {
		return 0, 0
	}
	return a.Texture.MipSize(a.MipLevel)
}

// RenderTarget is a resolved set of attachments a draw writes to. A Screen target draws to
// the presentation surface (or the CPU backend's screen buffer) and ignores Depth and Color.
type RenderTarget struct {
	Label  string
	Depth  Attachment
	Color  []Attachment
	Screen bool
}

// DrawCommand is one render pass: one program, one target, one viewport.
type DrawCommand struct {
	// Label names the pass in logs and statistics.
	Label string

	// Pipeline is the key of a registered pipeline.
	Pipeline string

	// Target is the render target the pass writes to.
	Target RenderTarget

	// Viewport restricts rasterization; the zero value covers the whole target.
	Viewport common.Viewport

	// Clear, when set, clears every color attachment to the value and depth to 1 before drawing.
	Clear *common.Color

	// Inputs are bound to the program's texture declarations in (group, binding) order.
	Inputs []Texture

	// Uniforms is the shared uniform block, required when the program declares one.
	Uniforms *light.GPUShadowUniforms
}
