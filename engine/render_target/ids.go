package render_target

import "fmt"

// TextureID names one texture owned by the registry.
type TextureID int

const (
	// NoTexture detaches a slot when used in an Override.
	NoTexture TextureID = iota

	ShadowMapDepth
	ShadowMapColor
	TempShadowMapDepth
	TempShadowMapColor
	SATShadowMapDepth
	SATShadowMapColor
	HierarchicalShadowMapDepth
	HierarchicalShadowMapColor
	AccumulationMapDepth
	AccumulationMapColor
	TempAccumulationMapDepth
	TempAccumulationMapColor
	GBufferMapDepth
	VertexMapColor
	NormalMapColor

	textureIDCount
)

var textureNames = [...]string{
	NoTexture:                  "none",
	ShadowMapDepth:             "shadow map depth",
	ShadowMapColor:             "shadow map color",
	TempShadowMapDepth:         "temp shadow map depth",
	TempShadowMapColor:         "temp shadow map color",
	SATShadowMapDepth:          "sat shadow map depth",
	SATShadowMapColor:          "sat shadow map color",
	HierarchicalShadowMapDepth: "hierarchical shadow map depth",
	HierarchicalShadowMapColor: "hierarchical shadow map color",
	AccumulationMapDepth:       "accumulation map depth",
	AccumulationMapColor:       "accumulation map color",
	TempAccumulationMapDepth:   "temp accumulation map depth",
	TempAccumulationMapColor:   "temp accumulation map color",
	GBufferMapDepth:            "gbuffer depth",
	VertexMapColor:             "vertex map color",
	NormalMapColor:             "normal map color",
}

func (id TextureID) String() string {
	if id < 0 || id >= textureIDCount {
		return fmt.Sprintf("texture(%d)", int(id))
	}
	return textureNames[id]
}

// FramebufferID names a group of attachments.
type FramebufferID int

const (
	Shadow FramebufferID = iota
	TempShadow
	SATShadow
	HierarchicalShadow
	Accumulation
	TempAccumulation
	GBuffer

	framebufferIDCount
)

var framebufferNames = [...]string{
	Shadow:             "shadow",
	TempShadow:         "temp shadow",
	SATShadow:          "sat shadow",
	HierarchicalShadow: "hierarchical shadow",
	Accumulation:       "accumulation",
	TempAccumulation:   "temp accumulation",
	GBuffer:            "gbuffer",
}

func (id FramebufferID) String() string {
	if id < 0 || id >= framebufferIDCount {
		return fmt.Sprintf("framebuffer(%d)", int(id))
	}
	return framebufferNames[id]
}

// Slot is an attachment point of a framebuffer.
type Slot int

const (
	SlotDepth Slot = iota
	SlotColor0
	SlotColor1

	slotCount
)

func (s Slot) String() string {
	switch s {
	case SlotDepth:
		return "depth"
	case SlotColor0:
		return "color0"
	case SlotColor1:
		return "color1"
	default:
		return fmt.Sprintf("slot(%d)", int(s))
	}
}
