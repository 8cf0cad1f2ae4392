// Package render_target owns the textures of the shadow pipeline and the framebuffers that
// group them into attachments.
package render_target

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
)

var log = logger.New("render_target")

var (
	// ErrUnknownTexture is returned when a TextureID was never acquired.
	ErrUnknownTexture = errors.New("unknown texture")

	// ErrDimensionMismatch is returned when the attachments of a framebuffer would not share
	// one size at their bound mip levels.
	ErrDimensionMismatch = errors.New("attachment dimensions differ")
)

// Allocator creates backend textures. renderer.Renderer satisfies it.
type Allocator interface {
	CreateTexture(desc renderer.TextureDescriptor) (renderer.Texture, error)
}

// Binding is the attachment state of one framebuffer slot.
type Binding struct {
	Texture  TextureID
	MipLevel int
}

// Override replaces one slot for the duration of WithAttachments. A NoTexture override
// detaches the slot.
type Override struct {
	Slot     Slot
	Texture  TextureID
	MipLevel int
}

type registry struct {
	mu *sync.Mutex

	allocator    Allocator
	textures     map[TextureID]renderer.Texture
	framebuffers map[FramebufferID]*[slotCount]Binding
}

// Registry maps texture and framebuffer identifiers to backend resources.
type Registry interface {
	// Acquire allocates (or re-allocates) the texture behind id. A previous texture with the same
	// id is released, so window-sized targets can be re-acquired on resize without rebinding.
	//
	// Parameters:
	//   - id: the texture identifier
	//   - format: depth or RGBA color
	//   - width: width in texels
	//   - height: height in texels
	//   - filter: sampling filter
	//   - mipLevels: mip chain length, at least 1
	//
	// Returns:
	//   - renderer.Texture: the allocated texture
	//   - error: error if the allocator fails
	Acquire(id TextureID, format renderer.TextureFormat, width, height int, filter renderer.FilterMode, mipLevels int) (renderer.Texture, error)

	// Texture returns the texture behind id.
	//
	// Parameters:
	//   - id: the texture identifier
	//
	// Returns:
	//   - renderer.Texture: the texture
	//   - error: ErrUnknownTexture if id was never acquired
	Texture(id TextureID) (renderer.Texture, error)

	// Bind attaches mip level mipLevel of a texture to a framebuffer slot, replacing the
	// previous attachment. The bind is rejected with ErrDimensionMismatch when the new
	// attachment's size differs from the other attachments of the framebuffer.
	//
	// Parameters:
	//   - fb: the framebuffer
	//   - slot: the attachment slot
	//   - id: the texture to attach, or NoTexture to detach
	//   - mipLevel: the mip level to render into
	//
	// Returns:
	//   - error: ErrUnknownTexture, ErrDimensionMismatch or a mip range error
	Bind(fb FramebufferID, slot Slot, id TextureID, mipLevel int) error

	// Attachment returns the current binding of a slot.
	//
	// Parameters:
	//   - fb: the framebuffer
	//   - slot: the slot
	//
	// Returns:
	//   - Binding: the bound texture and mip level
	//   - bool: false when the slot is empty
	Attachment(fb FramebufferID, slot Slot) (Binding, bool)

	// Target resolves the framebuffer's current attachments into a renderer target.
	Target(fb FramebufferID) (renderer.RenderTarget, error)

	// WithAttachments applies overrides to a framebuffer, calls fn with the resolved target
	// and restores the previous attachments when fn returns, whether or not it failed.
	// The overridden framebuffer is validated as a whole, so overrides may be listed in any order.
	//
	// Parameters:
	//   - fb: the framebuffer
	//   - overrides: the slots to replace
	//   - fn: the work to run with the overridden target
	//
	// Returns:
	//   - error: a validation error or the error returned by fn
	WithAttachments(fb FramebufferID, overrides []Override, fn func(target renderer.RenderTarget) error) error

	// Release frees every texture. The registry is unusable afterwards.
	Release()
}

var _ Registry = &registry{}

// NewRegistry creates an empty registry that allocates through allocator.
//
// Parameters:
//   - allocator: the texture allocator, usually the renderer
//
// Returns:
//   - Registry: the registry
func NewRegistry(allocator Allocator) Registry {
	r := &registry{
		mu:           &sync.Mutex{},
		allocator:    allocator,
		textures:     make(map[TextureID]renderer.Texture),
		framebuffers: make(map[FramebufferID]*[slotCount]Binding),
	}
	for fb := FramebufferID(0); fb < framebufferIDCount; fb++ {
		r.framebuffers[fb] = &[slotCount]Binding{}
	}
	return r
}

func (r *registry) Acquire(id TextureID, format renderer.TextureFormat, width, height int, filter renderer.FilterMode, mipLevels int) (renderer.Texture, error) {
	if id == NoTexture || id >= textureIDCount {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTexture, id)
	}
	tex, err := r.allocator.CreateTexture(renderer.TextureDescriptor{
		Label:     id.String(),
		Width:     width,
		Height:    height,
		Format:    format,
		Filter:    filter,
		MipLevels: max(mipLevels, 1),
	})
	if err != nil {
		return nil, fmt.Errorf("acquiring %s: %w", id, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.textures[id]; ok {
		old.Release()
	}
	r.textures[id] = tex
	log.Debugf("acquired %s %dx%d %s, %d mips", id, width, height, format, tex.MipLevels())
	return tex, nil
}

func (r *registry) Texture(id TextureID) (renderer.Texture, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.texture(id)
}

func (r *registry) texture(id TextureID) (renderer.Texture, error) {
	tex, ok := r.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTexture, id)
	}
	return tex, nil
}

func (r *registry) Bind(fb FramebufferID, slot Slot, id TextureID, mipLevel int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.slots(fb, slot)
	if err != nil {
		return err
	}
	next := *slots
	next[slot] = Binding{Texture: id, MipLevel: mipLevel}
	if _, err := r.resolve(fb, next); err != nil {
		return err
	}
	*slots = next
	return nil
}

func (r *registry) Attachment(fb FramebufferID, slot Slot) (Binding, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.slots(fb, slot)
	if err != nil || slots[slot].Texture == NoTexture {
		return Binding{}, false
	}
	return slots[slot], true
}

func (r *registry) Target(fb FramebufferID) (renderer.RenderTarget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots, err := r.slots(fb, SlotDepth)
	if err != nil {
		return renderer.RenderTarget{}, err
	}
	return r.resolve(fb, *slots)
}

func (r *registry) WithAttachments(fb FramebufferID, overrides []Override, fn func(target renderer.RenderTarget) error) error {
	r.mu.Lock()
	slots, err := r.slots(fb, SlotDepth)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	previous := *slots
	next := previous
	for _, o := range overrides {
		if o.Slot < 0 || o.Slot >= slotCount {
			r.mu.Unlock()
			return fmt.Errorf("framebuffer %s has no %s", fb, o.Slot)
		}
		next[o.Slot] = Binding{Texture: o.Texture, MipLevel: o.MipLevel}
	}
	target, err := r.resolve(fb, next)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	*slots = next
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		*slots = previous
		r.mu.Unlock()
	}()
	return fn(target)
}

func (r *registry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, tex := range r.textures {
		tex.Release()
		delete(r.textures, id)
	}
}

func (r *registry) slots(fb FramebufferID, slot Slot) (*[slotCount]Binding, error) {
	slots, ok := r.framebuffers[fb]
	if !ok {
		return nil, fmt.Errorf("unknown framebuffer %s", fb)
	}
	if slot < 0 || slot >= slotCount {
		return nil, fmt.Errorf("framebuffer %s has no %s", fb, slot)
	}
	return slots, nil
}

// resolve turns a slot set into a render target, checking that every attachment exists,
// has the bound mip level and matches the size of the others.
func (r *registry) resolve(fb FramebufferID, slots [slotCount]Binding) (renderer.RenderTarget, error) {
	target := renderer.RenderTarget{Label: fb.String()}
	width, height := 0, 0
	for slot, b := range slots {
		if b.Texture == NoTexture {
			continue
		}
		tex, err := r.texture(b.Texture)
		if err != nil {
			return target, fmt.Errorf("framebuffer %s %s: %w", fb, Slot(slot), err)
		}
		if b.MipLevel < 0 || b.MipLevel >= tex.MipLevels() {
			return target, fmt.Errorf("framebuffer %s %s: %s has no mip level %d", fb, Slot(slot), b.Texture, b.MipLevel)
		}
		w, h := tex.MipSize(b.MipLevel)
		if width == 0 {
			width, height = w, h
		} else if w != width || h != height {
			return target, fmt.Errorf("%w: framebuffer %s %s is %dx%d at mip %d, others are %dx%d", ErrDimensionMismatch, fb, Slot(slot), w, h, b.MipLevel, width, height)
		}

		attachment := renderer.Attachment{Texture: tex, MipLevel: b.MipLevel}
		if Slot(slot) == SlotDepth {
			if tex.Format() != renderer.TextureFormatDepth32F {
				return target, fmt.Errorf("framebuffer %s: depth slot holds %s texture %s", fb, tex.Format(), b.Texture)
			}
			target.Depth = attachment
			continue
		}
		if tex.Format() != renderer.TextureFormatRGBA32F {
			return target, fmt.Errorf("framebuffer %s: %s holds %s texture %s", fb, Slot(slot), tex.Format(), b.Texture)
		}
		target.Color = append(target.Color, attachment)
	}
	return target, nil
}
