package render_target

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) Registry {
	t.Helper()
	r, err := renderer.NewRenderer(renderer.BackendTypeCPU, nil, renderer.WithScreenSize(4, 4), renderer.WithWorkerCount(1))
	require.NoError(t, err)
	reg := NewRegistry(r)
	t.Cleanup(func() {
		reg.Release()
		r.Release()
	})
	return reg
}

func acquireShadowMaps(t *testing.T, reg Registry, size int) {
	t.Helper()
	_, err := reg.Acquire(ShadowMapDepth, renderer.TextureFormatDepth32F, size, size, renderer.FilterNearest, 1)
	require.NoError(t, err)
	_, err = reg.Acquire(ShadowMapColor, renderer.TextureFormatRGBA32F, size, size, renderer.FilterLinear, 4)
	require.NoError(t, err)
	_, err = reg.Acquire(TempShadowMapDepth, renderer.TextureFormatDepth32F, size, size, renderer.FilterNearest, 1)
	require.NoError(t, err)
	_, err = reg.Acquire(TempShadowMapColor, renderer.TextureFormatRGBA32F, size, size, renderer.FilterLinear, 4)
	require.NoError(t, err)
}

func TestUnknownTexture(t *testing.T) {
	reg := newTestRegistry(t)

	_, err := reg.Texture(SATShadowMapColor)
	assert.ErrorIs(t, err, ErrUnknownTexture)

	err = reg.Bind(SATShadow, SlotColor0, SATShadowMapColor, 0)
	assert.ErrorIs(t, err, ErrUnknownTexture)

	_, err = reg.Acquire(NoTexture, renderer.TextureFormatRGBA32F, 4, 4, renderer.FilterLinear, 1)
	assert.ErrorIs(t, err, ErrUnknownTexture)
}

func TestBindRejectsMismatchedDimensions(t *testing.T) {
	reg := newTestRegistry(t)
	acquireShadowMaps(t, reg, 8)
	_, err := reg.Acquire(NormalMapColor, renderer.TextureFormatRGBA32F, 4, 4, renderer.FilterLinear, 1)
	require.NoError(t, err)
	_, err = reg.Acquire(VertexMapColor, renderer.TextureFormatRGBA32F, 16, 16, renderer.FilterLinear, 2)
	require.NoError(t, err)

	require.NoError(t, reg.Bind(Shadow, SlotDepth, ShadowMapDepth, 0))

	specs := []struct {
		name    string
		id      TextureID
		mip     int
		wantErr error
	}{
		{"same size", ShadowMapColor, 0, nil},
		{"smaller texture", NormalMapColor, 0, ErrDimensionMismatch},
		{"coarser mip of same texture", ShadowMapColor, 1, ErrDimensionMismatch},
		{"larger texture at matching mip", VertexMapColor, 1, nil},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			err := reg.Bind(Shadow, SlotColor0, spec.id, spec.mip)
			if spec.wantErr != nil {
				assert.ErrorIs(t, err, spec.wantErr)
				return
			}
			require.NoError(t, err)
			b, ok := reg.Attachment(Shadow, SlotColor0)
			require.True(t, ok)
			assert.Equal(t, Binding{Texture: spec.id, MipLevel: spec.mip}, b)
		})
	}
}

func TestRejectedBindKeepsPreviousAttachment(t *testing.T) {
	reg := newTestRegistry(t)
	acquireShadowMaps(t, reg, 8)
	require.NoError(t, reg.Bind(Shadow, SlotDepth, ShadowMapDepth, 0))
	require.NoError(t, reg.Bind(Shadow, SlotColor0, ShadowMapColor, 0))

	assert.Error(t, reg.Bind(Shadow, SlotColor0, ShadowMapColor, 2))

	b, ok := reg.Attachment(Shadow, SlotColor0)
	require.True(t, ok)
	assert.Equal(t, 0, b.MipLevel)
}

func TestWithAttachmentsRestores(t *testing.T) {
	reg := newTestRegistry(t)
	acquireShadowMaps(t, reg, 8)
	require.NoError(t, reg.Bind(TempShadow, SlotDepth, TempShadowMapDepth, 0))
	require.NoError(t, reg.Bind(TempShadow, SlotColor0, TempShadowMapColor, 0))

	overrides := []Override{
		{Slot: SlotColor0, Texture: TempShadowMapColor, MipLevel: 2},
		{Slot: SlotDepth, Texture: NoTexture},
	}
	failure := errors.New("pass failed")

	specs := []struct {
		name    string
		fnErr   error
		wantErr error
	}{
		{"fn succeeds", nil, nil},
		{"fn fails", failure, failure},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			err := reg.WithAttachments(TempShadow, overrides, func(target renderer.RenderTarget) error {
				assert.Nil(t, target.Depth.Texture)
				require.Len(t, target.Color, 1)
				assert.Equal(t, 2, target.Color[0].MipLevel)
				w, h := target.Color[0].Size()
				assert.Equal(t, 2, w)
				assert.Equal(t, 2, h)

				b, ok := reg.Attachment(TempShadow, SlotColor0)
				assert.True(t, ok)
				assert.Equal(t, 2, b.MipLevel)
				return spec.fnErr
			})
			if spec.wantErr != nil {
				assert.ErrorIs(t, err, spec.wantErr)
			} else {
				assert.NoError(t, err)
			}

			color, ok := reg.Attachment(TempShadow, SlotColor0)
			require.True(t, ok)
			assert.Equal(t, Binding{Texture: TempShadowMapColor, MipLevel: 0}, color)
			depth, ok := reg.Attachment(TempShadow, SlotDepth)
			require.True(t, ok)
			assert.Equal(t, Binding{Texture: TempShadowMapDepth, MipLevel: 0}, depth)
		})
	}
}

func TestWithAttachmentsRejectsMismatchBeforeRunning(t *testing.T) {
	reg := newTestRegistry(t)
	acquireShadowMaps(t, reg, 8)
	require.NoError(t, reg.Bind(TempShadow, SlotDepth, TempShadowMapDepth, 0))
	require.NoError(t, reg.Bind(TempShadow, SlotColor0, TempShadowMapColor, 0))

	ran := false
	err := reg.WithAttachments(TempShadow, []Override{{Slot: SlotColor0, Texture: TempShadowMapColor, MipLevel: 1}}, func(renderer.RenderTarget) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.False(t, ran)
}

func TestReacquireResolvesNewTexture(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Acquire(NormalMapColor, renderer.TextureFormatRGBA32F, 4, 4, renderer.FilterLinear, 1)
	require.NoError(t, err)
	_, err = reg.Acquire(VertexMapColor, renderer.TextureFormatRGBA32F, 4, 4, renderer.FilterLinear, 1)
	require.NoError(t, err)
	require.NoError(t, reg.Bind(GBuffer, SlotColor0, VertexMapColor, 0))
	require.NoError(t, reg.Bind(GBuffer, SlotColor1, NormalMapColor, 0))

	_, err = reg.Acquire(NormalMapColor, renderer.TextureFormatRGBA32F, 6, 6, renderer.FilterLinear, 1)
	require.NoError(t, err)
	_, err = reg.Target(GBuffer)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = reg.Acquire(VertexMapColor, renderer.TextureFormatRGBA32F, 6, 6, renderer.FilterLinear, 1)
	require.NoError(t, err)
	target, err := reg.Target(GBuffer)
	require.NoError(t, err)
	require.Len(t, target.Color, 2)
	w, _ := target.Color[1].Size()
	assert.Equal(t, 6, w)
}
