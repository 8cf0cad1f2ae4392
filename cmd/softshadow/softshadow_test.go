package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/engine/settings"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverridesApply(t *testing.T) {
	specs := []struct {
		name    string
		o       overrides
		wantErr bool
		check   func(t *testing.T, s settings.Settings)
	}{
		{
			name: "empty overrides keep defaults",
			check: func(t *testing.T, s settings.Settings) {
				assert.Equal(t, settings.Default(), s)
			},
		},
		{
			name: "technique and sizes",
			o:    overrides{technique: "vssm", sat: true, width: 64, height: 48, mapSize: 256},
			check: func(t *testing.T, s settings.Settings) {
				assert.Equal(t, technique.VSSM, s.Technique.Technique)
				assert.True(t, s.Technique.SAT)
				assert.Equal(t, 64, s.Window.Width)
				assert.Equal(t, 48, s.Window.Height)
				assert.Equal(t, 256, s.Shadow.MapSize)
			},
		},
		{
			name:    "unknown technique",
			o:       overrides{technique: "raytraced"},
			wantErr: true,
		},
		{
			name:    "map size not a power of two",
			o:       overrides{mapSize: 300},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			o:       overrides{backend: "vulkan"},
			wantErr: true,
		},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			s := settings.Default()
			err := spec.o.apply(&s)
			if spec.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			spec.check(t, s)
		})
	}
}

func TestToImageClampsAndKeepsRowOrder(t *testing.T) {
	pixels := []float32{
		1, 0, 0, 1, 2, -1, 0.5, 1,
		0, 0, 1, 1, 0, 0, 0, 0,
	}
	img := toImage(pixels, 2, 2)

	assert.Equal(t, uint8(255), img.NRGBAAt(0, 0).R)
	top := img.NRGBAAt(1, 0)
	assert.Equal(t, uint8(255), top.R)
	assert.Equal(t, uint8(0), top.G)
	assert.Equal(t, uint8(128), top.B)
	assert.Equal(t, uint8(255), img.NRGBAAt(0, 1).B)
	assert.Equal(t, uint8(0), img.NRGBAAt(1, 1).A)
}

func TestFrameLabel(t *testing.T) {
	specs := []struct {
		name string
		cfg  technique.Snapshot
		exp  string
	}{
		{"plain", technique.Snapshot{Technique: technique.PCSS}, "pcss"},
		{"sat on a filtered technique", technique.Snapshot{Technique: technique.MSSM, UseSAT: true}, "mssm + SAT"},
		{"sat ignored for monte carlo", technique.Snapshot{Technique: technique.MonteCarlo, UseSAT: true}, "montecarlo"},
		{"visibility", technique.Snapshot{Technique: technique.ESSM, VisibilityOnly: true}, "essm (visibility)"},
	}
	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			assert.Equal(t, spec.exp, frameLabel(spec.cfg))
		})
	}
}

func TestDrawLabelMarksCorner(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 64, 32))
	drawLabel(img, "VSSM")

	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, img.NRGBAAt(0, 0))
	lit := 0
	for y := 0; y < 19; y++ {
		for x := 0; x < 40; x++ {
			if img.NRGBAAt(x, y).R == 255 {
				lit++
			}
		}
	}
	assert.Positive(t, lit)
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(63, 31))
}

func TestWriteImageFormats(t *testing.T) {
	dir := t.TempDir()
	img := toImage(make([]float32, 4*4*4), 4, 4)

	for _, name := range []string{"a.png", "b.BMP", "c.tiff"} {
		path := filepath.Join(dir, name)
		require.NoError(t, writeImage(path, img), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}

	err := writeImage(filepath.Join(dir, "d.jpg"), img)
	assert.ErrorContains(t, err, "unsupported image format")
	_, err = os.Stat(filepath.Join(dir, "d.jpg"))
	assert.True(t, os.IsNotExist(err))
}
