package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/shadow"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/chewxy/math32"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"golang.org/x/image/bmp"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/tiff"
)

// RenderFrame renders a single frame with the CPU backend and writes it to a PNG file.
func RenderFrame(ctx *cli.Context) error {
	s, err := loadSettings(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	s.Renderer.Workers = ctx.Int("workers")

	r, err := renderer.NewRenderer(renderer.BackendTypeCPU, nil, s.RendererOptions()...)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer r.Release()

	cfg := technique.NewConfig(s.TechniqueOptions()...)
	o, err := shadow.NewOrchestrator(r,
		scene.NewScene(s.SceneOptions()...),
		camera.NewCamera(s.CameraOptions()...),
		light.NewAreaLight(s.LightOptions()...),
		s.OrchestratorOptions(shader.NewProvider(s.ProviderOptions()...))...,
	)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	defer o.Release()
	if err := o.Init(); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	snap := cfg.Snapshot()
	start := time.Now()
	if err := o.RenderFrame(snap); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	elapsed := time.Since(start)

	pixels, w, h, err := r.ReadScreen()
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	img := toImage(pixels, w, h)
	if ctx.Bool("label") {
		drawLabel(img, frameLabel(snap))
	}
	out := ctx.String("out")
	if err := writeImage(out, img); err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	displayFrameStats(snap, r.FrameStats(), elapsed)
	log.Noticef("wrote %dx%d %s frame to %s", w, h, snap.Technique, out)
	return nil
}

// toImage converts linear RGBA floats, row 0 at the top, into an 8-bit image.
func toImage(pixels []float32, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(pixels[i]),
				G: toByte(pixels[i+1]),
				B: toByte(pixels[i+2]),
				A: toByte(pixels[i+3]),
			})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	if math32.IsNaN(v) {
		return 0
	}
	return uint8(math32.Round(max(0, min(v, 1)) * 255))
}

// frameLabel names the technique and the filtering path of a frame.
func frameLabel(cfg technique.Snapshot) string {
	label := cfg.Technique.String()
	if cfg.BuildsSAT() {
		label += " + SAT"
	}
	if cfg.VisibilityOnly {
		label += " (visibility)"
	}
	return label
}

// drawLabel stamps text in the top-left corner over a dark backing strip.
func drawLabel(img *image.NRGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.NRGBA{255, 255, 255, 255}),
		Face: face,
	}
	width := d.MeasureString(text).Ceil()
	strip := image.Rect(0, 0, width+8, face.Height+6).Intersect(img.Bounds())
	for y := strip.Min.Y; y < strip.Max.Y; y++ {
		for x := strip.Min.X; x < strip.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 255})
		}
	}
	d.Dot = fixed.P(4, 3+face.Ascent)
	d.DrawString(text)
}

type encoder func(w io.Writer, img image.Image) error

var encoders = map[string]encoder{
	".png":  png.Encode,
	".bmp":  bmp.Encode,
	".tif":  tiffEncode,
	".tiff": tiffEncode,
}

func tiffEncode(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// writeImage encodes img in the format named by the path's extension.
func writeImage(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	encode, ok := encoders[ext]
	if !ok {
		return fmt.Errorf("unsupported image format %q, use .png, .bmp or .tiff", ext)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	return f.Close()
}

func displayFrameStats(cfg technique.Snapshot, stats []renderer.PassStat, elapsed time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pipeline", "Draws"})
	total := 0
	for _, stat := range stats {
		table.Append([]string{stat.Pipeline, fmt.Sprintf("%d", stat.Draws)})
		total += stat.Draws
	}
	table.SetFooter([]string{fmt.Sprintf("%s (sat %t) in %s", cfg.Technique, cfg.BuildsSAT(), elapsed.Round(time.Millisecond)), fmt.Sprintf("%d", total)})
	table.Render()
	log.Noticef("frame statistics\n%s", buf.String())
}
