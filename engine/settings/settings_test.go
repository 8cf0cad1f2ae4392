package settings

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/engine/camera"
	"github.com/Carmen-Shannon/oxy-shadows/engine/light"
	"github.com/Carmen-Shannon/oxy-shadows/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shadows/engine/scene"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[window]
width = 640
height = 480

[renderer]
backend = "cpu"
workers = 2

[shadow]
map_size = 512

[technique]
technique = "vssm"
sat = true
kernel_size = 9

[light]
position = [10.0, 80.0, 0.0]
size = 20.0
samples = 16

[camera]
eye = [0.0, 50.0, 50.0]

[scene]
default_meshes = false
animate = true

[[scene.planes]]
name = "floor"
size = 100.0

[[scene.boxes]]
name = "cube"
min = [-5.0, 0.0, -5.0]
max = [5.0, 10.0, 5.0]
color = [1.0, 0.0, 0.0, 1.0]
`

func TestDecodeMergesOverDefaults(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 640, s.Window.Width)
	assert.Equal(t, Default().Window.Title, s.Window.Title)
	assert.Equal(t, 512, s.Shadow.MapSize)
	assert.Equal(t, light.DefaultReceiverBias, s.Shadow.ReceiverBias)
	assert.Equal(t, technique.VSSM, s.Technique.Technique)
	assert.Equal(t, technique.DefaultBlockerSearchSize, s.Technique.BlockerSearchSize)

	backend, err := s.BackendType()
	require.NoError(t, err)
	assert.Equal(t, renderer.BackendTypeCPU, backend)
}

func TestDecodeRejects(t *testing.T) {
	specs := []struct {
		name string
		src  string
	}{
		{"unknown key", "[window]\ncolour = 3\n"},
		{"map size", "[shadow]\nmap_size = 300\n"},
		{"backend", "[renderer]\nbackend = \"vulkan\"\n"},
		{"technique", "[technique]\ntechnique = \"hard\"\n"},
		{"window", "[window]\nwidth = 0\n"},
		{"samples", "[light]\nsamples = 0\n"},
		{"box", "[[scene.boxes]]\nmin = [1.0, 0.0, 0.0]\nmax = [0.0, 1.0, 1.0]\n"},
		{"syntax", "[window\n"},
	}
	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(spec.src))
			assert.Error(t, err)
		})
	}
}

func TestOptionsBuildConfiguredObjects(t *testing.T) {
	s, err := Decode(strings.NewReader(sample))
	require.NoError(t, err)

	cfg := technique.NewConfig(s.TechniqueOptions()...).Snapshot()
	assert.Equal(t, technique.VSSM, cfg.Technique)
	assert.True(t, cfg.UseSAT)
	assert.Equal(t, 9, cfg.KernelSize)
	assert.Equal(t, float32(10), cfg.LightSourceRadius)
	assert.InDelta(t, 1.0/16.0, cfg.AccumulationFactor, 1e-7)

	l := light.NewAreaLight(s.LightOptions()...)
	assert.Equal(t, mgl32.Vec3{10, 80, 0}, l.Position())
	assert.Equal(t, 16, l.SampleCount())
	assert.Equal(t, float32(20), l.Size())

	cam := camera.NewCamera(s.CameraOptions()...)
	assert.Equal(t, mgl32.Vec3{0, 50, 50}, cam.Eye())
	assert.InDelta(t, 640.0/480.0, cam.Aspect(), 1e-6)

	sc := scene.NewScene(s.SceneOptions()...)
	meshes := sc.Meshes()
	require.Len(t, meshes, 2)
	assert.Equal(t, "floor", meshes[0].Name())
	assert.Equal(t, "cube", meshes[1].Name())
	assert.True(t, sc.Animation().Enabled())
}

func TestDefaultsIncludeDemoScene(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Len(t, s.Meshes(), len(scene.DefaultMeshes()))
}

func TestEncodeRoundTripsThroughLoad(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Encode(&buf))

	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, want.Window, s.Window)
	assert.Equal(t, want.Shadow, s.Shadow)
	assert.Equal(t, want.Technique, s.Technique)
	assert.Equal(t, want.Light, s.Light)
	assert.Equal(t, want.Camera, s.Camera)
	assert.Empty(t, s.Scene.Boxes)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
