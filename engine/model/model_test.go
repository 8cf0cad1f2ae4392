package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoxGeometry(t *testing.T) {
	b := Box("box", mgl32.Vec3{-1, 0, -2}, mgl32.Vec3{1, 4, 2}, common.ColorWhite)

	assert.Len(t, b.Vertices(), 24)
	assert.Equal(t, 36, b.IndexCount())

	lo, hi := b.Bounds()
	assert.Equal(t, mgl32.Vec3{-1, 0, -2}, lo)
	assert.Equal(t, mgl32.Vec3{1, 4, 2}, hi)
	assert.True(t, b.Centroid().ApproxEqual(mgl32.Vec3{0, 2, 0}))

	// every triangle winds outward along its face normal
	v := b.Vertices()
	idx := b.Indices()
	for i := 0; i < len(idx); i += 3 {
		p0 := mgl32.Vec3(v[idx[i]].Position)
		p1 := mgl32.Vec3(v[idx[i+1]].Position)
		p2 := mgl32.Vec3(v[idx[i+2]].Position)
		n := p1.Sub(p0).Cross(p2.Sub(p0))
		assert.Greater(t, n.Dot(mgl32.Vec3(v[idx[i]].Normal)), float32(0), "triangle %d", i/3)
	}
}

func TestPlaneFacesUp(t *testing.T) {
	p := Plane("ground", mgl32.Vec3{0, -1, 0}, 10, common.ColorWhite)
	lo, hi := p.Bounds()
	assert.Equal(t, mgl32.Vec3{-5, -1, -5}, lo)
	assert.Equal(t, mgl32.Vec3{5, -1, 5}, hi)
	for _, v := range p.Vertices() {
		assert.Equal(t, [3]float32{0, 1, 0}, v.Normal)
	}
}

func TestVertexMarshalLayout(t *testing.T) {
	v := Vertex{Position: [3]float32{1, 2, 3}, Normal: [3]float32{0, 1, 0}, Color: [4]float32{0.5, 0.25, 0, 1}}
	require.Equal(t, VertexStride, v.Size())

	buf := v.Marshal()
	require.Len(t, buf, VertexStride)
	read := func(i int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])) }
	assert.Equal(t, float32(3), read(2))
	assert.Equal(t, float32(1), read(4))
	assert.Equal(t, float32(0.25), read(7))

	all := MarshalVertices([]Vertex{v, v})
	assert.Equal(t, buf, all[VertexStride:])
	assert.Len(t, MarshalIndices([]uint32{1, 2, 3}), 12)
}
