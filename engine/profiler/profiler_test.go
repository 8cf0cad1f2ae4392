package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickReportsOncePerInterval(t *testing.T) {
	start := time.Unix(0, 0)
	clock := start
	p := NewProfiler(time.Second)
	p.lastTime = start
	p.now = func() time.Time { return clock }

	for i := 0; i < 9; i++ {
		clock = clock.Add(100 * time.Millisecond)
		assert.Nil(t, p.Tick("pcss", 2*time.Millisecond))
	}
	clock = clock.Add(100 * time.Millisecond)
	r := p.Tick("pcss", 4*time.Millisecond)
	require.NotNil(t, r)

	assert.Equal(t, "pcss", r.Label)
	assert.InDelta(t, 10, r.FPS, 1e-9)
	assert.Equal(t, 2200*time.Microsecond, r.FrameTime)

	clock = clock.Add(100 * time.Millisecond)
	assert.Nil(t, p.Tick("pcss", time.Millisecond))
}
