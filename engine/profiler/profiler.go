// Package profiler reports frame rate, per-technique frame time and memory statistics.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/engine/logger"
)

var log = logger.New("profiler")

// Profiler tracks frame rate and memory statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	frameTime      time.Duration
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	now func() time.Time
}

// Report is one interval's worth of statistics.
type Report struct {
	Label     string
	FPS       float64
	FrameTime time.Duration
	HeapMB    float64
	AllocRate float64
	GCCount   uint32
}

// NewProfiler creates a new Profiler that reports once per interval.
// A non-positive interval defaults to 1 second.
//
// Parameters:
//   - interval: time between reports
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		now:            time.Now,
	}
}

// Tick should be called once per rendered frame with the time the frame's work took and a
// label for the frame, normally the active technique. Logs and returns a report when the
// update interval has elapsed.
//
// Parameters:
//   - label: what rendered the frame
//   - frameTime: CPU-side duration of the frame
//
// Returns:
//   - *Report: the report, or nil if the interval has not elapsed
func (p *Profiler) Tick(label string, frameTime time.Duration) *Report {
	p.frameCount++
	p.frameTime += frameTime
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return nil
	}

	runtime.ReadMemStats(&p.memStats)
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r := &Report{
		Label:     label,
		FPS:       float64(p.frameCount) / elapsed.Seconds(),
		FrameTime: p.frameTime / time.Duration(p.frameCount),
		HeapMB:    float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRate: float64(allocDelta) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:   p.memStats.NumGC - p.lastGCCount,
	}
	log.Infof("%s | FPS: %.2f | frame: %s | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d",
		r.Label, r.FPS, r.FrameTime.Round(time.Microsecond), r.HeapMB, r.AllocRate, r.GCCount)

	p.frameCount = 0
	p.frameTime = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r
}
