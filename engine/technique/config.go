package technique

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
)

// Default tunables.
const (
	DefaultTechnique          = MSSM
	DefaultShadowIntensity    = float32(0.25)
	DefaultKernelSize         = 15
	DefaultBlockerSearchSize  = 7
	DefaultLightSourceRadius  = float32(16)
	DefaultAccumulationFactor = float32(1.0 / 64.0)

	// MinKernelSize is the smallest filter width in shadow-map texels.
	MinKernelSize = 1
	// MinBlockerSearchSize is the smallest blocker search width in shadow-map texels.
	MinBlockerSearchSize = 1
)

// Snapshot is an immutable copy of the configuration taken once at frame start.
type Snapshot struct {
	Technique          Technique
	UseSAT             bool
	ShadowIntensity    float32
	KernelSize         int
	BlockerSearchSize  int
	LightSourceRadius  float32
	AccumulationFactor float32
	VisibilityOnly     bool
}

// BuildsSAT reports whether the frame filters through the summed-area table. The flag only
// applies to the filtered techniques; PCSS and Monte-Carlo ignore it.
func (s Snapshot) BuildsSAT() bool {
	return s.UseSAT && s.Technique.Filtered()
}

// Config is the mutable algorithm configuration. Exactly one technique is selected at any
// time; the summed-area table flag is orthogonal to the selection.
type Config interface {
	// Select clears every technique flag and then sets only t. Selecting PCSS also
	// disables the summed-area table since PCSS reads the raw depth map.
	//
	// Parameters:
	//   - t: the technique to activate
	//
	// Returns:
	//   - error: error if t is not a known technique
	Select(t Technique) error

	// Selected returns the active technique.
	Selected() Technique

	// IsSelected reports the flag for t; only one flag is ever true.
	IsSelected(t Technique) bool

	// ToggleSAT flips the summed-area table flag and returns the new value.
	ToggleSAT() bool

	// UseSAT returns the summed-area table flag.
	UseSAT() bool

	// AdjustShadowIntensity adds delta to the shadow intensity, clamped to [0, 1].
	AdjustShadowIntensity(delta float32) float32

	// AdjustKernelSize adds delta to the filter kernel width, clamped to MinKernelSize.
	AdjustKernelSize(delta int) int

	// AdjustBlockerSearchSize adds delta to the blocker search width, clamped to MinBlockerSearchSize.
	AdjustBlockerSearchSize(delta int) int

	// SetLightSourceRadius replaces the area light radius used by penumbra estimation.
	SetLightSourceRadius(radius float32)

	// ToggleVisibilityOnly switches the composite output between shaded color and raw shadow factor.
	ToggleVisibilityOnly() bool

	// Snapshot returns an immutable copy of the current values.
	Snapshot() Snapshot
}

type config struct {
	mu sync.RWMutex

	flags  [techniqueCount]bool
	useSAT bool

	shadowIntensity    float32
	kernelSize         int
	blockerSearchSize  int
	lightSourceRadius  float32
	accumulationFactor float32
	visibilityOnly     bool
}

var _ Config = &config{}

// NewConfig creates a Config with the default tunables, then applies options.
//
// Parameters:
//   - options: functional options overriding defaults
//
// Returns:
//   - Config: the configured instance
func NewConfig(options ...ConfigBuilderOption) Config {
	c := &config{
		shadowIntensity:    DefaultShadowIntensity,
		kernelSize:         DefaultKernelSize,
		blockerSearchSize:  DefaultBlockerSearchSize,
		lightSourceRadius:  DefaultLightSourceRadius,
		accumulationFactor: DefaultAccumulationFactor,
	}
	c.flags[DefaultTechnique] = true

	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *config) Select(t Technique) error {
	if !t.Valid() {
		return fmt.Errorf("cannot select %v: unknown technique", t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectLocked(t)
	return nil
}

func (c *config) selectLocked(t Technique) {
	for i := range c.flags {
		c.flags[i] = false
	}
	c.flags[t] = true
	if t == PCSS {
		c.useSAT = false
	}
}

func (c *config) Selected() Technique {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedLocked()
}

func (c *config) selectedLocked() Technique {
	for i, on := range c.flags {
		if on {
			return Technique(i)
		}
	}
	return DefaultTechnique
}

func (c *config) IsSelected(t Technique) bool {
	if !t.Valid() {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flags[t]
}

func (c *config) ToggleSAT() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.useSAT = !c.useSAT
	return c.useSAT
}

func (c *config) UseSAT() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.useSAT
}

func (c *config) AdjustShadowIntensity(delta float32) float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shadowIntensity = common.Clamp(c.shadowIntensity+delta, 0, 1)
	return c.shadowIntensity
}

func (c *config) AdjustKernelSize(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kernelSize = max(c.kernelSize+delta, MinKernelSize)
	return c.kernelSize
}

func (c *config) AdjustBlockerSearchSize(delta int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blockerSearchSize = max(c.blockerSearchSize+delta, MinBlockerSearchSize)
	return c.blockerSearchSize
}

func (c *config) SetLightSourceRadius(radius float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lightSourceRadius = max(radius, 0)
}

func (c *config) ToggleVisibilityOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visibilityOnly = !c.visibilityOnly
	return c.visibilityOnly
}

func (c *config) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Technique:          c.selectedLocked(),
		UseSAT:             c.useSAT,
		ShadowIntensity:    c.shadowIntensity,
		KernelSize:         c.kernelSize,
		BlockerSearchSize:  c.blockerSearchSize,
		LightSourceRadius:  c.lightSourceRadius,
		AccumulationFactor: c.accumulationFactor,
		VisibilityOnly:     c.visibilityOnly,
	}
}
