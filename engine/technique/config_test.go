package technique

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countSelected(c Config) int {
	n := 0
	for _, t := range All() {
		if c.IsSelected(t) {
			n++
		}
	}
	return n
}

func TestSelectIsExclusive(t *testing.T) {
	c := NewConfig()
	require.Equal(t, MSSM, c.Selected())
	require.Equal(t, 1, countSelected(c))

	sequence := []Technique{PCSS, VSSM, MonteCarlo, ESSM, SAVSM, MSSM, PCSS, PCSS}
	for _, tech := range sequence {
		require.NoError(t, c.Select(tech))
		assert.Equal(t, 1, countSelected(c), "after selecting %v", tech)
		assert.True(t, c.IsSelected(tech))
		assert.Equal(t, tech, c.Snapshot().Technique)
	}

	assert.Error(t, c.Select(Technique(42)))
	assert.Equal(t, PCSS, c.Selected())
}

func TestSelectPCSSDisablesSAT(t *testing.T) {
	specs := []struct {
		name      string
		selection Technique
		expSAT    bool
	}{
		{"pcss clears sat", PCSS, false},
		{"savsm keeps sat", SAVSM, true},
		{"vssm keeps sat", VSSM, true},
		{"montecarlo keeps sat", MonteCarlo, true},
	}

	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			c := NewConfig(WithSAT(true))
			require.NoError(t, c.Select(spec.selection))
			assert.Equal(t, spec.expSAT, c.UseSAT())
		})
	}
}

func TestToggleSAT(t *testing.T) {
	c := NewConfig()
	assert.False(t, c.UseSAT())
	assert.True(t, c.ToggleSAT())
	assert.False(t, c.ToggleSAT())
}

func TestTunablesClamp(t *testing.T) {
	c := NewConfig()

	assert.Equal(t, DefaultKernelSize+1, c.AdjustKernelSize(1))
	assert.Equal(t, MinKernelSize, c.AdjustKernelSize(-100))
	assert.Equal(t, MinBlockerSearchSize, c.AdjustBlockerSearchSize(-100))
	assert.Equal(t, DefaultBlockerSearchSize, c.AdjustBlockerSearchSize(DefaultBlockerSearchSize-MinBlockerSearchSize))

	assert.InDelta(t, 0.30, c.AdjustShadowIntensity(0.05), 1e-6)
	assert.InDelta(t, 1.0, c.AdjustShadowIntensity(5), 1e-6)
	assert.InDelta(t, 0.0, c.AdjustShadowIntensity(-5), 1e-6)
}

func TestSnapshotIsIsolated(t *testing.T) {
	c := NewConfig(WithTechnique(VSSM), WithKernelSize(9))
	snap := c.Snapshot()

	require.NoError(t, c.Select(ESSM))
	c.AdjustKernelSize(4)

	assert.Equal(t, VSSM, snap.Technique)
	assert.Equal(t, 9, snap.KernelSize)
	assert.Equal(t, DefaultAccumulationFactor, snap.AccumulationFactor)
}

func TestSnapshotBuildsSAT(t *testing.T) {
	specs := []struct {
		name string
		snap Snapshot
		want bool
	}{
		{"filtered with sat", Snapshot{Technique: SAVSM, UseSAT: true}, true},
		{"filtered without sat", Snapshot{Technique: MSSM}, false},
		{"pcss ignores sat", Snapshot{Technique: PCSS, UseSAT: true}, false},
		{"monte carlo ignores sat", Snapshot{Technique: MonteCarlo, UseSAT: true}, false},
	}
	for _, spec := range specs {
		t.Run(spec.name, func(t *testing.T) {
			assert.Equal(t, spec.want, spec.snap.BuildsSAT())
		})
	}
}

func TestParseTechnique(t *testing.T) {
	for _, tech := range All() {
		parsed, err := Parse(tech.String())
		require.NoError(t, err)
		assert.Equal(t, tech, parsed)
	}

	var tech Technique
	require.NoError(t, tech.UnmarshalText([]byte("VSSM")))
	assert.Equal(t, VSSM, tech)

	_, err := Parse("ray-traced")
	assert.Error(t, err)
}
