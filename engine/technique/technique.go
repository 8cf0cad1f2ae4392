// Package technique holds the runtime-selectable soft-shadow algorithm and its tunables.
package technique

import (
	"fmt"
	"strings"
)

// Technique identifies one of the supported soft-shadow algorithms.
type Technique int

const (
	// MonteCarlo averages hard shadows from many point samples on the area light.
	MonteCarlo Technique = iota
	// PCSS is percentage-closer soft shadows over the raw depth map.
	PCSS
	// SAVSM is summed-area variance shadow mapping.
	SAVSM
	// VSSM is variance soft shadow mapping with a hierarchical min/max pyramid.
	VSSM
	// ESSM is exponential soft shadow mapping.
	ESSM
	// MSSM is moment soft shadow mapping with four power moments.
	MSSM

	techniqueCount
)

var techniqueNames = [...]string{
	MonteCarlo: "montecarlo",
	PCSS:       "pcss",
	SAVSM:      "savsm",
	VSSM:       "vssm",
	ESSM:       "essm",
	MSSM:       "mssm",
}

// All returns every technique in selection-key order.
func All() []Technique {
	out := make([]Technique, 0, techniqueCount)
	for t := MonteCarlo; t < techniqueCount; t++ {
		out = append(out, t)
	}
	return out
}

func (t Technique) String() string {
	if !t.Valid() {
		return fmt.Sprintf("technique(%d)", int(t))
	}
	return techniqueNames[t]
}

// Valid reports whether t names a known technique.
func (t Technique) Valid() bool {
	return t >= MonteCarlo && t < techniqueCount
}

// Parse resolves a case-insensitive technique name.
//
// Parameters:
//   - name: technique name such as "pcss" or "MSSM"
//
// Returns:
//   - Technique: the parsed technique
//   - error: error if the name is unknown
func Parse(name string) (Technique, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for t, s := range techniqueNames {
		if s == n {
			return Technique(t), nil
		}
	}
	return 0, fmt.Errorf("unknown shadow technique %q", name)
}

// MarshalText implements encoding.TextMarshaler so techniques read naturally in settings files.
func (t Technique) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid shadow technique %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Technique) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// CapturesMoments reports whether the light pass writes power moments.
func (t Technique) CapturesMoments() bool {
	return t == SAVSM || t == VSSM || t == MSSM
}

// CapturesExponential reports whether the light pass writes exponential depth.
func (t Technique) CapturesExponential() bool {
	return t == ESSM
}

// Filtered reports whether the technique reads a pre-filterable map (SAT or mip filtered color).
func (t Technique) Filtered() bool {
	return t == SAVSM || t == VSSM || t == ESSM || t == MSSM
}

// UsesPyramid reports whether the technique needs the hierarchical min/max pyramid.
func (t Technique) UsesPyramid() bool {
	return t == VSSM
}
