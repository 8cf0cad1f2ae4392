package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	SetLevel(Warning)
	defer SetLevel(Notice)

	log := New("logger-test")
	log.Info("hidden message")
	log.Warningf("visible %d", 42)

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible 42")
	assert.Contains(t, out, "[logger-test]")
}

func TestParseLevel(t *testing.T) {
	specs := []struct {
		in  string
		exp Level
	}{
		{"debug", Debug},
		{"INFO", Info},
		{" warn ", Warning},
		{"error", Error},
		{"bogus", Notice},
	}
	for _, spec := range specs {
		assert.Equal(t, spec.exp, ParseLevel(spec.in), spec.in)
	}
}
