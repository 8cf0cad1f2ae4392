package main

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-shadows/engine/shadow"
	"github.com/Carmen-Shannon/oxy-shadows/engine/technique"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// ListTechniques prints every technique with its key and the structures it renders with.
func ListTechniques(ctx *cli.Context) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Key", "Technique", "Flow", "Capture", "Filtered", "Pyramid"})
	for i, t := range technique.All() {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			t.String(),
			shadow.FlowFor(t).String(),
			shadow.CaptureProgram(t),
			fmt.Sprintf("%t", t.Filtered()),
			fmt.Sprintf("%t", t.UsesPyramid()),
		})
	}
	table.Render()
	return nil
}

// PrintSettings writes the effective settings, file plus flags, as TOML.
func PrintSettings(ctx *cli.Context) error {
	s, err := loadSettings(ctx)
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	return s.Encode(os.Stdout)
}
