package main

import (
	"os"

	"github.com/urfave/cli"
)

var settingsFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "technique, t",
		Usage: "soft shadow technique: montecarlo, pcss, savsm, vssm, essm or mssm",
	},
	cli.BoolFlag{
		Name:  "sat",
		Usage: "filter through the summed-area table",
	},
	cli.BoolFlag{
		Name:  "visibility-only",
		Usage: "output the raw shadow factor instead of the shaded scene",
	},
	cli.IntFlag{
		Name:  "width",
		Usage: "frame width (overrides the settings file)",
	},
	cli.IntFlag{
		Name:  "height",
		Usage: "frame height (overrides the settings file)",
	},
	cli.IntFlag{
		Name:  "map-size",
		Usage: "shadow map edge length, a power of two",
	},
	cli.IntFlag{
		Name:  "samples",
		Usage: "area light samples",
	},
	cli.StringFlag{
		Name:  "shader-dir",
		Usage: "directory whose .wgsl files replace the embedded programs",
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "softshadow"
	app.Usage = "render soft shadows with runtime-switchable techniques"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "settings, c",
			Usage: "TOML settings file",
		},
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "run",
			Usage: "open an interactive window",
			Description: `
Keys: 1-6 select a technique, S toggles the summed-area table, T/R select
translation or rotation, L toggles light translation, C toggles camera movement,
I/K/B let Up/Down change the shadow intensity, kernel size and blocker search
size, arrows and PageUp/PageDown move, A toggles the animation, V toggles the
visibility-only output, P prints the current positions and Escape quits.`,
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "backend",
					Usage: "renderer backend: wgpu or cpu",
				},
				cli.BoolFlag{
					Name:  "hot-reload",
					Usage: "rebuild pipelines when files in the shader directory change",
				},
				cli.BoolFlag{
					Name:  "profile",
					Usage: "log frame statistics once per second",
				},
				cli.Float64Flag{
					Name:  "frame-limit",
					Usage: "maximum frames per second, 0 for uncapped",
				},
			}, settingsFlags...),
			Action: RunInteractive,
		},
		{
			Name:        "frame",
			Usage:       "render a single frame without a window",
			Description: `Render one frame with the CPU backend, write it as a PNG and print per-pass draw counts.`,
			Flags: append([]cli.Flag{
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "output image, .png, .bmp or .tiff",
				},
				cli.BoolFlag{
					Name:  "label",
					Usage: "stamp the technique name in the top-left corner",
				},
				cli.IntFlag{
					Name:  "workers",
					Usage: "CPU backend workers, 0 for one per core",
				},
			}, settingsFlags...),
			Action: RenderFrame,
		},
		{
			Name:   "techniques",
			Usage:  "list the available techniques",
			Action: ListTechniques,
		},
		{
			Name:   "settings",
			Usage:  "print the effective settings as TOML",
			Flags:  settingsFlags,
			Action: PrintSettings,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
