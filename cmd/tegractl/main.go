// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command tegractl exercises the tegra context layer on the noop backend.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/tegra"
	"github.com/urfave/cli"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "tegractl:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	// -v is the verbosity flag.
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "tegractl"
	app.Usage = "drive tegra contexts on a noop GPU device"
	app.Version = tegra.Version
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		setupLogging(ctx)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:  "flush",
			Usage: "push commands into a context and flush them",
			Description: `
Create a screen and a context on the noop backend, push words into one engine
channel, flush both engines and wait for the returned fence.

Use --fail-2d to make the 2D stream flush fail and observe that the 3D engine
is still flushed and a fence is still returned.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "capacity",
					Value: tegra.DefaultStreamCapacity,
					Usage: "stream capacity in bytes",
				},
				cli.IntFlag{
					Name:  "words",
					Value: 25,
					Usage: "number of 32-bit words to push",
				},
				cli.StringFlag{
					Name:  "engine, e",
					Value: "2d",
					Usage: "engine receiving the words (2d or 3d)",
				},
				cli.IntFlag{
					Name:  "frames, n",
					Value: 1,
					Usage: "number of push/flush rounds",
				},
				cli.BoolFlag{
					Name:  "fail-2d",
					Usage: "inject a 2D stream flush failure",
				},
			},
			Action: flushCommand,
		},
		{
			Name:   "engines",
			Usage:  "list engines and their host1x classes",
			Action: listEngines,
		},
	}
	return app
}
