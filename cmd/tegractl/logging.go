// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"log/slog"
	"os"

	"github.com/gogpu/tegra"
	"github.com/urfave/cli"
)

// setupLogging maps -v to info and -vv to debug output on stderr.
func setupLogging(ctx *cli.Context) {
	var level slog.Level
	switch {
	case ctx.GlobalBool("vv"):
		level = slog.LevelDebug
	case ctx.GlobalBool("v"):
		level = slog.LevelInfo
	default:
		return
	}
	tegra.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
