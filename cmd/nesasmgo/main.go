// Package main implements the nesasmgo CLI: assemble ca65-subset source
// (plus an optional CHR/data source) and link it into an iNES ROM.
// Grounded in the teacher's root main.go - version banner via
// retrogolib/buildinfo, a debug/quiet-aware logger, flag parsing via a
// dedicated cli package, one build call per invocation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/nesasmgo/internal/build"
	"github.com/retroenv/nesasmgo/internal/buildlog"
	"github.com/retroenv/nesasmgo/internal/cli"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	cfg, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(os.Stderr, usageErr.Error())
			usageErr.ShowUsage()
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}

	logger := buildlog.New(cfg.Debug, cfg.Quiet)
	printBanner(logger, cfg.Quiet)

	if _, err := build.Run(context.Background(), cfg, nil, logger); err != nil {
		logger.Fatal(err.Error())
	}
}

func printBanner(logger *buildlog.Logger, quiet bool) {
	if quiet {
		return
	}
	logger.Info("Build info", log.String("version", buildinfo.Version(version, commit, date)))
}
