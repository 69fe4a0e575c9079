// Package main implements the main entry point for the MHFU transmog tool
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/psptransmog/internal/cli"
	"github.com/retroenv/psptransmog/internal/config"
	"github.com/retroenv/psptransmog/internal/cwcheat"
	"github.com/retroenv/psptransmog/internal/options"
	"github.com/retroenv/psptransmog/internal/pipeline"
	"github.com/retroenv/psptransmog/internal/watcher"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			if usageErr.Error() != "" {
				logger.Error(usageErr.Error())
			}
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	printBanner(logger, opts)

	if err := run(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Fatal(err.Error())
	}
}

func run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	p := pipeline.New(logger)

	switch {
	case opts.Generate.Enabled:
		blocks, err := p.Generate(opts)
		if err != nil {
			return err
		}
		return writeBlocks(logger, opts, blocks)

	case opts.Watch:
		return watcher.New(logger, p).Run(ctx, opts)

	default:
		return p.BuildCatalog(ctx, opts)
	}
}

func writeBlocks(logger *log.Logger, opts options.Program, blocks []cwcheat.Block) error {
	switch {
	case opts.Append != "":
		if err := cwcheat.AppendFile(opts.Append, blocks); err != nil {
			return err
		}
		logger.Info("Codes appended", log.String("file", opts.Append))
		return nil

	case opts.Output != "":
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		if err := cwcheat.Write(f, blocks); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing output file: %w", err)
		}
		logger.Info("Codes written", log.String("file", opts.Output))
		return nil

	default:
		fmt.Println(cwcheat.Render(blocks))
		return nil
	}
}

func printBanner(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}
	logger.Info("psptransmog", log.String("version", buildinfo.Version(version, commit, date)))
}
