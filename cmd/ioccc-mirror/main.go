// Command ioccc-mirror builds a normalized mirror of an IOCCC winners
// checkout: one directory per entry, a descriptor beside its sources, and a
// manifest at the root.
//
// It parses flags, validates configuration and paths, and either reports the
// input layout (--check) or runs the mirror pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/ioccc-mirror/internal/check"
	"github.com/backmassage/ioccc-mirror/internal/config"
	"github.com/backmassage/ioccc-mirror/internal/display"
	"github.com/backmassage/ioccc-mirror/internal/logging"
	"github.com/backmassage/ioccc-mirror/internal/pipeline"
	"github.com/backmassage/ioccc-mirror/internal/planner"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr via fmt.
	cfg := config.DefaultConfig()
	if err := config.Load(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ioccc-mirror: %v\n", err)
		return 1
	}

	code := 0
	cmd := newRootCmd(&cfg, &code)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ioccc-mirror: %v\n", err)
		return 1
	}
	return code
}

// newRootCmd binds every flag to cfg. The command's exit status is stored
// in code; a returned error is a usage or configuration problem.
func newRootCmd(cfg *config.Config, code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ioccc-mirror [flags] <input_dir> <output_dir>",
		Short:         "Normalized mirror of the IOCCC winners tree",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	flags := config.BindFlags(cmd.Flags(), cfg)
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		config.PrintUsage(c.OutOrStdout(), version)
	})

	cmd.RunE = func(c *cobra.Command, args []string) error {
		if flags.ShowVersion() {
			fmt.Fprintf(c.OutOrStdout(), "ioccc-mirror v%s (%s)\n", version, commit)
			return nil
		}
		if err := config.ApplyFlags(cfg, flags, args); err != nil {
			return err
		}
		if err := config.LoadRulesFile(cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		*code = mirror(cfg)
		return nil
	}
	return cmd
}

// mirror runs with a configured logger and returns the exit status.
func mirror(cfg *config.Config) int {
	log, err := logging.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ioccc-mirror: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available; all output goes through log from here on.
	display.PrintBanner(os.Stdout, version)

	// Phase 3: Signal handling. Cancel the context on SIGINT/SIGTERM so the
	// pipeline stops between stages and between written files.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping after the current file…")
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.CheckOnly {
		c, err := pipeline.BuildClassifier(cfg)
		if err != nil {
			log.Error("%v", err)
			return 1
		}
		if !check.RunCheck(ctx, cfg, c.Rules(), os.Stdout, log) {
			return 1
		}
		return 0
	}

	// Resolve and validate paths: input must exist, and a local output must
	// not be inside input (a later run would mirror the mirror).
	if _, err := check.CheckPaths(cfg); err != nil {
		log.Error("%v", err)
		if errors.Is(err, check.ErrOutputInsideIn) {
			log.Error("Choose an output path outside: %s", cfg.InputDir)
		}
		return 1
	}

	log.Info("=== ioccc-mirror v%s (%s) run %s ===", version, commit, log.RunID())
	log.Info("In:  %s", cfg.InputDir)
	switch {
	case cfg.Sink == config.SinkS3:
		log.Info("Out: s3://%s/%s (%s)", cfg.S3.Bucket, cfg.S3.Prefix, cfg.S3.Endpoint)
	default:
		log.Info("Out: %s", cfg.OutputDir)
	}
	if cfg.DryRun {
		log.Warn("DRY RUN: no files will be written")
	}
	if cfg.Rules != nil {
		log.Info("Rules: %s", cfg.RulesFile)
	}
	log.Info("")

	// Phase 4: Run pipeline (scan → filter → classify → plan → write).
	if _, err := pipeline.Run(ctx, cfg, log); err != nil {
		var ce *planner.CollisionError
		if errors.As(err, &ce) {
			log.Error("Two entries map to %s (%s and %s); nothing was written", ce.Path, ce.First, ce.Second)
		}
		log.Error("%v", err)
		return 1
	}
	return 0
}
