// Package main implements the mutuals command, which registers with the
// remote service, computes the pairs of users that follow each other, and
// delivers them to the returned webhook.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/mutuals/internal/config"
	"github.com/phrazzld/mutuals/internal/platform/logger"
	"github.com/phrazzld/mutuals/internal/platform/transport"
	"github.com/phrazzld/mutuals/internal/redact"
	"github.com/phrazzld/mutuals/internal/workflow"
	"github.com/spf13/pflag"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout))
}

// run parses flags, loads configuration and executes the workflow once.
// It returns the process exit code.
func run(ctx context.Context, args []string, out io.Writer) int {
	fs := config.NewFlagSet("mutuals")
	fs.SetOutput(out)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(out, "Failed to load configuration: %v\n", err)
		return exitFailure
	}

	l, err := logger.SetupWithWriter(cfg.Log, out)
	if err != nil {
		fmt.Fprintf(out, "Failed to set up logger: %v\n", err)
		return exitFailure
	}

	l.Info("configuration loaded",
		"registration_url", cfg.Registration.URL,
		"reg_no", cfg.Identity.RegNo,
		"max_attempts", cfg.Delivery.MaxAttempts,
		"backoff", cfg.Delivery.Backoff.String(),
		"duplicate_policy", cfg.Graph.DuplicatePolicy)

	poster := transport.NewClient(cfg.HTTP, l)
	res, err := workflow.New(cfg, poster, l).Run(ctx)
	if err != nil {
		l.Error("workflow failed",
			"run_id", res.RunID.String(),
			"error", redact.Error(err))
		return exitFailure
	}

	l.Info("outcome delivered",
		"run_id", res.RunID.String(),
		"pairs", len(res.Pairs),
		"skipped_records", len(res.Diagnostics),
		"attempts", len(res.Delivery.Attempts))
	return exitOK
}
