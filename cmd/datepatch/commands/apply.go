package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/datepatch/cmd/datepatch/opts"
	"github.com/walteh/datepatch/pkg/config"
	"github.com/walteh/datepatch/pkg/log"
	"github.com/walteh/datepatch/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// ApplyOptions are the write-mode flags of the root command
type ApplyOptions struct {
	Atomic bool
	Backup bool
	DryRun bool
}

// AddApplyFlags registers the apply flags on cmd
func AddApplyFlags(cmd *cobra.Command, ao *ApplyOptions) {
	cmd.Flags().BoolVar(&ao.Atomic, "atomic", false, "write through a temp file and rename instead of truncating in place")
	cmd.Flags().BoolVar(&ao.Backup, "backup", false, "keep a .bak copy of each file before writing")
	cmd.Flags().BoolVar(&ao.DryRun, "dry-run", false, "apply rules in memory without writing")
}

// Apply patches every configured target
func Apply(ctx context.Context, o *opts.RootOpts, ao ApplyOptions) error {
	ctx = zerolog.Ctx(ctx).With().Str("command", "apply").Logger().WithContext(ctx)

	targets := withWriteMode(o.Config.Targets, ao)

	logger := log.FromContext(ctx)
	logger.Header("patching " + o.Config.String())

	runner := patch.NewRunner(patch.RunnerOptions{
		Logger:    logger,
		Files:     o.Files,
		Formatter: o.Formatter,
		Async:     o.Config.Async,
		DryRun:    ao.DryRun,
	})

	if _, err := runner.Run(ctx, targets); err != nil {
		return errors.Errorf("applying patch: %w", err)
	}

	return nil
}

// withWriteMode turns on atomic or backup writes for every target when the flag is set
func withWriteMode(targets []config.Target, ao ApplyOptions) []config.Target {
	out := make([]config.Target, len(targets))
	for i, t := range targets {
		t.Atomic = t.Atomic || ao.Atomic
		t.Backup = t.Backup || ao.Backup
		out[i] = t
	}
	return out
}
