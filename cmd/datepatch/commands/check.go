package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/datepatch/cmd/datepatch/opts"
	"github.com/walteh/datepatch/pkg/log"
	"github.com/walteh/datepatch/pkg/patch"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show what the patch would change without writing",
		Long: `Check runs every rule against the configured files in memory.
It will:
1. Load each target
2. Apply the rules in order
3. Print a table of rule matches and a diff per file
Nothing is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "check").Logger().WithContext(ctx)

			logger := log.FromContext(ctx)
			logger.Header("checking " + o.Config.String())

			runner := patch.NewRunner(patch.RunnerOptions{
				Logger:    logger,
				Files:     o.Files,
				Formatter: o.Formatter,
				Async:     o.Config.Async,
				DryRun:    true,
			})

			reports, err := runner.Run(ctx, o.Config.Targets)
			if err != nil {
				return errors.Errorf("checking patch: %w", err)
			}

			for _, report := range reports {
				logger.LogNewline()
				logger.Infof("%s sha256 %s → %s", report.Path, shortSum(report.ChecksumBefore), shortSum(report.ChecksumAfter))
				table, err := o.Formatter.FormatRuleTable(report.Rules)
				if err != nil {
					return errors.Errorf("rendering rule table: %w", err)
				}
				logger.Detail(table)
				if diff := o.Formatter.FormatDiff(report.Path, report.Before, report.After); diff != "" {
					logger.Detail(diff)
				}
			}

			return nil
		},
	}

	return cmd
}

// shortSum trims a hex checksum for display
func shortSum(sum string) string {
	if len(sum) > 12 {
		return sum[:12]
	}
	return sum
}
