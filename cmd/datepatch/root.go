package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/datepatch/cmd/datepatch/commands"
	"github.com/walteh/datepatch/cmd/datepatch/opts"
	"github.com/walteh/datepatch/pkg/config"
	"github.com/walteh/datepatch/pkg/log"
	"github.com/walteh/datepatch/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// rootFlags are shared by all commands
type rootFlags struct {
	configFile string
	dir        string
	debug      bool
}

// newRootCmd builds the command tree. Console output goes to console,
// structured logs to logs.
func newRootCmd(console, logs io.Writer) *cobra.Command {
	flags := &rootFlags{}
	applyOpts := &commands.ApplyOptions{}
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "datepatch",
		Short: "Rewrite table date formatting in the web app",
		Long: `datepatch applies an ordered set of text substitutions to source files.

Without a config file it applies the built-in date patch to
` + config.DefaultTargetPath + `:
it renders dates with formatDateForDisplay and the column's dateConfig.format
(default ` + config.DefaultDateFormat + `) and drops the local formatDateForInput helper.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd, logs, flags.debug)
			if err := newRootOpts(ctx, rootOpts, flags); err != nil {
				return err
			}
			logger := log.NewWithZerolog(console, *zerolog.Ctx(ctx))
			cmd.SetContext(log.NewContext(ctx, logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.Apply(cmd.Context(), rootOpts, *applyOpts)
		},
	}

	addRootFlags(cmd, flags)
	commands.AddApplyFlags(cmd, applyOpts)

	cmd.AddCommand(
		commands.NewCheckCmd(rootOpts),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (.yaml, .json or .hcl); the built-in date patch is used when empty")
	cmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "directory that target paths are relative to")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags and returns a context carrying it
func setupLogging(cmd *cobra.Command, logs io.Writer, debug bool) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: logs}).With().Timestamp().Logger().Level(level)
	return logger.WithContext(cmd.Context())
}

// newRootOpts fills rootOpts with the config and file manager
func newRootOpts(ctx context.Context, rootOpts *opts.RootOpts, flags *rootFlags) error {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(ctx, flags.configFile)
		if err != nil {
			return errors.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	rootOpts.Config = cfg
	rootOpts.Files = status.New(flags.dir)
	rootOpts.Formatter = status.NewDefaultFormatter()

	return nil
}
