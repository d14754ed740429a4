package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/nativefier/internal/config"
	"github.com/oshokin/nativefier/internal/logger"
	"github.com/oshokin/nativefier/internal/progress"
	"github.com/oshokin/nativefier/internal/service/engine"
	"github.com/oshokin/nativefier/internal/service/packager"
	"github.com/oshokin/nativefier/internal/version"
)

var errUnknownLogLevel = errors.New("unknown log level")

var (
	// configPath to an optional YAML file with build options.
	configPath string
	// saveConfigPath receives the resolved options when set.
	saveConfigPath string
	// packagerCommand replaces the electron-packager invocation.
	packagerCommand string
	// logLevel of the global logger.
	logLevel string

	// flagOptions are the build options as given on the command line.
	flagOptions = new(config.Options)

	// rootCmd represents the base command for packaging a web app.
	rootCmd = &cobra.Command{
		Use:          "nativefier [target-url] [out-dir]",
		Short:        "Package a web app into a desktop app",
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			opts, err := resolveOptions(cmd, args)
			if err != nil {
				return err
			}

			if err = configureLogger(opts.Verbose); err != nil {
				return err
			}

			if saveConfigPath != "" {
				if err = config.Save(saveConfigPath, opts); err != nil {
					return err
				}

				logger.InfoKV(ctx, "Build options saved", "path", saveConfigPath)
			}

			return build(ctx, cmd, opts)
		},
	}
)

// Execute runs the nativefier CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to a YAML file with build options; flags override it")
	flags.StringVar(&saveConfigPath, "save-config", "", "write the resolved build options to this YAML file")
	flags.StringVar(&packagerCommand, "packager-command", "", "command used to run electron-packager")
	flags.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")

	bindOptionFlags(flags, flagOptions)
}

// resolveOptions merges the config file, the flags and the positional arguments.
func resolveOptions(cmd *cobra.Command, args []string) (*config.Options, error) {
	opts := flagOptions.Clone()

	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}

		if err = overlayChanged(cmd.Flags(), loaded); err != nil {
			return nil, err
		}

		opts = loaded
	}

	if len(args) > 0 {
		opts.TargetURL = args[0]
	}

	if len(args) > 1 {
		opts.Out = args[1]
	}

	return opts, nil
}

func configureLogger(verbose bool) error {
	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, logLevel)
	}

	if verbose {
		level = zapcore.DebugLevel
	}

	logger.SetLevel(level)

	return nil
}

// build runs the packager and prints the bundle location to stdout.
func build(ctx context.Context, cmd *cobra.Command, opts *config.Options) error {
	runOptions := make([]packager.Option, 0, 2)

	if packagerCommand != "" {
		runOptions = append(runOptions, packager.WithEngine(engine.New(engine.WithCommand(strings.Fields(packagerCommand)...))))
	}

	if !opts.Verbose {
		bar := progress.NewTerminal(len(packager.StageNames()), cmd.ErrOrStderr())
		defer bar.Stop()

		runOptions = append(runOptions, packager.WithReporter(bar))
	}

	result, err := packager.Run(ctx, opts, runOptions...)
	if err != nil {
		return err
	}

	if result == nil {
		logger.Warn(ctx, "App not built: the output directory already exists, use --overwrite to replace it")

		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.AppPath)

	return nil
}
