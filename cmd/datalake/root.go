package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	exitOK      = 0
	exitFailure = 1
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	envFile   string
	logFormat string
}

// errRunFailed is returned by commands whose workflow report already logged the failure.
var errRunFailed = errors.New("run failed")

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "datalake",
		Short: "Provision, query and tear down the NBA analytics data lake",
		Long: `datalake creates an S3 bucket, ingests the NBA player feed as JSON lines,
registers a Glue table over it and runs an Athena aggregate query.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "env file to read configuration from")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "json", "log format (json, console)")

	cmd.AddCommand(
		newProvisionCmd(opts),
		newTeardownCmd(opts),
		newQueryCmd(opts),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return exitFailure
	}
	return exitOK
}

func newLogger(format string) (*zap.Logger, error) {
	switch format {
	case "", "json":
		return zap.NewProduction()
	case "console":
		return zap.NewDevelopment()
	default:
		return nil, fmt.Errorf("unknown log format %q (want json or console)", format)
	}
}
