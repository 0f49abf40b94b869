// Package cli implements the workbench command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/lifecycle"
	"github.com/GriffinCanCode/AgentOS/workbench/internal/domain/registry"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "dev"

// Execute runs the root command with ctx. Logs and metrics are flushed
// whether or not the command succeeds.
func Execute(ctx context.Context) error {
	root, a := newRootCmd()
	return execute(ctx, root, a)
}

func execute(ctx context.Context, root *cobra.Command, a *app) error {
	err := reported(root.ExecuteContext(ctx))
	if cerr := a.close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}

// newRootCmd builds the command tree. Components are wired after flag
// parsing, so every subcommand reads them from the shared app.
func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "workbench",
		Short:         "Manage apps, notebooks and their agent sessions",
		Long:          "workbench drives the session lifecycle of apps and notebooks on the platform API: list, create, stop, resume, delete and save sessions, manage the resources they belong to, and sync workspace files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.flags.configPath, "config", "", "TOML config file; environment variables are used when empty")
	flags.StringVar(&a.flags.apiURL, "api-url", "", "platform API base URL (overrides config)")
	flags.StringVar(&a.flags.token, "token", "", "bearer token (overrides config)")
	flags.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&a.flags.json, "json", false, "print results as JSON")
	flags.StringVar(&a.flags.metricsOut, "metrics-out", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		newVersionCmd(),
		newAppsCmd(a),
		newNotebooksCmd(a),
		newFakeServerCmd(a),
	)

	return rootCmd, a
}

// operationError prints as the message the store recorded and unwraps to
// the operation error
type operationError struct {
	message string
	err     error
}

func (e *operationError) Error() string { return e.message }

func (e *operationError) Unwrap() error { return e.err }

// reported replaces operation errors with their recorded message
func reported(err error) error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs := joined.Unwrap()
		out := make([]error, 0, len(errs))
		for _, e := range errs {
			out = append(out, reported(e))
		}
		return errors.Join(out...)
	}

	var sessionErr *lifecycle.OpError
	if errors.As(err, &sessionErr) && sessionErr.Message != "" {
		return &operationError{message: sessionErr.Message, err: err}
	}
	var registryErr *registry.OpError
	if errors.As(err, &registryErr) && registryErr.Message != "" {
		return &operationError{message: registryErr.Message, err: err}
	}
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "workbench %s (%s)\n", Version, runtime.Version())
			return err
		},
	}
}
