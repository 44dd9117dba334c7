package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/flightbook/internal/shell"
)

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	*RootOptions
	Prompt string
}

// NewShellCommand creates the interactive shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive booking session",
		Long: `Start an interactive session reading one command per line.

Commands:
  create <username> <password> <initial amount>
  login <username> <password>
  search <origin city> <destination city> <direct> <day> <num itineraries>
  book <itinerary id>
  pay <reservation id>
  reservations
  cancel <reservation id>
  quit

Quote city names that contain spaces: search "Seattle WA" "Boston MA" 1 10 3

Example:
  flightbook shell --db ./flightbook.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Prompt, "prompt", "> ", "prompt printed before each command")

	return cmd
}

func runShell(opts *ShellOptions, cmd *cobra.Command) error {
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.logger.Error("error closing database", "error", closeErr)
		}
	}()

	session := a.service.NewSession()
	a.logger.Debug("session started", "session", session.ID())

	in := shell.New(session, a.logger)
	if err := in.Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), opts.Prompt); err != nil && ctx.Err() == nil {
		return WrapExitError(ExitFailure, "shell error", err)
	}
	a.logger.Debug("session ended", "session", session.ID())
	return nil
}
