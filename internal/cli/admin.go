package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/flightbook/internal/config"
	"github.com/roach88/flightbook/internal/store"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	WriteConfig string
	Force       bool
}

// InitResult is reported by init.
type InitResult struct {
	Driver          string `json:"driver"`
	Flights         int    `json:"flights"`
	NextReservation int64  `json:"next_reservation"`
	Config          string `json:"config,omitempty"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database schema",
		Long: `Create the tables and the reservation id counter if they do not exist.
Running init against an existing database changes nothing. The report shows
the flight count and the id the next booking will receive.

With --write-config, the resolved configuration is also saved as YAML.

Examples:
  flightbook init --db ./flightbook.db
  flightbook init --write-config flightbook.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.WriteConfig, "write-config", "", "save the resolved configuration to this path")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	a, err := openApp(ctx, opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.store.FlightCount(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read flights", err)
	}

	var next int64
	err = a.store.InTx(ctx, store.TxOptions{ReadOnly: true}, func(tx *store.Tx) error {
		var err error
		next, err = tx.PeekReservationID(ctx)
		return err
	})
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read reservation counter", err)
	}

	if opts.WriteConfig != "" {
		if err := config.Write(opts.WriteConfig, a.cfg, opts.Force); err != nil {
			if errors.Is(err, os.ErrExist) {
				return WrapExitError(ExitCommandError, "config file exists (use --force)", err)
			}
			return WrapExitError(ExitCommandError, "failed to write config", err)
		}
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return f.Success(InitResult{Driver: a.store.Driver(), Flights: n, NextReservation: next, Config: opts.WriteConfig})
	}
	msg := fmt.Sprintf("Database ready (%s, %d flights, next reservation %d)", a.store.Driver(), n, next)
	if opts.WriteConfig != "" {
		msg += fmt.Sprintf("\nWrote %s", opts.WriteConfig)
	}
	return f.Success(msg)
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all users and reservations",
		Long: `Delete every user and reservation and restart reservation ids at 1.
Flights are kept.

Example:
  flightbook clear --db ./flightbook.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Clear(ctx); err != nil {
				return WrapExitError(ExitFailure, "failed to clear tables", err)
			}
			a.logger.Info("tables cleared")

			f := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
			return f.Success("Cleared users and reservations")
		},
	}
}
