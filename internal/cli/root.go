package cli

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Database   string // overrides the configured DSN
	Driver     string // overrides the configured driver
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the flightbook CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flightbook",
		Short: "flightbook - flight reservations over a shared database",
		Long: `A flight reservation engine. Any number of flightbook processes may
share one database; every command runs as a serializable transaction.

Configuration is read from --config (YAML), then FLIGHTBOOK_* environment
variables, then --db/--driver.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database DSN (sqlite path or postgres URL)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite|postgres)")

	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewLoadFlightsCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// Execute runs the CLI with args and returns the process exit code. Errors
// are reported on stderr, or on stdout as a JSON envelope under
// --format json.
func Execute(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	code := GetExitCode(err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Quiet {
		return code
	}
	format, _ := cmd.PersistentFlags().GetString("format")
	if format == "json" {
		f := &OutputFormatter{Format: format, Writer: stdout}
		_ = f.Error(errorCode(code), err.Error())
	} else {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return code
}
