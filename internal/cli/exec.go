package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/flightbook/internal/shell"
)

// ExecStep is one command of a script with the text it printed.
type ExecStep struct {
	Command string `json:"command"`
	Output  string `json:"output"`
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <script|->",
		Short: "Run a command script as one session",
		Long: `Run every line of a script file (or stdin with "-") as one session,
exactly as if typed into the shell. Blank lines and lines starting with #
are skipped. Execution stops at quit.

Examples:
  flightbook exec booking.txt
  flightbook exec - --format json < booking.txt`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(rootOpts, args[0], cmd)
		},
	}
}

func runExec(opts *RootOptions, path string, cmd *cobra.Command) error {
	lines, err := readScript(path, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	in := shell.New(a.service.NewSession(), a.logger)
	steps := make([]ExecStep, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		output, quit := in.Execute(ctx, line)
		steps = append(steps, ExecStep{Command: line, Output: output})
		if opts.Format != "json" {
			if _, err := io.WriteString(cmd.OutOrStdout(), output); err != nil {
				return err
			}
		}
		if quit {
			break
		}
	}

	if opts.Format == "json" {
		f := &OutputFormatter{Format: "json", Writer: cmd.OutOrStdout()}
		return f.Success(steps)
	}
	return nil
}

// readScript returns the non-blank, non-comment lines of path ("-" reads r).
func readScript(path string, r io.Reader) ([]string, error) {
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
