package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/flightbook/internal/flight"
)

// FlightFile is the on-disk format read by load-flights.
type FlightFile struct {
	Flights []flight.Flight `yaml:"flights"`
}

// LoadFlightsResult is reported after a successful load.
type LoadFlightsResult struct {
	Loaded int `json:"loaded"`
	Total  int `json:"total"`
}

// NewLoadFlightsCommand creates the load-flights command.
func NewLoadFlightsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load-flights <file.yaml>",
		Short: "Insert or update flights from a YAML file",
		Long: `Insert or update flight rows from a YAML file of the form:

  flights:
    - fid: 1
      day_of_month: 10
      carrier_id: AS
      flight_num: "24"
      origin_city: Seattle WA
      dest_city: Boston MA
      duration: 300
      capacity: 3
      price: 500

Rows with an existing fid are replaced. Cached search results are purged.

Example:
  flightbook load-flights flights.yaml --db ./flightbook.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoadFlights(rootOpts, args[0], cmd)
		},
	}
}

func runLoadFlights(opts *RootOptions, path string, cmd *cobra.Command) error {
	flights, err := readFlightFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read flights", err)
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.LoadFlights(ctx, flights); err != nil {
		return WrapExitError(ExitFailure, "failed to load flights", err)
	}
	a.purgeCache(ctx)

	total, err := a.store.FlightCount(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to count flights", err)
	}
	a.logger.Info("flights loaded", "file", path, "loaded", len(flights), "total", total)

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return f.Success(LoadFlightsResult{Loaded: len(flights), Total: total})
	}
	return f.Success(fmt.Sprintf("Loaded %d flights (%d total)", len(flights), total))
}

// readFlightFile decodes a flight file, rejecting unknown keys.
func readFlightFile(path string) ([]flight.Flight, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file FlightFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Flights) == 0 {
		return nil, fmt.Errorf("%s: no flights", path)
	}
	return file.Flights, nil
}
