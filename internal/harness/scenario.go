package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/flightbook/internal/flight"
)

// DefaultSession names the session used by steps that leave Session empty.
const DefaultSession = "default"

// Scenario defines one scripted run against a fresh store.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Flights is loaded into the store before the first step.
	Flights []flight.Flight `yaml:"flights"`

	// Steps are shell commands executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final database state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one command issued by one session.
type Step struct {
	// Session names the issuing session. Sessions are created on first use.
	Session string `yaml:"session,omitempty"`

	// Command is a shell line such as `search "Seattle WA" "Boston MA" 0 10 3`.
	Command string `yaml:"command"`

	// Expect, if set, must equal the trimmed output.
	Expect *string `yaml:"expect,omitempty"`

	// Contains, if set, must appear in the output.
	Contains string `yaml:"contains,omitempty"`
}

// SessionName returns the step's session, defaulting to DefaultSession.
func (s Step) SessionName() string {
	if s.Session == "" {
		return DefaultSession
	}
	return s.Session
}

// Assertion validates final state.
type Assertion struct {
	// Type is one of balance, seats, reservations or paid.
	Type string `yaml:"type"`

	// User is the account checked by balance, reservations and paid.
	User string `yaml:"user,omitempty"`

	// Flight is the fid checked by seats.
	Flight int64 `yaml:"flight,omitempty"`

	// Value is the expected balance, remaining seat count, or number of
	// reservations.
	Value int64 `yaml:"value"`
}

// Assertion type constants.
const (
	AssertBalance      = "balance"
	AssertSeats        = "seats"
	AssertReservations = "reservations"
	AssertPaid         = "paid"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields so "assertion:" vs "assertions:" typos surface.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: scenario name %q already used by %s", filepath.Base(path), s.Name, prev)
		}
		seen[s.Name] = filepath.Base(path)
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	fids := make(map[int64]bool, len(s.Flights))
	for i, f := range s.Flights {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("flights[%d]: %w", i, err)
		}
		if fids[f.ID] {
			return fmt.Errorf("flights[%d]: duplicate fid %d", i, f.ID)
		}
		fids[f.ID] = true
	}

	for i, step := range s.Steps {
		if step.Command == "" {
			return fmt.Errorf("steps[%d]: command is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertBalance, AssertReservations, AssertPaid:
		if a.User == "" {
			return fmt.Errorf("assertions[%d]: user is required for %s", index, a.Type)
		}
	case AssertSeats:
		if a.Flight <= 0 {
			return fmt.Errorf("assertions[%d]: flight is required for seats", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	if a.Value < 0 {
		return fmt.Errorf("assertions[%d]: value must be non-negative", index)
	}
	return nil
}
