package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Render formats a transcript the way an operator would see it, with each
// command prefixed by its session name.
func Render(scenarioName string, transcript []StepResult) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# scenario: %s\n", scenarioName)
	for _, step := range transcript {
		fmt.Fprintf(&sb, "%s> %s\n", step.Session, step.Command)
		sb.WriteString(step.Output)
	}
	return []byte(sb.String())
}

// RunWithGolden executes a scenario, fails the test on any expectation or
// assertion failure, and compares the transcript against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	AssertGolden(t, scenario.Name, result)
	return nil
}

// AssertGolden compares an existing result's transcript against its golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, Render(scenarioName, result.Transcript))
}
