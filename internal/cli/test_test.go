package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: signup
description: "Create a user and log in"
flights:
  - {fid: 1, day_of_month: 3, carrier_id: UA, flight_num: "9", origin_city: "Denver CO", dest_city: "Austin TX", duration: 120, capacity: 5, price: 90}
steps:
  - command: create erin pw 100
    expect: "Created user erin"
  - command: login erin pw
    expect: "Logged in as erin"
assertions:
  - {type: balance, user: erin, value: 100}
`

const failingScenario = `name: wrong_balance
description: "Asserts a balance the user never had"
steps:
  - command: create frank pw 100
assertions:
  - {type: balance, user: frank, value: 5}
`

const signupGolden = `# scenario: signup
default> create erin pw 100
Created user erin
default> login erin pw
Logged in as erin
`

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestTestCommand_MissingArgs(t *testing.T) {
	_, stderr, code := run(t, "test")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "requires at least 1 arg")
}

func TestTestCommand_MissingPath(t *testing.T) {
	_, stderr, code := run(t, "test", "/nonexistent/scenarios")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "scenario path not found: /nonexistent/scenarios")
}

func TestTestCommand_EmptyDir(t *testing.T) {
	stdout, _, code := run(t, "test", t.TempDir())
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "No scenarios found.\n", stdout)
}

func TestTestCommand_Pass(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "signup", passingScenario)

	stdout, stderr, code := run(t, "test", dir)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "✓ signup\n")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 0 failed, 1 total")
	assert.Contains(t, stdout, "✓ All scenarios passed")
}

func TestTestCommand_Failure(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "signup", passingScenario)
	writeScenario(t, dir, "wrong_balance", failingScenario)

	stdout, stderr, code := run(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stderr, "failures are reported on stdout only")
	assert.Contains(t, stdout, "✗ wrong_balance")
	assert.Contains(t, stdout, "balance of frank")
	assert.Contains(t, stdout, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_UpdateWritesGolden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "signup", passingScenario)

	stdout, stderr, code := run(t, "test", dir, "--update")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "✓ signup (golden updated)")

	got, err := os.ReadFile(filepath.Join(dir, "golden", "signup.golden"))
	require.NoError(t, err)
	assert.Equal(t, signupGolden, string(got))

	// The golden directory itself is not scanned for scenarios.
	stdout, stderr, code = run(t, "test", dir)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "1 total")
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	goldenDir := filepath.Join(t.TempDir(), "transcripts")
	writeScenario(t, dir, "signup", passingScenario)
	require.NoError(t, os.MkdirAll(goldenDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "signup.golden"), []byte("# scenario: signup\n"), 0644))

	stdout, _, code := run(t, "test", dir, "--golden-dir", goldenDir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "transcript does not match golden file (run with --update to regenerate)")

	_, stderr, code := run(t, "test", dir, "--golden-dir", goldenDir, "--update")
	require.Equal(t, ExitSuccess, code, stderr)
	stdout, stderr, code = run(t, "test", dir, "--golden-dir", goldenDir)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "✓ signup\n")
}

func TestTestCommand_Filter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "signup", passingScenario)
	writeScenario(t, dir, "wrong_balance", failingScenario)

	stdout, stderr, code := run(t, "test", dir, "--filter", "sign*")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "1 passed, 0 failed, 1 total")
	assert.NotContains(t, stdout, "wrong_balance")

	_, stderr, code = run(t, "test", dir, "--filter", "[")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid filter pattern")
}

func TestTestCommand_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken", "name: broken\nsteps: []\n")

	stdout, _, code := run(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTestCommand_JSON(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "signup", passingScenario)
	writeScenario(t, dir, "wrong_balance", failingScenario)

	stdout, stderr, code := run(t, "test", dir, "--format", "json")
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stderr)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), "stdout holds exactly one JSON document")
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_TEST_FAILED", resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "signup", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.False(t, resp.Data.Scenarios[1].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[1].Errors)
}

func TestFindScenarioFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeScenario(t, dir, "signup", passingScenario)

	files, err := findScenarioFiles(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "a.golden"),
		goldenFilePath("", filepath.Join("scenarios", "a.yaml"), "a"))
	assert.Equal(t, filepath.Join("out", "a.golden"),
		goldenFilePath("out", filepath.Join("scenarios", "a.yaml"), "a"))
}
