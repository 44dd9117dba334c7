package harness

// StepResult records what one step printed.
type StepResult struct {
	Session string `json:"session"`
	Command string `json:"command"`
	Output  string `json:"output"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Transcript holds every executed step in order.
	Transcript []StepResult `json:"transcript"`

	// Errors contains one message per failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Transcript: []StepResult{},
		Errors:     []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a transcript entry.
func (r *Result) AddStep(session, command, output string) {
	r.Transcript = append(r.Transcript, StepResult{
		Session: session,
		Command: command,
		Output:  output,
	})
}
