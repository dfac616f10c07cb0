package harness

// TraceEvent records one executed step.
type TraceEvent struct {
	Op   string `json:"op"`
	Clip string `json:"clip,omitempty"`

	// Result is the step output in plain-map form; nil when the step failed.
	Result map[string]any `json:"result,omitempty"`

	// Error is the engine error code when the step failed.
	Error string `json:"error,omitempty"`

	Seq int64 `json:"seq"`
}

// AsMap returns the event in the shape written to golden files.
func (e TraceEvent) AsMap() map[string]any {
	m := map[string]any{
		"op":  e.Op,
		"seq": e.Seq,
	}
	if e.Clip != "" {
		m["clip"] = e.Clip
	}
	if e.Result != nil {
		m["result"] = e.Result
	}
	if e.Error != "" {
		m["error"] = e.Error
	}
	return m
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Trace contains every executed step in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Sessions lists the ledger sessions opened by collect steps.
	Sessions []string `json:"sessions,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an executed step to the trace.
func (r *Result) AddTrace(event TraceEvent) {
	r.Trace = append(r.Trace, event)
}
