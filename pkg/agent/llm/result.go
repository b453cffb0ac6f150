package llm

// Result is a completed model call after decoding. Failures are
// carried in Err rather than a separate return so that callers always
// receive whatever partial fields exist alongside the error.
type Result struct {
	Content    string
	ToolCalls  []ToolCall
	StopReason string
	Err        error
}

// Success reports whether the call produced a usable response.
func (r Result) Success() bool {
	return r.Err == nil
}
