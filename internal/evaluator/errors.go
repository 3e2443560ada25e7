package evaluator

import "fmt"

// RemoteCallError reports a failed LLM call, including client construction
// and transport timeouts.
type RemoteCallError struct {
	Evaluator string
	DataID    string
	Cause     error
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call failed for evaluator %s on %q: %v", e.Evaluator, e.DataID, e.Cause)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Cause
}

// ResponseParseError reports an LLM response that could not be parsed into a verdict
type ResponseParseError struct {
	Evaluator string
	DataID    string
	Raw       string
	Cause     error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("failed to parse response of evaluator %s on %q: %v (content: %s)", e.Evaluator, e.DataID, e.Cause, e.Raw)
}

func (e *ResponseParseError) Unwrap() error {
	return e.Cause
}
