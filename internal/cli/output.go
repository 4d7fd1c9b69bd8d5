package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Process exit statuses.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the analysis itself failed
	ExitCommandError = 2 // the invocation was wrong
)

// ExitError carries the exit status a failed command should end with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError without a cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError caused by err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode maps err to a process exit status. Errors that are not an
// ExitError count as ExitFailure.
func ExitCode(err error) int {
	var ee *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &ee):
		return ee.Code
	default:
		return ExitFailure
	}
}

// Envelope wraps every JSON document the CLI prints.
type Envelope struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  *Problem    `json:"error,omitempty"`
}

// Problem describes a failed command in JSON output.
type Problem struct {
	Kind    string `json:"kind"` // "failure" or "usage"
	Message string `json:"message"`
	Cause   string `json:"cause,omitempty"`
}

// textWriter is implemented by results with a terminal rendering.
type textWriter interface {
	WriteText(w io.Writer) error
}

// Printer renders command results and failures as text or JSON.
// Results go to Out. Text mode failures go to Diag.
type Printer struct {
	JSON bool
	Out  io.Writer
	Diag io.Writer
}

// Result prints v. In text mode a textWriter renders itself and anything
// else is printed with fmt.
func (p *Printer) Result(v interface{}) error {
	if p.JSON {
		return p.encode(Envelope{Status: "ok", Data: v})
	}
	if tw, ok := v.(textWriter); ok {
		return tw.WriteText(p.Out)
	}
	_, err := fmt.Fprintln(p.Out, v)
	return err
}

// Failure reports err and returns the exit status for it.
func (p *Printer) Failure(err error) int {
	code := ExitCode(err)
	problem := &Problem{Kind: "failure", Message: err.Error()}
	if code == ExitCommandError {
		problem.Kind = "usage"
	}
	var ee *ExitError
	if errors.As(err, &ee) && ee.Err != nil {
		problem.Message = ee.Message
		problem.Cause = ee.Err.Error()
	}

	if p.JSON {
		_ = p.encode(Envelope{Status: "error", Error: problem})
		return code
	}

	diag := p.Diag
	if diag == nil {
		diag = p.Out
	}
	fmt.Fprintf(diag, "Error: %v\n", err)
	return code
}

func (p *Printer) encode(e Envelope) error {
	enc := json.NewEncoder(p.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
