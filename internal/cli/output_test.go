package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, b []byte) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(b, &env))
	return env
}

func TestPrinter_JSONResult(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{JSON: true, Out: out}

	require.NoError(t, p.Result(map[string]int{"links": 7}))

	env := decodeEnvelope(t, out.Bytes())
	assert.Equal(t, "ok", env.Status)
	assert.Equal(t, map[string]interface{}{"links": float64(7)}, env.Data)
	assert.Nil(t, env.Error)
}

type textResult struct{ called bool }

func (r *textResult) WriteText(w io.Writer) error {
	r.called = true
	_, err := fmt.Fprint(w, "rendered\n")
	return err
}

func TestPrinter_TextResult(t *testing.T) {
	out := &bytes.Buffer{}
	p := &Printer{Out: out}

	require.NoError(t, p.Result("plain"))
	assert.Equal(t, "plain\n", out.String())

	out.Reset()
	r := &textResult{}
	require.NoError(t, p.Result(r))
	assert.True(t, r.called)
	assert.Equal(t, "rendered\n", out.String())
}

func TestPrinter_Failure(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name      string
		err       error
		wantCode  int
		wantKind  string
		wantMsg   string
		wantCause string
	}{
		{"wrapped failure", WrapExitError(ExitFailure, "failed to write heatmap", cause), ExitFailure, "failure", "failed to write heatmap", "disk full"},
		{"usage", NewExitError(ExitCommandError, "--top must be non-negative"), ExitCommandError, "usage", "--top must be non-negative", ""},
		{"plain error", errors.New("boom"), ExitFailure, "failure", "boom", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			p := &Printer{JSON: true, Out: out, Diag: diag}

			assert.Equal(t, tt.wantCode, p.Failure(tt.err))
			assert.Empty(t, diag.String())

			env := decodeEnvelope(t, out.Bytes())
			assert.Equal(t, "error", env.Status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantKind, env.Error.Kind)
			assert.Equal(t, tt.wantMsg, env.Error.Message)
			assert.Equal(t, tt.wantCause, env.Error.Cause)
		})
	}
}

func TestPrinter_TextFailure(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	p := &Printer{Out: out, Diag: diag}

	code := p.Failure(WrapExitError(ExitFailure, "recognition failed", errors.New("empty image")))
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, out.String())
	assert.Equal(t, "Error: recognition failed: empty image\n", diag.String())

	p.Diag = nil
	p.Failure(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", out.String())
}

func TestExitError(t *testing.T) {
	cause := errors.New("disk full")

	err := WrapExitError(ExitFailure, "failed to write heatmap", cause)
	assert.Equal(t, "failed to write heatmap: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := NewExitError(ExitCommandError, "image not accessible")
	assert.Equal(t, "image not accessible", plain.Error())
	assert.Nil(t, plain.Unwrap())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"command error", NewExitError(ExitCommandError, "bad flag"), ExitCommandError},
		{"wrapped", fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner")), ExitCommandError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
