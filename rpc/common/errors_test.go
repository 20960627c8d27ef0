package common

import (
	"errors"
	"fmt"
	"testing"
)

// TestNewErrorDefaultsMessage tests that an empty message falls back to the
// catalogue name
func TestNewErrorDefaultsMessage(t *testing.T) {
	e := NewError(CodeMethodNotFound, "")
	if e.Message != "method not found" {
		t.Errorf("expected catalogue name, got %q", e.Message)
	}

	e = NewError(CodeMethodNotFound, "custom")
	if e.Message != "custom" {
		t.Errorf("expected custom message, got %q", e.Message)
	}
}

// TestErrorString tests the formatting of the error interface implementation
func TestErrorString(t *testing.T) {
	e := NewError(CodeRequestTimeout, "")
	want := "rpc error 1005 (request timeout)"
	if e.Error() != want {
		t.Errorf("expected %q, got %q", want, e.Error())
	}

	e = NewErrorDetail(CodeApplicationError, "", "bad")
	want = "rpc error 1007 (application error): bad"
	if e.Error() != want {
		t.Errorf("expected %q, got %q", want, e.Error())
	}
}

// TestAsError tests extraction and wrapping of foreign errors
func TestAsError(t *testing.T) {
	// a catalogue error passes through unchanged
	orig := NewError(CodeGuardError, "")
	if got := AsError(orig, CodeInternalError); got != orig {
		t.Errorf("expected identity, got %v", got)
	}

	// a wrapped catalogue error is unwrapped
	wrapped := fmt.Errorf("outer: %w", orig)
	if got := AsError(wrapped, CodeInternalError); got != orig {
		t.Errorf("expected unwrap, got %v", got)
	}

	// a foreign error is wrapped with the fallback code
	got := AsError(errors.New("boom"), CodeParseError)
	if got.Code != CodeParseError || got.Detail != "boom" {
		t.Errorf("unexpected wrap: %v", got)
	}
}
