package record

import (
	"errors"
	"strings"
	"testing"
)

func TestEventDescription(t *testing.T) {
	e := NewEvent("counter", "click")
	if e.Subject != "counter" {
		t.Errorf("unexpected subject %q", e.Subject)
	}
	if e.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
	if got := e.Description(); got != "string: click" {
		t.Errorf("unexpected description %q", got)
	}
	if e.IsError() {
		t.Error("plain event must not be an error")
	}
}

func TestEventNilPayload(t *testing.T) {
	e := NewEvent("counter", nil)
	if got := e.Description(); got != "" {
		t.Errorf("expected empty description for nil payload, got %q", got)
	}
}

func TestFailureEvent(t *testing.T) {
	e := NewFailure("auth", errors.New("token expired"), "stack-here")
	if !e.IsError() {
		t.Fatal("failure event must report IsError")
	}
	if !strings.Contains(e.Description(), "token expired") {
		t.Errorf("description should carry error text, got %q", e.Description())
	}
	f, ok := e.Payload.(*Failure)
	if !ok {
		t.Fatal("payload must be a *Failure")
	}
	if f.Stack != "stack-here" {
		t.Errorf("unexpected stack %q", f.Stack)
	}
}

func TestStateDescriptions(t *testing.T) {
	s := NewState("counter", 1, 2)
	if got := s.PrevDescription(); got != "int: 1" {
		t.Errorf("prev description %q", got)
	}
	if got := s.NextDescription(); got != "int: 2" {
		t.Errorf("next description %q", got)
	}
}

func TestStateNilSides(t *testing.T) {
	s := NewState("counter", nil, "ready")
	if s.PrevDescription() != "" {
		t.Error("expected empty prev description")
	}
	if s.NextDescription() != "string: ready" {
		t.Errorf("unexpected next description %q", s.NextDescription())
	}
}
