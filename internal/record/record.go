package record

import (
	"fmt"
	"time"

	"github.com/loykin/statewatch/internal/describe"
)

// Failure is the synthetic payload recorded when a subject reports an error.
// It wraps the error value together with the stack trace captured by the
// caller at the time of the failure.
type Failure struct {
	Err   error
	Stack string
}

func (f *Failure) Description() string {
	if f == nil || f.Err == nil {
		return "error"
	}
	return fmt.Sprintf("error: %v", f.Err)
}

// Event is an immutable record of a single event delivered to a subject.
type Event struct {
	Subject   string
	Payload   any
	Timestamp time.Time
}

// NewEvent stamps an event record with the current UTC time.
func NewEvent(subject string, payload any) Event {
	return Event{Subject: subject, Payload: payload, Timestamp: time.Now().UTC()}
}

// NewFailure builds an event record whose payload is a Failure wrapper.
func NewFailure(subject string, err error, stack string) Event {
	return NewEvent(subject, &Failure{Err: err, Stack: stack})
}

// Description returns the derived display text for the payload; empty when
// the payload is absent.
func (e Event) Description() string {
	if e.Payload == nil {
		return ""
	}
	return describe.Describe(e.Payload)
}

// IsError reports whether this record carries a synthetic error payload.
func (e Event) IsError() bool {
	_, ok := e.Payload.(*Failure)
	return ok
}

// State is an immutable record of one state transition of a subject.
type State struct {
	Subject   string
	Prev      any
	Next      any
	Timestamp time.Time
}

// NewState stamps a state transition record with the current UTC time.
func NewState(subject string, prev, next any) State {
	return State{Subject: subject, Prev: prev, Next: next, Timestamp: time.Now().UTC()}
}

func (s State) PrevDescription() string {
	if s.Prev == nil {
		return ""
	}
	return describe.Describe(s.Prev)
}

func (s State) NextDescription() string {
	if s.Next == nil {
		return ""
	}
	return describe.Describe(s.Next)
}
