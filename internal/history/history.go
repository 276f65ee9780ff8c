package history

import (
	"context"
	"time"
)

// Kind identifies which lifecycle hook produced an entry.
type Kind string

const (
	KindEvent Kind = "event"
	KindState Kind = "state"
	KindError Kind = "error"
)

// Entry is the flattened form of a recorded hook, suitable for export to
// external systems. Descriptions are already derived; payloads themselves
// never leave the process.
type Entry struct {
	Kind            Kind      `json:"kind"`
	Subject         string    `json:"subject"`
	Description     string    `json:"description"`
	PrevDescription string    `json:"prev_description,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Sink is a destination for history entries (audit/analytics systems).
// Implementations must be safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Entry) error
}
