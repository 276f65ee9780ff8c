package client

import "time"

// Subject is one active subject as reported by the daemon.
type Subject struct {
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Event is one retained event record.
type Event struct {
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	IsError     bool      `json:"is_error"`
	Timestamp   time.Time `json:"timestamp"`
}

// State is one retained state transition record.
type State struct {
	Subject   string    `json:"subject"`
	Prev      string    `json:"prev"`
	Next      string    `json:"next"`
	Timestamp time.Time `json:"timestamp"`
}

// DiffChange is one field-level change within a transition.
type DiffChange struct {
	Field string `json:"field,omitempty"`
	Old   string `json:"old,omitempty"`
	New   string `json:"new,omitempty"`
	Kind  string `json:"kind"`
}

// DiffResult is the diff of one recorded transition.
type DiffResult struct {
	Subject string       `json:"subject"`
	Index   int          `json:"index"`
	Changes []DiffChange `json:"changes"`
}

// ingestRequest mirrors the daemon's /ingest body.
type ingestRequest struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Payload any    `json:"payload,omitempty"`
	Prev    any    `json:"prev,omitempty"`
	Next    any    `json:"next,omitempty"`
	Error   string `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// ErrorResponse is the daemon's error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
