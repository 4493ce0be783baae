package domain

import "time"

// Subscription ties a user to a topic, keyed by the (Topic, UID) pair.
// It is owned by its topic and removed when the topic is hard-deleted.
//
// Pointer-typed fields and empty strings are treated as absent during
// patch-style upserts.
type Subscription struct {
	Topic string `json:"topic"`
	UID   string `json:"user"`

	UpdatedAt *time.Time `json:"updated,omitempty"`

	// Mode is the member's access-mode string.
	Mode string `json:"mode,omitempty"`

	ReadSeqID *int `json:"read,omitempty"`
	RecvSeqID *int `json:"recv,omitempty"`
	ClearID   *int `json:"clear,omitempty"`

	// Presence info reported by the server.
	LastSeen  *time.Time `json:"seen,omitempty"`
	UserAgent string     `json:"ua,omitempty"`
}
