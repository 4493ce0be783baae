package domain

import "time"

// Message delivery-status codes, in ascending order of progress.
const (
	StatusNone     = 0   // undefined
	StatusQueued   = 10  // not yet sent
	StatusSending  = 20  // in transit
	StatusFailed   = 30  // send failed
	StatusSent     = 40  // delivered to the server
	StatusReceived = 50  // received by the peer's client
	StatusRead     = 60  // read by the peer
	StatusDeleted  = 255 // marked deleted
)

// Message is one unit of conversation history, addressed by (Topic, SeqID).
// SeqID is a positive, topic-scoped sequence number issued by the server.
type Message struct {
	Topic string `json:"topic"`
	SeqID int    `json:"seq"`

	CreatedAt *time.Time `json:"ts,omitempty"`

	// Status is the delivery-status code (Status* constants).
	Status int `json:"status,omitempty"`

	// From is the sender's uid.
	From string `json:"from,omitempty"`

	// Head and Content are opaque payloads, round-tripped unchanged.
	Head    map[string]any `json:"head,omitempty"`
	Content any            `json:"content,omitempty"`
}
