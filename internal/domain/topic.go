package domain

import "time"

// AccessState is the topic access-mode triple: what the server granted,
// what the client asked for, and the effective mode.
type AccessState struct {
	Given string `json:"given,omitempty"`
	Want  string `json:"want,omitempty"`
	Mode  string `json:"mode,omitempty"`
}

// DefAcs is a topic's default access policy for new authenticated and
// anonymous subscribers.
type DefAcs struct {
	Auth string `json:"auth,omitempty"`
	Anon string `json:"anon,omitempty"`
}

// Credential is a validated (or pending) contact credential attached to a
// topic, such as an email address or phone number.
type Credential struct {
	Method string `json:"meth,omitempty"`
	Value  string `json:"val,omitempty"`
	Done   bool   `json:"done,omitempty"`
}

// Topic represents a conversation/channel in the local cache, keyed by Name.
//
// Pointer-typed fields are patchable: nil means the field was not part of the
// incoming update and the stored value is kept.
type Topic struct {
	Name string `json:"name"`

	CreatedAt *time.Time `json:"created,omitempty"`
	UpdatedAt *time.Time `json:"updated,omitempty"`
	TouchedAt *time.Time `json:"touched,omitempty"`

	// Server-issued counters.
	SeqID     *int `json:"seq,omitempty"`
	ReadSeqID *int `json:"read,omitempty"`
	RecvSeqID *int `json:"recv,omitempty"`
	ClearID   *int `json:"clear,omitempty"`

	DefAcs *DefAcs      `json:"defacs,omitempty"`
	Creds  []Credential `json:"cred,omitempty"`

	// Opaque payload blobs, persisted and returned unchanged.
	Public  any            `json:"public,omitempty"`
	Trusted any            `json:"trusted,omitempty"`
	Private any            `json:"private,omitempty"`
	Aux     map[string]any `json:"aux,omitempty"`

	Deleted *bool        `json:"deleted,omitempty"`
	Tags    []string     `json:"tags,omitempty"`
	Acs     *AccessState `json:"acs,omitempty"`

	// Unconfirmed marks a client-only placeholder whose creation has not been
	// acknowledged by the server. Unconfirmed topics are never persisted.
	Unconfirmed bool `json:"-"`

	// Unread is derived as max(0, seq-read) on every load. It is never stored.
	Unread int `json:"-"`
}

// Seq returns the topic's seq counter, or 0 when unset.
func (t *Topic) Seq() int { return intVal(t.SeqID) }

// ReadSeq returns the topic's read counter, or 0 when unset.
func (t *Topic) ReadSeq() int { return intVal(t.ReadSeqID) }

// IsDeleted reports the soft-delete flag.
func (t *Topic) IsDeleted() bool { return t.Deleted != nil && *t.Deleted }

// ComputeUnread recomputes the derived unread counter from the stored
// seq/read pair. Safe for any combination, including read > seq.
func (t *Topic) ComputeUnread() {
	unread := t.Seq() - t.ReadSeq()
	if unread < 0 {
		unread = 0
	}
	t.Unread = unread
}

func intVal(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// Int returns a pointer to v, for building patch-style updates.
func Int(v int) *int { return &v }

// Bool returns a pointer to v, for building patch-style updates.
func Bool(v bool) *bool { return &v }

// Time returns a pointer to v, for building patch-style updates.
func Time(v time.Time) *time.Time { return &v }
