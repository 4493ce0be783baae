package domain

// User holds a peer's public profile, keyed by UID.
//
// A nil Public means "nothing to store": upserting such a user is a no-op.
// An empty-but-non-nil payload is stored as-is; the two cases are distinct.
type User struct {
	UID    string `json:"uid"`
	Public any    `json:"public,omitempty"`
}
