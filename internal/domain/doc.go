// Package domain defines the entity types held in the local message cache.
//
// This package contains the value objects the store persists and returns:
// topics, users, subscriptions, messages, and deletion-log entries, plus the
// range and access-mode helper types they share.
//
// # Entities
//
// Topic represents a named conversation the client has (or had) a subscription
// to, with its counters, opaque payloads, tags, and access state.
//
// User holds a peer's public profile keyed by uid.
//
// Subscription ties a user to a topic with per-member counters and presence
// info.
//
// Message is a single unit of conversation history, addressed by (topic, seq).
//
// DelLogEntry is a tombstone: a record that a message range was deleted,
// stamped with a monotonically increasing clear transaction id. The client
// compares the highest stored clear id against the server's to decide whether
// catch-up deletion sync is needed.
//
// # Patch fields
//
// Fields that participate in patch-style upserts are pointers (or nil-able
// maps/slices/interfaces); a nil field means "absent from this update, keep
// the stored value". The merge rules themselves live in the codec package.
//
// # Design Principles
//
// - Pure data declarations, no storage or protocol dependencies
// - Payload blobs (Public, Trusted, Private, Head, Content) are opaque here
// - Derived values (Topic.Unread) are computed, never persisted
package domain
