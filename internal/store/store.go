package store

import (
	"context"

	"pouch/internal/domain"
)

// Query selects messages or deletion-log entries for a topic. Exactly one of
// the two shapes applies:
//
//   - Ranges, when non-empty: an explicit list of sequence ranges, each a
//     single seq or a half-open [Low, Hi) span.
//   - Otherwise a bounded scan Since <= key < Before. A zero Since means no
//     lower bound; a zero Before means no upper bound.
//
// For messages the key is the sequence number; for the deletion log the scan
// key is the clear id while Ranges select by message-span overlap. Limit
// caps the number of scan results; zero means unlimited. Ranges-mode results
// ignore Limit.
type Query struct {
	Ranges []domain.Range
	Since  int
	Before int
	Limit  int
}

// Stats reports row counts per entity, for diagnostics.
type Stats struct {
	Topics        int `json:"topics"`
	Users         int `json:"users"`
	Subscriptions int `json:"subscriptions"`
	Messages      int `json:"messages"`
	DelLog        int `json:"dellog"`
}

// Store is the persistent cache contract the protocol layer depends on.
// Implementations exist per backend; callers hold only this interface.
//
// Every operation is safe to call before Open succeeds: on a store whose
// IsReady is false, mutations return nil without writing and reads return
// empty results. Enumerations accept an optional per-row visitor (nil is
// fine) and always also return the collected rows, messages in descending
// sequence order and deletion-log entries in descending clear-id order.
type Store interface {
	// Open initializes the backend and creates the schema. Idempotent;
	// any failure leaves the store not ready.
	Open(ctx context.Context) error
	// IsReady reports whether Open has succeeded.
	IsReady() bool
	// Close releases the backend. The store becomes not ready.
	Close() error

	// UpsertTopic merges the incoming topic into any stored row with the
	// same name (patch semantics) and writes the result. Unconfirmed
	// placeholder topics are skipped without writing.
	UpsertTopic(ctx context.Context, topic *domain.Topic) error
	// MarkTopicDeleted flips only the soft-delete flag.
	MarkTopicDeleted(ctx context.Context, name string, deleted bool) error
	// RemoveTopic deletes the topic and, atomically, all of its
	// subscriptions, messages, and deletion-log rows.
	RemoveTopic(ctx context.Context, name string) error
	// GetTopic returns the named topic, or nil when not stored.
	GetTopic(ctx context.Context, name string) (*domain.Topic, error)
	// Topics enumerates every stored topic.
	Topics(ctx context.Context, visit func(*domain.Topic)) ([]*domain.Topic, error)

	// UpsertUser replaces the stored public profile wholesale. A user with
	// a nil Public payload is a no-op.
	UpsertUser(ctx context.Context, user *domain.User) error
	// RemoveUser evicts the user.
	RemoveUser(ctx context.Context, uid string) error
	// GetUser returns the user, or nil when not stored.
	GetUser(ctx context.Context, uid string) (*domain.User, error)
	// Users enumerates every stored user.
	Users(ctx context.Context, visit func(*domain.User)) ([]*domain.User, error)

	// UpsertSubscription merges on the (topic, uid) key with patch
	// semantics.
	UpsertSubscription(ctx context.Context, sub *domain.Subscription) error
	// RemoveSubscription deletes one membership row.
	RemoveSubscription(ctx context.Context, topic, uid string) error
	// RemoveSubscriptions deletes every membership row of the topic.
	RemoveSubscriptions(ctx context.Context, topic string) error
	// GetSubscription returns the membership row, or nil when not stored.
	GetSubscription(ctx context.Context, topic, uid string) (*domain.Subscription, error)
	// Subscriptions enumerates the topic's membership rows.
	Subscriptions(ctx context.Context, topic string, visit func(*domain.Subscription)) ([]*domain.Subscription, error)

	// AddMessage inserts or replaces on the (topic, seq) key, making
	// re-delivery of the same sequence idempotent.
	AddMessage(ctx context.Context, msg *domain.Message) error
	// UpdateMessageStatus patches only the delivery-status column.
	UpdateMessageStatus(ctx context.Context, topic string, seq, status int) error
	// RemoveMessages deletes messages: all of the topic's when rng is nil,
	// the single seq rng.Low when rng.Hi is zero, or the half-open span
	// [rng.Low, rng.Hi) otherwise.
	RemoveMessages(ctx context.Context, topic string, rng *domain.Range) error
	// Messages reads per q, most recent first. In ranges mode the rows of
	// consecutive ranges are concatenated, each group independently in
	// descending order; a mid-batch failure returns the rows collected so
	// far inside a *PartialReadError.
	Messages(ctx context.Context, topic string, q Query, visit func(*domain.Message)) ([]*domain.Message, error)
	// MessageGroups reads an explicit ranges list, delivering one group per
	// range to the visitor and returning the groups in range order.
	MessageGroups(ctx context.Context, topic string, ranges []domain.Range, visit func([]*domain.Message)) ([][]*domain.Message, error)

	// AddDelLog records a batch of tombstone ranges stamped with clearID,
	// atomically. Re-appending an identical (topic, low, hi) key replaces
	// the entry.
	AddDelLog(ctx context.Context, topic string, clearID int, ranges []domain.Range) error
	// DelLog reads tombstoned ranges per q, highest clear id first.
	DelLog(ctx context.Context, topic string, q Query) ([]domain.Range, error)
	// MaxDelID returns the entry with the highest clear id for the topic,
	// or nil when no tombstones exist yet.
	MaxDelID(ctx context.Context, topic string) (*domain.DelLogEntry, error)

	// Stats reports row counts per entity.
	Stats(ctx context.Context) (Stats, error)
}
