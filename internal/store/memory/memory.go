// Package memory implements store.Store on goroutine-safe in-memory maps.
//
// It backs incognito sessions and tests: same contract as the sqlite
// backend, no durability. There is no engine handle to go stale, so the
// recovery policy degenerates to plain execution.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pouch/internal/codec"
	"pouch/internal/domain"
	"pouch/internal/store"
)

type subKey struct {
	topic string
	uid   string
}

type delKey struct {
	low int
	hi  int
}

// Store implements store.Store in memory. Construct with New, then Open.
type Store struct {
	mu    sync.RWMutex
	ready bool

	topics   map[string]*domain.Topic
	users    map[string]*domain.User
	subs     map[subKey]*domain.Subscription
	messages map[string]map[int]*domain.Message
	dellog   map[string]map[delKey]*domain.DelLogEntry
}

var _ store.Store = (*Store)(nil)

// New creates an unopened store.
func New() *Store {
	return &Store{}
}

// Open initializes the maps. Idempotent.
func (s *Store) Open(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	s.topics = make(map[string]*domain.Topic)
	s.users = make(map[string]*domain.User)
	s.subs = make(map[subKey]*domain.Subscription)
	s.messages = make(map[string]map[int]*domain.Message)
	s.dellog = make(map[string]map[delKey]*domain.DelLogEntry)
	s.ready = true
	return nil
}

// IsReady reports whether Open has succeeded.
func (s *Store) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Close discards all data. The store becomes not ready.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = false
	s.topics = nil
	s.users = nil
	s.subs = nil
	s.messages = nil
	s.dellog = nil
	return nil
}

// UpsertTopic merges with patch semantics on the name key. Unconfirmed
// placeholders are skipped.
func (s *Store) UpsertTopic(_ context.Context, topic *domain.Topic) error {
	if topic.Unconfirmed {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	merged := codec.MergeTopic(s.topics[topic.Name], topic)
	cp := *merged
	cp.ComputeUnread()
	s.topics[topic.Name] = &cp
	return nil
}

// MarkTopicDeleted flips only the soft-delete flag.
func (s *Store) MarkTopicDeleted(_ context.Context, name string, deleted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	if t, ok := s.topics[name]; ok {
		t.Deleted = domain.Bool(deleted)
	}
	return nil
}

// RemoveTopic deletes the topic and everything scoped to it.
func (s *Store) RemoveTopic(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	delete(s.topics, name)
	delete(s.messages, name)
	delete(s.dellog, name)
	for k := range s.subs {
		if k.topic == name {
			delete(s.subs, k)
		}
	}
	return nil
}

// GetTopic returns the named topic, or nil when not stored.
func (s *Store) GetTopic(_ context.Context, name string) (*domain.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[name]
	if !ok {
		return nil, nil
	}
	cp := *t
	cp.ComputeUnread()
	return &cp, nil
}

// Topics enumerates every stored topic, most recently touched first.
func (s *Store) Topics(_ context.Context, visit func(*domain.Topic)) ([]*domain.Topic, error) {
	s.mu.RLock()
	var topics []*domain.Topic
	for _, t := range s.topics {
		cp := *t
		cp.ComputeUnread()
		topics = append(topics, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(topics, func(i, j int) bool {
		return timeDesc(topics[i].TouchedAt, topics[j].TouchedAt, topics[i].Name < topics[j].Name)
	})
	for _, t := range topics {
		if visit != nil {
			visit(t)
		}
	}
	return topics, nil
}

// UpsertUser replaces the profile wholesale; nil payload is a no-op.
func (s *Store) UpsertUser(_ context.Context, user *domain.User) error {
	if user.Public == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	cp := *user
	s.users[user.UID] = &cp
	return nil
}

// RemoveUser evicts the user.
func (s *Store) RemoveUser(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	delete(s.users, uid)
	return nil
}

// GetUser returns the user, or nil when not stored.
func (s *Store) GetUser(_ context.Context, uid string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[uid]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// Users enumerates every stored user in uid order.
func (s *Store) Users(_ context.Context, visit func(*domain.User)) ([]*domain.User, error) {
	s.mu.RLock()
	var users []*domain.User
	for _, u := range s.users {
		cp := *u
		users = append(users, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool { return users[i].UID < users[j].UID })
	for _, u := range users {
		if visit != nil {
			visit(u)
		}
	}
	return users, nil
}

// UpsertSubscription merges with patch semantics on the (topic, uid) key.
func (s *Store) UpsertSubscription(_ context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	k := subKey{sub.Topic, sub.UID}
	merged := codec.MergeSubscription(s.subs[k], sub)
	cp := *merged
	s.subs[k] = &cp
	return nil
}

// RemoveSubscription deletes one membership row.
func (s *Store) RemoveSubscription(_ context.Context, topic, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	delete(s.subs, subKey{topic, uid})
	return nil
}

// RemoveSubscriptions deletes every membership row of the topic.
func (s *Store) RemoveSubscriptions(_ context.Context, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	for k := range s.subs {
		if k.topic == topic {
			delete(s.subs, k)
		}
	}
	return nil
}

// GetSubscription returns the membership row, or nil when not stored.
func (s *Store) GetSubscription(_ context.Context, topic, uid string) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[subKey{topic, uid}]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

// Subscriptions enumerates the topic's membership rows in uid order.
func (s *Store) Subscriptions(_ context.Context, topic string, visit func(*domain.Subscription)) ([]*domain.Subscription, error) {
	s.mu.RLock()
	var subs []*domain.Subscription
	for k, sub := range s.subs {
		if k.topic == topic {
			cp := *sub
			subs = append(subs, &cp)
		}
	}
	s.mu.RUnlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].UID < subs[j].UID })
	for _, sub := range subs {
		if visit != nil {
			visit(sub)
		}
	}
	return subs, nil
}

// AddMessage inserts or replaces on the (topic, seq) key.
func (s *Store) AddMessage(_ context.Context, msg *domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	byTopic := s.messages[msg.Topic]
	if byTopic == nil {
		byTopic = make(map[int]*domain.Message)
		s.messages[msg.Topic] = byTopic
	}
	cp := *msg
	byTopic[msg.SeqID] = &cp
	return nil
}

// UpdateMessageStatus patches only the delivery-status field.
func (s *Store) UpdateMessageStatus(_ context.Context, topic string, seq, status int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	if m, ok := s.messages[topic][seq]; ok {
		m.Status = status
	}
	return nil
}

// RemoveMessages deletes all of the topic's messages (nil rng), a single
// seq (zero Hi), or the half-open span [Low, Hi).
func (s *Store) RemoveMessages(_ context.Context, topic string, rng *domain.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil
	}
	if rng == nil {
		delete(s.messages, topic)
		return nil
	}
	r := rng.Normalized()
	for seq := range s.messages[topic] {
		if seq >= r.Low && seq < r.Hi {
			delete(s.messages[topic], seq)
		}
	}
	return nil
}

// Messages reads per q, most recent first; ranges-mode groups are
// concatenated in range order.
func (s *Store) Messages(ctx context.Context, topic string, q store.Query, visit func(*domain.Message)) ([]*domain.Message, error) {
	var msgs []*domain.Message
	if len(q.Ranges) > 0 {
		groups, err := s.MessageGroups(ctx, topic, q.Ranges, nil)
		if err != nil {
			return nil, err
		}
		for _, group := range groups {
			msgs = append(msgs, group...)
		}
	} else {
		if !s.IsReady() {
			return nil, nil
		}
		msgs = s.scan(topic, q)
	}
	for _, m := range msgs {
		if visit != nil {
			visit(m)
		}
	}
	return msgs, nil
}

// MessageGroups reads an explicit ranges list, one group per range.
func (s *Store) MessageGroups(_ context.Context, topic string, ranges []domain.Range, visit func([]*domain.Message)) ([][]*domain.Message, error) {
	if !s.IsReady() {
		return nil, nil
	}
	var groups [][]*domain.Message
	for _, rng := range ranges {
		r := rng.Normalized()
		groups = append(groups, s.scan(topic, store.Query{Since: r.Low, Before: r.Hi}))
	}
	for _, group := range groups {
		if visit != nil {
			visit(group)
		}
	}
	return groups, nil
}

// scan collects one bounded descending scan.
func (s *Store) scan(topic string, q store.Query) []*domain.Message {
	s.mu.RLock()
	var msgs []*domain.Message
	for seq, m := range s.messages[topic] {
		if q.Since > 0 && seq < q.Since {
			continue
		}
		if q.Before > 0 && seq >= q.Before {
			continue
		}
		cp := *m
		msgs = append(msgs, &cp)
	}
	s.mu.RUnlock()

	sort.Slice(msgs, func(i, j int) bool { return msgs[i].SeqID > msgs[j].SeqID })
	if q.Limit > 0 && len(msgs) > q.Limit {
		msgs = msgs[:q.Limit]
	}
	return msgs
}

// AddDelLog records a tombstone batch; the whole batch is applied under one
// lock acquisition, so it is atomic with respect to readers.
func (s *Store) AddDelLog(_ context.Context, topic string, clearID int, ranges []domain.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready || len(ranges) == 0 {
		return nil
	}
	byTopic := s.dellog[topic]
	if byTopic == nil {
		byTopic = make(map[delKey]*domain.DelLogEntry)
		s.dellog[topic] = byTopic
	}
	for _, rng := range ranges {
		r := rng.Normalized()
		byTopic[delKey{r.Low, r.Hi}] = &domain.DelLogEntry{
			Topic: topic, ClearID: clearID, Low: r.Low, Hi: r.Hi,
		}
	}
	return nil
}

// DelLog reads tombstoned ranges per q, highest clear id first.
func (s *Store) DelLog(_ context.Context, topic string, q store.Query) ([]domain.Range, error) {
	s.mu.RLock()
	var entries []*domain.DelLogEntry
	for _, e := range s.dellog[topic] {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ClearID != entries[j].ClearID {
			return entries[i].ClearID > entries[j].ClearID
		}
		return entries[i].Low > entries[j].Low
	})

	var out []domain.Range
	for _, e := range entries {
		span := domain.Range{Low: e.Low, Hi: e.Hi}
		if len(q.Ranges) > 0 {
			if !touchesAny(span, q.Ranges) {
				continue
			}
		} else {
			if q.Since > 0 && e.ClearID < q.Since {
				continue
			}
			if q.Before > 0 && e.ClearID >= q.Before {
				continue
			}
			if q.Limit > 0 && len(out) == q.Limit {
				break
			}
		}
		out = append(out, span)
	}
	return out, nil
}

// MaxDelID returns the tombstone with the highest clear id, or nil.
func (s *Store) MaxDelID(_ context.Context, topic string) (*domain.DelLogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var max *domain.DelLogEntry
	for _, e := range s.dellog[topic] {
		if max == nil || e.ClearID > max.ClearID ||
			(e.ClearID == max.ClearID && e.Low > max.Low) {
			max = e
		}
	}
	if max == nil {
		return nil, nil
	}
	cp := *max
	return &cp, nil
}

// Stats reports row counts per entity.
func (s *Store) Stats(_ context.Context) (store.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := store.Stats{
		Topics:        len(s.topics),
		Users:         len(s.users),
		Subscriptions: len(s.subs),
	}
	for _, byTopic := range s.messages {
		st.Messages += len(byTopic)
	}
	for _, byTopic := range s.dellog {
		st.DelLog += len(byTopic)
	}
	return st, nil
}

func touchesAny(span domain.Range, ranges []domain.Range) bool {
	for _, r := range ranges {
		if span.Overlaps(r) {
			return true
		}
	}
	return false
}

// timeDesc orders two optional timestamps newest-first, using tie to break
// equal or absent pairs.
func timeDesc(a, b *time.Time, tie bool) bool {
	switch {
	case a == nil && b == nil:
		return tie
	case a == nil:
		return false
	case b == nil:
		return true
	case a.Equal(*b):
		return tie
	default:
		return a.After(*b)
	}
}
