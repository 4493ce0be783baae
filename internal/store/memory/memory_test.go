package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pouch/internal/domain"
	"pouch/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.Open(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func seqsOf(msgs []*domain.Message) []int {
	seqs := make([]int, 0, len(msgs))
	for _, m := range msgs {
		seqs = append(seqs, m.SeqID)
	}
	return seqs
}

func TestNotReadyShortCircuits(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.UpsertTopic(ctx, &domain.Topic{Name: "grp-x"}))
	require.NoError(t, s.AddMessage(ctx, &domain.Message{Topic: "grp-x", SeqID: 1}))

	topic, err := s.GetTopic(ctx, "grp-x")
	require.NoError(t, err)
	assert.Nil(t, topic)

	require.NoError(t, s.Open(ctx))
	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Stats{}, st)
}

func TestUpsertTopicPatchSemantics(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertTopic(ctx, &domain.Topic{
		Name:      "grp-general",
		SeqID:     domain.Int(40),
		ReadSeqID: domain.Int(35),
		Public:    map[string]any{"fn": "General"},
	}))
	require.NoError(t, s.UpsertTopic(ctx, &domain.Topic{
		Name:  "grp-general",
		SeqID: domain.Int(41),
	}))

	got, err := s.GetTopic(ctx, "grp-general")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 41, *got.SeqID)
	assert.Equal(t, 35, *got.ReadSeqID)
	assert.Equal(t, map[string]any{"fn": "General"}, got.Public)
	assert.Equal(t, 6, got.Unread)
}

func TestUpsertTopicSkipsUnconfirmed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertTopic(ctx, &domain.Topic{Name: "newXyz", Unconfirmed: true}))
	got, err := s.GetTopic(ctx, "newXyz")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMessagesOrderingAndRanges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, seq := range []int{1, 2, 3, 4, 7} {
		require.NoError(t, s.AddMessage(ctx, &domain.Message{Topic: "grp-general", SeqID: seq}))
	}

	msgs, err := s.Messages(ctx, "grp-general", store.Query{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 4, 3, 2, 1}, seqsOf(msgs))

	groups, err := s.MessageGroups(ctx, "grp-general",
		[]domain.Range{{Low: 1, Hi: 3}, {Low: 7}}, nil)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []int{2, 1}, seqsOf(groups[0]))
	assert.Equal(t, []int{7}, seqsOf(groups[1]))
}

func TestRemoveMessagesForms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for seq := 1; seq <= 10; seq++ {
		require.NoError(t, s.AddMessage(ctx, &domain.Message{Topic: "grp-general", SeqID: seq}))
	}

	require.NoError(t, s.RemoveMessages(ctx, "grp-general", &domain.Range{Low: 4, Hi: 7}))
	require.NoError(t, s.RemoveMessages(ctx, "grp-general", &domain.Range{Low: 9}))

	msgs, err := s.Messages(ctx, "grp-general", store.Query{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 8, 3, 2, 1}, seqsOf(msgs))

	require.NoError(t, s.RemoveMessages(ctx, "grp-general", nil))
	msgs, err = s.Messages(ctx, "grp-general", store.Query{}, nil)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestDelLogHighWaterMark(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry, err := s.MaxDelID(ctx, "grp-general")
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, s.AddDelLog(ctx, "grp-general", 3, []domain.Range{{Low: 5, Hi: 8}}))
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 4, []domain.Range{{Low: 12}}))

	entry, err = s.MaxDelID(ctx, "grp-general")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 4, entry.ClearID)

	ranges, err := s.DelLog(ctx, "grp-general", store.Query{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Range{{Low: 12, Hi: 13}, {Low: 5, Hi: 8}}, ranges)
}

func TestRemoveTopicCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertTopic(ctx, &domain.Topic{Name: "grp-general"}))
	require.NoError(t, s.UpsertSubscription(ctx, &domain.Subscription{Topic: "grp-general", UID: "usr-alice"}))
	require.NoError(t, s.AddMessage(ctx, &domain.Message{Topic: "grp-general", SeqID: 1}))
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 1, []domain.Range{{Low: 2}}))

	require.NoError(t, s.RemoveTopic(ctx, "grp-general"))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.Stats{}, st)
}

func TestUpsertUserReplaceAndNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &domain.User{
		UID: "usr-alice", Public: map[string]any{"fn": "Alice", "org": "x"},
	}))
	require.NoError(t, s.UpsertUser(ctx, &domain.User{
		UID: "usr-alice", Public: map[string]any{"fn": "Alice B."},
	}))
	require.NoError(t, s.UpsertUser(ctx, &domain.User{UID: "usr-alice"}))

	got, err := s.GetUser(ctx, "usr-alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]any{"fn": "Alice B."}, got.Public)
}

func TestReturnedRowsAreCopies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertTopic(ctx, &domain.Topic{Name: "grp-general", SeqID: domain.Int(1)}))

	got, err := s.GetTopic(ctx, "grp-general")
	require.NoError(t, err)
	got.SeqID = domain.Int(99)

	again, err := s.GetTopic(ctx, "grp-general")
	require.NoError(t, err)
	assert.Equal(t, 1, *again.SeqID)
}
