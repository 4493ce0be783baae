package codec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pouch/internal/domain"
)

func TestMergeTopicPatchSemantics(t *testing.T) {
	created := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	touched := time.Date(2024, 2, 1, 8, 30, 0, 0, time.UTC)

	base := &domain.Topic{
		Name:      "grp-general",
		CreatedAt: &created,
		SeqID:     domain.Int(40),
		ReadSeqID: domain.Int(35),
		Public:    map[string]any{"fn": "General"},
		Private:   map[string]any{"comment": "pinned"},
		Tags:      []string{"work"},
		Acs:       &domain.AccessState{Given: "JRWPS", Want: "JRWPS", Mode: "JRWPS"},
	}

	in := &domain.Topic{
		Name:      "grp-general",
		TouchedAt: &touched,
		SeqID:     domain.Int(41),
		Public:    map[string]any{"fn": "General chat"},
	}

	got := MergeTopic(base, in)

	// Overwritten: only the fields present on the update.
	assert.Equal(t, 41, *got.SeqID)
	assert.Equal(t, map[string]any{"fn": "General chat"}, got.Public)
	require.NotNil(t, got.TouchedAt)
	assert.True(t, got.TouchedAt.Equal(touched))

	// Retained: everything the update omitted.
	assert.Equal(t, 35, *got.ReadSeqID)
	require.NotNil(t, got.CreatedAt)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.Equal(t, map[string]any{"comment": "pinned"}, got.Private)
	assert.Equal(t, []string{"work"}, got.Tags)
	assert.Equal(t, "JRWPS", got.Acs.Mode)

	// The inputs themselves are not mutated.
	assert.Equal(t, 40, *base.SeqID)
	assert.Nil(t, in.ReadSeqID)
}

func TestMergeTopicNilBase(t *testing.T) {
	in := &domain.Topic{Name: "usr-alice", SeqID: domain.Int(3)}
	assert.Same(t, in, MergeTopic(nil, in))
}

func TestMergeTopicEmptyVsAbsent(t *testing.T) {
	base := &domain.Topic{Name: "grp-x", Tags: []string{"a", "b"}}

	// Absent slice keeps the stored tags.
	got := MergeTopic(base, &domain.Topic{Name: "grp-x"})
	assert.Equal(t, []string{"a", "b"}, got.Tags)

	// Present-but-empty slice clears them.
	got = MergeTopic(base, &domain.Topic{Name: "grp-x", Tags: []string{}})
	assert.Empty(t, got.Tags)
	assert.NotNil(t, got.Tags)
}

func TestMergeSubscription(t *testing.T) {
	seen := time.Date(2024, 4, 2, 12, 0, 0, 0, time.UTC)

	base := &domain.Subscription{
		Topic:     "grp-general",
		UID:       "usr-bob",
		Mode:      "JRWP",
		ReadSeqID: domain.Int(10),
		RecvSeqID: domain.Int(12),
		UserAgent: "pouch/1.0",
	}

	in := &domain.Subscription{
		Topic:     "grp-general",
		UID:       "usr-bob",
		ReadSeqID: domain.Int(12),
		LastSeen:  &seen,
	}

	got := MergeSubscription(base, in)
	assert.Equal(t, 12, *got.ReadSeqID)
	require.NotNil(t, got.LastSeen)
	assert.True(t, got.LastSeen.Equal(seen))
	assert.Equal(t, "JRWP", got.Mode)
	assert.Equal(t, 12, *got.RecvSeqID)
	assert.Equal(t, "pouch/1.0", got.UserAgent)
}

func TestMergeSubscriptionNilBase(t *testing.T) {
	in := &domain.Subscription{Topic: "grp-general", UID: "usr-carol"}
	assert.Same(t, in, MergeSubscription(nil, in))
}
