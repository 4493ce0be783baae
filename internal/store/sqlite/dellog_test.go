package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pouch/internal/domain"
	"pouch/internal/store"
)

func TestMaxDelIDProgression(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// No tombstones yet.
	entry, err := s.MaxDelID(ctx, "grp-general")
	require.NoError(t, err)
	assert.Nil(t, entry)

	require.NoError(t, s.AddDelLog(ctx, "grp-general", 3, []domain.Range{{Low: 5, Hi: 8}}))
	entry, err = s.MaxDelID(ctx, "grp-general")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, &domain.DelLogEntry{Topic: "grp-general", ClearID: 3, Low: 5, Hi: 8}, entry)

	// A later clear id becomes the new high-water mark.
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 4, []domain.Range{{Low: 12}}))
	entry, err = s.MaxDelID(ctx, "grp-general")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 4, entry.ClearID)
	assert.Equal(t, 12, entry.Low)
	assert.Equal(t, 13, entry.Hi)

	// Scoped per topic.
	entry, err = s.MaxDelID(ctx, "grp-other")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestAddDelLogSingleDefaultsHi(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDelLog(ctx, "grp-general", 1, []domain.Range{{Low: 9}}))

	ranges, err := s.DelLog(ctx, "grp-general", store.Query{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Range{{Low: 9, Hi: 10}}, ranges)
}

func TestAddDelLogIdempotentReapply(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	batch := []domain.Range{{Low: 5, Hi: 8}, {Low: 11}}
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 3, batch))
	// Re-application of the same batch after a reconnect replaces in place.
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 3, batch))

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.DelLog)
}

func TestAddDelLogEmptyBatch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddDelLog(context.Background(), "grp-general", 9, nil))

	entry, err := s.MaxDelID(context.Background(), "grp-general")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestDelLogScanDescendingByClearID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDelLog(ctx, "grp-general", 2, []domain.Range{{Low: 1, Hi: 4}}))
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 5, []domain.Range{{Low: 10, Hi: 12}}))
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 4, []domain.Range{{Low: 7}}))

	ranges, err := s.DelLog(ctx, "grp-general", store.Query{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Range{
		{Low: 10, Hi: 12},
		{Low: 7, Hi: 8},
		{Low: 1, Hi: 4},
	}, ranges)

	// Bounded scan by clear id with a limit.
	ranges, err = s.DelLog(ctx, "grp-general", store.Query{Since: 2, Before: 5, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []domain.Range{{Low: 7, Hi: 8}}, ranges)
}

func TestDelLogRangesModeReturnsTouchingSpans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddDelLog(ctx, "grp-general", 2, []domain.Range{{Low: 1, Hi: 4}}))
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 3, []domain.Range{{Low: 10, Hi: 15}}))
	require.NoError(t, s.AddDelLog(ctx, "grp-general", 4, []domain.Range{{Low: 20, Hi: 22}}))

	// The span [3, 11) touches the first two tombstones but not the third.
	ranges, err := s.DelLog(ctx, "grp-general", store.Query{
		Ranges: []domain.Range{{Low: 3, Hi: 11}},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Range{
		{Low: 10, Hi: 15},
		{Low: 1, Hi: 4},
	}, ranges)

	// An adjacent-only span touches nothing.
	ranges, err = s.DelLog(ctx, "grp-general", store.Query{
		Ranges: []domain.Range{{Low: 4, Hi: 10}},
	})
	require.NoError(t, err)
	assert.Empty(t, ranges)
}
