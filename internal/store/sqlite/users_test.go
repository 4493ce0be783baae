package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pouch/internal/domain"
)

func TestUpsertUserReplacesWholesale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &domain.User{
		UID:    "usr-alice",
		Public: map[string]any{"fn": "Alice", "photo": map[string]any{"type": "png"}},
	}))

	// No field-level merge: the second profile fully replaces the first.
	require.NoError(t, s.UpsertUser(ctx, &domain.User{
		UID:    "usr-alice",
		Public: map[string]any{"fn": "Alice B."},
	}))

	got, err := s.GetUser(ctx, "usr-alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]any{"fn": "Alice B."}, got.Public)
}

func TestUpsertUserNoPayloadIsNoOp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &domain.User{UID: "usr-ghost"}))

	got, err := s.GetUser(ctx, "usr-ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertUserNoPayloadKeepsStoredProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &domain.User{
		UID: "usr-alice", Public: map[string]any{"fn": "Alice"},
	}))
	require.NoError(t, s.UpsertUser(ctx, &domain.User{UID: "usr-alice"}))

	got, err := s.GetUser(ctx, "usr-alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]any{"fn": "Alice"}, got.Public)
}

func TestRemoveUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &domain.User{
		UID: "usr-alice", Public: map[string]any{"fn": "Alice"},
	}))
	require.NoError(t, s.RemoveUser(ctx, "usr-alice"))

	got, err := s.GetUser(ctx, "usr-alice")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUsersEnumeration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, uid := range []string{"usr-carol", "usr-alice", "usr-bob"} {
		require.NoError(t, s.UpsertUser(ctx, &domain.User{
			UID: uid, Public: map[string]any{"fn": uid},
		}))
	}

	var visited []string
	users, err := s.Users(ctx, func(u *domain.User) {
		visited = append(visited, u.UID)
	})
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []string{"usr-alice", "usr-bob", "usr-carol"}, visited)
}

func TestCorruptProfileDecodesToNeutral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, &domain.User{
		UID: "usr-alice", Public: map[string]any{"fn": "Alice"},
	}))

	// Corrupt the stored blob behind the codec's back.
	_, err := s.db.ExecContext(ctx,
		`UPDATE users SET public = '{"broken' WHERE uid = ?`, "usr-alice")
	require.NoError(t, err)

	// The row still reads; only the corrupt field collapses to nil.
	got, err := s.GetUser(ctx, "usr-alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.Public)
}
