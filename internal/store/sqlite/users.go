package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pouch/internal/codec"
	"pouch/internal/domain"
)

// UpsertUser replaces the stored public profile wholesale: unlike topics and
// subscriptions there is no field-level merge. A user carrying no payload at
// all is a no-op, which keeps "called with nothing to store" distinct from
// "store an empty profile".
func (s *Store) UpsertUser(ctx context.Context, user *domain.User) error {
	if user.Public == nil {
		return nil
	}

	return s.run(ctx, "upsert user", func(ctx context.Context, db *sql.DB) error {
		public, err := codec.EncodeBlob(user.Public)
		if err != nil {
			return fmt.Errorf("marshal public: %w", err)
		}
		if _, err := db.ExecContext(ctx, `
			INSERT OR REPLACE INTO users (uid, public) VALUES (?, ?)
		`, user.UID, public); err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}
		return nil
	})
}

// RemoveUser evicts the user from the cache.
func (s *Store) RemoveUser(ctx context.Context, uid string) error {
	return s.run(ctx, "remove user", func(ctx context.Context, db *sql.DB) error {
		if _, err := db.ExecContext(ctx, `DELETE FROM users WHERE uid = ?`, uid); err != nil {
			return fmt.Errorf("failed to remove user: %w", err)
		}
		return nil
	})
}

// GetUser retrieves a single user by uid, or nil when not stored.
func (s *Store) GetUser(ctx context.Context, uid string) (*domain.User, error) {
	var user *domain.User
	err := s.run(ctx, "get user", func(ctx context.Context, db *sql.DB) error {
		var public sql.NullString
		err := db.QueryRowContext(ctx,
			`SELECT public FROM users WHERE uid = ?`, uid).Scan(&public)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query user: %w", err)
		}
		user = &domain.User{UID: uid, Public: codec.DecodeBlob(public)}
		return nil
	})
	return user, err
}

// Users enumerates every stored user, invoking visit per row when given.
func (s *Store) Users(ctx context.Context, visit func(*domain.User)) ([]*domain.User, error) {
	var users []*domain.User
	err := s.run(ctx, "list users", func(ctx context.Context, db *sql.DB) error {
		users = nil // the recovery wrapper may run this twice
		rows, err := db.QueryContext(ctx, `SELECT uid, public FROM users ORDER BY uid`)
		if err != nil {
			return fmt.Errorf("failed to query users: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var (
				uid    string
				public sql.NullString
			)
			if err := rows.Scan(&uid, &public); err != nil {
				return fmt.Errorf("failed to scan user: %w", err)
			}
			u := &domain.User{UID: uid, Public: codec.DecodeBlob(public)}
			if visit != nil {
				visit(u)
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	return users, err
}
