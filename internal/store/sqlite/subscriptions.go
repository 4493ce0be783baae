package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pouch/internal/codec"
	"pouch/internal/domain"
)

// UpsertSubscription merges the incoming subscription into any stored row
// with the same (topic, uid) key, with the same patch semantics as topics.
func (s *Store) UpsertSubscription(ctx context.Context, sub *domain.Subscription) error {
	return s.run(ctx, "upsert subscription", func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		existing, err := scanSub(tx.QueryRowContext(ctx,
			`SELECT `+subColumns+` FROM subscriptions WHERE topic = ? AND uid = ?`,
			sub.Topic, sub.UID))
		if err != nil {
			return err
		}

		merged := codec.MergeSubscription(existing, sub)
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO subscriptions (`+subColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, subInsertArgs(merged)...); err != nil {
			return fmt.Errorf("failed to upsert subscription: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// RemoveSubscription deletes one membership row.
func (s *Store) RemoveSubscription(ctx context.Context, topic, uid string) error {
	return s.run(ctx, "remove subscription", func(ctx context.Context, db *sql.DB) error {
		if _, err := db.ExecContext(ctx,
			`DELETE FROM subscriptions WHERE topic = ? AND uid = ?`, topic, uid); err != nil {
			return fmt.Errorf("failed to remove subscription: %w", err)
		}
		return nil
	})
}

// RemoveSubscriptions deletes every membership row of the topic.
func (s *Store) RemoveSubscriptions(ctx context.Context, topic string) error {
	return s.run(ctx, "remove subscriptions", func(ctx context.Context, db *sql.DB) error {
		if _, err := db.ExecContext(ctx,
			`DELETE FROM subscriptions WHERE topic = ?`, topic); err != nil {
			return fmt.Errorf("failed to remove subscriptions: %w", err)
		}
		return nil
	})
}

// GetSubscription retrieves a single membership row, or nil when not stored.
func (s *Store) GetSubscription(ctx context.Context, topic, uid string) (*domain.Subscription, error) {
	var sub *domain.Subscription
	err := s.run(ctx, "get subscription", func(ctx context.Context, db *sql.DB) error {
		got, err := scanSub(db.QueryRowContext(ctx,
			`SELECT `+subColumns+` FROM subscriptions WHERE topic = ? AND uid = ?`,
			topic, uid))
		sub = got
		return err
	})
	return sub, err
}

// Subscriptions enumerates the topic's membership rows, invoking visit per
// row when given.
func (s *Store) Subscriptions(ctx context.Context, topic string, visit func(*domain.Subscription)) ([]*domain.Subscription, error) {
	var subs []*domain.Subscription
	err := s.run(ctx, "list subscriptions", func(ctx context.Context, db *sql.DB) error {
		subs = nil // the recovery wrapper may run this twice
		rows, err := db.QueryContext(ctx,
			`SELECT `+subColumns+` FROM subscriptions WHERE topic = ? ORDER BY uid`, topic)
		if err != nil {
			return fmt.Errorf("failed to query subscriptions: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r subRow
			if err := rows.Scan(r.scanArgs()...); err != nil {
				return fmt.Errorf("failed to scan subscription: %w", err)
			}
			sub := r.toDomain()
			if visit != nil {
				visit(sub)
			}
			subs = append(subs, sub)
		}
		return rows.Err()
	})
	return subs, err
}

// scanSub scans a single-row subscription query, mapping no-rows to nil.
func scanSub(row *sql.Row) (*domain.Subscription, error) {
	var r subRow
	if err := row.Scan(r.scanArgs()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}
	return r.toDomain(), nil
}
