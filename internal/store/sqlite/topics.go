package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pouch/internal/codec"
	"pouch/internal/domain"
)

// UpsertTopic merges the incoming topic into any stored row with the same
// name and writes the result as one insert-or-replace. A topic that is still
// an unconfirmed client-only placeholder is skipped entirely, so ghost rows
// from never-completed creations cannot appear.
func (s *Store) UpsertTopic(ctx context.Context, topic *domain.Topic) error {
	if topic.Unconfirmed {
		return nil
	}

	return s.run(ctx, "upsert topic", func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		existing, err := scanTopic(tx.QueryRowContext(ctx,
			`SELECT `+topicColumns+` FROM topics WHERE name = ?`, topic.Name))
		if err != nil {
			return err
		}

		merged := codec.MergeTopic(existing, topic)
		args, err := topicInsertArgs(merged)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO topics (`+topicColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, args...); err != nil {
			return fmt.Errorf("failed to upsert topic: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// MarkTopicDeleted flips only the soft-delete flag, leaving every other
// column untouched.
func (s *Store) MarkTopicDeleted(ctx context.Context, name string, deleted bool) error {
	return s.run(ctx, "mark topic deleted", func(ctx context.Context, db *sql.DB) error {
		if _, err := db.ExecContext(ctx,
			`UPDATE topics SET deleted = ? WHERE name = ?`,
			codec.EncodeBool(deleted), name); err != nil {
			return fmt.Errorf("failed to mark topic deleted: %w", err)
		}
		return nil
	})
}

// RemoveTopic hard-deletes the topic row together with all subscriptions,
// messages, and deletion-log rows scoped to it, as one atomic transaction.
func (s *Store) RemoveTopic(ctx context.Context, name string) error {
	return s.run(ctx, "remove topic", func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		for _, q := range []string{
			`DELETE FROM messages WHERE topic = ?`,
			`DELETE FROM subscriptions WHERE topic = ?`,
			`DELETE FROM dellog WHERE topic = ?`,
			`DELETE FROM topics WHERE name = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, name); err != nil {
				return fmt.Errorf("failed to remove topic %s: %w", name, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// GetTopic retrieves a single topic by name, or nil when not stored.
func (s *Store) GetTopic(ctx context.Context, name string) (*domain.Topic, error) {
	var topic *domain.Topic
	err := s.run(ctx, "get topic", func(ctx context.Context, db *sql.DB) error {
		t, err := scanTopic(db.QueryRowContext(ctx,
			`SELECT `+topicColumns+` FROM topics WHERE name = ?`, name))
		topic = t
		return err
	})
	return topic, err
}

// Topics enumerates every stored topic, invoking visit per row when given.
func (s *Store) Topics(ctx context.Context, visit func(*domain.Topic)) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	err := s.run(ctx, "list topics", func(ctx context.Context, db *sql.DB) error {
		topics = nil // the recovery wrapper may run this twice
		rows, err := db.QueryContext(ctx,
			`SELECT `+topicColumns+` FROM topics ORDER BY touched_at DESC`)
		if err != nil {
			return fmt.Errorf("failed to query topics: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r topicRow
			if err := rows.Scan(r.scanArgs()...); err != nil {
				return fmt.Errorf("failed to scan topic: %w", err)
			}
			t := r.toDomain()
			if visit != nil {
				visit(t)
			}
			topics = append(topics, t)
		}
		return rows.Err()
	})
	return topics, err
}

// scanTopic scans a single-row topic query, mapping no-rows to nil.
func scanTopic(row *sql.Row) (*domain.Topic, error) {
	var r topicRow
	if err := row.Scan(r.scanArgs()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan topic: %w", err)
	}
	return r.toDomain(), nil
}
