package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"pouch/internal/domain"
	"pouch/internal/store"
)

// AddMessage inserts or replaces on the (topic, seq) key, so re-delivery of
// a sequence the cache already holds is idempotent.
func (s *Store) AddMessage(ctx context.Context, msg *domain.Message) error {
	return s.run(ctx, "add message", func(ctx context.Context, db *sql.DB) error {
		args, err := msgInsertArgs(msg)
		if err != nil {
			return err
		}
		if _, err := db.ExecContext(ctx, `
			INSERT OR REPLACE INTO messages (`+msgColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, args...); err != nil {
			return fmt.Errorf("failed to add message: %w", err)
		}
		return nil
	})
}

// UpdateMessageStatus patches only the delivery-status column of one
// message, leaving every other field untouched.
func (s *Store) UpdateMessageStatus(ctx context.Context, topic string, seq, status int) error {
	return s.run(ctx, "update message status", func(ctx context.Context, db *sql.DB) error {
		if _, err := db.ExecContext(ctx,
			`UPDATE messages SET status = ? WHERE topic = ? AND seq = ?`,
			status, topic, seq); err != nil {
			return fmt.Errorf("failed to update message status: %w", err)
		}
		return nil
	})
}

// RemoveMessages deletes messages in one of three forms: every message of
// the topic when rng is nil, the single sequence rng.Low when rng.Hi is
// zero, or the half-open span [rng.Low, rng.Hi).
func (s *Store) RemoveMessages(ctx context.Context, topic string, rng *domain.Range) error {
	return s.run(ctx, "remove messages", func(ctx context.Context, db *sql.DB) error {
		var err error
		if rng == nil {
			_, err = db.ExecContext(ctx,
				`DELETE FROM messages WHERE topic = ?`, topic)
		} else {
			r := rng.Normalized()
			_, err = db.ExecContext(ctx,
				`DELETE FROM messages WHERE topic = ? AND seq >= ? AND seq < ?`,
				topic, r.Low, r.Hi)
		}
		if err != nil {
			return fmt.Errorf("failed to remove messages: %w", err)
		}
		return nil
	})
}

// Messages reads message history, most recent first.
//
// With q.Ranges set, each range is fetched as its own descending group and
// the groups are concatenated in range order; a failure partway through
// returns the groups collected so far inside a *store.PartialReadError.
// Otherwise a single bounded scan q.Since <= seq < q.Before runs, capped by
// q.Limit. The visitor, when given, observes rows in delivery order.
func (s *Store) Messages(ctx context.Context, topic string, q store.Query, visit func(*domain.Message)) ([]*domain.Message, error) {
	var msgs []*domain.Message
	err := s.run(ctx, "read messages", func(ctx context.Context, db *sql.DB) error {
		msgs = nil // the recovery wrapper may run this twice
		if len(q.Ranges) > 0 {
			groups, err := readMessageGroups(ctx, db, topic, q.Ranges)
			for _, group := range groups {
				msgs = append(msgs, group...)
			}
			if err != nil {
				return err
			}
		} else {
			scanned, err := scanMessages(ctx, db, topic, q)
			if err != nil {
				return err
			}
			msgs = scanned
		}

		if visit != nil {
			for _, m := range msgs {
				visit(m)
			}
		}
		return nil
	})
	return msgs, err
}

// MessageGroups reads an explicit ranges list, delivering one group per
// range to the visitor and returning the groups in range order. Each group
// is independently in descending sequence order.
func (s *Store) MessageGroups(ctx context.Context, topic string, ranges []domain.Range, visit func([]*domain.Message)) ([][]*domain.Message, error) {
	var groups [][]*domain.Message
	err := s.run(ctx, "read message groups", func(ctx context.Context, db *sql.DB) error {
		got, err := readMessageGroups(ctx, db, topic, ranges)
		groups = got
		if err != nil {
			return err
		}
		if visit != nil {
			for _, group := range groups {
				visit(group)
			}
		}
		return nil
	})
	return groups, err
}

// readMessageGroups fetches one descending group per range. On failure it
// returns the groups fetched so far along with a *store.PartialReadError.
func readMessageGroups(ctx context.Context, db *sql.DB, topic string, ranges []domain.Range) ([][]*domain.Message, error) {
	var groups [][]*domain.Message
	for _, rng := range ranges {
		r := rng.Normalized()
		group, err := scanMessages(ctx, db, topic, store.Query{Since: r.Low, Before: r.Hi})
		if err != nil {
			return groups, &store.PartialReadError{Groups: groups, Err: err}
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// scanMessages runs one bounded descending scan.
func scanMessages(ctx context.Context, db *sql.DB, topic string, q store.Query) ([]*domain.Message, error) {
	query := `SELECT ` + msgColumns + ` FROM messages WHERE topic = ?`
	args := []any{topic}

	if q.Since > 0 {
		query += ` AND seq >= ?`
		args = append(args, q.Since)
	}
	if q.Before > 0 {
		query += ` AND seq < ?`
		args = append(args, q.Before)
	}
	query += ` ORDER BY seq DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.Message
	for rows.Next() {
		var r msgRow
		if err := rows.Scan(r.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, r.toDomain())
	}
	return msgs, rows.Err()
}
