package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pouch/internal/domain"
	"pouch/internal/store"
)

// AddDelLog records a batch of tombstone ranges stamped with clearID as one
// atomic transaction: a partial application of a delete batch is never
// observable. Each range becomes an insert-or-replace on the (topic, low,
// hi) key, so re-applying the same delete after a reconnect is idempotent.
func (s *Store) AddDelLog(ctx context.Context, topic string, clearID int, ranges []domain.Range) error {
	if len(ranges) == 0 {
		return nil
	}

	return s.run(ctx, "append dellog", func(ctx context.Context, db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR REPLACE INTO dellog (topic, low, hi, clear_id)
			VALUES (?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare dellog statement: %w", err)
		}
		defer stmt.Close()

		for _, rng := range ranges {
			r := rng.Normalized()
			if _, err := stmt.ExecContext(ctx, topic, r.Low, r.Hi, clearID); err != nil {
				return fmt.Errorf("failed to append dellog entry: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}

// DelLog reads tombstoned ranges, highest clear id first. With q.Ranges set
// it returns entries whose message span touches any of the given spans;
// otherwise it scans q.Since <= clear_id < q.Before, capped by q.Limit.
func (s *Store) DelLog(ctx context.Context, topic string, q store.Query) ([]domain.Range, error) {
	var out []domain.Range
	err := s.run(ctx, "read dellog", func(ctx context.Context, db *sql.DB) error {
		out = nil // the recovery wrapper may run this twice

		query := `SELECT low, hi FROM dellog WHERE topic = ?`
		args := []any{topic}

		if len(q.Ranges) > 0 {
			query += ` AND (`
			for i, rng := range q.Ranges {
				r := rng.Normalized()
				if i > 0 {
					query += ` OR `
				}
				query += `(low < ? AND hi > ?)`
				args = append(args, r.Hi, r.Low)
			}
			query += `)`
		} else {
			if q.Since > 0 {
				query += ` AND clear_id >= ?`
				args = append(args, q.Since)
			}
			if q.Before > 0 {
				query += ` AND clear_id < ?`
				args = append(args, q.Before)
			}
		}

		query += ` ORDER BY clear_id DESC, low DESC`
		if len(q.Ranges) == 0 && q.Limit > 0 {
			query += ` LIMIT ?`
			args = append(args, q.Limit)
		}

		rows, err := db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query dellog: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var r domain.Range
			if err := rows.Scan(&r.Low, &r.Hi); err != nil {
				return fmt.Errorf("failed to scan dellog entry: %w", err)
			}
			out = append(out, r)
		}
		return rows.Err()
	})
	return out, err
}

// MaxDelID returns the tombstone with the highest clear id for the topic,
// or nil when none exist yet. Clients compare its clear id against their
// last-known value to decide whether catch-up deletion sync is needed.
func (s *Store) MaxDelID(ctx context.Context, topic string) (*domain.DelLogEntry, error) {
	var entry *domain.DelLogEntry
	err := s.run(ctx, "max dellog id", func(ctx context.Context, db *sql.DB) error {
		var e domain.DelLogEntry
		err := db.QueryRowContext(ctx, `
			SELECT topic, clear_id, low, hi FROM dellog
			WHERE topic = ? ORDER BY clear_id DESC, low DESC LIMIT 1
		`, topic).Scan(&e.Topic, &e.ClearID, &e.Low, &e.Hi)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to query max dellog id: %w", err)
		}
		entry = &e
		return nil
	})
	return entry, err
}
