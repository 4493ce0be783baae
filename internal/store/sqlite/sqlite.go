// Package sqlite implements store.Store on an embedded SQLite database.
//
// The implementation assumes a single logical writer per process: the host
// runtime serializes calls into the store, and multi-step mutations rely on
// SQLite transactions for crash atomicity rather than on any internal
// locking.
package sqlite

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"pouch/internal/store"
)

// Config configures the SQLite backend.
type Config struct {
	// Path is the database file location.
	Path string
	// BusyTimeout bounds how long a locked database stalls an operation.
	// Zero means the 5s default.
	BusyTimeout time.Duration
	// Logger receives open/recovery events. The zero value discards them.
	Logger zerolog.Logger
}

// Store implements store.Store on SQLite. Construct with New, then Open.
type Store struct {
	path string
	busy time.Duration
	log  zerolog.Logger

	db    *sql.DB
	ready bool
}

var _ store.Store = (*Store)(nil)

// New creates an unopened store. No I/O happens until Open.
func New(cfg Config) *Store {
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	return &Store{
		path: cfg.Path,
		busy: busy,
		log:  cfg.Logger,
	}
}

// Open opens the database file and runs the idempotent schema creation.
// On any failure the store stays not ready and the error is returned.
func (s *Store) Open(ctx context.Context) error {
	if s.ready {
		return nil
	}

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	s.db = db
	s.ready = true
	s.log.Info().Str("path", s.path).Msg("message cache opened")
	return nil
}

func (s *Store) dsn() string {
	pragmas := url.Values{}
	pragmas.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", s.busy.Milliseconds()))
	pragmas.Add("_pragma", "journal_mode(WAL)")
	pragmas.Add("_pragma", "foreign_keys(1)")
	return "file:" + s.path + "?" + pragmas.Encode()
}

// IsReady reports whether Open has succeeded.
func (s *Store) IsReady() bool {
	return s.ready
}

// Close closes the database. The store becomes not ready; a later Open
// reinitializes it.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.ready = false
	err := s.db.Close()
	s.db = nil
	return err
}

// run executes op through the recovery wrapper.
//
// On a store that is not ready it short-circuits to success without calling
// op. On a stale-handle failure it closes the dead handle (ignoring the
// close error), re-runs full initialization, and re-issues op exactly once;
// any further failure propagates.
func (s *Store) run(ctx context.Context, name string, op func(context.Context, *sql.DB) error) error {
	if !s.ready {
		return nil
	}

	err := op(ctx, s.db)
	if err == nil || !isStaleErr(err) {
		return err
	}

	s.log.Warn().Str("op", name).Err(err).Msg("stale database handle, reopening")
	_ = s.db.Close()
	s.db = nil
	s.ready = false

	if oerr := s.Open(ctx); oerr != nil {
		return fmt.Errorf("failed to reopen after stale handle: %w", oerr)
	}
	if rerr := op(ctx, s.db); rerr != nil {
		return fmt.Errorf("retry after reopen: %w", rerr)
	}
	return nil
}

// isStaleErr reports whether err carries the signature of an invalidated
// engine handle, as opposed to an ordinary operation failure.
func isStaleErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is closed") ||
		strings.Contains(msg, "interrupted")
}

// Stats reports row counts per table.
func (s *Store) Stats(ctx context.Context) (store.Stats, error) {
	var st store.Stats
	err := s.run(ctx, "stats", func(ctx context.Context, db *sql.DB) error {
		for _, c := range []struct {
			table string
			dst   *int
		}{
			{"topics", &st.Topics},
			{"users", &st.Users},
			{"subscriptions", &st.Subscriptions},
			{"messages", &st.Messages},
			{"dellog", &st.DelLog},
		} {
			row := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table)
			if err := row.Scan(c.dst); err != nil {
				return fmt.Errorf("failed to count %s: %w", c.table, err)
			}
		}
		return nil
	})
	return st, err
}
