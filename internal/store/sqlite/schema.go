package sqlite

import (
	"context"
	"database/sql"
)

// schemaDDL creates the five cache tables plus the deletion-log index used
// by the max/scan queries. Creation is idempotent: it is executed on every
// Open regardless of prior state.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS topics (
	name TEXT PRIMARY KEY,
	created_at TEXT,
	updated_at TEXT,
	touched_at TEXT,
	seq INTEGER,
	read_seq INTEGER,
	recv_seq INTEGER,
	clear_id INTEGER,
	defacs TEXT,
	creds TEXT,
	public TEXT,
	trusted TEXT,
	private TEXT,
	aux TEXT,
	deleted INTEGER NOT NULL DEFAULT 0,
	tags TEXT,
	acs_given TEXT,
	acs_want TEXT,
	acs_mode TEXT
);

CREATE TABLE IF NOT EXISTS users (
	uid TEXT PRIMARY KEY,
	public TEXT
);

CREATE TABLE IF NOT EXISTS subscriptions (
	topic TEXT NOT NULL,
	uid TEXT NOT NULL,
	updated_at TEXT,
	mode TEXT,
	read_seq INTEGER,
	recv_seq INTEGER,
	clear_id INTEGER,
	last_seen TEXT,
	user_agent TEXT,
	PRIMARY KEY (topic, uid)
);

CREATE TABLE IF NOT EXISTS messages (
	topic TEXT NOT NULL,
	seq INTEGER NOT NULL,
	created_at TEXT,
	status INTEGER NOT NULL DEFAULT 0,
	sender TEXT,
	head TEXT,
	content TEXT,
	PRIMARY KEY (topic, seq)
);

CREATE TABLE IF NOT EXISTS dellog (
	topic TEXT NOT NULL,
	low INTEGER NOT NULL,
	hi INTEGER NOT NULL,
	clear_id INTEGER NOT NULL,
	PRIMARY KEY (topic, low, hi)
);

CREATE INDEX IF NOT EXISTS idx_dellog_topic_clear ON dellog(topic, clear_id);
`

// migrate ensures the schema exists. Any failure is fatal to store
// initialization and propagates to the caller.
func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaDDL)
	return err
}
