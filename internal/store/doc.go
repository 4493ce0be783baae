// Package store defines the data access interface for the local message
// cache.
//
// This package provides the storage abstraction the protocol layer depends
// on. The actual implementations are the sqlite subpackage (durable,
// file-backed) and the memory subpackage (ephemeral, for incognito sessions
// and tests). The backend is chosen once during process setup and injected
// into the client as a constructor dependency.
//
// # Store Interface
//
// The Store interface covers the five entities of the cache — topics, users,
// subscriptions, messages, and the deletion log — with upsert, removal,
// point-read, and enumeration operations per entity, plus range-addressed
// message reads and tombstone high-water-mark queries.
//
// # Not-ready Semantics
//
// A store that has not been opened is not an error source: mutations resolve
// as no-ops and reads return empty results, so callers can invoke the cache
// speculatively before setup completes without guarding every call.
//
// # Partial Results
//
// A ranges-list message read that fails mid-batch surfaces the rows already
// collected through PartialReadError rather than discarding them.
package store
