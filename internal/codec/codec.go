// Package codec converts between in-memory entity representations and the
// flat column values persisted by a storage backend.
//
// Structured fields (payload blobs, tag lists, credential lists, access
// triples) are stored as JSON text. Timestamps are stored as sortable UTC
// text. Booleans are stored as 0/1 integers.
//
// Decoding is deliberately forgiving: a malformed or absent stored value
// decodes to a neutral empty value (nil, zero time, false) rather than an
// error, so one corrupt field cannot block reading the rest of a row.
package codec

import (
	"database/sql"
	"encoding/json"
	"time"
)

// TimeLayout is the stored timestamp format: fixed-width UTC, so that
// lexicographic order of the column equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// EncodeBlob marshals v to a nullable JSON text column. A nil value or an
// empty map is stored as NULL rather than "null"/"{}".
func EncodeBlob(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	if m, ok := v.(map[string]any); ok && len(m) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// DecodeBlob unmarshals a JSON text column into its generic shape
// (map[string]any, []any, string, float64, bool). Absent or malformed
// values decode to nil.
func DecodeBlob(ns sql.NullString) any {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(ns.String), &v); err != nil {
		return nil
	}
	return v
}

// DecodeInto unmarshals a JSON text column into target, leaving target
// untouched when the column is absent or malformed.
func DecodeInto(ns sql.NullString, target any) {
	if !ns.Valid || ns.String == "" {
		return
	}
	_ = json.Unmarshal([]byte(ns.String), target)
}

// EncodeTime formats t as sortable UTC text. A nil time encodes to NULL.
func EncodeTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(TimeLayout), Valid: true}
}

// DecodeTime parses a stored timestamp. It accepts the canonical layout and
// falls back to RFC 3339 for rows written by other producers. Absent or
// unparsable values decode to nil.
func DecodeTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	if t, err := time.Parse(TimeLayout, ns.String); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339Nano, ns.String); err == nil {
		t = t.UTC()
		return &t
	}
	return nil
}

// EncodeBool converts a flag to its stored 0/1 form.
func EncodeBool(b bool) int {
	if b {
		return 1
	}
	return 0
}

// DecodeBool converts a stored 0/1 integer back to a flag. NULL decodes
// to false.
func DecodeBool(ni sql.NullInt64) bool {
	return ni.Valid && ni.Int64 != 0
}

// DecodeInt converts a nullable integer column to an optional int.
func DecodeInt(ni sql.NullInt64) *int {
	if !ni.Valid {
		return nil
	}
	v := int(ni.Int64)
	return &v
}

// EncodeInt converts an optional int to its nullable column form.
func EncodeInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// EncodeString converts a string to its nullable column form, storing the
// empty string as NULL.
func EncodeString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// DecodeString converts a nullable text column to a string.
func DecodeString(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	return ns.String
}
