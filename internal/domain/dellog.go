package domain

// Range addresses messages by sequence number: the half-open interval
// [Low, Hi). A zero Hi addresses the single message Low.
type Range struct {
	Low int `json:"low"`
	Hi  int `json:"hi,omitempty"`
}

// Normalized returns the range with an explicit upper bound: a single-message
// range becomes [Low, Low+1).
func (r Range) Normalized() Range {
	if r.Hi <= 0 {
		r.Hi = r.Low + 1
	}
	return r
}

// Overlaps reports whether the two normalized ranges share any sequence.
func (r Range) Overlaps(other Range) bool {
	a, b := r.Normalized(), other.Normalized()
	return a.Low < b.Hi && a.Hi > b.Low
}

// DelLogEntry is a tombstone recording that the message range [Low, Hi) of
// Topic was deleted by the clear transaction ClearID. Entries are keyed by
// (Topic, Low, Hi); re-appending the same key replaces the entry, so a delete
// batch can be re-applied idempotently.
type DelLogEntry struct {
	Topic   string `json:"topic"`
	ClearID int    `json:"clear"`
	Low     int    `json:"low"`
	Hi      int    `json:"hi"`
}
