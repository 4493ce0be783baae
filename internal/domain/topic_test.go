package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeUnread(t *testing.T) {
	tests := []struct {
		name string
		seq  *int
		read *int
		want int
	}{
		{name: "both unset", seq: nil, read: nil, want: 0},
		{name: "unread backlog", seq: Int(42), read: Int(30), want: 12},
		{name: "fully read", seq: Int(10), read: Int(10), want: 0},
		{name: "read ahead of seq", seq: Int(5), read: Int(9), want: 0},
		{name: "read unset", seq: Int(7), read: nil, want: 7},
		{name: "seq unset", seq: nil, read: Int(3), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topic := &Topic{Name: "grp-general", SeqID: tt.seq, ReadSeqID: tt.read}
			topic.ComputeUnread()
			assert.Equal(t, tt.want, topic.Unread)
		})
	}
}

func TestRangeNormalized(t *testing.T) {
	assert.Equal(t, Range{Low: 5, Hi: 6}, Range{Low: 5}.Normalized())
	assert.Equal(t, Range{Low: 5, Hi: 9}, Range{Low: 5, Hi: 9}.Normalized())
}

func TestRangeOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{name: "disjoint", a: Range{Low: 1, Hi: 3}, b: Range{Low: 5, Hi: 7}, want: false},
		{name: "adjacent", a: Range{Low: 1, Hi: 5}, b: Range{Low: 5, Hi: 7}, want: false},
		{name: "overlapping", a: Range{Low: 1, Hi: 6}, b: Range{Low: 5, Hi: 7}, want: true},
		{name: "contained", a: Range{Low: 1, Hi: 10}, b: Range{Low: 4, Hi: 5}, want: true},
		{name: "single inside", a: Range{Low: 4}, b: Range{Low: 2, Hi: 8}, want: true},
		{name: "single outside", a: Range{Low: 9}, b: Range{Low: 2, Hi: 8}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}
