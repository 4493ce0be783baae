package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pouch/internal/domain"
)

func TestPartialReadError(t *testing.T) {
	cause := errors.New("disk gone")
	err := &PartialReadError{
		Groups: [][]*domain.Message{
			{{Topic: "grp-general", SeqID: 2}, {Topic: "grp-general", SeqID: 1}},
		},
		Err: cause,
	}

	assert.Contains(t, err.Error(), "1 of the requested ranges")
	assert.Contains(t, err.Error(), "disk gone")
	require.ErrorIs(t, err, cause)

	var pre *PartialReadError
	require.ErrorAs(t, error(err), &pre)
	assert.Len(t, pre.Groups, 1)
}
