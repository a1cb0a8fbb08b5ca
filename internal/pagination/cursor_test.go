package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	encoded := EncodeCursor("item-123", ts)
	require.NotEmpty(t, encoded)

	decoded, err := DecodeCursor(encoded)
	require.NoError(t, err)
	assert.Equal(t, "item-123", decoded.LastID)
	assert.True(t, ts.Equal(decoded.Timestamp))
}

func TestEncodeCursor_EmptyID(t *testing.T) {
	assert.Empty(t, EncodeCursor("", time.Now()))
}

func TestDecodeCursor_Empty(t *testing.T) {
	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cases := []string{
		"not-base64!!!",
		"aGVsbG8=",                 // no separator
		"aXRlbXxub3QtYS10aW1l",     // bad timestamp
	}
	for _, c := range cases {
		_, err := DecodeCursor(c)
		assert.ErrorIs(t, err, ErrInvalidCursor, "cursor: %s", c)
	}
}
