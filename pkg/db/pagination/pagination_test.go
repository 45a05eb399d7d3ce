package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct{ id string }

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2024-05-01T10:00:00Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)

	_, err = DecodeCursor("%%%")
	assert.ErrorIs(t, err, ErrInvalidPageToken)
}

func TestTrim(t *testing.T) {
	rows := []*row{{"3"}, {"2"}, {"1"}}

	page, info := Trim(rows, 2, func(r *row) string { return r.id })
	assert.Len(t, page, 2)
	assert.True(t, info.HasMore)
	assert.Equal(t, "2", info.NextPageToken)

	page, info = Trim(rows, 5, func(r *row) string { return r.id })
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Size())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 1000}.Size())
	assert.Equal(t, 7, Pagination{PageSize: 7}.Size())
}

func TestValidateToken(t *testing.T) {
	assert.NoError(t, ValidateToken(""))
	assert.NoError(t, ValidateToken(TokenFor(10, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))))

	bad, err := EncodeCursor(Cursor{ID: "abc", CreatedAt: "2024-01-01T00:00:00Z"})
	require.NoError(t, err)
	assert.ErrorIs(t, ValidateToken(bad), ErrInvalidPageToken)
}
