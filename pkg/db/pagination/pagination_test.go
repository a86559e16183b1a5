package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2026-10-17T12:00:00.000000001Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
	assert.Equal(t, "2026-10-17T12:00:00.000000001Z", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("%%%")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	items := []*int{new(int), new(int), new(int)}
	*items[1] = 7

	info := BuildCursorPageInfo(items, 2, func(v *int) string {
		if *v == 7 {
			return "seven"
		}
		return "other"
	})
	assert.True(t, info.HasMore)
	assert.Equal(t, "seven", info.NextPageToken)

	info = BuildCursorPageInfo(items[:2], 2, func(*int) string { return "x" })
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Limit())
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 1000}.Limit())
	assert.Equal(t, 5, Pagination{PageSize: 5}.Limit())
}
