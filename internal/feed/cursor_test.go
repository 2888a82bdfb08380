package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorHasMoreFromReturnedLength(t *testing.T) {
	c := NewCursor(25)

	// A full page means more, regardless of the server-reported total.
	c.Record(1, 25, 25, 10)
	assert.True(t, c.HasMore())

	// A short page means done, even when the total says otherwise.
	c.Record(2, 25, 10, 1000)
	assert.False(t, c.HasMore())
}

func TestCursorHasMoreUsesRequestedLimit(t *testing.T) {
	c := NewCursor(10)

	// A load issued with a different page size is judged against that size,
	// not the size the cursor started with.
	c.Record(1, 25, 25, 100)
	assert.True(t, c.HasMore(), "full page at the requested limit must set hasMore")
	assert.Equal(t, 25, c.Limit())

	c.Record(2, 25, 10, 100)
	assert.False(t, c.HasMore())
}

func TestCursorRecordTracksPageAndTotal(t *testing.T) {
	c := NewCursor(25)
	c.Record(3, 25, 25, 120)

	assert.Equal(t, 3, c.Page())
	assert.Equal(t, 120, c.Total())
	assert.Equal(t, 4, c.Next())
}

func TestCursorReset(t *testing.T) {
	c := NewCursor(25)
	c.Record(5, 25, 25, 300)

	c.Reset(50)

	assert.Equal(t, 1, c.Page())
	assert.Equal(t, 50, c.Limit())
	assert.Equal(t, 0, c.Total())
	assert.False(t, c.HasMore())
}
