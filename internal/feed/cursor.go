package feed

// Cursor tracks paging state for one feed: the last loaded page, the page
// size, and the total reported by the server.
//
// hasMore is derived from whether the last fetch returned a full page, not
// from the server's has_more field. A last page that is exactly limit-sized
// therefore yields one extra empty fetch; that trade-off is deliberate.
type Cursor struct {
	page    int
	limit   int
	total   int
	hasMore bool
}

// NewCursor creates a cursor positioned before page 1.
func NewCursor(limit int) *Cursor {
	c := &Cursor{}
	c.Reset(limit)
	return c
}

// Reset returns the cursor to page 1 with a fresh limit. Called whenever the
// active filter or tab changes.
func (c *Cursor) Reset(limit int) {
	c.page = 1
	c.limit = limit
	c.total = 0
	c.hasMore = false
}

// Record folds the outcome of a successful fetch into the cursor. limit is
// the page size the fetch was issued with; it becomes the cursor's page size
// so hasMore always reflects the request that produced it.
func (c *Cursor) Record(page, limit, returned, total int) {
	c.page = page
	c.limit = limit
	c.total = total
	c.hasMore = returned == limit
}

// Page returns the last loaded page number.
func (c *Cursor) Page() int { return c.page }

// Limit returns the page size.
func (c *Cursor) Limit() int { return c.limit }

// Total returns the server-reported total, for display.
func (c *Cursor) Total() int { return c.total }

// HasMore reports whether a further page is worth fetching.
func (c *Cursor) HasMore() bool { return c.hasMore }

// Next returns the page number to request on load-more.
func (c *Cursor) Next() int { return c.page + 1 }
