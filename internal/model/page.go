package model

// Pagination mirrors the upstream pagination envelope. The server also
// reports has_more, but the feed derives its own value from the returned
// page length (see feed.Cursor).
type Pagination struct {
	Total       int  `json:"total"`
	CurrentPage int  `json:"current_page"`
	LimitPage   int  `json:"limit_page"`
	HasMore     bool `json:"has_more"`
}

// ItemPage is one page of the upstream item list.
type ItemPage struct {
	Result     []Item     `json:"result"`
	Pagination Pagination `json:"pagination"`
}

// Filters is the opaque search payload applied to the item list: a free-text
// term, a secondary id/uuid lookup, and the moderation tab.
type Filters struct {
	Term   string `json:"term,omitempty"`
	ID     string `json:"id,omitempty"`
	Status Status `json:"status,omitempty"`
	Kind   Kind   `json:"kind,omitempty"`
}
