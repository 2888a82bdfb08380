package model

// BlockReason is a server-provided reason for blocking an item, partitioned
// by item subtype. Staff may also enter free text instead of picking one.
type BlockReason struct {
	ID   int    `json:"id"`
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}
