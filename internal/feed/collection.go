// Package feed implements the live item feed: an ordered, keyed collection
// merged from the paged upstream fetch and the realtime push channel.
package feed

import (
	"github.com/marketgrid/admin-gateway/internal/model"
)

// Collection is an ordered collection of items keyed by UUID. It is not safe
// for concurrent use; the Synchronizer serializes access.
type Collection struct {
	items []model.Item
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Len returns the number of items held.
func (c *Collection) Len() int {
	return len(c.items)
}

// Items returns a copy of the collection in order.
func (c *Collection) Items() []model.Item {
	out := make([]model.Item, len(c.items))
	copy(out, c.items)
	return out
}

// Get returns the item with the given key, if present.
func (c *Collection) Get(uuid string) (model.Item, bool) {
	for _, it := range c.items {
		if it.UUID == uuid {
			return it, true
		}
	}
	return model.Item{}, false
}

// ReplaceAll discards the current contents and adopts items in order. Used
// when page 1 is (re)fetched after a filter change.
func (c *Collection) ReplaceAll(items []model.Item) {
	c.items = append(c.items[:0:0], items...)
}

// Append adds items to the end in order. Pages past the first are assumed
// disjoint by the server, so no de-duplication happens here.
func (c *Collection) Append(items ...model.Item) {
	c.items = append(c.items, items...)
}

// Prepend inserts an item at the front unconditionally. The upstream emits
// each new item exactly once; a duplicate key is inserted as-is rather than
// merged.
func (c *Collection) Prepend(item model.Item) {
	c.items = append([]model.Item{item}, c.items...)
}

// ReplaceByKey replaces the fields of the entry matching item's UUID without
// changing its position. Returns false when no entry matches.
func (c *Collection) ReplaceByKey(item model.Item) bool {
	for i := range c.items {
		if c.items[i].UUID == item.UUID {
			c.items[i] = item
			return true
		}
	}
	return false
}
