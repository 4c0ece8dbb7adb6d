package economy

import (
	"sort"
)

// Collection is a set of listings keyed by item identity. Inserting a
// listing for an identity already present replaces it (last write wins).
//
// A Collection is not safe for concurrent use; the orchestrator serializes
// access and hands external callers deep copies, never live references.
type Collection struct {
	items map[Item]Listing
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{items: make(map[Item]Listing)}
}

// Upsert adds the listing, replacing any listing with the same identity.
func (c *Collection) Upsert(l Listing) {
	c.items[l.Item()] = l
}

// Get returns the listing for the given identity.
func (c *Collection) Get(item Item) (Listing, bool) {
	l, ok := c.items[item]
	return l, ok
}

// Remove deletes the listing for the given identity, when present.
func (c *Collection) Remove(item Item) {
	delete(c.items, item)
}

// Len returns the number of listings.
func (c *Collection) Len() int {
	return len(c.items)
}

// All returns the listings in a deterministic identity order.
func (c *Collection) All() []Listing {
	out := make([]Listing, 0, len(c.items))
	for _, l := range c.items {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Item(), out[j].Item()
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.EffectCode < b.EffectCode
	})
	return out
}

// Ordered returns the listings in presentation order: ascending priority,
// unset priority last, sell listings before buy listings on ties. Within
// equal priority the identity order of All is kept.
func (c *Collection) Ordered() []Listing {
	out := c.All()
	sort.SliceStable(out, func(i, j int) bool {
		return ComparePriority(out[i], out[j]) < 0
	})
	return out
}

// Visible returns the visible listings, in presentation order.
func (c *Collection) Visible() []Listing {
	var out []Listing
	for _, l := range c.Ordered() {
		if l.Visible() {
			out = append(out, l)
		}
	}
	return out
}

// Copy returns a deep copy: every member is copied, so mutating the copy or
// its listings never touches the original.
func (c *Collection) Copy() *Collection {
	cp := NewCollection()
	for _, l := range c.items {
		cp.Upsert(l.Copy())
	}
	return cp
}
