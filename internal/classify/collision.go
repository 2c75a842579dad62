package classify

import (
	"fmt"
	"maps"

	"github.com/backmassage/ioccc-mirror/internal/model"
)

// Claims tracks which entry group owns each (year, category, identifier)
// key and resolves duplicates by appending "-2", "-3", ... to the identifier
// of the later group.
type Claims struct {
	owners   map[model.Key]string // key -> group that owns it
	counters map[model.Key]int    // requested key -> next suffix to try
}

// NewClaims creates an empty claim table.
func NewClaims() *Claims {
	return &Claims{
		owners:   make(map[model.Key]string),
		counters: make(map[model.Key]int),
	}
}

// Resolve claims want for group and returns the key actually granted. If
// want is free (or already held by group) it is returned unchanged with
// renamed false.
func (c *Claims) Resolve(group string, want model.Key) (got model.Key, renamed bool) {
	owner, exists := c.owners[want]
	if !exists || owner == group {
		c.owners[want] = group
		return want, false
	}

	counter := c.counters[want]
	if counter < 2 {
		counter = 2
	}
	for {
		candidate := want
		candidate.Identifier = fmt.Sprintf("%s-%d", want.Identifier, counter)
		cOwner, cExists := c.owners[candidate]
		if !cExists || cOwner == group {
			c.counters[want] = counter + 1
			c.owners[candidate] = group
			return candidate, true
		}
		counter++
	}
}

// Clone returns an independent copy of c. A nil c clones to an empty table.
func (c *Claims) Clone() *Claims {
	out := NewClaims()
	if c == nil {
		return out
	}
	maps.Copy(out.owners, c.owners)
	maps.Copy(out.counters, c.counters)
	return out
}

// Owner returns the group that holds k.
func (c *Claims) Owner(k model.Key) (string, bool) {
	g, ok := c.owners[k]
	return g, ok
}

// Len returns the number of claimed keys.
func (c *Claims) Len() int { return len(c.owners) }
