package model

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Key is the identity of an entry across the whole corpus.
type Key struct {
	Year       ContestYear
	Category   Category
	Identifier string
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Year, k.Category, k.Identifier)
}

// Compare orders keys by year, then category (see [Category.Compare]), then
// identifier.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.Year, o.Year); c != 0 {
		return c
	}
	if c := k.Category.Compare(o.Category); c != 0 {
		return c
	}
	return cmp.Compare(k.Identifier, o.Identifier)
}

// Entry is one contest submission. SourceFiles is never empty for an entry
// that leaves the classifier.
type Entry struct {
	Year           ContestYear
	Category       Category
	Identifier     string
	SourceFiles    []CandidateFile
	AuxiliaryFiles []CandidateFile
	AuthorHint     string

	// GroupPath is the root-relative directory the entry was built from. For
	// entries flattened under a category or year it is the directory plus
	// the shared filename stem.
	GroupPath string

	// GroupDepth is the number of RelativeSegments that name the group; the
	// remainder of each file's segments is its path inside the entry.
	GroupDepth int
}

// Key returns the entry's identity triple.
func (e Entry) Key() Key {
	return Key{Year: e.Year, Category: e.Category, Identifier: e.Identifier}
}

// InnerPath returns f's path relative to the entry group, slash-separated.
func (e Entry) InnerPath(f CandidateFile) string {
	segs := f.RelativeSegments
	if e.GroupDepth < len(segs) {
		segs = segs[e.GroupDepth:]
	} else {
		segs = segs[len(segs)-1:]
	}
	return strings.Join(segs, "/")
}

// SortEntries orders entries ascending by Key. The sort is stable so equal
// keys (which the classifier never produces) keep scan order.
func SortEntries(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return a.Key().Compare(b.Key())
	})
}
