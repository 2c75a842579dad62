package model

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Category is an award or ranking tag. It is not free-form: every value must
// satisfy [Category.Valid].
type Category string

const (
	BestOfShow           Category = "best-of-show"
	MostObfuscated       Category = "most-obfuscated"
	BestOneLiner         Category = "best-one-liner"
	RunnerUp             Category = "runner-up"
	HonorableMention     Category = "honorable-mention"
	GrandPrize           Category = "grand-prize"
	BestSmallProgram     Category = "best-small-program"
	WorstAbuseOfTheRules Category = "worst-abuse-of-the-rules"
	MostUseful           Category = "most-useful"
	Unclassified         Category = "unclassified"
)

const rankPrefix = "rank-"

// NamedCategories lists the named members of the vocabulary in declaration
// order. Numbered rankings ("rank-<n>") are members too; see [Rank].
var NamedCategories = []Category{
	BestOfShow,
	MostObfuscated,
	BestOneLiner,
	RunnerUp,
	HonorableMention,
	GrandPrize,
	BestSmallProgram,
	WorstAbuseOfTheRules,
	MostUseful,
	Unclassified,
}

// Rank returns the numbered-ranking category for n. n must be positive.
func Rank(n int) Category {
	if n < 1 {
		panic(fmt.Sprintf("model: invalid rank %d", n))
	}
	return Category(rankPrefix + strconv.Itoa(n))
}

// RankNumber returns n for "rank-<n>" categories.
func (c Category) RankNumber() (int, bool) {
	s, ok := strings.CutPrefix(string(c), rankPrefix)
	if !ok || s == "" || s[0] == '0' {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// Compare orders categories byte-wise, except that two rankings compare by
// number: rank-2 sorts before rank-10. No named category is a prefix of
// "rank-", so the order stays total.
func (c Category) Compare(o Category) int {
	if a, ok := c.RankNumber(); ok {
		if b, ok := o.RankNumber(); ok {
			return cmp.Compare(a, b)
		}
	}
	return strings.Compare(string(c), string(o))
}

// Valid reports whether c is a member of the closed vocabulary.
func (c Category) Valid() bool {
	if _, ok := c.RankNumber(); ok {
		return true
	}
	for _, n := range NamedCategories {
		if c == n {
			return true
		}
	}
	return false
}

// ParseCategory validates s as a vocabulary member.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
