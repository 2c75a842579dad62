package classify

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/backmassage/ioccc-mirror/internal/model"
)

// RuleKind groups rules into priority tiers.
type RuleKind string

const (
	KindExact    RuleKind = "exact"    // whole segment is a known keyword
	KindContains RuleKind = "contains" // segment contains a telling keyword
	KindRank     RuleKind = "rank"     // segment is a numbered placing
)

// DefaultOrder is the tier priority used when no rules file overrides it.
var DefaultOrder = []RuleKind{KindExact, KindContains, KindRank}

// Rule pairs a pattern over a normalized directory segment with the mapping
// from its submatches to a category. Rules never fail: a pattern either
// matches and Map returns a vocabulary member, or the rule does not apply.
type Rule struct {
	Name    string
	Kind    RuleKind
	Pattern *regexp.Regexp
	Map     func(matches []string) model.Category
}

// RuleSet is an ordered rule list. First match wins.
type RuleSet []Rule

// Match tests the rules against a raw directory segment.
func (rs RuleSet) Match(segment string) (model.Category, string, bool) {
	norm := normalizeSegment(segment)
	if norm == "" {
		return "", "", false
	}
	for _, r := range rs {
		m := r.Pattern.FindStringSubmatch(norm)
		if m == nil {
			continue
		}
		return r.Map(m), r.Name, true
	}
	return "", "", false
}

// normalizeSegment lower-cases s and turns every run of non-alphanumeric
// characters into one space, so "Best_Of-Show" and "best of show" compare
// equal.
func normalizeSegment(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), " ")
}

// --- exact tier ---

// exactKeywords lists the whole-segment spellings of each named category,
// already normalized. Order of the map's keys is fixed by model.NamedCategories.
var exactKeywords = map[model.Category][]string{
	model.BestOfShow:           {"best of show", "bestofshow", "bos"},
	model.MostObfuscated:       {"most obfuscated", "most obfuscated program", "mostobfuscated"},
	model.BestOneLiner:         {"best one liner", "best oneliner", "one liner", "oneliner"},
	model.RunnerUp:             {"runner up", "runners up", "runnerup"},
	model.HonorableMention:     {"honorable mention", "honorable mentions", "honourable mention", "honourable mentions", "hm"},
	model.GrandPrize:           {"grand prize", "grandprize", "grand prix"},
	model.BestSmallProgram:     {"best small program", "smallest program"},
	model.WorstAbuseOfTheRules: {"worst abuse of the rules", "abuse of the rules", "best abuse of the rules"},
	model.MostUseful:           {"most useful", "most useful program"},
}

func exactRules(aliases map[model.Category][]string) (RuleSet, error) {
	var rs RuleSet
	for _, cat := range model.NamedCategories {
		words := slices.Clone(exactKeywords[cat])
		for _, a := range aliases[cat] {
			if n := normalizeSegment(a); n != "" {
				words = append(words, n)
			}
		}
		if len(words) == 0 {
			continue
		}
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		re, err := regexp.Compile(`^(?:` + strings.Join(quoted, "|") + `)$`)
		if err != nil {
			return nil, fmt.Errorf("compile keywords for %s: %w", cat, err)
		}
		rs = append(rs, Rule{
			Name:    "exact:" + string(cat),
			Kind:    KindExact,
			Pattern: re,
			Map:     constant(cat),
		})
	}
	return rs, nil
}

// --- contains tier ---

var containsRules = RuleSet{
	{"contains:best-of-show", KindContains, regexp.MustCompile(`\bbest\b.*\bshow\b`), constant(model.BestOfShow)},
	{"contains:grand-prize", KindContains, regexp.MustCompile(`\bgrand\b`), constant(model.GrandPrize)},
	{"contains:most-obfuscated", KindContains, regexp.MustCompile(`obfusc`), constant(model.MostObfuscated)},
	{"contains:best-one-liner", KindContains, regexp.MustCompile(`\bone ?liners?\b`), constant(model.BestOneLiner)},
	{"contains:worst-abuse-of-the-rules", KindContains, regexp.MustCompile(`\babuse\b`), constant(model.WorstAbuseOfTheRules)},
	{"contains:best-small-program", KindContains, regexp.MustCompile(`\bsmall(est)?\b`), constant(model.BestSmallProgram)},
	{"contains:most-useful", KindContains, regexp.MustCompile(`\buseful\b`), constant(model.MostUseful)},
	{"contains:runner-up", KindContains, regexp.MustCompile(`\brunners? ?up\b`), constant(model.RunnerUp)},
	{"contains:honorable-mention", KindContains, regexp.MustCompile(`\bhonou?rable\b|\bmention\b`), constant(model.HonorableMention)},
}

// --- rank tier ---

var (
	reRankNumber = regexp.MustCompile(
		`^(?:(?:rank|place|prize|no|number)\s?)?0*([1-9][0-9]?)(?:st|nd|rd|th)?(?:\s(?:place|prize))?$`)

	reRankWord = regexp.MustCompile(
		`^(first|second|third|fourth|fifth)(?:\s(?:place|prize))?$`)
)

var rankWords = map[string]int{"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5}

var rankRules = RuleSet{
	{"rank:number", KindRank, reRankNumber, func(m []string) model.Category {
		n, _ := strconv.Atoi(m[1])
		return model.Rank(n)
	}},
	{"rank:word", KindRank, reRankWord, func(m []string) model.Category {
		return model.Rank(rankWords[m[1]])
	}},
}

func constant(c model.Category) func([]string) model.Category {
	return func([]string) model.Category { return c }
}

// BuildRules assembles a RuleSet from tier order and extra exact keywords.
// A tier left out of order is disabled. Aliases must target named
// vocabulary members.
func BuildRules(order []RuleKind, aliases map[model.Category][]string) (RuleSet, error) {
	if len(order) == 0 {
		return nil, fmt.Errorf("rule order must name at least one tier")
	}
	for cat := range aliases {
		if !cat.Valid() || cat == model.Unclassified {
			return nil, fmt.Errorf("alias target %q is not a named category", cat)
		}
		if _, ok := cat.RankNumber(); ok {
			return nil, fmt.Errorf("alias target %q: rankings come from the rank tier", cat)
		}
	}

	var rs RuleSet
	seen := make(map[RuleKind]bool)
	for _, k := range order {
		if seen[k] {
			return nil, fmt.Errorf("rule tier %q listed twice", k)
		}
		seen[k] = true
		switch k {
		case KindExact:
			exact, err := exactRules(aliases)
			if err != nil {
				return nil, err
			}
			rs = append(rs, exact...)
		case KindContains:
			rs = append(rs, containsRules...)
		case KindRank:
			rs = append(rs, rankRules...)
		default:
			return nil, fmt.Errorf("unknown rule tier %q (use exact, contains or rank)", k)
		}
	}
	return rs, nil
}

// DefaultRules returns the built-in rules in DefaultOrder.
func DefaultRules() RuleSet {
	rs, err := BuildRules(DefaultOrder, nil)
	if err != nil {
		panic(err)
	}
	return rs
}
