package classify

import (
	"fmt"
	"path"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/model"
)

const matchCacheSize = 1024

// Options configures a Classifier.
type Options struct {
	// Rules defaults to DefaultRules().
	Rules RuleSet

	// FlatYears lists years whose first directory level always holds entry
	// directories, never category directories. Use it for years whose entry
	// names would otherwise be read as categories (an author called "hm", a
	// numbered entry "2").
	FlatYears []model.ContestYear
}

// Classifier turns a year's candidate files into entries.
type Classifier struct {
	rules     RuleSet
	flatYears map[model.ContestYear]bool
	cache     *lru.Cache[string, match]
}

// match is a memoized RuleSet.Match result.
type match struct {
	category model.Category
	rule     string
	ok       bool
}

// New builds a Classifier.
func New(opts Options) (*Classifier, error) {
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules()
	}
	cache, err := lru.New[string, match](matchCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create match cache: %w", err)
	}
	c := &Classifier{
		rules:     rules,
		flatYears: make(map[model.ContestYear]bool, len(opts.FlatYears)),
		cache:     cache,
	}
	for _, y := range opts.FlatYears {
		c.flatYears[y] = true
	}
	return c, nil
}

// State is the run-wide accumulator threaded through ClassifyYear. A call
// leaves the State it was given untouched, so an earlier State can be
// classified again from the same starting point.
type State struct {
	Entries []model.Entry
	Claims  *Claims
	Log     audit.Log

	// Dropped counts groups discarded for having no source files.
	Dropped int
}

// NewState returns an empty accumulator.
func NewState() State {
	return State{Claims: NewClaims()}
}

// group is one prospective entry, collected in scan order.
type group struct {
	// key identifies the group within a year. A loose "abc.c" and a sibling
	// "abc/" share path but never key.
	key string

	path         string // root-relative group path
	name         string // entry directory name or shared stem
	fromDir      bool
	depth        int
	category     model.Category
	unclassified bool
	files        []model.CandidateFile
}

// Classify runs ClassifyYear for every year present in files, in order of
// first appearance, starting from st.
func (c *Classifier) Classify(st State, files []model.CandidateFile) State {
	var years []model.ContestYear
	byYear := make(map[model.ContestYear][]model.CandidateFile)
	for _, f := range files {
		if _, ok := byYear[f.Year]; !ok {
			years = append(years, f.Year)
		}
		byYear[f.Year] = append(byYear[f.Year], f)
	}
	for _, y := range years {
		st = c.ClassifyYear(st, y, byYear[y])
	}
	return st
}

// ClassifyYear partitions the files of one year (in scan order) into entry
// groups, names each group, and appends the resulting entries to st. Files
// from other years are ignored.
func (c *Classifier) ClassifyYear(st State, year model.ContestYear, files []model.CandidateFile) State {
	st.Claims = st.Claims.Clone()
	st.Entries = slices.Clip(st.Entries)
	st.Log = st.Log.Clip()

	for _, g := range c.partition(year, files) {
		var sources, aux []model.CandidateFile
		for _, f := range g.files {
			switch f.Role {
			case model.RoleSource:
				sources = append(sources, f)
			case model.RoleAuxiliary:
				aux = append(aux, f)
			}
		}
		if len(sources) == 0 {
			st.Dropped++
			st.Log = st.Log.Addf(audit.SeverityWarn, audit.ReasonDroppedEmpty, g.path,
				"no .c sources among %d file(s)", len(g.files))
			continue
		}

		if g.unclassified {
			st.Log = st.Log.Addf(audit.SeverityWarn, audit.ReasonUnclassified, g.path,
				"no category rule matched; filed as %s", model.Unclassified)
		}

		want := model.Key{Year: year, Category: g.category, Identifier: DeriveIdentifier(g.name)}
		got, renamed := st.Claims.Resolve(g.key, want)
		if renamed {
			owner, _ := st.Claims.Owner(want)
			st.Log = st.Log.Addf(audit.SeverityWarn, audit.ReasonCollisionRename, g.path,
				"identifier %q already taken by %s; renamed to %q", want.Identifier, owner, got.Identifier)
		}

		e := model.Entry{
			Year:           year,
			Category:       got.Category,
			Identifier:     got.Identifier,
			SourceFiles:    sources,
			AuxiliaryFiles: aux,
			GroupPath:      g.path,
			GroupDepth:     g.depth,
		}
		if g.fromDir {
			e.AuthorHint = authorHint(g.name)
		}
		st.Entries = append(st.Entries, e)
	}
	return st
}

// partition assigns each file of year to a group and returns the groups in
// order of their first file.
func (c *Classifier) partition(year model.ContestYear, files []model.CandidateFile) []*group {
	var order []*group
	byKey := make(map[string]*group)

	for _, f := range files {
		if f.Year != year || len(f.RelativeSegments) == 0 {
			continue
		}
		g := c.place(f)
		if existing, ok := byKey[g.key]; ok {
			existing.files = append(existing.files, f)
			continue
		}
		g.files = []model.CandidateFile{f}
		byKey[g.key] = g
		order = append(order, g)
	}
	return order
}

// place works out which group f belongs to, without files attached.
func (c *Classifier) place(f model.CandidateFile) *group {
	g := c.layout(f)
	g.key = g.path + "/"
	if !g.fromDir {
		g.key = g.path + ".*"
	}
	return g
}

func (c *Classifier) layout(f model.CandidateFile) *group {
	dirs := f.Dirs()
	name := f.RelativeSegments[len(f.RelativeSegments)-1]
	yearDir := yearPrefix(f)

	if len(dirs) > 0 && !c.flatYears[f.Year] {
		if m := c.match(dirs[0]); m.ok {
			if len(dirs) >= 2 {
				return &group{
					path:     joinPath(yearDir, dirs[:2]...),
					name:     dirs[1],
					fromDir:  true,
					depth:    2,
					category: m.category,
				}
			}
			s := stem(name)
			return &group{
				path:     joinPath(yearDir, dirs[0], s),
				name:     s,
				depth:    1,
				category: m.category,
			}
		}
	}

	if len(dirs) > 0 {
		return &group{
			path:         joinPath(yearDir, dirs[0]),
			name:         dirs[0],
			fromDir:      true,
			depth:        1,
			category:     model.Unclassified,
			unclassified: true,
		}
	}
	s := stem(name)
	return &group{
		path:         joinPath(yearDir, s),
		name:         s,
		depth:        0,
		category:     model.Unclassified,
		unclassified: true,
	}
}

func (c *Classifier) match(segment string) match {
	if m, ok := c.cache.Get(segment); ok {
		return m
	}
	var m match
	m.category, m.rule, m.ok = c.rules.Match(segment)
	c.cache.Add(segment, m)
	return m
}

// Rules returns the rule set in priority order.
func (c *Classifier) Rules() RuleSet { return slices.Clone(c.rules) }

// yearPrefix returns the root-relative path of f's year directory.
func yearPrefix(f model.CandidateFile) string {
	segs := f.Path.Segments
	n := len(segs) - len(f.RelativeSegments)
	if n <= 0 {
		return f.Year.String()
	}
	return strings.Join(segs[:n], "/")
}

func joinPath(base string, elems ...string) string {
	return path.Join(append([]string{base}, elems...)...)
}
