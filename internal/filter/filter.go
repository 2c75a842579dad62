// Package filter decides, one path at a time, whether a scanned file is a
// contest C source, an auxiliary header, or noise.
//
// Rules are applied in a fixed order: extension, then denylist, then the
// contest-year check. The first rule that rejects a path names the reason.
// The filter is a pure predicate over the path data captured by the scanner.
package filter

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/backmassage/ioccc-mirror/internal/model"
)

// Verdict is the outcome of classifying one path.
type Verdict int

const (
	Excluded Verdict = iota
	Source
	Auxiliary
)

func (v Verdict) String() string {
	switch v {
	case Source:
		return "source"
	case Auxiliary:
		return "auxiliary"
	default:
		return "excluded"
	}
}

// Reason explains a non-source verdict.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonSymlink     Reason = "symlink"
	ReasonNotCSource  Reason = "not-c-source"
	ReasonHeader      Reason = "auxiliary-header"
	ReasonDenylisted  Reason = "denylisted"
	ReasonOutsideYear Reason = "outside-year"
)

const (
	sourceExt = ".c"
	headerExt = ".h"
)

// DefaultDenylist matches known non-entry artifacts. Patterns are doublestar
// globs evaluated against the lower-cased root-relative path.
var DefaultDenylist = []string{
	// version control metadata
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/.github/**",
	"**/cvs/**",
	// readme-like and judging files
	"**/readme",
	"**/readme.*",
	"**/index.{html,htm}",
	"**/remarks",
	"**/remarks.*",
	"**/.gitignore",
	// build scripts and build output
	"**/{makefile,gnumakefile}",
	"**/{build,obj,bin,_build,dist,.deps,.libs}/**",
	"**/*.{o,a,so,exe,dll,dylib}",
	// images
	"**/*.{png,jpg,jpeg,gif,bmp,ico,svg,webp,tif,tiff,xpm,pbm,pgm,ppm}",
}

// Options configures a Filter.
type Options struct {
	// YearRoot is the slash-separated directory below the input root that
	// holds the year directories ("" when they sit directly in the root).
	YearRoot string
	Years    model.YearRange
	// Deny adds patterns to DefaultDenylist.
	Deny []string
}

// Decision is the filter's answer for one path.
type Decision struct {
	Verdict Verdict
	Reason  Reason

	// File is set whenever the path lies under a contest year and is not
	// denylisted, whatever the verdict. The classifier uses excluded files
	// only to notice entry groups that hold no sources.
	File *model.CandidateFile
}

// Filter is safe for concurrent use; it holds no mutable state.
type Filter struct {
	prefix []string
	years  model.YearRange
	deny   []string
}

// New validates the options and compiles the denylist.
func New(opts Options) (*Filter, error) {
	f := &Filter{years: opts.Years}
	if f.years == (model.YearRange{}) {
		f.years = model.DefaultYearRange
	}
	if root := strings.Trim(opts.YearRoot, "/"); root != "" {
		f.prefix = strings.Split(path.Clean(root), "/")
	}
	for _, p := range slices.Concat(DefaultDenylist, opts.Deny) {
		p = strings.ToLower(p)
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid denylist pattern %q", p)
		}
		f.deny = append(f.deny, p)
	}
	return f, nil
}

// Classify applies the rules to p.
func (f *Filter) Classify(p model.RawPath) Decision {
	if p.Symlink {
		return Decision{Verdict: Excluded, Reason: ReasonSymlink}
	}

	denied := f.denied(p.Rel)
	file, inYear := f.locate(p)
	var d Decision
	if inYear && !denied {
		d.File = &file
	}

	switch path.Ext(p.Name()) {
	case sourceExt:
		d.Verdict = Source
	case headerExt:
		d.Verdict, d.Reason = Auxiliary, ReasonHeader
	default:
		d.Verdict, d.Reason = Excluded, ReasonNotCSource
		return d
	}

	switch {
	case denied:
		d.Verdict, d.Reason = Excluded, ReasonDenylisted
	case !inYear:
		d.Verdict, d.Reason = Excluded, ReasonOutsideYear
	}
	return d
}

func (f *Filter) denied(rel string) bool {
	lower := strings.ToLower(rel)
	for _, pat := range f.deny {
		if ok, _ := doublestar.Match(pat, lower); ok {
			return true
		}
	}
	return false
}

// locate finds the contest year for p and builds the candidate record. The
// year must be a directory: a file named "1984" in the year root is not one.
func (f *Filter) locate(p model.RawPath) (model.CandidateFile, bool) {
	segs := p.Segments
	if len(segs) < len(f.prefix)+2 || !slices.Equal(segs[:len(f.prefix)], f.prefix) {
		return model.CandidateFile{}, false
	}
	year, ok := model.ParseYear(segs[len(f.prefix)], f.years)
	if !ok {
		return model.CandidateFile{}, false
	}
	ext := path.Ext(p.Name())
	role := model.RoleArtifact
	switch ext {
	case sourceExt:
		role = model.RoleSource
	case headerExt:
		role = model.RoleAuxiliary
	}
	return model.CandidateFile{
		Path:             p,
		Year:             year,
		Role:             role,
		Extension:        ext,
		SizeBytes:        p.Size,
		RelativeSegments: segs[len(f.prefix)+1:],
	}, true
}
