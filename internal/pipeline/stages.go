package pipeline

import (
	"context"
	"fmt"
	"path"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/classify"
	"github.com/backmassage/ioccc-mirror/internal/config"
	"github.com/backmassage/ioccc-mirror/internal/filter"
	"github.com/backmassage/ioccc-mirror/internal/model"
	"github.com/backmassage/ioccc-mirror/internal/scan"
)

// Discover scans the input root. With cfg.ParallelScan > 0 the top-level
// directories are walked concurrently; the result order is the same.
func Discover(ctx context.Context, cfg *config.Config) ([]model.RawPath, audit.Log, error) {
	s, err := scan.New(cfg.InputDir, scan.WithSkipHidden(cfg.SkipHidden))
	if err != nil {
		return nil, nil, err
	}
	if cfg.ParallelScan > 0 {
		return s.CollectParallel(ctx, cfg.ParallelScan)
	}
	return s.Collect(ctx)
}

// Selection is the outcome of filtering a scan.
type Selection struct {
	// Files holds every path under a contest year that was not denylisted,
	// artifacts included, in scan order.
	Files    []model.CandidateFile
	Sources  int
	Excluded int
	Log      audit.Log
}

// Select runs the filter over paths. Every rejected path gets an "excluded"
// record whose detail is the filter's reason; rejected .c files are
// warnings, everything else is informational.
func Select(cfg *config.Config, paths []model.RawPath) (Selection, error) {
	f, err := filter.New(filter.Options{
		YearRoot: cfg.YearRoot,
		Years:    cfg.YearRange(),
		Deny:     cfg.Deny,
	})
	if err != nil {
		return Selection{}, err
	}

	var sel Selection
	for _, p := range paths {
		d := f.Classify(p)
		if d.File != nil {
			sel.Files = append(sel.Files, *d.File)
		}
		switch d.Verdict {
		case filter.Source:
			sel.Sources++
		case filter.Excluded:
			sel.Excluded++
			sev := audit.SeverityInfo
			if path.Ext(p.Name()) == ".c" {
				sev = audit.SeverityWarn
			}
			sel.Log = sel.Log.Add(audit.Warning{
				Severity: sev,
				Reason:   audit.ReasonExcluded,
				Path:     p.Rel,
				Detail:   string(d.Reason),
			})
		}
	}
	sel.Log = sel.Log.Clip()
	return sel, nil
}

// BuildClassifier creates a classifier from the loaded rules file, or the
// built-in rules when there is none.
func BuildClassifier(cfg *config.Config) (*classify.Classifier, error) {
	r := cfg.Rules
	if r == nil {
		return classify.New(classify.Options{})
	}

	order := classify.DefaultOrder
	if len(r.Order) > 0 {
		order = make([]classify.RuleKind, len(r.Order))
		for i, k := range r.Order {
			order[i] = classify.RuleKind(k)
		}
	}
	rules, err := classify.BuildRules(order, r.CategoryAliases())
	if err != nil {
		return nil, fmt.Errorf("rules file: %w", err)
	}
	return classify.New(classify.Options{Rules: rules, FlatYears: r.Years()})
}
