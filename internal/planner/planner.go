package planner

import (
	"errors"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/backmassage/ioccc-mirror/internal/descriptor"
	"github.com/backmassage/ioccc-mirror/internal/manifest"
	"github.com/backmassage/ioccc-mirror/internal/model"
)

// ErrPathCollision is wrapped by every *CollisionError.
var ErrPathCollision = errors.New("output path collision")

// CollisionError names the two entries that map to one output path: an
// entry directory or a single file target. First and Second are equal when
// two files of one entry collide.
type CollisionError struct {
	Path   string
	First  model.Key
	Second model.Key
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("%s: %s and %s both map to %s", ErrPathCollision, e.First, e.Second, e.Path)
}

func (e *CollisionError) Unwrap() error { return ErrPathCollision }

// EntryDir returns the canonical output directory for k.
func EntryDir(k model.Key) string {
	return path.Join(k.Year.String(), string(k.Category), k.Identifier)
}

// Plan builds the output plan. entries are sorted into manifest order on a
// copy; the caller's slice is left untouched.
//
// Flow:
//  1. Sort by (year, category, identifier)
//  2. Assign each entry its directory, asserting uniqueness
//  3. Map source and auxiliary files below that directory, asserting every
//     target (descriptor included) is unique across the plan
//  4. Fold the sorted entries into manifest rows
func Plan(entries []model.Entry) (*OutputPlan, error) {
	sorted := slices.Clone(entries)
	model.SortEntries(sorted)

	plan := &OutputPlan{Entries: make([]EntryPlan, 0, len(sorted))}
	claimed := make(map[string]model.Key, len(sorted))
	targets := make(map[string]model.Key)

	for _, e := range sorted {
		k := e.Key()
		if !k.Category.Valid() {
			return nil, fmt.Errorf("entry %s: category outside vocabulary", k)
		}
		if len(e.SourceFiles) == 0 {
			return nil, fmt.Errorf("entry %s: no source files", k)
		}

		dir := EntryDir(k)
		fold := strings.ToLower(dir)
		if prev, taken := claimed[fold]; taken {
			return nil, &CollisionError{Path: dir, First: prev, Second: k}
		}
		claimed[fold] = k

		ep := EntryPlan{
			Key:        k,
			Dir:        dir,
			Descriptor: descriptor.Build(e),
		}
		for _, f := range e.SourceFiles {
			ep.Files = append(ep.Files, copyFor(e, dir, f))
		}
		for _, f := range e.AuxiliaryFiles {
			ep.Files = append(ep.Files, copyFor(e, dir, f))
		}
		slices.SortFunc(ep.Files, func(a, b FileCopy) int { return strings.Compare(a.Target, b.Target) })
		for _, t := range append(fileTargets(ep.Files), ep.DescriptorPath()) {
			fold := strings.ToLower(t)
			if prev, taken := targets[fold]; taken {
				return nil, &CollisionError{Path: t, First: prev, Second: k}
			}
			targets[fold] = k
		}
		plan.Entries = append(plan.Entries, ep)
	}

	rows, err := manifest.Aggregate(sorted)
	if err != nil {
		return nil, err
	}
	plan.Manifest = rows
	return plan, nil
}

func copyFor(e model.Entry, dir string, f model.CandidateFile) FileCopy {
	return FileCopy{
		Source: f.Path.Abs,
		Target: path.Join(dir, e.InnerPath(f)),
		Size:   f.SizeBytes,
		Role:   f.Role,
	}
}

func fileTargets(files []FileCopy) []string {
	out := make([]string, 0, len(files)+1)
	for _, f := range files {
		out = append(out, f.Target)
	}
	return out
}
