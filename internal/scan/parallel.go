package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/model"
)

// CollectParallel is [Scanner.Collect] with each top-level directory walked
// on its own goroutine (at most workers at a time). Results are stitched back
// in lexicographic order of the top-level names, and the stitched slice is
// then sorted by segment, so the output is identical to a sequential scan.
func (s *Scanner) CollectParallel(ctx context.Context, workers int) ([]model.RawPath, audit.Log, error) {
	if workers < 1 {
		workers = 1
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, nil, fmt.Errorf("read input root: %w", err)
	}

	type slot struct {
		paths []model.RawPath
		log   audit.Log
	}
	slots := make([]slot, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range entries {
		if e.IsDir() && s.skipHidden && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		p := filepath.Join(s.root, e.Name())
		g.Go(func() error {
			paths, log, err := collect(gctx, s.subtree(p))
			if err != nil {
				return err
			}
			slots[i] = slot{paths, log}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		paths []model.RawPath
		log   audit.Log
	)
	for _, sl := range slots {
		paths = append(paths, sl.paths...)
		log = log.Merge(sl.log)
	}
	slices.SortStableFunc(paths, func(a, b model.RawPath) int {
		return slices.Compare(a.Segments, b.Segments)
	})
	return paths, log, nil
}

// subtree walks one top-level entry (file or directory) with the same
// callback as a full walk, so relative paths stay anchored at the root.
func (s *Scanner) subtree(p string) func(yield func(model.RawPath, error) bool) {
	return func(yield func(model.RawPath, error) bool) {
		s.walk(p, yield)
	}
}
