// Package scan walks the input root and produces the raw file sequence the
// rest of the pipeline consumes.
//
// The walk is depth-first and lexicographic by path segment, so every later
// stage sees files in the same order on every run. Symbolic links are
// reported but never followed. A subdirectory that cannot be read is
// reported as a [*SkipError] and the walk carries on; only a missing or
// unreadable root stops it.
package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/model"
)

var (
	ErrRootMissing = errors.New("input root does not exist")
	ErrRootNotDir  = errors.New("input root is not a directory")
)

// SkipError reports a path below the root that the walk could not read.
type SkipError struct {
	Path string // root-relative, slash-separated
	Err  error
}

func (e *SkipError) Error() string { return "skipped " + e.Path + ": " + e.Err.Error() }
func (e *SkipError) Unwrap() error { return e.Err }

// Option configures a Scanner.
type Option func(*Scanner)

// WithSkipHidden prunes directories whose name starts with a dot. Hidden
// directories are walked by default.
func WithSkipHidden(skip bool) Option {
	return func(s *Scanner) { s.skipHidden = skip }
}

// Scanner enumerates the files under one root directory.
type Scanner struct {
	root       string
	skipHidden bool
}

// New validates root and returns a Scanner for it. A missing root or a root
// that is not a directory is an error.
func New(root string, opts ...Option) (*Scanner, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve input root: %w", err)
	}
	fi, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRootMissing, root)
	}
	if err != nil {
		return nil, fmt.Errorf("stat input root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotDir, root)
	}
	s := &Scanner{root: abs}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute scan root.
func (s *Scanner) Root() string { return s.root }

// Paths returns the lazy file sequence. Each call walks the tree again, so
// the sequence can be ranged over more than once. The error half of a pair
// is either a *SkipError (keep going) or a fatal error for the root.
func (s *Scanner) Paths() iter.Seq2[model.RawPath, error] {
	return func(yield func(model.RawPath, error) bool) {
		s.walk(s.root, yield)
	}
}

func (s *Scanner) walk(start string, yield func(model.RawPath, error) bool) {
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == s.root {
				return err
			}
			if !yield(model.RawPath{}, &SkipError{Path: s.rel(p), Err: err}) {
				return filepath.SkipAll
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != s.root && s.skipHidden && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if !yield(model.RawPath{}, &SkipError{Path: s.rel(p), Err: err}) {
				return filepath.SkipAll
			}
			return nil
		}
		symlink := d.Type()&fs.ModeSymlink != 0
		if !yield(model.NewRawPath(p, s.rel(p), info.Size(), symlink), nil) {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		yield(model.RawPath{}, fmt.Errorf("walk input root: %w", err))
	}
}

func (s *Scanner) rel(p string) string {
	r, err := filepath.Rel(s.root, p)
	if err != nil {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(r)
}

// Collect drains [Scanner.Paths] into a slice. Skipped paths become
// unreadable-dir warnings on the returned log; a fatal walk error is
// returned as-is.
func (s *Scanner) Collect(ctx context.Context) ([]model.RawPath, audit.Log, error) {
	return collect(ctx, s.Paths())
}

func collect(ctx context.Context, seq iter.Seq2[model.RawPath, error]) ([]model.RawPath, audit.Log, error) {
	var (
		paths []model.RawPath
		log   audit.Log
	)
	for p, err := range seq {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		if err != nil {
			var skip *SkipError
			if !errors.As(err, &skip) {
				return nil, nil, err
			}
			log = log.Add(audit.Warning{
				Severity: audit.SeverityWarn,
				Reason:   audit.ReasonUnreadableDir,
				Path:     skip.Path,
				Detail:   skip.Err.Error(),
			})
			continue
		}
		paths = append(paths, p)
	}
	return paths, log.Clip(), nil
}
