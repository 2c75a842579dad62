package writer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink writes the mirror below a local directory.
type DirSink struct {
	Root  string
	Force bool
}

// NewDirSink returns a sink rooted at dir.
func NewDirSink(dir string, force bool) *DirSink {
	return &DirSink{Root: dir, Force: force}
}

// Prepare creates Root if needed. An existing non-empty Root is cleared when
// Force is set and rejected otherwise; Root itself is never removed.
func (d *DirSink) Prepare(ctx context.Context) error {
	info, err := os.Stat(d.Root)
	switch {
	case os.IsNotExist(err):
		return os.MkdirAll(d.Root, 0o755)
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("output %s is not a directory", d.Root)
	}

	entries, err := os.ReadDir(d.Root)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if !d.Force {
		return fmt.Errorf("%s: %w", d.Root, ErrOutputNotEmpty)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(d.Root, e.Name())); err != nil {
			return fmt.Errorf("clear output: %w", err)
		}
	}
	return nil
}

// Put writes content to Root/path, creating parent directories. The file is
// written under a temporary name and renamed so a reader never sees a
// partial file.
func (d *DirSink) Put(ctx context.Context, path string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rel := filepath.FromSlash(path)
	if !filepath.IsLocal(rel) {
		return fmt.Errorf("refusing to write outside output root: %q", path)
	}
	target := filepath.Join(d.Root, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

func (d *DirSink) Close() error { return nil }
