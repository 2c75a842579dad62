package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func touch(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func rels(paths []model.RawPath) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = p.Rel
	}
	return out
}

func TestNew_RootValidation(t *testing.T) {
	dir := t.TempDir()

	_, err := New(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, ErrRootMissing)

	touch(t, dir, "file.txt", "x")
	_, err = New(filepath.Join(dir, "file.txt"))
	assert.ErrorIs(t, err, ErrRootNotDir)

	s, err := New(dir)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(s.Root()))
}

func TestPaths_DepthFirstLexicographic(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2020/b/z.c", "zz")
	touch(t, dir, "2020/a/y.c", "y")
	touch(t, dir, "1984/x.c", "x")
	touch(t, dir, "2020/a.c", "a")
	touch(t, dir, "README.md", "r")

	s, err := New(dir)
	require.NoError(t, err)
	paths, log, err := s.Collect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, log)

	assert.Equal(t, []string{
		"1984/x.c",
		"2020/a/y.c",
		"2020/a.c",
		"2020/b/z.c",
		"README.md",
	}, rels(paths))
	assert.Equal(t, []string{"2020", "b", "z.c"}, paths[3].Segments)
	assert.EqualValues(t, 2, paths[3].Size)
}

func TestPaths_Restartable(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2001/a/a.c", "a")
	touch(t, dir, "2001/b/b.c", "b")

	s, err := New(dir)
	require.NoError(t, err)

	var first, second []string
	for p, err := range s.Paths() {
		require.NoError(t, err)
		first = append(first, p.Rel)
	}
	for p, err := range s.Paths() {
		require.NoError(t, err)
		second = append(second, p.Rel)
	}
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestPaths_EarlyBreak(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2001/a.c", "a")
	touch(t, dir, "2001/b.c", "b")
	touch(t, dir, "2001/c.c", "c")

	s, err := New(dir)
	require.NoError(t, err)
	n := 0
	for range s.Paths() {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestPaths_HiddenDirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, ".git/objects/x.c", "x")
	touch(t, dir, "2001/a.c", "a")

	s, err := New(dir)
	require.NoError(t, err)
	paths, _, err := s.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{".git/objects/x.c", "2001/a.c"}, rels(paths))

	s, err = New(dir, WithSkipHidden(true))
	require.NoError(t, err)
	paths, _, err = s.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2001/a.c"}, rels(paths))
}

func TestPaths_SymlinksNotFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	touch(t, dir, "2001/real/a.c", "a")
	require.NoError(t, os.Symlink(filepath.Join(dir, "2001"), filepath.Join(dir, "2001", "loop")))

	s, err := New(dir)
	require.NoError(t, err)
	paths, _, err := s.Collect(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"2001/loop", "2001/real/a.c"}, rels(paths))
	assert.True(t, paths[0].Symlink)
	assert.False(t, paths[1].Symlink)
}

func TestCollect_UnreadableDirIsWarning(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	dir := t.TempDir()
	touch(t, dir, "2001/locked/a.c", "a")
	touch(t, dir, "2001/open/b.c", "b")
	locked := filepath.Join(dir, "2001", "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	s, err := New(dir)
	require.NoError(t, err)
	paths, log, err := s.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"2001/open/b.c"}, rels(paths))
	require.Len(t, log, 1)
	assert.Equal(t, audit.ReasonUnreadableDir, log[0].Reason)
	assert.Equal(t, "2001/locked", log[0].Path)
}

func TestCollect_Cancelled(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "2001/a.c", "a")

	s, err := New(dir)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = s.Collect(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCollectParallel_MatchesSequential(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{
		"1984/anonymous/anonymous.c",
		"1984/decot.c",
		"2004/gavin/gavin.c",
		"2004/gavin/sub/extra.c",
		"2004/hibachi/hibachi.c",
		"2020/best-of-show/abc/abc.c",
		"2020/best-of-show/abc/abc.h",
		"README.md",
		".hidden/x.c",
	} {
		touch(t, dir, rel, rel)
	}

	s, err := New(dir)
	require.NoError(t, err)
	want, wantLog, err := s.Collect(context.Background())
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 3, 16} {
		got, gotLog, err := s.CollectParallel(context.Background(), workers)
		require.NoError(t, err)
		assert.Equal(t, rels(want), rels(got), "workers=%d", workers)
		assert.Equal(t, wantLog, gotLog)
	}
}
