package pipeline

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/config"
	"github.com/backmassage/ioccc-mirror/internal/logging"
	"github.com/backmassage/ioccc-mirror/internal/model"
	"github.com/backmassage/ioccc-mirror/internal/planner"
	"github.com/backmassage/ioccc-mirror/internal/scan"
	"github.com/backmassage/ioccc-mirror/internal/writer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// corpus builds a small winners tree covering the common layouts.
func corpus(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{
		"README.md",
		"tool.c",
		"1984/decot/decot.c",
		"1984/decot/hint.text",
		"2006/2/xyz.c",
		"2015/honorable/foo/foo.c",
		"2015/honorable/foo-v2/foo.c",
		"2015/honorable/notes/notes.txt",
		"2015/honorable/notes/judge.md",
		"2020/best-of-show/abc/abc.c",
		"2020/best-of-show/abc/abc.h",
		"2020/best-of-show/abc/README",
		"2020/best-of-show/abc/build/gen.c",
		"2099/future/x.c",
	} {
		touch(t, dir, name)
	}
	return dir
}

func testConfig(in string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.InputDir = in
	return &cfg
}

func run(t *testing.T, cfg *config.Config) (*Result, *writer.MemorySink) {
	t.Helper()
	sink := writer.NewMemorySink()
	res, err := RunWith(context.Background(), cfg, logging.Nop(), sink)
	require.NoError(t, err)
	return res, sink
}

func snapshot(s *writer.MemorySink) map[string]string {
	out := make(map[string]string)
	for _, p := range s.Paths() {
		b, _ := s.Get(p)
		out[p] = string(b)
	}
	return out
}

// --- Discover / Select ---

func TestDiscover_ParallelMatchesSequential(t *testing.T) {
	cfg := testConfig(corpus(t))
	seq, _, err := Discover(context.Background(), cfg)
	require.NoError(t, err)

	cfg.ParallelScan = 4
	par, _, err := Discover(context.Background(), cfg)
	require.NoError(t, err)

	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("parallel scan differs (-seq +par):\n%s", diff)
	}
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, _, err := Discover(context.Background(), testConfig(filepath.Join(t.TempDir(), "gone")))
	assert.ErrorIs(t, err, scan.ErrRootMissing)
}

func TestSelect(t *testing.T) {
	cfg := testConfig(corpus(t))
	paths, _, err := Discover(context.Background(), cfg)
	require.NoError(t, err)

	sel, err := Select(cfg, paths)
	require.NoError(t, err)
	assert.Equal(t, 5, sel.Sources)

	byPath := make(map[string]audit.Warning)
	for _, w := range sel.Log {
		assert.Equal(t, audit.ReasonExcluded, w.Reason)
		byPath[w.Path] = w
	}
	assert.Equal(t, "outside-year", byPath["tool.c"].Detail)
	assert.Equal(t, audit.SeverityWarn, byPath["tool.c"].Severity)
	assert.Equal(t, "denylisted", byPath["2020/best-of-show/abc/build/gen.c"].Detail)
	assert.Equal(t, "outside-year", byPath["2099/future/x.c"].Detail)
	assert.Equal(t, "not-c-source", byPath["2015/honorable/notes/notes.txt"].Detail)
	assert.Equal(t, audit.SeverityInfo, byPath["2015/honorable/notes/notes.txt"].Severity)
	assert.Equal(t, sel.Excluded, len(sel.Log))
}

func TestSelect_ExtraDeny(t *testing.T) {
	cfg := testConfig(corpus(t))
	cfg.Deny = []string{"**/decot/**"}
	paths, _, err := Discover(context.Background(), cfg)
	require.NoError(t, err)

	sel, err := Select(cfg, paths)
	require.NoError(t, err)
	assert.True(t, sel.Log.Has(audit.ReasonExcluded, "1984/decot/decot.c"))
	for _, f := range sel.Files {
		assert.NotEqual(t, "1984/decot/decot.c", f.Path.Rel)
	}
}

func TestBuildClassifier(t *testing.T) {
	cfg := testConfig(t.TempDir())
	c, err := BuildClassifier(cfg)
	require.NoError(t, err)
	assert.NotEmpty(t, c.Rules())

	rules, err := config.ParseRules([]byte("order: [rank]\nflat_years: [2006]\n"))
	require.NoError(t, err)
	cfg.Rules = rules
	c, err = BuildClassifier(cfg)
	require.NoError(t, err)
	for _, r := range c.Rules() {
		assert.Equal(t, "rank", string(r.Kind))
	}

	rules, err = config.ParseRules([]byte("order: [exact, fuzzy]\n"))
	require.NoError(t, err)
	cfg.Rules = rules
	_, err = BuildClassifier(cfg)
	assert.Error(t, err)
}

// --- Run ---

func TestRun_Scenarios(t *testing.T) {
	res, sink := run(t, testConfig(corpus(t)))

	want := []string{
		"1984/unclassified/decot/decot.c",
		"1984/unclassified/decot/descriptor.json",
		"2006/rank-2/xyz/descriptor.json",
		"2006/rank-2/xyz/xyz.c",
		"2015/honorable-mention/foo-2/descriptor.json",
		"2015/honorable-mention/foo-2/foo.c",
		"2015/honorable-mention/foo/descriptor.json",
		"2015/honorable-mention/foo/foo.c",
		"2020/best-of-show/abc/abc.c",
		"2020/best-of-show/abc/abc.h",
		"2020/best-of-show/abc/descriptor.json",
		"manifest.csv",
		"warnings.jsonl",
	}
	assert.ElementsMatch(t, want, sink.Paths())

	w := res.Warnings
	assert.True(t, w.Has(audit.ReasonCollisionRename, "2015/honorable/foo-v2"), "rename")
	assert.True(t, w.Has(audit.ReasonDroppedEmpty, "2015/honorable/notes"), "dropped")
	assert.True(t, w.Has(audit.ReasonUnclassified, "1984/decot"), "unclassified")
	assert.True(t, w.Has(audit.ReasonExcluded, "README.md"), "excluded")

	st := res.Stats
	assert.Equal(t, 5, st.Entries)
	assert.Equal(t, 1, st.Dropped)
	assert.Equal(t, 1, st.Renamed)
	assert.Equal(t, 5, st.Candidates)
	assert.Equal(t, 5, st.Placed)
	assert.InDelta(t, 1.0, st.Coverage(), 1e-9)
	assert.Equal(t, 6, st.Files)

	desc, ok := sink.Get("2020/best-of-show/abc/descriptor.json")
	require.True(t, ok)
	assert.Contains(t, string(desc), `"category": "best-of-show"`)
	assert.Contains(t, string(desc), `"sourcePaths": [
    "abc.c"
  ]`)
	assert.Contains(t, string(desc), `"auxiliaryPaths": [
    "abc.h"
  ]`)

	csv, ok := sink.Get("manifest.csv")
	require.True(t, ok)
	lines := strings.Split(strings.TrimSpace(string(csv)), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "year,category,identifier"))
	assert.True(t, strings.HasPrefix(lines[1], "1984,unclassified,decot,1,"))
	assert.True(t, strings.HasPrefix(lines[2], "2006,rank-2,xyz,1,"))
	assert.True(t, strings.HasPrefix(lines[3], "2015,honorable-mention,foo,1,"))
	assert.True(t, strings.HasPrefix(lines[4], "2015,honorable-mention,foo-2,1,"))
	assert.True(t, strings.HasPrefix(lines[5], "2020,best-of-show,abc,1,"))
}

func TestRun_Idempotent(t *testing.T) {
	cfg := testConfig(corpus(t))
	_, first := run(t, cfg)
	_, second := run(t, cfg)
	if diff := cmp.Diff(snapshot(first), snapshot(second)); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}

	cfg.ParallelScan = 3
	_, third := run(t, cfg)
	if diff := cmp.Diff(snapshot(first), snapshot(third)); diff != "" {
		t.Errorf("parallel run differs (-first +third):\n%s", diff)
	}
}

// Every .c file below a contest year lands in exactly one entry, or the
// audit trail says why it did not.
func TestRun_Coverage(t *testing.T) {
	in := corpus(t)
	res, _ := run(t, testConfig(in))

	placed := make(map[string]int)
	for _, ep := range res.Plan.Entries {
		for _, f := range ep.Files {
			if f.Role == model.RoleSource {
				placed[f.Source]++
			}
		}
	}

	root, err := filepath.EvalSymlinks(in)
	require.NoError(t, err)
	err = filepath.WalkDir(in, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".c" {
			return err
		}
		rel, _ := filepath.Rel(in, p)
		rel = filepath.ToSlash(rel)
		abs := filepath.Join(root, filepath.FromSlash(rel))
		n := placed[p] + placed[abs]
		if n == 0 {
			assert.True(t, res.Warnings.Has(audit.ReasonExcluded, rel), "%s neither placed nor excluded", rel)
		} else {
			assert.Equal(t, 1, n, "%s placed more than once", rel)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestRun_UniqueKeysAndVocabulary(t *testing.T) {
	res, _ := run(t, testConfig(corpus(t)))
	seen := make(map[model.Key]bool)
	for _, ep := range res.Plan.Entries {
		assert.False(t, seen[ep.Key], "duplicate key %s", ep.Key)
		seen[ep.Key] = true
		assert.True(t, ep.Key.Category.Valid(), "category %q", ep.Key.Category)
		assert.Equal(t, planner.EntryDir(ep.Key), ep.Dir)
	}
}

func TestRun_LooseFileBesideEntryDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"2020/best-of-show/abc/abc.c": "DIR",
		"2020/best-of-show/abc.c":     "LOOSE",
		"1984/foo/foo.c":              "DIR84",
		"1984/foo.c":                  "LOOSE84",
	}
	for name, content := range files {
		write(t, dir, name, content)
	}

	res, sink := run(t, testConfig(dir))
	assert.Equal(t, 4, res.Stats.Entries)
	assert.Equal(t, 2, res.Stats.Renamed)

	want := map[string]string{
		"2020/best-of-show/abc/abc.c":   "DIR",
		"2020/best-of-show/abc-2/abc.c": "LOOSE",
		"1984/unclassified/foo/foo.c":   "DIR84",
		"1984/unclassified/foo-2/foo.c": "LOOSE84",
	}
	for p, content := range want {
		got, ok := sink.Get(p)
		if assert.True(t, ok, "missing %s", p) {
			assert.Equal(t, content, string(got), p)
		}
	}
	for _, ep := range res.Plan.Entries {
		assert.Equal(t, 1, ep.Descriptor.FileCount, ep.Dir)
	}
}

func TestRun_YearRoot(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "winners/2020/best-of-show/abc/abc.c")
	touch(t, dir, "docs/2020/index.c")

	cfg := testConfig(dir)
	cfg.YearRoot = "winners"
	res, sink := run(t, cfg)
	assert.Equal(t, 1, res.Stats.Entries)
	assert.Contains(t, sink.Paths(), "2020/best-of-show/abc/abc.c")
	assert.True(t, res.Warnings.Has(audit.ReasonExcluded, "docs/2020/index.c"))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mirror")
	cfg := testConfig(corpus(t))
	cfg.OutputDir = out
	cfg.DryRun = true

	res, err := Run(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	assert.Equal(t, 5, res.Stats.Entries)
	_, err = os.Stat(out)
	assert.True(t, os.IsNotExist(err), "dry run created %s", out)
}

func TestRun_DirSink(t *testing.T) {
	out := filepath.Join(t.TempDir(), "mirror")
	cfg := testConfig(corpus(t))
	cfg.OutputDir = out

	_, err := Run(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(out, "2006", "rank-2", "xyz", "xyz.c"))
	require.NoError(t, err)
	assert.Equal(t, "main(){}", string(b))

	_, err = Run(context.Background(), cfg, logging.Nop())
	assert.ErrorIs(t, err, writer.ErrOutputNotEmpty)

	cfg.Force = true
	_, err = Run(context.Background(), cfg, logging.Nop())
	assert.NoError(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunWith(ctx, testConfig(corpus(t)), logging.Nop(), writer.NewMemorySink())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_EmptyCorpus(t *testing.T) {
	res, sink := run(t, testConfig(t.TempDir()))
	assert.Zero(t, res.Stats.Entries)
	assert.ElementsMatch(t, []string{"manifest.csv", "warnings.jsonl"}, sink.Paths())
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	write(t, dir, name, "main(){}")
}

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}
