package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/ioccc-mirror/internal/model"
)

func raw(rel string) model.RawPath {
	return model.NewRawPath("/repo/"+rel, rel, 10, false)
}

func TestClassify(t *testing.T) {
	f, err := New(Options{})
	require.NoError(t, err)

	tests := []struct {
		rel         string
		wantVerdict Verdict
		wantReason  Reason
		wantFile    bool
	}{
		{"2020/best-of-show/abc/abc.c", Source, ReasonNone, true},
		{"2020/best-of-show/abc/abc.h", Auxiliary, ReasonHeader, true},
		{"2020/best-of-show/abc/notes.txt", Excluded, ReasonNotCSource, true},
		{"2006/2/xyz.c", Source, ReasonNone, true},
		{"1984/decot.c", Source, ReasonNone, true},
		{"1984/anonymous/sub/dir/deep.c", Source, ReasonNone, true},

		// extension is exact
		{"2001/a/prog.C", Excluded, ReasonNotCSource, true},
		{"2001/a/prog.cc", Excluded, ReasonNotCSource, true},
		{"2001/a/prog.c.orig", Excluded, ReasonNotCSource, true},

		// denylist
		{"2001/a/README", Excluded, ReasonNotCSource, false},
		{"2001/a/build/gen.c", Excluded, ReasonDenylisted, false},
		{".git/objects/ab/x.c", Excluded, ReasonDenylisted, false},
		{"2001/a/.git/hooks/x.c", Excluded, ReasonDenylisted, false},
		{"2001/a/Makefile", Excluded, ReasonNotCSource, false},
		{"2001/a/README.c", Excluded, ReasonDenylisted, false},
		{"2001/a/screenshot.PNG", Excluded, ReasonNotCSource, false},

		// year
		{"tools/helper.c", Excluded, ReasonOutsideYear, false},
		{"main.c", Excluded, ReasonOutsideYear, false},
		{"1983/a/a.c", Excluded, ReasonOutsideYear, false},
		{"20201/a/a.c", Excluded, ReasonOutsideYear, false},
		{"2020-old/a/a.c", Excluded, ReasonOutsideYear, false},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			d := f.Classify(raw(tt.rel))
			assert.Equal(t, tt.wantVerdict, d.Verdict)
			assert.Equal(t, tt.wantReason, d.Reason)
			assert.Equal(t, tt.wantFile, d.File != nil)
		})
	}
}

func TestClassify_CandidateFields(t *testing.T) {
	f, err := New(Options{})
	require.NoError(t, err)

	d := f.Classify(model.NewRawPath("/repo/2020/best-of-show/abc/abc.c", "2020/best-of-show/abc/abc.c", 1234, false))
	require.NotNil(t, d.File)
	assert.Equal(t, model.ContestYear(2020), d.File.Year)
	assert.Equal(t, model.RoleSource, d.File.Role)
	assert.Equal(t, ".c", d.File.Extension)
	assert.EqualValues(t, 1234, d.File.SizeBytes)
	assert.Equal(t, []string{"best-of-show", "abc", "abc.c"}, d.File.RelativeSegments)
	assert.Equal(t, []string{"best-of-show", "abc"}, d.File.Dirs())
}

func TestClassify_Symlink(t *testing.T) {
	f, err := New(Options{})
	require.NoError(t, err)

	d := f.Classify(model.NewRawPath("/repo/2020/a/a.c", "2020/a/a.c", 0, true))
	assert.Equal(t, Excluded, d.Verdict)
	assert.Equal(t, ReasonSymlink, d.Reason)
	assert.Nil(t, d.File)
}

func TestClassify_YearRoot(t *testing.T) {
	f, err := New(Options{YearRoot: "winners/"})
	require.NoError(t, err)

	d := f.Classify(raw("winners/1984/anonymous/anonymous.c"))
	assert.Equal(t, Source, d.Verdict)
	require.NotNil(t, d.File)
	assert.Equal(t, []string{"anonymous", "anonymous.c"}, d.File.RelativeSegments)

	d = f.Classify(raw("1984/anonymous/anonymous.c"))
	assert.Equal(t, ReasonOutsideYear, d.Reason)
}

func TestClassify_YearRange(t *testing.T) {
	f, err := New(Options{Years: model.YearRange{Min: 2000, Max: 2010}})
	require.NoError(t, err)

	assert.Equal(t, Source, f.Classify(raw("2005/a/a.c")).Verdict)
	assert.Equal(t, ReasonOutsideYear, f.Classify(raw("1999/a/a.c")).Reason)
	assert.Equal(t, ReasonOutsideYear, f.Classify(raw("2011/a/a.c")).Reason)
}

func TestClassify_YearFileIsNotYearDir(t *testing.T) {
	f, err := New(Options{})
	require.NoError(t, err)
	d := f.Classify(raw("1984"))
	assert.Equal(t, ReasonNotCSource, d.Reason)
	assert.Nil(t, d.File)
}

func TestNew_ExtraDenyPatterns(t *testing.T) {
	f, err := New(Options{Deny: []string{"**/judges/**"}})
	require.NoError(t, err)
	assert.Equal(t, ReasonDenylisted, f.Classify(raw("2001/judges/x.c")).Reason)

	_, err = New(Options{Deny: []string{"[unterminated"}})
	assert.Error(t, err)
}

func TestVerdict_String(t *testing.T) {
	assert.Equal(t, "source", Source.String())
	assert.Equal(t, "auxiliary", Auxiliary.String())
	assert.Equal(t, "excluded", Excluded.String())
}
