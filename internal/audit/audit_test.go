package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLog_ClipDoesNotAlias(t *testing.T) {
	base := make(Log, 0, 8)
	base = base.Addf(SeverityWarn, ReasonExcluded, "a.txt", "not-c-source").Clip()
	left := base.Add(Warning{Severity: SeverityInfo, Reason: ReasonUnclassified, Path: "left"})
	right := base.Add(Warning{Severity: SeverityInfo, Reason: ReasonUnclassified, Path: "right"})

	assert.Len(t, base, 1)
	assert.Equal(t, "left", left[1].Path)
	assert.Equal(t, "right", right[1].Path)
}

func TestLog_AddAppendsInPlace(t *testing.T) {
	l := make(Log, 0, 4)
	for i := 0; i < 4; i++ {
		l = l.Add(Warning{Severity: SeverityInfo, Reason: ReasonExcluded, Path: "p"})
	}
	assert.Len(t, l, 4)
	assert.Equal(t, 4, cap(l), "Add must not reallocate while capacity remains")
}

func TestLog_CountFilterHas(t *testing.T) {
	var l Log
	l = l.Addf(SeverityInfo, ReasonExcluded, "README", "denylisted")
	l = l.Addf(SeverityWarn, ReasonDroppedEmpty, "2001/x", "no .c sources")
	l = l.Addf(SeverityInfo, ReasonExcluded, "2001/x/notes.txt", "not-c-source")

	assert.Equal(t, 2, l.Count(ReasonExcluded))
	assert.Equal(t, 0, l.Count(ReasonCollisionRename))
	assert.Len(t, l.Filter(ReasonDroppedEmpty), 1)
	assert.True(t, l.Has(ReasonDroppedEmpty, "2001/x"))
	assert.False(t, l.Has(ReasonDroppedEmpty, "2001/y"))
}

func TestLog_Merge(t *testing.T) {
	a := Log{}.Addf(SeverityInfo, ReasonExcluded, "a", "")
	b := Log{}.Addf(SeverityInfo, ReasonExcluded, "b", "")

	assert.Equal(t, []string{"a", "b"}, paths(a.Merge(b)))
	assert.Equal(t, a, a.Merge(nil))
	assert.Nil(t, Log(nil).Merge(nil))
}

func TestWarning_String(t *testing.T) {
	w := Warning{Severity: SeverityWarn, Reason: ReasonCollisionRename, Path: "2015/honorable-mention/foo-v2", Detail: "foo -> foo-2"}
	assert.Equal(t, "[warn] collision-rename 2015/honorable-mention/foo-v2: foo -> foo-2", w.String())

	w.Detail = ""
	assert.Equal(t, "[warn] collision-rename 2015/honorable-mention/foo-v2", w.String())
}

func paths(l Log) []string {
	out := make([]string, len(l))
	for i, w := range l {
		out[i] = w.Path
	}
	return out
}
