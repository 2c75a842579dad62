// Package audit records every non-fatal decision the pipeline makes. The log
// is the run's audit trail: together with the output it must explain why any
// scanned file did or did not end up in an entry.
//
// A [Log] is a value threaded through the pipeline stages. Stages receive the
// log, append to it, and return the result; nothing holds a shared log.
package audit

import (
	"fmt"
	"slices"
	"strings"
)

// Severity ranks a warning for display and filtering.
type Severity string

const (
	SeverityInfo Severity = "info"
	SeverityWarn Severity = "warn"
)

// Reason is the machine-readable cause of a warning.
type Reason string

const (
	ReasonExcluded        Reason = "excluded"
	ReasonUnreadableDir   Reason = "unreadable-dir"
	ReasonUnclassified    Reason = "unclassified-category"
	ReasonDroppedEmpty    Reason = "dropped-empty-group"
	ReasonCollisionRename Reason = "collision-rename"
)

// Warning is one audit record. Path is root-relative and slash-separated.
type Warning struct {
	Severity Severity `json:"severity"`
	Reason   Reason   `json:"reason"`
	Path     string   `json:"path"`
	Detail   string   `json:"detail,omitempty"`
}

func (w Warning) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s %s", w.Severity, w.Reason, w.Path)
	if w.Detail != "" {
		b.WriteString(": ")
		b.WriteString(w.Detail)
	}
	return b.String()
}

// Log is an ordered sequence of warnings.
type Log []Warning

// Add returns l with w appended. Like append, the result may share l's
// backing array; stages hand their log on with [Log.Clip].
func (l Log) Add(w Warning) Log {
	return append(l, w)
}

// Clip returns l with its capacity trimmed to its length, so a later Add by
// whoever receives it copies instead of writing into l's array.
func (l Log) Clip() Log {
	return slices.Clip(l)
}

// Addf appends a warning built from its parts.
func (l Log) Addf(sev Severity, reason Reason, path, format string, args ...any) Log {
	return l.Add(Warning{
		Severity: sev,
		Reason:   reason,
		Path:     path,
		Detail:   fmt.Sprintf(format, args...),
	})
}

// Merge returns l followed by other.
func (l Log) Merge(other Log) Log {
	if len(other) == 0 {
		return l.Clip()
	}
	out := make(Log, 0, len(l)+len(other))
	out = append(out, l...)
	return append(out, other...)
}

// Count returns the number of warnings with the given reason.
func (l Log) Count(reason Reason) int {
	n := 0
	for _, w := range l {
		if w.Reason == reason {
			n++
		}
	}
	return n
}

// Filter returns the warnings with the given reason, in order.
func (l Log) Filter(reason Reason) Log {
	var out Log
	for _, w := range l {
		if w.Reason == reason {
			out = append(out, w)
		}
	}
	return out
}

// Has reports whether a warning with reason and path exists.
func (l Log) Has(reason Reason, path string) bool {
	for _, w := range l {
		if w.Reason == reason && w.Path == path {
			return true
		}
	}
	return false
}
