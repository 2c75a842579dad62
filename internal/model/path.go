package model

import (
	"path"
	"strings"
)

// RawPath is one file reached by the scanner. Rel and Segments are relative
// to the scan root and always use forward slashes, whatever the host OS.
type RawPath struct {
	Abs      string
	Rel      string
	Segments []string
	Size     int64
	Symlink  bool
}

// NewRawPath builds a RawPath from an absolute path and its root-relative
// slash-separated form.
func NewRawPath(abs, rel string, size int64, symlink bool) RawPath {
	rel = strings.TrimPrefix(path.Clean(rel), "./")
	return RawPath{
		Abs:      abs,
		Rel:      rel,
		Segments: strings.Split(rel, "/"),
		Size:     size,
		Symlink:  symlink,
	}
}

// Name returns the final path segment.
func (p RawPath) Name() string {
	if len(p.Segments) == 0 {
		return ""
	}
	return p.Segments[len(p.Segments)-1]
}

// FileRole says how a file under a year directory participates in an entry.
type FileRole string

const (
	RoleSource    FileRole = "source"    // .c file, a primary entry source.
	RoleAuxiliary FileRole = "auxiliary" // .h file, surfaced beside the sources.
	RoleArtifact  FileRole = "artifact"  // anything else; only marks that a group exists.
)

// CandidateFile is a file that lies under a recognized contest year and was
// not denylisted. Only RoleSource files become entry sources.
type CandidateFile struct {
	Path      RawPath
	Year      ContestYear
	Role      FileRole
	Extension string
	SizeBytes int64

	// RelativeSegments runs from the first segment below the year directory
	// to the file name, inclusive.
	RelativeSegments []string
}

// Dirs returns the directory part of RelativeSegments.
func (f CandidateFile) Dirs() []string {
	if len(f.RelativeSegments) == 0 {
		return nil
	}
	return f.RelativeSegments[:len(f.RelativeSegments)-1]
}
