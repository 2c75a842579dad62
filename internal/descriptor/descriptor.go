// Package descriptor projects a classified entry onto the per-entry metadata
// record written as descriptor.json.
package descriptor

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/backmassage/ioccc-mirror/internal/model"
)

// FileName is the descriptor's file name inside each entry directory.
const FileName = "descriptor.json"

// LLMContext is the fixed reading note carried by every descriptor for
// tools that analyze entries without a human in the loop.
const LLMContext = "This directory holds one IOCCC winning entry. " +
	"The C sources are intentionally obfuscated or unusually constructed. " +
	"Read descriptor.json first for year, category and identifier, then the " +
	"top-of-file comments and macros of each source to infer purpose. " +
	"Build files and READMEs of the original corpus may be absent."

// Descriptor is the normalized metadata record of one entry.
type Descriptor struct {
	Year           int      `json:"year"`
	Category       string   `json:"category"`
	Identifier     string   `json:"identifier"`
	FileCount      int      `json:"fileCount"`
	TotalBytes     int64    `json:"totalBytes"`
	SourcePaths    []string `json:"sourcePaths"`
	AuthorHint     string   `json:"authorHint,omitempty"`
	AuxiliaryPaths []string `json:"auxiliaryPaths,omitempty"`
	OriginalPath   string   `json:"originalPath,omitempty"`
	LLMContext     string   `json:"llmContext,omitempty"`
}

// Build computes the descriptor for e. TotalBytes counts source files only,
// matching FileCount. Paths are relative to the entry group and sorted.
func Build(e model.Entry) Descriptor {
	d := Descriptor{
		Year:         int(e.Year),
		Category:     string(e.Category),
		Identifier:   e.Identifier,
		FileCount:    len(e.SourceFiles),
		SourcePaths:  make([]string, 0, len(e.SourceFiles)),
		AuthorHint:   e.AuthorHint,
		OriginalPath: e.GroupPath,
		LLMContext:   LLMContext,
	}
	for _, f := range e.SourceFiles {
		d.TotalBytes += f.SizeBytes
		d.SourcePaths = append(d.SourcePaths, e.InnerPath(f))
	}
	slices.Sort(d.SourcePaths)
	for _, f := range e.AuxiliaryFiles {
		d.AuxiliaryPaths = append(d.AuxiliaryPaths, e.InnerPath(f))
	}
	slices.Sort(d.AuxiliaryPaths)
	return d
}

// Marshal encodes d as indented JSON with a trailing newline. HTML
// characters are left unescaped so paths like "a&b.c" stay readable.
func Marshal(d Descriptor) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
