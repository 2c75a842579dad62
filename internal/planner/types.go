package planner

import (
	"github.com/backmassage/ioccc-mirror/internal/descriptor"
	"github.com/backmassage/ioccc-mirror/internal/manifest"
	"github.com/backmassage/ioccc-mirror/internal/model"
)

// FileCopy places one input file in the mirror. Target is slash-separated and
// relative to the output root.
type FileCopy struct {
	Source string
	Target string
	Size   int64
	Role   model.FileRole
}

// EntryPlan holds everything the writer needs for one entry.
type EntryPlan struct {
	Key        model.Key
	Dir        string
	Descriptor descriptor.Descriptor
	Files      []FileCopy
}

// DescriptorPath returns the target of the entry's descriptor file.
func (p EntryPlan) DescriptorPath() string {
	return p.Dir + "/" + descriptor.FileName
}

// OutputPlan is the complete, validated write plan of a run. Entries are in
// manifest order.
type OutputPlan struct {
	Entries  []EntryPlan
	Manifest []manifest.Row
}

// FileCount returns the number of files the plan copies.
func (p *OutputPlan) FileCount() int {
	n := 0
	for _, e := range p.Entries {
		n += len(e.Files)
	}
	return n
}

// TotalBytes returns the summed size of every copied file.
func (p *OutputPlan) TotalBytes() int64 {
	var n int64
	for _, e := range p.Entries {
		for _, f := range e.Files {
			n += f.Size
		}
	}
	return n
}
