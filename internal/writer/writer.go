package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/descriptor"
	"github.com/backmassage/ioccc-mirror/internal/manifest"
	"github.com/backmassage/ioccc-mirror/internal/planner"
)

// WarningsFileName is the audit trail's file name at the output root.
const WarningsFileName = "warnings.jsonl"

// Logger is the subset of the logging API the writer needs.
type Logger interface {
	Debug(bool, string, ...interface{})
}

// Stats counts what a Write stored.
type Stats struct {
	Entries     int
	Files       int
	Descriptors int
	Bytes       int64
}

// Writer copies a plan into a Sink.
type Writer struct {
	sink    Sink
	log     Logger
	verbose bool

	// readFile loads a source file; tests replace it.
	readFile func(string) ([]byte, error)
}

// New returns a writer that stores into sink.
func New(sink Sink, log Logger, verbose bool) *Writer {
	return &Writer{sink: sink, log: log, verbose: verbose, readFile: os.ReadFile}
}

// Write prepares the sink and stores the whole plan plus the audit trail.
// It stops at the first failure or when ctx is cancelled between files.
func (w *Writer) Write(ctx context.Context, plan *planner.OutputPlan, warnings audit.Log) (Stats, error) {
	var st Stats
	if err := w.sink.Prepare(ctx); err != nil {
		return st, fmt.Errorf("prepare output: %w", err)
	}

	for _, ep := range plan.Entries {
		for _, f := range ep.Files {
			if err := ctx.Err(); err != nil {
				return st, err
			}
			content, err := w.readFile(f.Source)
			if err != nil {
				return st, fmt.Errorf("read %s: %w", f.Source, err)
			}
			if err := w.sink.Put(ctx, f.Target, content); err != nil {
				return st, fmt.Errorf("write %s: %w", f.Target, err)
			}
			st.Files++
			st.Bytes += int64(len(content))
		}

		b, err := descriptor.Marshal(ep.Descriptor)
		if err != nil {
			return st, fmt.Errorf("encode descriptor for %s: %w", ep.Key, err)
		}
		if err := w.sink.Put(ctx, ep.DescriptorPath(), b); err != nil {
			return st, fmt.Errorf("write %s: %w", ep.DescriptorPath(), err)
		}
		st.Descriptors++
		st.Entries++
		if w.log != nil {
			w.log.Debug(w.verbose, "Wrote %s (%d file(s))", ep.Dir, len(ep.Files))
		}
	}

	var csvBuf bytes.Buffer
	if err := manifest.WriteCSV(&csvBuf, plan.Manifest); err != nil {
		return st, fmt.Errorf("encode manifest: %w", err)
	}
	if err := w.sink.Put(ctx, manifest.FileName, csvBuf.Bytes()); err != nil {
		return st, fmt.Errorf("write %s: %w", manifest.FileName, err)
	}

	jsonl, err := EncodeWarnings(warnings)
	if err != nil {
		return st, fmt.Errorf("encode warnings: %w", err)
	}
	if err := w.sink.Put(ctx, WarningsFileName, jsonl); err != nil {
		return st, fmt.Errorf("write %s: %w", WarningsFileName, err)
	}
	return st, nil
}

// EncodeWarnings renders the log as JSON Lines, one warning per line.
func EncodeWarnings(l audit.Log) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, w := range l {
		if err := enc.Encode(w); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
