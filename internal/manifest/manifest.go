// Package manifest folds all entries of a run into one flat, ordered table
// and encodes it as CSV.
package manifest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/backmassage/ioccc-mirror/internal/descriptor"
	"github.com/backmassage/ioccc-mirror/internal/model"
)

// FileName is the manifest's file name at the output root.
const FileName = "manifest.csv"

// ErrUnordered reports entries that are not strictly ascending by
// (year, category, identifier).
var ErrUnordered = errors.New("manifest: entries out of order")

// Header lists the CSV columns in order.
var Header = []string{"year", "category", "identifier", "fileCount", "totalBytes", "authorHint", "originalPath"}

// Row is one entry's line in the manifest.
type Row struct {
	Year         int
	Category     string
	Identifier   string
	FileCount    int
	TotalBytes   int64
	AuthorHint   string
	OriginalPath string
}

// FromDescriptor flattens d into a row.
func FromDescriptor(d descriptor.Descriptor) Row {
	return Row{
		Year:         d.Year,
		Category:     d.Category,
		Identifier:   d.Identifier,
		FileCount:    d.FileCount,
		TotalBytes:   d.TotalBytes,
		AuthorHint:   d.AuthorHint,
		OriginalPath: d.OriginalPath,
	}
}

// Aggregate builds one row per entry. Entries must already be sorted with
// model.SortEntries; a repeated or descending key yields ErrUnordered.
func Aggregate(entries []model.Entry) ([]Row, error) {
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		if i > 0 {
			prev := entries[i-1].Key()
			if prev.Compare(e.Key()) >= 0 {
				return nil, fmt.Errorf("%w: %s then %s", ErrUnordered, prev, e.Key())
			}
		}
		rows = append(rows, FromDescriptor(descriptor.Build(e)))
	}
	return rows, nil
}

// Record returns r's CSV fields in Header order.
func (r Row) Record() []string {
	return []string{
		strconv.Itoa(r.Year),
		r.Category,
		r.Identifier,
		strconv.Itoa(r.FileCount),
		strconv.FormatInt(r.TotalBytes, 10),
		r.AuthorHint,
		r.OriginalPath,
	}
}

// WriteCSV writes the header and one record per row.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
