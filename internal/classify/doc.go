// Package classify partitions the candidate files of each contest year into
// entries and names them.
//
// For every file the classifier looks at the directory segments between the
// year and the file:
//
//	<year>/<category>/<entry>/...   category layout, entry from a directory
//	<year>/<category>/<stem>.c      category layout, flattened under the category
//	<year>/<entry>/...              flat layout, no category directory
//	<year>/<stem>.c                 flat layout, file directly under the year
//
// A directory is a category directory when one of the ordered [Rule]s
// matches it. Rules are grouped by kind (exact keyword, keyword contained,
// numeric rank) and evaluated in priority order; the first match wins. When
// nothing matches, the segment is taken as an entry directory and the entry
// is filed under "unclassified" with a warning.
//
// Run-wide state (claimed identifiers, the audit log, emitted entries) lives
// in a [State] value that each [Classifier.ClassifyYear] call receives and
// returns.
package classify
