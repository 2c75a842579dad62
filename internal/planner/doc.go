// Package planner maps classified entries onto the canonical output layout
//
//	<year>/<category>/<identifier>/<path inside entry>
//	<year>/<category>/<identifier>/descriptor.json
//	manifest.csv
//
// and builds the OutputPlan handed to the writer. Two entries that would land
// in the same directory abort the run: the classifier guarantees unique keys,
// so a collision here means an invariant broke upstream.
//
// Directories are compared case-insensitively because the mirror may be
// written to a case-folding filesystem or object store.
package planner
