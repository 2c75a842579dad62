// Package model defines the value types shared by every pipeline stage:
// scanned paths, filtered candidate files, contest years, award categories,
// and classified entries.
//
// Values are created fresh on every run and treated as immutable once a
// stage has produced them. Slices held by an [Entry] are owned by that entry;
// stages that need a different view copy rather than mutate.
package model
