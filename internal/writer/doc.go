// Package writer materializes an OutputPlan through a Sink: every source and
// auxiliary file, each entry's descriptor.json, the root manifest.csv, and
// warnings.jsonl holding the run's audit trail.
//
// The writer is the only pipeline stage with side effects. It is invoked
// after planning has succeeded, so a fatal classification or planning error
// never leaves a partial mirror behind.
package writer
