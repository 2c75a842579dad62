// Package pipeline wires the stages of a mirror run together:
// scan, filter, classify, plan and write. Each stage is pure except the
// first and the last, and the run stops between stages (and between written
// files) once its context is cancelled.
package pipeline
