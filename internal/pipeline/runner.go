package pipeline

import (
	"context"
	"fmt"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/classify"
	"github.com/backmassage/ioccc-mirror/internal/config"
	"github.com/backmassage/ioccc-mirror/internal/display"
	"github.com/backmassage/ioccc-mirror/internal/logging"
	"github.com/backmassage/ioccc-mirror/internal/planner"
	"github.com/backmassage/ioccc-mirror/internal/writer"
)

// auditLimit is the number of warnings printed one by one before the
// console falls back to per-reason counts.
const auditLimit = 40

// Result is everything a run produced.
type Result struct {
	Stats    RunStats
	Plan     *planner.OutputPlan
	Warnings audit.Log
}

// OpenSink returns the sink selected by cfg. Dry runs write to memory.
func OpenSink(cfg *config.Config) (writer.Sink, error) {
	switch {
	case cfg.DryRun:
		return writer.NewMemorySink(), nil
	case cfg.Sink == config.SinkS3:
		return writer.NewS3Sink(writer.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			UseSSL:    cfg.S3.UseSSL,
		}, cfg.Force)
	default:
		return writer.NewDirSink(cfg.OutputDir, cfg.Force), nil
	}
}

// Run is the top-level entry point: it opens the configured sink and
// mirrors cfg.InputDir into it.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Result, error) {
	sink, err := OpenSink(cfg)
	if err != nil {
		return nil, err
	}
	defer sink.Close()
	return RunWith(ctx, cfg, log, sink)
}

// RunWith mirrors cfg.InputDir into sink. Classification problems are
// recorded in the result's audit trail; only an unusable input root, an
// invalid rules file, a planned path collision or a write failure is an
// error. Nothing is written unless planning succeeds.
func RunWith(ctx context.Context, cfg *config.Config, log *logging.Logger, sink writer.Sink) (*Result, error) {
	res := &Result{}
	st := &res.Stats

	// --- Scan ---
	paths, scanLog, err := Discover(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	st.Scanned = len(paths)
	log.Info("Scanned %s path(s)", display.FormatCount(st.Scanned))

	// --- Filter ---
	sel, err := Select(cfg, paths)
	if err != nil {
		return nil, err
	}
	st.Candidates = sel.Sources
	st.Excluded = sel.Excluded
	log.Debug(cfg.Verbose, "%d candidate source(s), %d excluded path(s)", st.Candidates, st.Excluded)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- Classify ---
	c, err := BuildClassifier(cfg)
	if err != nil {
		return nil, err
	}
	cs := c.Classify(classify.NewState(), sel.Files)
	res.Warnings = scanLog.Merge(sel.Log).Merge(cs.Log)
	st.Dropped = cs.Dropped
	st.Renamed = res.Warnings.Count(audit.ReasonCollisionRename)
	for _, e := range cs.Entries {
		st.Placed += len(e.SourceFiles)
	}
	for _, w := range res.Warnings {
		if w.Severity == audit.SeverityWarn {
			st.Warnings++
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// --- Plan ---
	plan, err := planner.Plan(cs.Entries)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	res.Plan = plan
	st.Entries = len(plan.Entries)

	// --- Write ---
	ws, err := writer.New(sink, log, cfg.Verbose).Write(ctx, plan, res.Warnings)
	st.Files = ws.Files
	st.Bytes = ws.Bytes
	if err != nil {
		return res, fmt.Errorf("write: %w", err)
	}

	logWarnings(cfg, log, res.Warnings)
	logSummary(cfg, log, st)
	return res, nil
}

// logWarnings prints the warn-severity records; informational ones only
// appear with --verbose and in warnings.jsonl.
func logWarnings(cfg *config.Config, log *logging.Logger, l audit.Log) {
	var warn audit.Log
	for _, w := range l {
		if w.Severity == audit.SeverityWarn || cfg.Verbose {
			warn = append(warn, w)
		}
	}
	log.AuditAll(warn, cfg.Verbose, auditLimit)
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %s entr(ies), %d group(s) dropped, %d renamed",
		display.FormatCount(stats.Entries), stats.Dropped, stats.Renamed)
	log.Info("Summary report:")
	log.Info("  Paths scanned: %s (%s excluded)",
		display.FormatCount(stats.Scanned), display.FormatCount(stats.Excluded))
	log.Info("  Sources placed: %d of %d", stats.Placed, stats.Candidates)
	log.Info("  Warnings: %d", stats.Warnings)

	if cfg.DryRun {
		log.Success("  [DRY] Would write %d file(s), %s", stats.Files, display.FormatBytes(stats.Bytes))
		return
	}
	log.Success("  Written: %d file(s), %s", stats.Files, display.FormatBytes(stats.Bytes))
}
