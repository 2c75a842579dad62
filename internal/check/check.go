// Package check provides input diagnostics (--check mode) and the
// pre-pipeline validation of input and output paths (CheckPaths).
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/backmassage/ioccc-mirror/internal/config"
	"github.com/backmassage/ioccc-mirror/internal/model"
	"github.com/backmassage/ioccc-mirror/internal/scan"
)

// Sentinel errors returned by CheckPaths.
var (
	ErrYearRootMissing = errors.New("year root not found below input directory")
	ErrOutputInsideIn  = errors.New("output directory must not be inside input directory")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(bool, string, ...interface{})
}

// Matcher recognizes category directory names.
type Matcher interface {
	Match(segment string) (model.Category, string, bool)
}

// CheckPaths is the pre-pipeline validation: the input root must be a
// readable directory, the year root must exist below it, and a local output
// must not sit inside the input. It returns the absolute input path.
func CheckPaths(cfg *config.Config) (string, error) {
	s, err := scan.New(cfg.InputDir)
	if err != nil {
		return "", err
	}
	inputAbs, err := filepath.EvalSymlinks(s.Root())
	if err != nil {
		return "", err
	}

	if cfg.YearRoot != "" {
		yr := filepath.Join(inputAbs, filepath.FromSlash(cfg.YearRoot))
		if info, err := os.Stat(yr); err != nil || !info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrYearRootMissing, cfg.YearRoot)
		}
	}

	if cfg.Sink != config.SinkDir || cfg.OutputDir == "" {
		return inputAbs, nil
	}
	outputAbs, err := absPath(cfg.OutputDir)
	if err != nil {
		return "", err
	}
	if err := cfg.ValidatePaths(inputAbs, outputAbs); err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutputInsideIn, cfg.OutputDir)
	}
	return inputAbs, nil
}

// absPath returns the absolute, symlink-resolved path for safe comparison
// of input vs output directory hierarchies. A missing output resolves
// through its nearest existing parent.
func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	var rest []string
	for {
		resolved, err := filepath.EvalSymlinks(abs)
		if err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", err
		}
		rest = append([]string{filepath.Base(abs)}, rest...)
		abs = parent
	}
}

// YearReport describes one contest year directory.
type YearReport struct {
	Year       model.ContestYear
	Sources    int      // .c files anywhere below the year
	Headers    int      // .h files
	Other      int      // everything else
	Categories []string // first-level directories recognized as categories
	EntryDirs  int      // first-level directories that are not categories
}

// Layout names the year's dominant layout.
func (y YearReport) Layout() string {
	switch {
	case len(y.Categories) > 0 && y.EntryDirs > 0:
		return "mixed"
	case len(y.Categories) > 0:
		return "categories"
	case y.EntryDirs > 0:
		return "flat"
	default:
		return "files only"
	}
}

// Report is the result of Inspect.
type Report struct {
	Root       string
	Years      []YearReport
	OutOfRange []string // four-digit directories outside the year range
	Other      []string // other top-level names (repo metadata)
	Skipped    []string // unreadable directories
}

// Sources returns the total .c count over all years.
func (r *Report) Sources() int {
	n := 0
	for _, y := range r.Years {
		n += y.Sources
	}
	return n
}

// Inspect walks the year root and summarizes its layout without classifying
// anything.
func Inspect(ctx context.Context, cfg *config.Config, m Matcher) (*Report, error) {
	root := cfg.InputDir
	if cfg.YearRoot != "" {
		root = filepath.Join(root, filepath.FromSlash(cfg.YearRoot))
	}
	s, err := scan.New(root, scan.WithSkipHidden(cfg.SkipHidden))
	if err != nil {
		return nil, err
	}

	rep := &Report{Root: s.Root()}
	years := cfg.YearRange()
	byYear := make(map[model.ContestYear]*YearReport)
	seenDir := make(map[string]bool)
	seenTop := make(map[string]bool)

	for p, err := range s.Paths() {
		if err != nil {
			var se *scan.SkipError
			if errors.As(err, &se) {
				rep.Skipped = append(rep.Skipped, se.Path)
				continue
			}
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		top := p.Segments[0]
		y, ok := model.ParseYear(top, years)
		if !ok || len(p.Segments) < 2 {
			if seenTop[top] {
				continue
			}
			seenTop[top] = true
			if len(top) == 4 && len(p.Segments) > 1 && isDigits(top) {
				rep.OutOfRange = append(rep.OutOfRange, top)
			} else {
				rep.Other = append(rep.Other, top)
			}
			continue
		}

		yr := byYear[y]
		if yr == nil {
			yr = &YearReport{Year: y}
			byYear[y] = yr
		}
		switch path.Ext(p.Name()) {
		case ".c":
			yr.Sources++
		case ".h":
			yr.Headers++
		default:
			yr.Other++
		}

		if len(p.Segments) < 3 {
			continue
		}
		first := p.Segments[1]
		key := top + "/" + first
		if seenDir[key] {
			continue
		}
		seenDir[key] = true
		if cat, _, ok := m.Match(first); ok {
			yr.Categories = append(yr.Categories, string(cat))
		} else {
			yr.EntryDirs++
		}
	}

	for _, yr := range byYear {
		slices.Sort(yr.Categories)
		yr.Categories = slices.Compact(yr.Categories)
		rep.Years = append(rep.Years, *yr)
	}
	slices.SortFunc(rep.Years, func(a, b YearReport) int { return int(a.Year) - int(b.Year) })
	return rep, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// RunCheck runs the --check flow: inspects the input tree and prints a
// per-year layout table plus anything that will be ignored. It returns false
// when the input cannot be used at all.
func RunCheck(ctx context.Context, cfg *config.Config, m Matcher, out io.Writer, log Logger) bool {
	log.Info("=== Input Check ===")

	if _, err := CheckPaths(cfg); err != nil {
		log.Error("%v", err)
		return false
	}
	rep, err := Inspect(ctx, cfg, m)
	if err != nil {
		log.Error("Inspect failed: %v", err)
		return false
	}

	log.Info("Root: %s", rep.Root)
	if len(rep.Years) == 0 {
		log.Error("No contest year directories (%d..%d) found", cfg.MinYear, cfg.MaxYear)
		return false
	}
	PrintTable(out, rep)

	for _, name := range rep.OutOfRange {
		log.Warn("Ignored year outside %d..%d: %s", cfg.MinYear, cfg.MaxYear, name)
	}
	for _, name := range rep.Other {
		log.Debug(cfg.Verbose, "Ignored top-level entry: %s", name)
	}
	if len(rep.Other) > 0 && !cfg.Verbose {
		log.Info("%d non-year top-level entr(ies) ignored (use --verbose to list)", len(rep.Other))
	}
	for _, p := range rep.Skipped {
		log.Warn("Unreadable directory: %s", p)
	}
	log.Success("%d year(s), %d .c file(s)", len(rep.Years), rep.Sources())
	return true
}

// PrintTable writes the per-year layout table, columns sized to content.
func PrintTable(w io.Writer, rep *Report) {
	const maxCats = 60
	yearW, srcW, hdrW, layoutW := len("Year"), len(".c"), len(".h"), len("Layout")
	for _, y := range rep.Years {
		srcW = max(srcW, len(fmt.Sprint(y.Sources)))
		hdrW = max(hdrW, len(fmt.Sprint(y.Headers)))
		layoutW = max(layoutW, len(y.Layout()))
	}

	header := fmt.Sprintf("  %-*s  %*s  %*s  %-*s  %s", yearW, "Year", srcW, ".c", hdrW, ".h", layoutW, "Layout", "Categories")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, "  "+strings.Repeat("─", len(header)-2))
	for _, y := range rep.Years {
		cats := strings.Join(y.Categories, ", ")
		if len(cats) > maxCats {
			cats = cats[:maxCats-1] + "…"
		}
		fmt.Fprintf(w, "  %-*s  %*d  %*d  %-*s  %s\n", yearW, y.Year, srcW, y.Sources, hdrW, y.Headers, layoutW, y.Layout(), cats)
	}
	fmt.Fprintln(w)
}
