// Package config holds runtime configuration: defaults, environment and
// CLI flag parsing, the YAML rules file, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/backmassage/ioccc-mirror/internal/model"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// SinkKind selects where the mirror is written.
type SinkKind string

const (
	SinkDir SinkKind = "dir" // Local output directory (default).
	SinkS3  SinkKind = "s3"  // S3-compatible bucket; output_dir becomes the key prefix.
)

// S3Settings addresses the bucket used by --sink s3.
type S3Settings struct {
	Endpoint  string
	Region    string // Default: "us-east-1".
	AccessKey string // Environment only.
	SecretKey string // Environment only.
	Bucket    string
	Prefix    string
	UseSSL    bool // Default: true.
}

// Config holds all runtime settings. It is populated by [DefaultConfig],
// then by [ApplyEnv], then by the command-line flags, before being passed
// (by pointer) to packages that need it.
type Config struct {
	// Paths (set from positional args or IOCCC_MIRROR_INPUT/OUTPUT).
	InputDir  string
	OutputDir string

	// Scanning and filtering.
	YearRoot     string   // Directory below InputDir holding the years ("" = InputDir itself).
	MinYear      int      // Default: 1984.
	MaxYear      int      // Default: 2030.
	SkipHidden   bool     // Skip dot-directories while scanning.
	ParallelScan int      // Workers for the per-year scan; 0 scans sequentially.
	Deny         []string // Extra denylist globs, appended to the rules file's.

	// Classification.
	RulesFile string // Optional YAML rules file.
	Rules     *Rules // Loaded from RulesFile by Load; nil uses built-in rules.

	// Output.
	Sink   SinkKind // Default: "dir".
	S3     S3Settings
	DryRun bool // Plan and report; write nothing.
	Force  bool // Replace a non-empty output.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Report the input layout and exit.
}

// DefaultConfig returns a Config with every default applied. Used as the
// base before environment and flags are layered on.
func DefaultConfig() Config {
	return Config{
		MinYear:   int(model.DefaultYearRange.Min),
		MaxYear:   int(model.DefaultYearRange.Max),
		Sink:      SinkDir,
		ColorMode: ColorAuto,
		S3: S3Settings{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}

// YearRange returns the configured contest year bounds.
func (c *Config) YearRange() model.YearRange {
	return model.YearRange{Min: model.ContestYear(c.MinYear), Max: model.ContestYear(c.MaxYear)}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric bounds. When not in CheckOnly mode
// it also requires the input path, and the output path for the dir sink.
func (c *Config) Validate() error {
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	switch c.Sink {
	case SinkDir:
		// valid
	case SinkS3:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return errors.New("--sink s3 needs --s3-endpoint and --s3-bucket")
		}
	default:
		return errors.New("invalid sink (use 'dir' or 's3')")
	}

	if c.MinYear < 1 || c.MaxYear > 9999 {
		return fmt.Errorf("year bounds must be four-digit years (got %d..%d)", c.MinYear, c.MaxYear)
	}
	if c.MinYear > c.MaxYear {
		return fmt.Errorf("--min-year %d is after --max-year %d", c.MinYear, c.MaxYear)
	}
	if c.ParallelScan < 0 {
		return errors.New("--parallel-scan must not be negative")
	}
	if strings.Contains(c.YearRoot, "..") {
		return fmt.Errorf("--year-root %q must stay inside the input directory", c.YearRoot)
	}

	if c.CheckOnly {
		if c.InputDir == "" {
			return errors.New("--check needs input_dir")
		}
		return nil
	}
	if c.InputDir == "" {
		return errors.New("need input_dir")
	}
	if c.OutputDir == "" && c.Sink == SinkDir {
		return errors.New("need exactly input_dir and output_dir")
	}
	return nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) the resolved input directory. This prevents a later run from
// rediscovering the mirror as input. Both arguments must be absolute,
// symlink-resolved paths.
func (c *Config) ValidatePaths(inputAbs, outputAbs string) error {
	sep := string(filepath.Separator)
	if outputAbs == inputAbs || strings.HasPrefix(outputAbs+sep, inputAbs+sep) {
		return errors.New("output directory must not be inside input directory")
	}
	return nil
}
