package config

// This file implements CLI flag binding and help text.
// Flags are grouped into scanning, classification, output, display, and utility.
// Negated flags (e.g. --no-color) are applied after Parse so Config defaults hold unless set.

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// FlagState holds boolean flags that are applied after Parse. These either
// override an enum (forceColor, noColor) or end the run early (showVersion).
type FlagState struct {
	forceColor  bool
	noColor     bool
	showVersion bool
}

// ShowVersion reports whether --version was given.
func (n *FlagState) ShowVersion() bool { return n.showVersion }

// BindFlags registers every flag on fs, writing straight into cfg. Defaults
// are read from cfg, so call it after [DefaultConfig] and [Load].
func BindFlags(fs *pflag.FlagSet, cfg *Config) *FlagState {
	n := &FlagState{}
	defineScanFlags(fs, cfg)
	defineClassifyFlags(fs, cfg)
	defineOutputFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, n)
	defineUtilityFlags(fs, n)
	return n
}

// defineScanFlags registers --year-root, --min-year, --max-year, --skip-hidden, --parallel-scan, --deny.
func defineScanFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.YearRoot, "year-root", cfg.YearRoot, "Directory below input_dir holding the year directories")
	fs.IntVar(&cfg.MinYear, "min-year", cfg.MinYear, "Earliest accepted contest year")
	fs.IntVar(&cfg.MaxYear, "max-year", cfg.MaxYear, "Latest accepted contest year")
	fs.BoolVar(&cfg.SkipHidden, "skip-hidden", cfg.SkipHidden, "Do not descend into dot-directories")
	fs.IntVar(&cfg.ParallelScan, "parallel-scan", cfg.ParallelScan, "Scan top-level directories with N workers (0 = sequential)")
	fs.StringArrayVar(&cfg.Deny, "deny", cfg.Deny, "Extra denylist glob (repeatable)")
}

// defineClassifyFlags registers --rules.
func defineClassifyFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.RulesFile, "rules", cfg.RulesFile, "YAML rules file (order, flat_years, aliases, deny)")
}

// defineOutputFlags registers dry-run, force, and the sink selection.
func defineOutputFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "Plan and report only; write nothing")
	fs.BoolVarP(&cfg.Force, "force", "f", cfg.Force, "Replace a non-empty output")
	fs.Var(&sinkValue{&cfg.Sink}, "sink", "Output sink: dir | s3")
	fs.StringVar(&cfg.S3.Endpoint, "s3-endpoint", cfg.S3.Endpoint, "S3 endpoint host:port")
	fs.StringVar(&cfg.S3.Bucket, "s3-bucket", cfg.S3.Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3.Prefix, "s3-prefix", cfg.S3.Prefix, "S3 key prefix")
	fs.BoolVar(&cfg.S3.UseSSL, "s3-ssl", cfg.S3.UseSSL, "Use TLS for S3")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, n *FlagState) {
	fs.BoolVar(&n.forceColor, "color", false, "Force colored logs")
	fs.BoolVar(&n.noColor, "no-color", false, "Disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", cfg.CheckOnly, "Report the input layout and exit")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "Append logs to file")
}

// defineUtilityFlags registers --version.
func defineUtilityFlags(fs *pflag.FlagSet, n *FlagState) {
	fs.BoolVarP(&n.showVersion, "version", "V", false, "Print version and exit")
}

// ApplyFlags folds the post-parse flag state and positional args into cfg.
// Positional paths override IOCCC_MIRROR_INPUT/OUTPUT.
func ApplyFlags(cfg *Config, n *FlagState, args []string) error {
	if n.noColor {
		cfg.ColorMode = ColorNever
	} else if n.forceColor {
		cfg.ColorMode = ColorAlways
	}
	return parsePositionalArgs(cfg, args)
}

// parsePositionalArgs sets InputDir and OutputDir from positional args.
// --check and the s3 sink take only the input directory.
func parsePositionalArgs(cfg *Config, args []string) error {
	if cfg.CheckOnly {
		switch len(args) {
		case 0:
		case 1:
			cfg.InputDir = NormalizeDirArg(args[0])
		default:
			return fmt.Errorf("--check takes a single input_dir")
		}
		return nil
	}
	switch len(args) {
	case 0:
		// both from the environment
	case 1:
		if cfg.Sink != SinkS3 {
			return fmt.Errorf("need exactly input_dir and output_dir")
		}
		cfg.InputDir = NormalizeDirArg(args[0])
	case 2:
		cfg.InputDir = NormalizeDirArg(args[0])
		cfg.OutputDir = NormalizeDirArg(args[1])
	default:
		return fmt.Errorf("need exactly input_dir and output_dir")
	}
	return nil
}

// PrintUsage writes the help text to w. Column-aligned for readability.
func PrintUsage(w io.Writer, version string) {
	const col1 = 30 // width of "  -x, --long-name <arg>  "
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "ioccc-mirror v" + version + ": normalized mirror of the IOCCC winners tree"},
		{"", ""},
		{"  ioccc-mirror [OPTIONS] <input_dir> <output_dir>", ""},
		{"  ioccc-mirror --sink s3 [OPTIONS] <input_dir>", ""},
		{"  ioccc-mirror --check <input_dir>", ""},
		{"", ""},
		{"Scanning", ""},
		{"  --year-root <dir>", "Year directories live below input_dir/<dir>"},
		{"  --min-year <year>", "Earliest contest year (default: 1984)"},
		{"  --max-year <year>", "Latest contest year (default: 2030)"},
		{"  --skip-hidden", "Do not descend into dot-directories"},
		{"  --parallel-scan <n>", "Scan top-level directories with n workers"},
		{"  --deny <glob>", "Extra denylist pattern (repeatable)"},
		{"", ""},
		{"Classification", ""},
		{"  --rules <file>", "YAML rules: order, flat_years, aliases, deny"},
		{"", ""},
		{"Output & behavior", ""},
		{"  -d, --dry-run", "Plan and report only; write nothing"},
		{"  -f, --force", "Replace a non-empty output"},
		{"  --sink <dir|s3>", "Output sink (default: dir)"},
		{"  --s3-endpoint <host>", "S3 endpoint (sink s3)"},
		{"  --s3-bucket <name>", "S3 bucket (sink s3)"},
		{"  --s3-prefix <prefix>", "S3 key prefix (sink s3)"},
		{"  --s3-ssl", "Use TLS for S3 (default: on)"},
		{"", ""},
		{"Display", ""},
		{"  --color", "Force colored logs"},
		{"  --no-color", "Disable colored logs"},
		{"  -v, --verbose", "Verbose output"},
		{"", ""},
		{"Utility", ""},
		{"  -l, --log <path>", "Append logs to file"},
		{"  -c, --check", "Report the input layout and exit"},
		{"  -V, --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
		{"", ""},
		{"Environment", ""},
		{"  " + EnvPrefix + "*", "INPUT OUTPUT LOG_FILE RULES S3_ENDPOINT S3_BUCKET"},
		{"", "  S3_PREFIX S3_ACCESS_KEY S3_SECRET_KEY S3_REGION S3_SSL (.env is read)"},
	}

	for _, l := range lines {
		if l.flags == "" && l.desc == "" {
			fmt.Fprintln(w)
			continue
		}
		if l.desc == "" {
			fmt.Fprintln(w, l.flags)
			continue
		}
		if l.flags == "" {
			if strings.HasPrefix(l.desc, "  ") {
				fmt.Fprintf(w, "%*s%s\n", col1, "", strings.TrimPrefix(l.desc, "  "))
				continue
			}
			fmt.Fprintln(w, l.desc)
			continue
		}
		padding := col1 - len(l.flags)
		if padding < 1 {
			padding = 1
		}
		fmt.Fprintf(w, "%s%*s%s\n", l.flags, padding, "", l.desc)
	}
}

// pflag.Value adapters so we can use enum types with fs.Var.

type sinkValue struct{ p *SinkKind }

func (s *sinkValue) String() string { return string(*s.p) }
func (s *sinkValue) Type() string   { return "sink" }
func (s *sinkValue) Set(v string) error {
	switch strings.ToLower(v) {
	case "dir":
		*s.p = SinkDir
	case "s3":
		*s.p = SinkS3
	default:
		return fmt.Errorf("invalid sink %q (use 'dir' or 's3')", v)
	}
	return nil
}
