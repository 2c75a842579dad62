// Package logging provides the leveled, optionally colored run logger. It
// keeps a printf-style surface (Info, Success, Warn, Error, Debug) on top of
// a zap core: console output on stdout/stderr and an optional plain-text
// file sink tagged with the run id.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/backmassage/ioccc-mirror/internal/audit"
	"github.com/backmassage/ioccc-mirror/internal/config"
	"github.com/backmassage/ioccc-mirror/internal/term"
)

// successLevel sits below zap's debug level so it never collides with a
// built-in level; the enablers below always let it through.
const successLevel = zapcore.DebugLevel - 1

const timeLayout = "2006-01-02 15:04:05"

// Options configures New. Nil writers are discarded.
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	File   io.Writer
	Color  bool
	RunID  string
}

// Logger provides leveled, optionally colored logging with optional file sink.
type Logger struct {
	z     *zap.Logger
	sugar *zap.SugaredLogger
	file  *os.File
	runID string
}

// NewLogger resolves colors from cfg, opens cfg.LogFile when set, and
// returns a logger on stdout/stderr. Call Close() when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	color := term.Configure(cfg.ColorMode)
	opts := Options{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Color:  color,
		RunID:  uuid.NewString(),
	}

	var f *os.File
	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		var err error
		f, err = os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		opts.File = f
	}

	l := New(opts)
	l.file = f
	return l, nil
}

// New builds a logger on explicit writers.
func New(opts Options) *Logger {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}

	levelEnc := plainLevel
	if opts.Color {
		levelEnc = colorLevel
	}

	var cores []zapcore.Core
	if opts.Stdout != nil {
		cores = append(cores, zapcore.NewCore(encoder(levelEnc), zapcore.AddSync(opts.Stdout),
			zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l < zapcore.ErrorLevel })))
	}
	if opts.Stderr != nil {
		cores = append(cores, zapcore.NewCore(encoder(levelEnc), zapcore.AddSync(opts.Stderr),
			zap.LevelEnablerFunc(func(l zapcore.Level) bool { return l >= zapcore.ErrorLevel })))
	}
	if opts.File != nil {
		fileCore := zapcore.NewCore(encoder(plainLevel), zapcore.AddSync(opts.File),
			zap.LevelEnablerFunc(func(zapcore.Level) bool { return true }))
		cores = append(cores, fileCore.With([]zapcore.Field{zap.String("run", opts.RunID)}))
	}

	z := zap.New(zapcore.NewTee(cores...))
	return &Logger{z: z, sugar: z.Sugar(), runID: opts.RunID}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return New(Options{})
}

func encoder(level zapcore.LevelEncoder) zapcore.Encoder {
	return zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeTime:       zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeLevel:      level,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})
}

func levelName(l zapcore.Level) string {
	switch l {
	case successLevel:
		return "SUCCESS"
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARN"
	default:
		return "ERROR"
	}
}

func levelColor(l zapcore.Level) string {
	switch l {
	case successLevel:
		return term.Green
	case zapcore.DebugLevel:
		return term.Cyan
	case zapcore.InfoLevel:
		return term.Blue
	case zapcore.WarnLevel:
		return term.Yellow
	default:
		return term.Red
	}
}

func plainLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + levelName(l) + "]")
}

func colorLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(term.Paint(levelColor(l), "["+levelName(l)+"]"))
}

// RunID identifies this run in the log file.
func (l *Logger) RunID() string { return l.runID }

// Close flushes the logger and closes the log file if one was opened.
func (l *Logger) Close() error {
	_ = l.z.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Info logs at INFO level (blue).
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Success logs at SUCCESS level (green).
func (l *Logger) Success(format string, args ...interface{}) {
	l.sugar.Logf(successLevel, format, args...)
}

// Warn logs at WARN level (yellow).
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs at ERROR level (red), to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Debug logs at DEBUG level (cyan) only when verbose; no-op otherwise.
func (l *Logger) Debug(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	l.sugar.Debugf(format, args...)
}

// Audit logs one audit warning with its reason, path and detail as fields.
func (l *Logger) Audit(w audit.Warning) {
	fields := []zap.Field{zap.String("path", w.Path)}
	if w.Detail != "" {
		fields = append(fields, zap.String("detail", w.Detail))
	}
	lvl := zapcore.WarnLevel
	if w.Severity == audit.SeverityInfo {
		lvl = zapcore.InfoLevel
	}
	l.z.Log(lvl, string(w.Reason), fields...)
}

// AuditAll logs every warning in log, or only a count per reason when
// verbose is false and the log is long.
func (l *Logger) AuditAll(log audit.Log, verbose bool, limit int) {
	if verbose || len(log) <= limit {
		for _, w := range log {
			l.Audit(w)
		}
		return
	}
	counts := make(map[audit.Reason]int)
	var order []audit.Reason
	for _, w := range log {
		if counts[w.Reason] == 0 {
			order = append(order, w.Reason)
		}
		counts[w.Reason]++
	}
	for _, r := range order {
		l.Warn("%d warning(s): %s", counts[r], r)
	}
	l.Info("Use --verbose for the full list (also written to warnings.jsonl)")
}
