// Package term holds the ANSI color state shared by the logger and the
// banner, and decides whether a run gets colors at all.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/ioccc-mirror/internal/config"
)

// Color escapes. Each is "" while colors are off, so callers can concatenate
// them unconditionally.
var Red, Green, Yellow, Blue, Cyan, Magenta, NC string

var palette = []struct {
	v    *string
	code string
}{
	{&Red, "\033[1;91m"},
	{&Green, "\033[1;92m"},
	{&Yellow, "\033[1;93m"},
	{&Blue, "\033[1;94m"},
	{&Cyan, "\033[1;96m"},
	{&Magenta, "\033[1;95m"},
	{&NC, "\033[0m"},
}

// Configure applies mode for output on stdout and reports the outcome.
// Call once at startup, before anything is logged.
func Configure(mode config.ColorMode) bool {
	on := Resolve(mode, os.Stdout, os.Getenv)
	Set(on)
	return on
}

// Set switches every color variable on or off.
func Set(on bool) {
	for _, p := range palette {
		*p.v = ""
		if on {
			*p.v = p.code
		}
	}
}

// Enabled reports whether colors are on.
func Enabled() bool { return NC != "" }

// Paint wraps s in color and a reset. With colors off it returns s.
func Paint(color, s string) string {
	if color == "" {
		return s
	}
	return color + s + NC
}

// Resolve decides the color state. Auto mode wants a character device, no
// NO_COLOR (https://no-color.org) and a TERM other than "dumb".
func Resolve(mode config.ColorMode, f *os.File, getenv func(string) string) bool {
	if mode != config.ColorAuto {
		return mode == config.ColorAlways
	}
	if getenv("NO_COLOR") != "" || strings.EqualFold(getenv("TERM"), "dumb") {
		return false
	}
	return IsTerminal(f)
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
