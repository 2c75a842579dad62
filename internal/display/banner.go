// Package display renders the startup banner and human-readable numbers for
// the run summary.
package display

import (
	"fmt"
	"io"

	"github.com/backmassage/ioccc-mirror/internal/term"
)

const banner = `  _                                 _
 (_) ___   ___ ___ ___   _ __ ___ (_)_ __ _ __ ___  _ __
 | |/ _ \ / __/ __/ __| | '_ ` + "`" + ` _ \| | '__| '__/ _ \| '__|
 | | (_) | (_| (_| (__  | | | | | | | |  | | | (_) | |
 |_|\___/ \___\___\___| |_| |_| |_|_|_|  |_|  \___/|_|
`

// PrintBanner writes the ASCII art banner and version; magenta when colors
// are enabled.
func PrintBanner(w io.Writer, version string) {
	fmt.Fprint(w, term.Paint(term.Magenta, banner))
	fmt.Fprintf(w, " v%s\n\n", version)
}
