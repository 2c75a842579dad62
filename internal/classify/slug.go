package classify

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fallbackIdentifier names an entry whose name has no usable characters.
const fallbackIdentifier = "entry"

// reVersionSuffix matches a trailing revision marker such as "-v2" or "_V3".
var reVersionSuffix = regexp.MustCompile(`(?i)[\s._\-]+v[0-9]+$`)

// stripVersion removes one trailing revision marker.
func stripVersion(name string) string {
	return reVersionSuffix.ReplaceAllString(name, "")
}

// foldASCII decomposes s and drops combining marks, so "Müller" becomes
// "Muller". A fresh transformer is built per call; chains keep state.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Slugify turns an entry name into a filesystem-safe identifier: accents
// folded, lower-case, every run of characters outside [a-z0-9] collapsed to
// a single "-", no leading or trailing "-".
func Slugify(name string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(foldASCII(name)) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	if b.Len() == 0 {
		return fallbackIdentifier
	}
	return b.String()
}

// DeriveIdentifier is the identifier for an entry named name: its revision
// marker stripped, then slugified.
func DeriveIdentifier(name string) string {
	return Slugify(stripVersion(name))
}

// reAuthorToken accepts a single alphabetic word, optionally followed by the
// digits IOCCC uses to tell one author's entries apart ("endoh1").
var reAuthorToken = regexp.MustCompile(`^([a-z][a-z'\-]*[a-z])[0-9]*$`)

// genericNames are directory names that never name an author.
var genericNames = map[string]bool{
	"entry": true, "entries": true, "src": true, "source": true, "sources": true,
	"prog": true, "program": true, "code": true, "main": true, "test": true,
	"misc": true, "files": true, "winner": true, "winners": true,
}

// authorHint guesses an author token from an entry directory name. It
// returns "" when the name does not look like a single surname.
func authorHint(dirName string) string {
	name := strings.TrimSpace(stripVersion(dirName))
	m := reAuthorToken.FindStringSubmatch(strings.ToLower(foldASCII(name)))
	if m == nil || genericNames[m[1]] {
		return ""
	}
	return m[1]
}

// stem returns a file name up to its first dot: "abc.c" and "abc.orig.h"
// both give "abc". Dot files keep their name minus the extension.
func stem(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
