package model

import (
	"fmt"
	"strconv"
)

// ContestYear identifies one contest run. It is derived only from a
// directory name, never from file content.
type ContestYear int

// YearRange bounds the years accepted as contest directories (inclusive).
type YearRange struct {
	Min ContestYear
	Max ContestYear
}

// DefaultYearRange covers the first contest through the foreseeable future.
var DefaultYearRange = YearRange{Min: 1984, Max: 2030}

// Contains reports whether y lies within r.
func (r YearRange) Contains(y ContestYear) bool {
	return y >= r.Min && y <= r.Max
}

// ParseYear parses a directory name as a contest year. Only exact four-digit
// names inside r are accepted; "1984-old" or "84" are not years.
func ParseYear(name string, r YearRange) (ContestYear, bool) {
	if len(name) != 4 {
		return 0, false
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(name)
	if err != nil {
		return 0, false
	}
	y := ContestYear(n)
	if !r.Contains(y) {
		return 0, false
	}
	return y, true
}

func (y ContestYear) String() string { return fmt.Sprintf("%04d", int(y)) }
