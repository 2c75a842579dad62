package pipeline

// RunStats tracks aggregate counters and byte totals across a run.
type RunStats struct {
	Scanned    int // paths yielded by the scanner
	Candidates int // .c files that passed the filter
	Placed     int // .c files that ended up in an entry
	Excluded   int // paths the filter rejected
	Entries    int
	Dropped    int // groups without sources
	Renamed    int // identifiers changed by collision resolution
	Warnings   int // warn-severity records in the audit trail
	Files      int // files stored in the sink, headers included
	Bytes      int64
}

// Coverage returns the share of candidate sources that landed in an entry,
// or 1 when there were none.
func (s *RunStats) Coverage() float64 {
	if s.Candidates == 0 {
		return 1
	}
	return float64(s.Placed) / float64(s.Candidates)
}
