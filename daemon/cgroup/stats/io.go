package stats

import "io"

// IoStat is the parsed, device-summed form of io.stat.
type IoStat struct {
	Rbytes uint64
	Wbytes uint64
	Rios   uint64
	Wios   uint64
}

// Add accumulates other into s, field-wise. Exported so a Collector with
// multiple io.stat-shaped sources (not currently used by any registered
// file, but kept symmetric with NetworkStat.Add) can sum them.
func (s *IoStat) Add(other *IoStat) {
	s.Rbytes += other.Rbytes
	s.Wbytes += other.Wbytes
	s.Rios += other.Rios
	s.Wios += other.Wios
}

var ioStatPolicy = keyValuePolicy{
	SplitChar:              '=',
	SkipLines:              0,
	SkipValues:             1, // leading "major:minor" device token
	AllowDuplicateKeys:     true,
	AllowMultipleKVPerLine: true,
}

var ioStatHandlers = map[string]func(*IoStat, uint64){
	"rbytes": func(s *IoStat, v uint64) { s.Rbytes += v },
	"wbytes": func(s *IoStat, v uint64) { s.Wbytes += v },
	"rios":   func(s *IoStat, v uint64) { s.Rios += v },
	"wios":   func(s *IoStat, v uint64) { s.Wios += v },
}

// ParseIoStat parses an io.stat file, summing rbytes/wbytes/rios/wios
// across every device line. Duplicate keys across lines (or within one
// line) accumulate rather than erroring, which is what makes the result
// linear: concatenating two inputs and parsing once equals summing the two
// separate parses.
func ParseIoStat(r io.Reader) (*IoStat, error) {
	return parseKeyValue(r, ioStatPolicy, ioStatHandlers)
}
