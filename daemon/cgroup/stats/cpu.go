package stats

import (
	"io"
	"strconv"
)

// CpuStat is the parsed form of cpu.stat.
type CpuStat struct {
	UsageUsec     uint64
	UserUsec      uint64
	SystemUsec    uint64
	NrPeriods     uint64
	NrThrottled   uint64
	ThrottledUsec uint64
	NrBursts      uint64
	BurstUsec     uint64
}

var cpuStatPolicy = keyValuePolicy{
	SplitChar:              0,
	SkipLines:              0,
	SkipValues:             0,
	AllowDuplicateKeys:     false,
	AllowMultipleKVPerLine: false,
}

var cpuStatHandlers = map[string]func(*CpuStat, uint64){
	"usage_usec":     func(s *CpuStat, v uint64) { s.UsageUsec = v },
	"user_usec":      func(s *CpuStat, v uint64) { s.UserUsec = v },
	"system_usec":    func(s *CpuStat, v uint64) { s.SystemUsec = v },
	"nr_periods":     func(s *CpuStat, v uint64) { s.NrPeriods = v },
	"nr_throttled":   func(s *CpuStat, v uint64) { s.NrThrottled = v },
	"throttled_usec": func(s *CpuStat, v uint64) { s.ThrottledUsec = v },
	"nr_bursts":      func(s *CpuStat, v uint64) { s.NrBursts = v },
	"burst_usec":     func(s *CpuStat, v uint64) { s.BurstUsec = v },
}

// ParseCpuStat parses a cpu.stat file.
func ParseCpuStat(r io.Reader) (*CpuStat, error) {
	return parseKeyValue(r, cpuStatPolicy, cpuStatHandlers)
}

// DefaultCpuPeriod is used for cpu.max's period field when absent or
// unparseable.
const DefaultCpuPeriod = 100_000

// CpuLimit is the parsed form of cpu.max: an optional quota and a period,
// both in microseconds.
type CpuLimit struct {
	Quota  *uint64
	Period uint64
}

// ParseCpuLimit parses cpu.max. The first token is either "max" (no quota)
// or a quota in microseconds, tolerantly parsed (an unparseable token is
// treated the same as absence: no quota). The second token is the period,
// defaulting to DefaultCpuPeriod when absent or unparseable. Total absence
// of input yields (nil, DefaultCpuPeriod).
func ParseCpuLimit(r io.Reader) (*CpuLimit, error) {
	first, second, err := firstTwoTokens(r)
	if err != nil {
		return nil, err
	}

	limit := &CpuLimit{Period: DefaultCpuPeriod}

	if first != "" && first != "max" {
		if v, err := strconv.ParseUint(first, 10, 64); err == nil {
			limit.Quota = &v
		}
	}

	if second != "" {
		if v, err := strconv.ParseUint(second, 10, 64); err == nil {
			limit.Period = v
		}
	}

	return limit, nil
}
