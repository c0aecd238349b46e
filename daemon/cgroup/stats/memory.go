package stats

import (
	"io"
	"strconv"
)

// MemoryStat is the parsed form of memory.stat.
type MemoryStat struct {
	Anon        uint64
	File        uint64
	KernelStack uint64
	Slab        uint64
	Sock        uint64
	Shmem       uint64
	FileMapped  uint64
}

var memoryStatPolicy = keyValuePolicy{
	SplitChar:              0,
	SkipLines:              0,
	SkipValues:             0,
	AllowDuplicateKeys:     false,
	AllowMultipleKVPerLine: false,
}

var memoryStatHandlers = map[string]func(*MemoryStat, uint64){
	"anon":         func(s *MemoryStat, v uint64) { s.Anon = v },
	"file":         func(s *MemoryStat, v uint64) { s.File = v },
	"kernel_stack": func(s *MemoryStat, v uint64) { s.KernelStack = v },
	"slab":         func(s *MemoryStat, v uint64) { s.Slab = v },
	"sock":         func(s *MemoryStat, v uint64) { s.Sock = v },
	"shmem":        func(s *MemoryStat, v uint64) { s.Shmem = v },
	"file_mapped":  func(s *MemoryStat, v uint64) { s.FileMapped = v },
}

// ParseMemoryStat parses a memory.stat file.
func ParseMemoryStat(r io.Reader) (*MemoryStat, error) {
	return parseKeyValue(r, memoryStatPolicy, memoryStatHandlers)
}

// MemoryUsage is the parsed form of memory.current.
type MemoryUsage struct {
	UsageBytes uint64
}

// ParseMemoryUsage parses memory.current: exactly one u64 on line 1. Empty
// or non-numeric input is an error, unlike the tolerant limit/quota
// parsers, because there's no sentinel meaning here.
func ParseMemoryUsage(r io.Reader) (*MemoryUsage, error) {
	line, err := firstLine(r)
	if err != nil {
		return nil, err
	}
	v, parseErr := strconv.ParseUint(line, 10, 64)
	if parseErr != nil {
		return nil, &InvalidValueError{Value: line, Line: 1, Source: parseErr}
	}
	return &MemoryUsage{UsageBytes: v}, nil
}

// MemoryLimit is the parsed form of memory.max.
type MemoryLimit struct {
	LimitBytes *uint64
}

// ParseMemoryLimit parses memory.max. "max" yields no limit; a u64 yields
// that limit; any other string (including a parse failure) tolerantly
// yields no limit rather than an error.
func ParseMemoryLimit(r io.Reader) (*MemoryLimit, error) {
	line, err := firstLine(r)
	if err != nil {
		return nil, err
	}
	if line == "max" || line == "" {
		return &MemoryLimit{}, nil
	}
	if v, parseErr := strconv.ParseUint(line, 10, 64); parseErr == nil {
		return &MemoryLimit{LimitBytes: &v}, nil
	}
	return &MemoryLimit{}, nil
}
