// Package cgroup holds the per-container Collector and the cross-container
// Registry, grounded on original_source/src/cgroup/{collector.rs,monitor.rs,utils.rs}
// and reworked around Go file handles instead of Rust BufReaders.
package cgroup

import (
	"io"
	"os"

	"github.com/domalab/cgtrace/daemon/cgroup/stats"
)

// Stats is one tick's snapshot for a single container. Any field is nil iff
// the corresponding source file wasn't available. A "max" sentinel in a
// limit file shows up as a non-nil limit field whose Quota or LimitBytes is
// nil.
type Stats struct {
	CPUStat     *stats.CpuStat
	CPULimit    *stats.CpuLimit
	MemoryStat  *stats.MemoryStat
	MemoryUsage *stats.MemoryUsage
	MemoryLimit *stats.MemoryLimit
	IOStat      *stats.IoStat
	NetworkStat *stats.NetworkStat
}

// Collector holds the open file handles backing one container's stats. A
// nil handle means that source was unavailable at registration time and
// always produces a nil slot in Stats; this is distinct from a handle that
// later fails to read, which is a fatal error for the whole tick (see
// RefreshStats).
type Collector struct {
	cpuStatFile     *os.File
	cpuLimitFile    *os.File
	memoryStatFile  *os.File
	memoryUsageFile *os.File
	memoryLimitFile *os.File
	ioStatFile      *os.File
	networkFiles    []*os.File
}

// Builder assembles a Collector one optional path at a time. Paths that
// can't be opened yield a nil slot silently, matching the source's
// open_file, which is not itself an error — a container may simply lack a
// counter.
type Builder struct {
	c Collector
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

func openOptional(path string) *os.File {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	return f
}

// SetCPUStatFile opens path for cpu.stat.
func (b *Builder) SetCPUStatFile(path string) *Builder {
	b.c.cpuStatFile = openOptional(path)
	return b
}

// SetCPULimitFile opens path for cpu.max.
func (b *Builder) SetCPULimitFile(path string) *Builder {
	b.c.cpuLimitFile = openOptional(path)
	return b
}

// SetMemoryStatFile opens path for memory.stat.
func (b *Builder) SetMemoryStatFile(path string) *Builder {
	b.c.memoryStatFile = openOptional(path)
	return b
}

// SetMemoryUsageFile opens path for memory.current.
func (b *Builder) SetMemoryUsageFile(path string) *Builder {
	b.c.memoryUsageFile = openOptional(path)
	return b
}

// SetMemoryLimitFile opens path for memory.max.
func (b *Builder) SetMemoryLimitFile(path string) *Builder {
	b.c.memoryLimitFile = openOptional(path)
	return b
}

// SetIOStatFile opens path for io.stat.
func (b *Builder) SetIOStatFile(path string) *Builder {
	b.c.ioStatFile = openOptional(path)
	return b
}

// SetNetworkStatFiles opens every path in paths for /proc/<pid>/net/dev.
// Unopenable paths are silently dropped from the slice, same as the single
// optional slots.
func (b *Builder) SetNetworkStatFiles(paths []string) *Builder {
	files := make([]*os.File, 0, len(paths))
	for _, p := range paths {
		if f := openOptional(p); f != nil {
			files = append(files, f)
		}
	}
	b.c.networkFiles = files
	return b
}

// Build consumes the Builder into a Collector.
func (b *Builder) Build() *Collector {
	c := b.c
	return &c
}

// Close releases every open handle. Called when a Collector is dropped from
// the Registry, whether by explicit removal or by a failed refresh.
func (c *Collector) Close() {
	for _, f := range []*os.File{c.cpuStatFile, c.cpuLimitFile, c.memoryStatFile, c.memoryUsageFile, c.memoryLimitFile, c.ioStatFile} {
		if f != nil {
			f.Close()
		}
	}
	for _, f := range c.networkFiles {
		f.Close()
	}
}

// readAndRewind reads slot (if present) through parse, then seeks it back
// to offset 0 so the next tick re-reads the kernel's current value without
// reopening. A nil slot produces a nil result with no error.
func readAndRewind[T any](f *os.File, parse func(io.Reader) (*T, error)) (*T, error) {
	if f == nil {
		return nil, nil
	}
	v, err := parse(f)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, err
	}
	return v, nil
}

// RefreshStats reads and rewinds every present handle and returns one
// snapshot. Any failure anywhere — I/O or parse — aborts the whole call;
// the Registry treats that as fatal for this container (see
// Registry.CollectInto).
func (c *Collector) RefreshStats() (*Stats, error) {
	var s Stats
	var err error

	if s.CPUStat, err = readAndRewind(c.cpuStatFile, stats.ParseCpuStat); err != nil {
		return nil, err
	}
	if s.CPULimit, err = readAndRewind(c.cpuLimitFile, stats.ParseCpuLimit); err != nil {
		return nil, err
	}
	if s.MemoryStat, err = readAndRewind(c.memoryStatFile, stats.ParseMemoryStat); err != nil {
		return nil, err
	}
	if s.MemoryUsage, err = readAndRewind(c.memoryUsageFile, stats.ParseMemoryUsage); err != nil {
		return nil, err
	}
	if s.MemoryLimit, err = readAndRewind(c.memoryLimitFile, stats.ParseMemoryLimit); err != nil {
		return nil, err
	}
	if s.IOStat, err = readAndRewind(c.ioStatFile, stats.ParseIoStat); err != nil {
		return nil, err
	}

	if len(c.networkFiles) > 0 {
		total := &stats.NetworkStat{}
		for _, f := range c.networkFiles {
			part, err := readAndRewind(f, stats.ParseNetworkStat)
			if err != nil {
				return nil, err
			}
			if part != nil {
				total.Add(part)
			}
		}
		s.NetworkStat = total
	}

	return &s, nil
}
