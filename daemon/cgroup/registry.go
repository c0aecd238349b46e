package cgroup

import (
	"sync"

	"github.com/domalab/cgtrace/daemon/container"
	"github.com/domalab/cgtrace/daemon/logger"
)

// StatsEntry pairs one container's snapshot with the tick timestamp it was
// taken at.
type StatsEntry struct {
	TimestampSecs int64
	ContainerID   container.ID
	Stats         *Stats
}

// Registry is the concurrent container id -> Collector map described as
// "Monitor" in the source. A single mutex over one map is enough here: the
// only concurrency requirement is safe insert/remove from the Discoverer
// racing against CollectInto's iteration, not per-entry fine-grained
// locking, so this doesn't need a sharded or lock-free map.
type Registry struct {
	mu         sync.Mutex
	collectors map[container.ID]*Collector
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[container.ID]*Collector)}
}

// Register inserts c under id, replacing and closing any prior Collector
// for the same id atomically.
func (r *Registry) Register(id container.ID, c *Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.collectors[id]; ok {
		old.Close()
	}
	r.collectors[id] = c
}

// Remove deletes id if present, closing its Collector.
func (r *Registry) Remove(id container.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.collectors[id]; ok {
		c.Close()
		delete(r.collectors, id)
	}
}

// Size returns the current entry count.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.collectors)
}

// CollectInto refreshes every entry and appends a StatsEntry for each
// success to out. A failing entry is logged and dropped from the Registry
// — a read failure typically means the container's cgroup directory is
// gone (a race with teardown), and explicit removal via the event stream is
// not always timely enough to beat the next tick.
func (r *Registry) CollectInto(timestampSecs int64, out *[]StatsEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, c := range r.collectors {
		snapshot, err := c.RefreshStats()
		if err != nil {
			logger.Warn("dropping container %s after failed stat refresh: %v", id, err)
			c.Close()
			delete(r.collectors, id)
			continue
		}
		*out = append(*out, StatsEntry{
			TimestampSecs: timestampSecs,
			ContainerID:   id,
			Stats:         snapshot,
		})
	}
}
