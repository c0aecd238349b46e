package persistence

import (
	"github.com/domalab/cgtrace/daemon/cgroup"
	"github.com/domalab/cgtrace/daemon/container"
)

// StatsRow is the flat, nullable-column row shape container_stats is
// written in, one per (container, tick). It mirrors
// original_source/src/persistence/models.rs's ContainerStats exactly,
// field-for-field, since that flattening is what the table's column list
// is grounded on.
type StatsRow struct {
	TimestampSecs int64
	ContainerID   string
	MachineID     []byte

	CPUUsageUsec     *uint64
	CPUUserUsec      *uint64
	CPUSystemUsec    *uint64
	CPUNrPeriods     *uint64
	CPUNrThrottled   *uint64
	CPUThrottledUsec *uint64
	CPUNrBursts      *uint64
	CPUBurstUsec     *uint64
	CPUQuota         *uint64
	CPUPeriod        *uint64

	MemoryAnon        *uint64
	MemoryFile        *uint64
	MemoryKernelStack *uint64
	MemorySlab        *uint64
	MemorySock        *uint64
	MemoryShmem       *uint64
	MemoryFileMapped  *uint64
	MemoryUsageBytes  *uint64
	MemoryLimitBytes  *uint64

	IORbytes *uint64
	IOWbytes *uint64
	IORios   *uint64
	IOWios   *uint64

	NetRxBytes   *uint64
	NetRxPackets *uint64
	NetTxBytes   *uint64
	NetTxPackets *uint64
}

// NewStatsRow flattens one Registry.CollectInto entry into the row shape
// the insert statement binds, the same transform models.rs's
// `From<(MachineId, &ContainerStatsEntry)>` performs.
func NewStatsRow(machineID container.MachineID, entry cgroup.StatsEntry) StatsRow {
	row := StatsRow{
		TimestampSecs: entry.TimestampSecs,
		ContainerID:   entry.ContainerID.String(),
		MachineID:     machineID.Bytes(),
	}

	if s := entry.Stats; s != nil {
		if c := s.CPUStat; c != nil {
			row.CPUUsageUsec = &c.UsageUsec
			row.CPUUserUsec = &c.UserUsec
			row.CPUSystemUsec = &c.SystemUsec
			row.CPUNrPeriods = &c.NrPeriods
			row.CPUNrThrottled = &c.NrThrottled
			row.CPUThrottledUsec = &c.ThrottledUsec
			row.CPUNrBursts = &c.NrBursts
			row.CPUBurstUsec = &c.BurstUsec
		}
		if c := s.CPULimit; c != nil {
			row.CPUQuota = c.Quota
			row.CPUPeriod = &c.Period
		}
		if m := s.MemoryStat; m != nil {
			row.MemoryAnon = &m.Anon
			row.MemoryFile = &m.File
			row.MemoryKernelStack = &m.KernelStack
			row.MemorySlab = &m.Slab
			row.MemorySock = &m.Sock
			row.MemoryShmem = &m.Shmem
			row.MemoryFileMapped = &m.FileMapped
		}
		if m := s.MemoryUsage; m != nil {
			row.MemoryUsageBytes = &m.UsageBytes
		}
		if m := s.MemoryLimit; m != nil {
			row.MemoryLimitBytes = m.LimitBytes
		}
		if io := s.IOStat; io != nil {
			row.IORbytes = &io.Rbytes
			row.IOWbytes = &io.Wbytes
			row.IORios = &io.Rios
			row.IOWios = &io.Wios
		}
		if n := s.NetworkStat; n != nil {
			row.NetRxBytes = &n.RxBytes
			row.NetRxPackets = &n.RxPackets
			row.NetTxBytes = &n.TxBytes
			row.NetTxPackets = &n.TxPackets
		}
	}

	return row
}

// args returns the row's values in column order, ready for a placeholder
// bind on the INSERT statement in store.go.
func (r StatsRow) args() []any {
	return []any{
		r.TimestampSecs, r.ContainerID, r.MachineID,
		r.CPUUsageUsec, r.CPUUserUsec, r.CPUSystemUsec,
		r.CPUNrPeriods, r.CPUNrThrottled, r.CPUThrottledUsec,
		r.CPUNrBursts, r.CPUBurstUsec,
		r.CPUQuota, r.CPUPeriod,
		r.MemoryAnon, r.MemoryFile, r.MemoryKernelStack, r.MemorySlab,
		r.MemorySock, r.MemoryShmem, r.MemoryFileMapped,
		r.MemoryUsageBytes,
		r.MemoryLimitBytes,
		r.IORbytes, r.IOWbytes, r.IORios, r.IOWios,
		r.NetRxBytes, r.NetRxPackets, r.NetTxBytes, r.NetTxPackets,
	}
}

// MetadataRow is one label of one container, the row shape
// container_metadata is upserted in.
type MetadataRow struct {
	ContainerID string
	MachineID   []byte
	Hostname    string
	LabelKey    string
	LabelValue  string
}

// NewMetadataRows expands one discovery MetadataUpdate into one row per
// label, the same fan-out persister.rs's persist_metadata loop performs.
func NewMetadataRows(machineID container.MachineID, hostname string, containerID container.ID, labels map[string]string) []MetadataRow {
	rows := make([]MetadataRow, 0, len(labels))
	for key, value := range labels {
		rows = append(rows, MetadataRow{
			ContainerID: containerID.String(),
			MachineID:   machineID.Bytes(),
			Hostname:    hostname,
			LabelKey:    key,
			LabelValue:  value,
		})
	}
	return rows
}
