package persistence

import (
	"testing"

	"github.com/domalab/cgtrace/daemon/cgroup"
	"github.com/domalab/cgtrace/daemon/cgroup/stats"
	"github.com/domalab/cgtrace/daemon/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStatsRowFlattensPresentFields(t *testing.T) {
	machineID, err := container.ParseMachineID("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	cid, err := container.New("abc123")
	require.NoError(t, err)

	entry := cgroup.StatsEntry{
		TimestampSecs: 1700000000,
		ContainerID:   cid,
		Stats: &cgroup.Stats{
			CPUStat: &stats.CpuStat{UsageUsec: 42, UserUsec: 10},
			IOStat:  &stats.IoStat{Rbytes: 100, Wbytes: 200},
		},
	}

	row := NewStatsRow(machineID, entry)

	assert.Equal(t, int64(1700000000), row.TimestampSecs)
	assert.Equal(t, "abc123", row.ContainerID)
	assert.Equal(t, machineID.Bytes(), row.MachineID)
	require.NotNil(t, row.CPUUsageUsec)
	assert.EqualValues(t, 42, *row.CPUUsageUsec)
	require.NotNil(t, row.IORbytes)
	assert.EqualValues(t, 100, *row.IORbytes)
	assert.Nil(t, row.MemoryAnon)
	assert.Nil(t, row.NetRxBytes)
}

func TestNewStatsRowHandlesNilStats(t *testing.T) {
	machineID, _ := container.ParseMachineID("0123456789abcdef0123456789abcdef")
	cid, _ := container.New("abc123")

	row := NewStatsRow(machineID, cgroup.StatsEntry{TimestampSecs: 1, ContainerID: cid})

	assert.Nil(t, row.CPUUsageUsec)
	assert.Nil(t, row.IORbytes)
	assert.Len(t, row.args(), 30)
}

func TestNewMetadataRowsExpandsOnePerLabel(t *testing.T) {
	machineID, _ := container.ParseMachineID("0123456789abcdef0123456789abcdef")
	cid, _ := container.New("abc123")

	rows := NewMetadataRows(machineID, "host-1", cid, map[string]string{
		"io.kubernetes.pod.name": "web",
		"env":                    "prod",
	})

	require.Len(t, rows, 2)
	byKey := map[string]MetadataRow{}
	for _, r := range rows {
		byKey[r.LabelKey] = r
	}
	assert.Equal(t, "web", byKey["io.kubernetes.pod.name"].LabelValue)
	assert.Equal(t, "prod", byKey["env"].LabelValue)
	for _, r := range rows {
		assert.Equal(t, "abc123", r.ContainerID)
		assert.Equal(t, "host-1", r.Hostname)
		assert.Equal(t, machineID.Bytes(), r.MachineID)
	}
}

func TestNewMetadataRowsEmptyLabels(t *testing.T) {
	machineID, _ := container.ParseMachineID("0123456789abcdef0123456789abcdef")
	cid, _ := container.New("abc123")

	rows := NewMetadataRows(machineID, "host-1", cid, nil)
	assert.Empty(t, rows)
}
