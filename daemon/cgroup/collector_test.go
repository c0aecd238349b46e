package cgroup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCollectorRefreshStatsOnlyCPUStatPresent(t *testing.T) {
	dir := t.TempDir()
	cpuStatPath := writeFile(t, dir, "cpu.stat",
		"usage_usec 623932088000\nuser_usec 421230248000\nsystem_usec 202701840000\n"+
			"nr_periods 0\nnr_throttled 0\nthrottled_usec 0\nnr_bursts 0\nburst_usec 0\n")

	c := NewBuilder().SetCPUStatFile(cpuStatPath).Build()

	snapshot, err := c.RefreshStats()
	require.NoError(t, err)

	require.NotNil(t, snapshot.CPUStat)
	assert.EqualValues(t, 623932088000, snapshot.CPUStat.UsageUsec)
	assert.Nil(t, snapshot.CPULimit)
	assert.Nil(t, snapshot.MemoryStat)
	assert.Nil(t, snapshot.MemoryUsage)
	assert.Nil(t, snapshot.MemoryLimit)
	assert.Nil(t, snapshot.IOStat)
	assert.Nil(t, snapshot.NetworkStat)
}

func TestCollectorRefreshStatsRereadsAfterRewind(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "memory.current", "100\n")
	c := NewBuilder().SetMemoryUsageFile(path).Build()

	first, err := c.RefreshStats()
	require.NoError(t, err)
	assert.EqualValues(t, 100, first.MemoryUsage.UsageBytes)

	require.NoError(t, os.WriteFile(path, []byte("200\n"), 0o644))

	second, err := c.RefreshStats()
	require.NoError(t, err)
	assert.EqualValues(t, 200, second.MemoryUsage.UsageBytes)
}

func TestCollectorUnopenablePathYieldsNilSlotSilently(t *testing.T) {
	c := NewBuilder().SetCPUStatFile("/nonexistent/path/cpu.stat").Build()
	snapshot, err := c.RefreshStats()
	require.NoError(t, err)
	assert.Nil(t, snapshot.CPUStat)
}

func TestCollectorRefreshStatsFailsWhenHandleClosedUnderneath(t *testing.T) {
	// A cgroup pseudo-file whose directory is torn down surfaces as a read
	// error on the still-open handle, unlike an ordinary unlinked regular
	// file (whose content remains readable through the open fd). Simulate
	// that failure mode directly by closing the handle out from under the
	// Collector.
	dir := t.TempDir()
	path := writeFile(t, dir, "memory.current", "100\n")
	c := NewBuilder().SetMemoryUsageFile(path).Build()
	require.NoError(t, c.memoryUsageFile.Close())

	_, err := c.RefreshStats()
	assert.Error(t, err)
}

func TestCollectorNetworkFilesAreSummed(t *testing.T) {
	dir := t.TempDir()
	header := "Inter-|   Receive\n face |x\n"
	line := func(iface string, v string) string {
		fields := make([]string, 16)
		for i := range fields {
			fields[i] = v
		}
		out := iface + ":"
		for _, f := range fields {
			out += " " + f
		}
		return out + "\n"
	}
	netA := writeFile(t, dir, "net-a", header+line("eth0", "10"))
	netB := writeFile(t, dir, "net-b", header+line("eth0", "20"))

	c := NewBuilder().SetNetworkStatFiles([]string{netA, netB}).Build()
	snapshot, err := c.RefreshStats()
	require.NoError(t, err)
	require.NotNil(t, snapshot.NetworkStat)
	assert.EqualValues(t, 30, snapshot.NetworkStat.RxBytes)
}
