package stats

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const netDevHeader = "Inter-|   Receive                                                |  Transmit\n" +
	" face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed\n"

func netDevLine(iface string, base uint64) string {
	fields := make([]string, 16)
	for i := range fields {
		fields[i] = strconv.FormatUint(base+uint64(i), 10)
	}
	return "  " + iface + ": " + strings.Join(fields, " ") + "\n"
}

func TestParseNetworkStatIgnoresPrefixesAndSums(t *testing.T) {
	input := netDevHeader + netDevLine("lo", 1) + netDevLine("eth0", 10) + netDevLine("veth1234", 5) + netDevLine("eth1", 20)
	stat, err := ParseNetworkStat(strings.NewReader(input))
	require.NoError(t, err)

	eth0 := statsFromFields(mustRest(t, netDevLine("eth0", 10)))
	eth1 := statsFromFields(mustRest(t, netDevLine("eth1", 20)))
	want := &NetworkStat{}
	want.Add(eth0)
	want.Add(eth1)

	assert.Equal(t, want, stat)
}

func mustRest(t *testing.T, line string) string {
	t.Helper()
	_, rest, ok := parseInterfaceLine(line)
	require.True(t, ok)
	return rest
}

func TestParseNetworkStatSkipsShortLines(t *testing.T) {
	input := netDevHeader + "  eth0: 1 2 3\n"
	stat, err := ParseNetworkStat(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, &NetworkStat{}, stat)
}

func TestParseNetworkStatNonNumericCounterBecomesZero(t *testing.T) {
	fields := make([]string, 16)
	for i := range fields {
		fields[i] = "0"
	}
	fields[0] = "not-a-number"
	input := netDevHeader + "  eth0: " + strings.Join(fields, " ") + "\n"
	stat, err := ParseNetworkStat(strings.NewReader(input))
	require.NoError(t, err)
	assert.Zero(t, stat.RxBytes)
}

func TestParseNetworkStatOnlyHeaders(t *testing.T) {
	stat, err := ParseNetworkStat(strings.NewReader(netDevHeader))
	require.NoError(t, err)
	assert.Equal(t, &NetworkStat{}, stat)
}
