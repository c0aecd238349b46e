package stats

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ignoredInterfacePrefixes lists the interface name prefixes that never
// count toward a container's network stats: the loopback device and the
// various runtime-managed virtual interfaces (veth pairs, the docker0
// bridge, nerdctl's equivalent).
var ignoredInterfacePrefixes = []string{"lo", "veth", "docker", "nerdctl"}

// NetworkStat is the field-wise sum of /proc/<pid>/net/dev across every
// interface that isn't ignored.
type NetworkStat struct {
	RxBytes      uint64
	RxPackets    uint64
	RxErrs       uint64
	RxDrop       uint64
	RxFifo       uint64
	RxFrame      uint64
	RxCompressed uint64
	RxMulticast  uint64
	TxBytes      uint64
	TxPackets    uint64
	TxErrs       uint64
	TxDrop       uint64
	TxFifo       uint64
	TxColls      uint64
	TxCarrier    uint64
	TxCompressed uint64
}

// Add accumulates other into s, field-wise.
func (s *NetworkStat) Add(other *NetworkStat) {
	s.RxBytes += other.RxBytes
	s.RxPackets += other.RxPackets
	s.RxErrs += other.RxErrs
	s.RxDrop += other.RxDrop
	s.RxFifo += other.RxFifo
	s.RxFrame += other.RxFrame
	s.RxCompressed += other.RxCompressed
	s.RxMulticast += other.RxMulticast
	s.TxBytes += other.TxBytes
	s.TxPackets += other.TxPackets
	s.TxErrs += other.TxErrs
	s.TxDrop += other.TxDrop
	s.TxFifo += other.TxFifo
	s.TxColls += other.TxColls
	s.TxCarrier += other.TxCarrier
	s.TxCompressed += other.TxCompressed
}

func isIgnoredInterface(name string) bool {
	for _, prefix := range ignoredInterfacePrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// parseInterfaceLine splits "iface: counters..." into the interface name
// and the remaining counter text. ok is false if there's no colon.
func parseInterfaceLine(line string) (iface, rest string, ok bool) {
	iface, rest, found := strings.Cut(strings.TrimSpace(line), ":")
	if !found {
		return "", "", false
	}
	return iface, rest, true
}

// statsFromFields parses the 16 whitespace-separated counters following the
// interface name. A non-numeric counter becomes 0; fewer than 16 fields
// present means the line as a whole is unusable and nil is returned.
func statsFromFields(rest string) *NetworkStat {
	fields := strings.Fields(rest)
	if len(fields) < 16 {
		return nil
	}
	parse := func(s string) uint64 {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return &NetworkStat{
		RxBytes:      parse(fields[0]),
		RxPackets:    parse(fields[1]),
		RxErrs:       parse(fields[2]),
		RxDrop:       parse(fields[3]),
		RxFifo:       parse(fields[4]),
		RxFrame:      parse(fields[5]),
		RxCompressed: parse(fields[6]),
		RxMulticast:  parse(fields[7]),
		TxBytes:      parse(fields[8]),
		TxPackets:    parse(fields[9]),
		TxErrs:       parse(fields[10]),
		TxDrop:       parse(fields[11]),
		TxFifo:       parse(fields[12]),
		TxColls:      parse(fields[13]),
		TxCarrier:    parse(fields[14]),
		TxCompressed: parse(fields[15]),
	}
}

// ParseNetworkStat parses /proc/<pid>/net/dev: the first two header lines
// are unconditionally skipped, then every remaining well-formed,
// non-ignored interface line is summed field-wise.
func ParseNetworkStat(r io.Reader) (*NetworkStat, error) {
	scanner := bufio.NewScanner(r)

	for i := 0; i < 2; i++ {
		if !scanner.Scan() {
			return nil, scanner.Err()
		}
	}

	total := &NetworkStat{}
	for scanner.Scan() {
		iface, rest, ok := parseInterfaceLine(scanner.Text())
		if !ok || isIgnoredInterface(iface) {
			continue
		}
		line := statsFromFields(rest)
		if line == nil {
			continue
		}
		total.Add(line)
	}
	return total, scanner.Err()
}
