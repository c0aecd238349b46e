package discovery

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/domalab/cgtrace/daemon/cgroup"
	"github.com/domalab/cgtrace/daemon/container"
	"github.com/domalab/cgtrace/daemon/logger"
)

// pathRuntime identifies which non-containerd engine a cgroup scope name's
// prefix belongs to. containerd containers are already tracked through the
// event stream (Job B) and startup enumeration (Job A), so the path scanner
// only acts on the other two.
type pathRuntime int

const (
	pathRuntimeDocker pathRuntime = iota
	pathRuntimePodman
)

// containerScopePrefixes maps a cgroup v2 scope name prefix to the engine
// that creates it, mirroring containerd.Runtime in cgroup/v2.rs's
// extract_container_id. The containerd prefix is deliberately absent here:
// those containers already arrive over the event stream, and matching it
// too would register every container twice.
var containerScopePrefixes = []struct {
	prefix  string
	runtime pathRuntime
}{
	{"docker-", pathRuntimeDocker},
	{"libpod-", pathRuntimePodman},
}

const scopeSuffix = ".scope"

// extractContainerID recognizes a Docker or Podman cgroup v2 scope
// directory name and returns the container id it encodes. Names are
// "<prefix><64 lowercase hex chars>.scope"; anything else, including a
// cri-containerd- scope, reports ok=false.
func extractContainerID(name string) (id container.ID, runtime pathRuntime, ok bool) {
	for _, p := range containerScopePrefixes {
		if !strings.HasPrefix(name, p.prefix) || !strings.HasSuffix(name, scopeSuffix) {
			continue
		}
		hexPart := strings.TrimSuffix(strings.TrimPrefix(name, p.prefix), scopeSuffix)
		if len(hexPart) != 64 || !isLowerHex(hexPart) {
			return "", 0, false
		}
		cid, err := container.New(hexPart)
		if err != nil {
			return "", 0, false
		}
		return cid, p.runtime, true
	}
	return "", 0, false
}

func isLowerHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}

// pathScanWorker is a fourth, non-event-driven job: a one-shot walk of the
// cgroup v2 tree that recognizes Docker and Podman containers by scope
// name alone, since neither engine exposes a subscribable lifecycle event
// stream the way containerd does. It runs once at startup alongside Job A;
// nothing re-runs the scan or watches the tree, so containers these engines
// start afterward are not discovered until the process restarts.
func (d *Discoverer) pathScanWorker(reg *cgroup.Registry) {
	if err := d.scanCgroupDir(d.cgroupRoot, "", reg); err != nil {
		logger.Warn("cgroup path scan of `%s` failed: %v", d.cgroupRoot, err)
	}
}

// scanCgroupDir recursively walks dir, tracking the nearest enclosing pod
// id (if any) and registering a Collector for every Docker/Podman scope
// directory found, the same recursive-descent shape as cgroup/v2.rs's
// scan_cgroup_tree.
func (d *Discoverer) scanCgroupDir(dir string, podID container.PodID, reg *cgroup.Registry) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		if pid, err := container.ParsePodID(name); err == nil {
			if walkErr := d.scanCgroupDir(path, pid, reg); walkErr != nil {
				logger.Warn("cgroup path scan of `%s` failed: %v", path, walkErr)
			}
			continue
		}

		if id, _, ok := extractContainerID(name); ok {
			d.registerPathScanned(id, path, reg)
		}

		if err := d.scanCgroupDir(path, podID, reg); err != nil {
			logger.Warn("cgroup path scan of `%s` failed: %v", path, err)
		}
	}

	return nil
}

// registerPathScanned builds a Collector directly from a scope directory
// already known to be a container's cgroup, skipping registerOne's
// /proc/<pid>/cgroup lookup since the path is already in hand. It reads
// the first pid out of cgroup.procs purely to locate /proc/<pid>/net/dev;
// a container with no procs yet (created but not started) is skipped.
func (d *Discoverer) registerPathScanned(id container.ID, path string, reg *cgroup.Registry) {
	pid, ok := firstPid(filepath.Join(path, "cgroup.procs"))
	if !ok {
		return
	}

	netDevPath := filepath.Join(d.rootfs, "proc", strconv.FormatUint(uint64(pid), 10), "net", "dev")

	collector := cgroup.NewBuilder().
		SetCPUStatFile(filepath.Join(path, "cpu.stat")).
		SetCPULimitFile(filepath.Join(path, "cpu.max")).
		SetMemoryStatFile(filepath.Join(path, "memory.stat")).
		SetMemoryUsageFile(filepath.Join(path, "memory.current")).
		SetMemoryLimitFile(filepath.Join(path, "memory.max")).
		SetIOStatFile(filepath.Join(path, "io.stat")).
		SetNetworkStatFiles([]string{netDevPath}).
		Build()

	reg.Register(id, collector)
}

func firstPid(procsPath string) (uint32, bool) {
	data, err := os.ReadFile(procsPath)
	if err != nil {
		return 0, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pid, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			continue
		}
		return uint32(pid), true
	}
	return 0, false
}
