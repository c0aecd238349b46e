package discovery

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/domalab/cgtrace/daemon/cgroup"
	"github.com/domalab/cgtrace/daemon/container"
	"github.com/domalab/cgtrace/daemon/logger"
	"github.com/domalab/cgtrace/daemon/metrics"
)

// MetadataUpdate carries a container's current label set toward the
// persistence layer's label-upsert worker.
type MetadataUpdate struct {
	ContainerID container.ID
	Labels      map[string]string
}

// containerTask is what the events/enumeration workers (Job B/Job A) hand
// to the registration worker (Job C): "this container has this pid now,
// go find its cgroup and start collecting."
type containerTask struct {
	id  container.ID
	pid uint32
}

// Discoverer runs the jobs that keep a Registry in sync with what's
// actually running: Job A enumerates containerd's containers at startup,
// Job B streams containerd lifecycle events from then on, Job C turns
// either source's (id, pid) pairs into a registered Collector by reading
// /proc/<pid>/cgroup, and Job D does a one-shot cgroup-path scan to pick
// up Docker/Podman containers, which have no event stream of their own.
type Discoverer struct {
	client     RuntimeClient
	rootfs     string
	cgroupRoot string
}

// NewDiscoverer builds a Discoverer. rootfs is the prefix under which
// /proc is reached (usually "/", but may be a bind-mounted host root when
// cgtrace itself runs containerized); cgroupRoot is the detected cgroup v2
// mount point.
func NewDiscoverer(client RuntimeClient, rootfs, cgroupRoot string) *Discoverer {
	return &Discoverer{client: client, rootfs: rootfs, cgroupRoot: cgroupRoot}
}

// Start launches the four jobs as goroutines and returns immediately; it
// blocks only long enough to start them. Callers should select on ctx.Done
// for shutdown — Start does not join them.
func (d *Discoverer) Start(ctx context.Context, reg *cgroup.Registry, metadataCh chan<- MetadataUpdate) {
	taskCh := make(chan containerTask, 10)

	go d.registrationWorker(ctx, taskCh, reg)
	go d.eventsWorker(ctx, taskCh, metadataCh, reg)
	go d.enumerationWorker(ctx, taskCh, metadataCh)
	go d.pathScanWorker(reg)
}

// registrationWorker is Job C: for every incoming (id, pid), read
// /proc/<pid>/cgroup, validate it's a single cgroup v2 line, and register
// a Collector built from the cgroup path under cgroupRoot.
func (d *Discoverer) registrationWorker(ctx context.Context, taskCh <-chan containerTask, reg *cgroup.Registry) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-taskCh:
			if !ok {
				return
			}
			d.registerOne(task, reg)
		}
	}
}

func (d *Discoverer) registerOne(task containerTask, reg *cgroup.Registry) {
	path := filepath.Join(d.rootfs, fmt.Sprintf("proc/%d/cgroup", task.pid))
	f, err := os.Open(path)
	if err != nil {
		logger.Error("failed to open cgroup file `%s`: %v", path, err)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		logger.Warn("empty cgroup file `%s`", path)
		return
	}
	line := scanner.Text()

	cgl, err := parseCgroupLine(line)
	if err != nil {
		logger.Error("invalid cgroup file `%s`: %v", path, err)
		return
	}
	if cgl.HierarchyID != 0 {
		logger.Warn("expected hierarchy id 0, but was %d", cgl.HierarchyID)
		return
	}
	if len(cgl.ControllerList) != 0 {
		logger.Warn("expected empty controller list, but was %v", cgl.ControllerList)
		return
	}

	cgroupPath := strings.TrimPrefix(cgl.CgroupPath, "/")
	prefix := filepath.Join(d.cgroupRoot, cgroupPath)

	netDevPath := filepath.Join(d.rootfs, fmt.Sprintf("proc/%d/net/dev", task.pid))

	collector := cgroup.NewBuilder().
		SetCPUStatFile(filepath.Join(prefix, "cpu.stat")).
		SetCPULimitFile(filepath.Join(prefix, "cpu.max")).
		SetMemoryStatFile(filepath.Join(prefix, "memory.stat")).
		SetMemoryUsageFile(filepath.Join(prefix, "memory.current")).
		SetMemoryLimitFile(filepath.Join(prefix, "memory.max")).
		SetIOStatFile(filepath.Join(prefix, "io.stat")).
		SetNetworkStatFiles([]string{netDevPath}).
		Build()

	reg.Register(task.id, collector)
}

// eventsWorker is Job B: stream containerd lifecycle events and translate
// each into either a registration request or a metadata update, for as
// long as the stream stays open. A stream error or closed channel ends the
// job: the error is logged and the goroutine returns. Nothing is reported
// back to the caller and there is no reconnect, so the rest of the process
// keeps running without live events.
func (d *Discoverer) eventsWorker(ctx context.Context, taskCh chan<- containerTask, metadataCh chan<- MetadataUpdate, reg *cgroup.Registry) {
	events, errs := d.client.Subscribe(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if ok && err != nil {
				logger.Error("event stream ended: %v", err)
			}
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.handleEvent(ctx, ev, taskCh, metadataCh, reg)
		}
	}
}

func (d *Discoverer) handleEvent(ctx context.Context, ev Event, taskCh chan<- containerTask, metadataCh chan<- MetadataUpdate, reg *cgroup.Registry) {
	id, err := container.New(ev.ContainerID)
	if err != nil {
		logger.Warn("failed to decode container ID from event: %v", err)
		return
	}

	switch ev.Kind {
	case EventContainerUpdate:
		metrics.RecordDiscoveryEvent("container_update")
		send(ctx, metadataCh, MetadataUpdate{ContainerID: id, Labels: ev.Labels})
	case EventTaskStart:
		metrics.RecordDiscoveryEvent("task_start")
		labels, err := d.client.ContainerLabels(ctx, ev.Namespace, ev.ContainerID)
		if err != nil {
			logger.Error("failed to get container info for container id `%s`: %v", id, err)
		} else {
			send(ctx, metadataCh, MetadataUpdate{ContainerID: id, Labels: labels})
		}
		send(ctx, taskCh, containerTask{id: id, pid: ev.Pid})
	case EventTaskDelete:
		// An empty ExecID means the container's root task was deleted —
		// the only task this system tracks per container.
		if ev.ExecID == "" {
			metrics.RecordDiscoveryEvent("task_delete")
			logger.Debug("removing container %s (pid %d)", id, ev.Pid)
			reg.Remove(id)
		}
	}
}

// enumerationWorker is Job A: list every namespace's running containers
// once at startup and feed them into the same channels Job B uses.
func (d *Discoverer) enumerationWorker(ctx context.Context, taskCh chan<- containerTask, metadataCh chan<- MetadataUpdate) {
	namespaces, err := d.client.Namespaces(ctx)
	if err != nil {
		logger.Error("failed to list containerd namespaces: %v", err)
		return
	}
	logger.Debug("found %d namespaces", len(namespaces))

	var wg sync.WaitGroup
	for _, ns := range namespaces {
		ns := ns
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.enumerateNamespace(ctx, ns, taskCh, metadataCh)
		}()
	}
	wg.Wait()
}

func (d *Discoverer) enumerateNamespace(ctx context.Context, ns string, taskCh chan<- containerTask, metadataCh chan<- MetadataUpdate) {
	containers, err := d.client.RunningContainers(ctx, ns)
	if err != nil {
		logger.Error("failed to list containers for namespace `%s`: %v", ns, err)
		return
	}
	logger.Debug("found %d running containers in namespace `%s`", len(containers), ns)

	for _, c := range containers {
		id, err := container.New(c.ID)
		if err != nil {
			logger.Error("failed to parse container ID: %v", err)
			continue
		}
		send(ctx, metadataCh, MetadataUpdate{ContainerID: id, Labels: c.Labels})
		send(ctx, taskCh, containerTask{id: id, pid: c.Pid})
	}
}

// send forwards v to ch unless ctx is canceled first, avoiding a permanent
// block if the receiving worker has already shut down.
func send[T any](ctx context.Context, ch chan<- T, v T) {
	select {
	case ch <- v:
	case <-ctx.Done():
	}
}
