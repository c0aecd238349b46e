// Package pipeline wires discovery, collection, and persistence into one
// running process: detect the environment, find the cgroup v2 mount, start
// the containerd discoverer, and tick the registry once a second, fanning
// the results out to the two persistence workers.
//
// The tick/fan-out body is grounded on original_source/src/lib.rs's run()
// function; only the teacher's signal-handling shutdown shape
// (daemon/services/orchestrator.go) is reused as-is.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/domalab/cgtrace/daemon/cgroup"
	"github.com/domalab/cgtrace/daemon/container"
	"github.com/domalab/cgtrace/daemon/discovery"
	"github.com/domalab/cgtrace/daemon/domain"
	"github.com/domalab/cgtrace/daemon/environment"
	"github.com/domalab/cgtrace/daemon/logger"
	"github.com/domalab/cgtrace/daemon/metrics"
	"github.com/domalab/cgtrace/daemon/mountinfo"
	"github.com/domalab/cgtrace/daemon/services/persistence"
	"github.com/domalab/cgtrace/daemon/services/query"
)

// statsTopic is the pubsub topic each tick's batch is published on when
// the query surface's websocket live tail is enabled.
const statsTopic = "stats"

// Pipeline owns the registry, discoverer, and the two persistence workers
// for the lifetime of the process.
type Pipeline struct {
	appCtx *domain.Context
	store  *persistence.Store

	machineID container.MachineID
	hostname  string
}

// New stores the application context and store; it does no I/O. The host
// identity (machine-id, hostname) needed to tag every persisted row and the
// rootfs/cgroup detection are both resolved in Run.
func New(appCtx *domain.Context, store *persistence.Store) *Pipeline {
	return &Pipeline{appCtx: appCtx, store: store}
}

// Run resolves the rootfs and cgroup v2 mount point, starts the
// containerd discoverer and the two persistence workers, and then ticks
// the registry every TickIntervalSeconds until a SIGINT/SIGTERM arrives.
func (p *Pipeline) Run(ctx context.Context) error {
	logger.Blue("starting cgtrace %s ...", p.appCtx.Config.Version)

	rootfs, cgroupRoot, err := p.resolveMounts()
	if err != nil {
		return err
	}

	if err := p.resolveHostIdentity(rootfs); err != nil {
		return err
	}

	if err := p.store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	client, err := discovery.NewRuntimeClient(p.appCtx.Config.ContainerdSocket)
	if err != nil {
		return fmt.Errorf("failed to connect to containerd: %w", err)
	}

	registry := cgroup.NewRegistry()
	discoverer := discovery.NewDiscoverer(client, rootfs, cgroupRoot)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	metadataCh := make(chan discovery.MetadataUpdate, p.appCtx.Config.MetadataQueueCapacity)
	statsCh := make(chan []cgroup.StatsEntry, p.appCtx.Config.StatsQueueCapacity)

	go p.metadataWorker(runCtx, metadataCh)
	go p.statsWorker(runCtx, statsCh)

	discoverer.Start(runCtx, registry, metadataCh)
	logger.Info("started containerd discovery against %s", p.appCtx.Config.ContainerdSocket)

	if p.appCtx.Config.HTTPServer.Enabled {
		querySvc := query.New(p.appCtx, p.store)
		addr := fmt.Sprintf("%s:%d", p.appCtx.Config.HTTPServer.Host, p.appCtx.Config.HTTPServer.Port)
		go func() {
			if err := querySvc.Serve(addr); err != nil && err != http.ErrServerClosed {
				logger.Error("query server stopped: %v", err)
			}
		}()
		logger.Info("query surface listening on %s", addr)
	}

	p.appCtx.Hub.Pub(fmt.Sprintf("cgtrace %s started", p.appCtx.Config.Version), "lifecycle")

	go p.tickLoop(runCtx, registry, statsCh)

	w := make(chan os.Signal, 1)
	signal.Notify(w, syscall.SIGTERM, syscall.SIGINT)
	sig := <-w
	logger.Blue("received %s signal. shutting down the app ...", sig)

	cancel()
	p.appCtx.Hub.Pub("cgtrace shutting down", "lifecycle")

	logger.Blue("cgtrace shutdown complete")
	return nil
}

// resolveMounts mirrors lib.rs's rootfs-then-cgroup2 resolution: when
// cgtrace is itself containerized, the host root is expected bind-mounted
// at RootfsMountPath and its absence is fatal; otherwise "/" is the root.
func (p *Pipeline) resolveMounts() (rootfs, cgroupRoot string, err error) {
	rootfs = p.appCtx.Config.RootfsMountPath
	runtimeEnv := environment.DetectRuntimeEnvironment(rootfs)

	if runtimeEnv == environment.Container {
		if _, statErr := os.Stat(rootfs); statErr != nil {
			return "", "", fmt.Errorf("detected container runtime environment, but missing host root mount at %q", rootfs)
		}
	} else {
		rootfs = "/"
	}
	logger.Debug("final rootfs: %s", rootfs)

	detected, err := mountinfo.DetectValidatedCgroup2MountPoint(filepath.Join(rootfs, "proc/1/mountinfo"))
	if err != nil {
		return "", "", fmt.Errorf("failed to detect cgroup v2 mount point: %w", err)
	}
	cgroupRoot = filepath.Join(rootfs, strings.TrimPrefix(detected, "/"))
	logger.Debug("final cgroup root: %s", cgroupRoot)

	return rootfs, cgroupRoot, nil
}

func (p *Pipeline) resolveHostIdentity(rootfs string) error {
	raw, err := os.ReadFile(filepath.Join(rootfs, "etc/machine-id"))
	if err != nil {
		return fmt.Errorf("failed to read machine-id: %w", err)
	}
	machineID, err := container.ParseMachineID(strings.TrimSpace(string(raw)))
	if err != nil {
		return fmt.Errorf("failed to parse machine-id: %w", err)
	}
	p.machineID = machineID

	hostnameBytes, err := os.ReadFile(filepath.Join(rootfs, "etc/hostname"))
	if err != nil {
		hostnameBytes, err = os.ReadFile("/proc/sys/kernel/hostname")
		if err != nil {
			return fmt.Errorf("failed to read hostname: %w", err)
		}
	}
	p.hostname = strings.TrimSpace(string(hostnameBytes))
	logger.Debug("hostname: %s", p.hostname)

	return nil
}

// metadataWorker is the long-lived consumer side of the metadata channel,
// one persisted upsert per label on every update.
func (p *Pipeline) metadataWorker(ctx context.Context, metadataCh <-chan discovery.MetadataUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-metadataCh:
			if !ok {
				return
			}
			rows := persistence.NewMetadataRows(p.machineID, p.hostname, update.ContainerID, update.Labels)
			if len(rows) == 0 {
				continue
			}
			if err := p.store.UpsertMetadata(ctx, rows); err != nil {
				logger.Error("failed to persist metadata: %v", err)
			}
		}
	}
}

// statsWorker is the long-lived consumer side of the stats channel, one
// persisted batch insert per tick.
func (p *Pipeline) statsWorker(ctx context.Context, statsCh <-chan []cgroup.StatsEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entries, ok := <-statsCh:
			if !ok {
				return
			}
			rows := make([]persistence.StatsRow, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, persistence.NewStatsRow(p.machineID, entry))
			}
			if err := p.store.InsertStatsBatch(ctx, rows); err != nil {
				logger.Error("failed to persist stats batch: %v", err)
			} else {
				metrics.RecordBatchPersisted()
			}
			if p.appCtx.Config.HTTPServer.WebSocketEnabled {
				p.appCtx.Hub.Pub(entries, statsTopic)
			}
		}
	}
}

// tickLoop samples the registry once per TickIntervalSeconds and hands the
// batch off to the stats worker; an empty tick is still sent so downstream
// consumers can observe liveness, matching lib.rs's unconditional send.
func (p *Pipeline) tickLoop(ctx context.Context, registry *cgroup.Registry, statsCh chan<- []cgroup.StatsEntry) {
	interval := time.Duration(p.appCtx.Config.TickIntervalSeconds) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			timestamp := time.Now().Unix()
			logger.Debug("finding containers@%d", timestamp)

			var entries []cgroup.StatsEntry
			before := time.Now()
			registry.CollectInto(timestamp, &entries)
			took := time.Since(before)
			logger.LogTick(registry.Size(), len(entries), took)
			metrics.RecordTick(registry.Size())

			select {
			case statsCh <- entries:
			case <-ctx.Done():
				return
			}
		}
	}
}
