package discovery

import "context"

// ContainerInfo is one running container as reported by Job A's initial
// enumeration: namespaces -> containers -> running tasks.
type ContainerInfo struct {
	ID     string
	Pid    uint32
	Labels map[string]string
}

// EventKind distinguishes the lifecycle events the Subscribe stream
// decodes. Decoding containerd's typeurl.Any payloads happens inside the
// RuntimeClient implementation so this package's control flow can be
// tested against a fake without a live containerd socket.
type EventKind int

const (
	// EventContainerUpdate carries a container's refreshed label set.
	EventContainerUpdate EventKind = iota
	// EventTaskStart carries a newly-started task's container id and pid.
	EventTaskStart
	// EventTaskDelete carries a task teardown; only a delete with an empty
	// ExecID is for the root task, and is the one that should stop
	// tracking the container.
	EventTaskDelete
)

// Event is one decoded containerd lifecycle event.
type Event struct {
	Kind        EventKind
	Namespace   string
	ContainerID string
	Pid         uint32
	ExecID      string
	Labels      map[string]string
}

// RuntimeClient abstracts the containerd calls the Discoverer needs:
// listing what's already running (Job A) and streaming what changes
// (Job B). The production implementation (in runtime.go) wraps
// github.com/containerd/containerd; tests substitute a fake.
type RuntimeClient interface {
	// Namespaces lists every containerd namespace.
	Namespaces(ctx context.Context) ([]string, error)
	// RunningContainers lists every running-task container in namespace,
	// with its current labels.
	RunningContainers(ctx context.Context, namespace string) ([]ContainerInfo, error)
	// ContainerLabels fetches one container's current labels by namespace
	// and id. TaskStart events carry no labels of their own, so the
	// TaskStart handling path calls this to backfill them.
	ContainerLabels(ctx context.Context, namespace, id string) (map[string]string, error)
	// Subscribe streams task/container lifecycle events across all
	// namespaces until ctx is canceled or an unrecoverable error occurs.
	Subscribe(ctx context.Context) (<-chan Event, <-chan error)
	// Close releases the underlying connection.
	Close() error
}
