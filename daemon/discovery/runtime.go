package discovery

import (
	"context"

	"github.com/containerd/containerd"
	"github.com/containerd/containerd/api/events"
	"github.com/containerd/containerd/namespaces"
	typeurl "github.com/containerd/typeurl/v2"
	"github.com/domalab/cgtrace/daemon/logger"
)

var subscribeFilters = []string{
	`topic=="/tasks/start"`,
	`topic=="/tasks/delete"`,
	`topic=="/containers/update"`,
}

// containerdRuntimeClient is the production RuntimeClient, backed by a
// real containerd unix-socket connection.
type containerdRuntimeClient struct {
	client *containerd.Client
}

// NewRuntimeClient dials the containerd socket at socketPath.
func NewRuntimeClient(socketPath string) (RuntimeClient, error) {
	c, err := containerd.New(socketPath)
	if err != nil {
		return nil, &Error{Kind: SocketConnect, Path: socketPath, Cause: err}
	}
	return &containerdRuntimeClient{client: c}, nil
}

func (c *containerdRuntimeClient) Close() error {
	return c.client.Close()
}

func (c *containerdRuntimeClient) Namespaces(ctx context.Context) ([]string, error) {
	return c.client.NamespaceService().List(ctx)
}

func (c *containerdRuntimeClient) RunningContainers(ctx context.Context, namespace string) ([]ContainerInfo, error) {
	ctx = namespaces.WithNamespace(ctx, namespace)

	ctrs, err := c.client.Containers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ContainerInfo, 0, len(ctrs))
	for _, ctr := range ctrs {
		task, err := ctr.Task(ctx, nil)
		if err != nil {
			// No task attached to this container yet (created but not started).
			continue
		}
		status, err := task.Status(ctx)
		if err != nil || status.Status != containerd.Running {
			continue
		}
		labels, err := ctr.Labels(ctx)
		if err != nil {
			logger.Warn("failed to read labels for container %s: %v", ctr.ID(), err)
			labels = nil
		}
		out = append(out, ContainerInfo{ID: ctr.ID(), Pid: task.Pid(), Labels: labels})
	}

	return out, nil
}

// ContainerLabels loads the single container named by (namespace, id) and
// returns its current label set, the namespace-scoped lookup the source's
// TaskStart handling makes via a GetContainerRequest.
func (c *containerdRuntimeClient) ContainerLabels(ctx context.Context, namespace, id string) (map[string]string, error) {
	ctx = namespaces.WithNamespace(ctx, namespace)

	ctr, err := c.client.LoadContainer(ctx, id)
	if err != nil {
		return nil, err
	}
	return ctr.Labels(ctx)
}

func (c *containerdRuntimeClient) Subscribe(ctx context.Context) (<-chan Event, <-chan error) {
	envelopes, subscribeErrs := c.client.Subscribe(ctx, subscribeFilters...)

	out := make(chan Event)
	outErr := make(chan error, 1)

	go func() {
		defer close(out)
		for {
			select {
			case env, ok := <-envelopes:
				if !ok {
					return
				}
				ev, err := decodeEnvelope(env)
				if err != nil {
					logger.Warn("discarding event: %v", err)
					continue
				}
				if ev == nil {
					continue
				}
				select {
				case out <- *ev:
				case <-ctx.Done():
					return
				}
			case err, ok := <-subscribeErrs:
				if ok && err != nil {
					outErr <- &Error{Kind: EventMessage, Cause: err}
				}
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, outErr
}

func decodeEnvelope(env *events.Envelope) (*Event, error) {
	if env.Event == nil {
		return nil, nil
	}

	v, err := typeurl.UnmarshalAny(env.Event)
	if err != nil {
		return nil, &Error{Kind: EventDecode, TypeURL: env.Event.GetTypeUrl(), Cause: err}
	}

	switch payload := v.(type) {
	case *events.ContainerUpdate:
		return &Event{
			Kind:        EventContainerUpdate,
			Namespace:   env.Namespace,
			ContainerID: payload.ID,
			Labels:      payload.Labels,
		}, nil
	case *events.TaskStart:
		// The TaskStart protobuf carries no labels; the handler fetches
		// them separately via RuntimeClient.ContainerLabels.
		return &Event{
			Kind:        EventTaskStart,
			Namespace:   env.Namespace,
			ContainerID: payload.ContainerID,
			Pid:         payload.Pid,
		}, nil
	case *events.TaskDelete:
		return &Event{
			Kind:        EventTaskDelete,
			Namespace:   env.Namespace,
			ContainerID: payload.ContainerID,
			Pid:         payload.Pid,
			ExecID:      payload.ID,
		}, nil
	default:
		return nil, &Error{Kind: UnknownEvent, TypeURL: env.Event.GetTypeUrl()}
	}
}
