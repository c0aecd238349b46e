package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/domalab/cgtrace/daemon/cgroup"
	"github.com/domalab/cgtrace/daemon/container"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRuntimeClient struct {
	namespaces []string
	containers map[string][]ContainerInfo
	events     chan Event
	errs       chan error
	// labels is keyed by "namespace/id", the same shape ContainerLabels is
	// called with; a missing key means "container not found".
	labels map[string]map[string]string
}

func (f *fakeRuntimeClient) Namespaces(ctx context.Context) ([]string, error) {
	return f.namespaces, nil
}

func (f *fakeRuntimeClient) RunningContainers(ctx context.Context, namespace string) ([]ContainerInfo, error) {
	return f.containers[namespace], nil
}

func (f *fakeRuntimeClient) ContainerLabels(ctx context.Context, namespace, id string) (map[string]string, error) {
	labels, ok := f.labels[namespace+"/"+id]
	if !ok {
		return nil, fmt.Errorf("container %s not found in namespace %s", id, namespace)
	}
	return labels, nil
}

func (f *fakeRuntimeClient) Subscribe(ctx context.Context) (<-chan Event, <-chan error) {
	return f.events, f.errs
}

func (f *fakeRuntimeClient) Close() error { return nil }

func writeCgroupFile(t *testing.T, rootfs string, pid int, content string) {
	t.Helper()
	dir := filepath.Join(rootfs, "proc", strconv.Itoa(pid))
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cgroup"), []byte(content), 0o644))
}

func TestRegisterOneValidCgroupV2Line(t *testing.T) {
	rootfs := t.TempDir()
	cgroupRoot := t.TempDir()
	writeCgroupFile(t, rootfs, 4242, "0::/docker/abc123\n")

	d := NewDiscoverer(nil, rootfs, cgroupRoot)
	reg := cgroup.NewRegistry()
	id, err := container.New("abc123")
	require.NoError(t, err)

	d.registerOne(containerTask{id: id, pid: 4242}, reg)
	assert.Equal(t, 1, reg.Size())
}

func TestRegisterOneRejectsNonZeroHierarchy(t *testing.T) {
	rootfs := t.TempDir()
	writeCgroupFile(t, rootfs, 100, "1:cpu:/docker/abc\n")

	d := NewDiscoverer(nil, rootfs, t.TempDir())
	reg := cgroup.NewRegistry()
	id, _ := container.New("abc")

	d.registerOne(containerTask{id: id, pid: 100}, reg)
	assert.Equal(t, 0, reg.Size())
}

func TestRegisterOneMissingCgroupFile(t *testing.T) {
	rootfs := t.TempDir()
	d := NewDiscoverer(nil, rootfs, t.TempDir())
	reg := cgroup.NewRegistry()
	id, _ := container.New("missing")

	d.registerOne(containerTask{id: id, pid: 9999}, reg)
	assert.Equal(t, 0, reg.Size())
}

func TestHandleEventTaskStartFetchesLabelsAndEnqueuesTask(t *testing.T) {
	fake := &fakeRuntimeClient{
		labels: map[string]map[string]string{
			"default/abc123": {"io.kubernetes.pod.name": "x"},
		},
	}
	d := NewDiscoverer(fake, "/", "/sys/fs/cgroup")
	reg := cgroup.NewRegistry()
	ctx := context.Background()
	taskCh := make(chan containerTask, 1)
	metadataCh := make(chan MetadataUpdate, 1)

	ev := Event{Kind: EventTaskStart, Namespace: "default", ContainerID: "abc123", Pid: 555}
	d.handleEvent(ctx, ev, taskCh, metadataCh, reg)

	meta := <-metadataCh
	assert.EqualValues(t, "abc123", meta.ContainerID)
	assert.Equal(t, "x", meta.Labels["io.kubernetes.pod.name"])

	task := <-taskCh
	assert.EqualValues(t, "abc123", task.id)
	assert.EqualValues(t, 555, task.pid)
}

func TestHandleEventTaskStartStillEnqueuesTaskWhenLabelFetchFails(t *testing.T) {
	fake := &fakeRuntimeClient{labels: map[string]map[string]string{}}
	d := NewDiscoverer(fake, "/", "/sys/fs/cgroup")
	reg := cgroup.NewRegistry()
	ctx := context.Background()
	taskCh := make(chan containerTask, 1)
	metadataCh := make(chan MetadataUpdate, 1)

	ev := Event{Kind: EventTaskStart, Namespace: "default", ContainerID: "missing", Pid: 7}
	d.handleEvent(ctx, ev, taskCh, metadataCh, reg)

	assert.Empty(t, metadataCh)
	task := <-taskCh
	assert.EqualValues(t, 7, task.pid)
}

func TestHandleEventContainerUpdateEnqueuesMetadataOnly(t *testing.T) {
	d := NewDiscoverer(nil, "/", "/sys/fs/cgroup")
	reg := cgroup.NewRegistry()
	ctx := context.Background()
	taskCh := make(chan containerTask, 1)
	metadataCh := make(chan MetadataUpdate, 1)

	ev := Event{Kind: EventContainerUpdate, ContainerID: "abc123", Labels: map[string]string{"k": "v"}}
	d.handleEvent(ctx, ev, taskCh, metadataCh, reg)

	meta := <-metadataCh
	assert.Equal(t, "v", meta.Labels["k"])
	assert.Empty(t, taskCh)
}

func TestHandleEventTaskDeleteRootExecRemovesContainer(t *testing.T) {
	d := NewDiscoverer(nil, "/", "/sys/fs/cgroup")
	reg := cgroup.NewRegistry()
	id, _ := container.New("abc123")
	reg.Register(id, cgroup.NewBuilder().Build())
	require.Equal(t, 1, reg.Size())

	ctx := context.Background()
	taskCh := make(chan containerTask, 1)
	metadataCh := make(chan MetadataUpdate, 1)

	ev := Event{Kind: EventTaskDelete, ContainerID: "abc123", ExecID: ""}
	d.handleEvent(ctx, ev, taskCh, metadataCh, reg)

	assert.Equal(t, 0, reg.Size())
}

func TestHandleEventTaskDeleteNonRootExecLeavesContainer(t *testing.T) {
	d := NewDiscoverer(nil, "/", "/sys/fs/cgroup")
	reg := cgroup.NewRegistry()
	id, _ := container.New("abc123")
	reg.Register(id, cgroup.NewBuilder().Build())

	ctx := context.Background()
	taskCh := make(chan containerTask, 1)
	metadataCh := make(chan MetadataUpdate, 1)

	ev := Event{Kind: EventTaskDelete, ContainerID: "abc123", ExecID: "exec-1"}
	d.handleEvent(ctx, ev, taskCh, metadataCh, reg)

	assert.Equal(t, 1, reg.Size())
}

func TestEnumerateNamespaceFeedsBothChannels(t *testing.T) {
	fake := &fakeRuntimeClient{
		containers: map[string][]ContainerInfo{
			"default": {{ID: "abc123", Pid: 10, Labels: map[string]string{"a": "b"}}},
		},
	}
	d := NewDiscoverer(fake, "/", "/sys/fs/cgroup")
	ctx := context.Background()
	taskCh := make(chan containerTask, 1)
	metadataCh := make(chan MetadataUpdate, 1)

	d.enumerateNamespace(ctx, "default", taskCh, metadataCh)

	meta := <-metadataCh
	assert.EqualValues(t, "abc123", meta.ContainerID)
	task := <-taskCh
	assert.EqualValues(t, 10, task.pid)
}
