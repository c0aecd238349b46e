package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeEnvironmentString(t *testing.T) {
	assert.Equal(t, "host", Host.String())
	assert.Equal(t, "container", Container.String())
}

func TestDetectRuntimeEnvironmentFallsBackToEnvIndicator(t *testing.T) {
	t.Setenv("container", "docker")
	// With a nonexistent rootfs, the /proc-based checks fail closed and the
	// cgroup check depends on the real host, but the env var indicator
	// always fires last and should win regardless.
	got := DetectRuntimeEnvironment("/nonexistent-rootfs-for-test")
	assert.Equal(t, Container, got)
}
