package environment

import "github.com/domalab/cgtrace/daemon/logger"

// RuntimeEnvironment identifies where the process is executing.
type RuntimeEnvironment int

const (
	// Host means the process is running directly on the machine.
	Host RuntimeEnvironment = iota
	// Container means the process is running inside a container runtime
	// (Docker, Kubernetes, Podman, ...).
	Container
)

func (e RuntimeEnvironment) String() string {
	if e == Container {
		return "container"
	}
	return "host"
}

// DetectRuntimeEnvironment runs a cascade of heuristics to decide whether
// the current process is running on the host or inside a container:
//
//  1. Does rootfs/proc exist, and does the init PID namespace differ from
//     ours?
//  2. Does /proc/self/cgroup mention a container runtime, or contain a
//     "/"-separated path component of 32+ hex chars?
//  3. Are well-known container marker files or environment variables
//     present?
//
// Every individual check's error is logged as a warning and does not
// abort detection — a failing check just falls through to the next one,
// ending in Host if nothing fired.
func DetectRuntimeEnvironment(rootfs string) RuntimeEnvironment {
	hasProc, err := containsProcMount(rootfs)
	if err != nil {
		logger.Warn("failed to determine presence of /proc in rootfs: %v", err)
	} else if hasProc {
		isolated, err := isPIDNamespaceIsolated(rootfs)
		if err != nil {
			logger.Warn("namespace check failed when detecting runtime environment: %v", err)
		} else if isolated {
			return Container
		}
	}

	matches, err := matchesContainerCgroup()
	if err != nil {
		logger.Warn("cgroup analysis failed during runtime detection: %v", err)
	} else if matches {
		return Container
	}

	if hasContainerIndicators() {
		return Container
	}

	return Host
}
