// Package environment detects whether the process is running on the bare
// host or inside a container, grounded on
// original_source/src/environment/{checks.rs,detect.rs,error.rs}.
package environment

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CheckErrorKind distinguishes CheckError variants.
type CheckErrorKind int

const (
	// ExistenceCheck means os.Stat on a candidate path failed for a reason
	// other than not-exists.
	ExistenceCheck CheckErrorKind = iota
	// ReadSymlink means resolving a /proc/.../ns/pid symlink failed.
	ReadSymlink
	// FileOpen means /proc/self/cgroup couldn't be opened.
	FileOpen
	// ReadLine means reading /proc/self/cgroup failed mid-scan.
	ReadLine
)

// CheckError reports why one environment heuristic failed to run. It never
// represents "ran and found nothing" — callers in detect.go treat these as
// non-fatal and fall through to the next heuristic.
type CheckError struct {
	Kind  CheckErrorKind
	Path  string
	Cause error
}

func (e *CheckError) Error() string {
	switch e.Kind {
	case ExistenceCheck:
		return fmt.Sprintf("failed to check if path `%s` exists: %v", e.Path, e.Cause)
	case ReadSymlink:
		return fmt.Sprintf("failed to read symlink `%s`: %v", e.Path, e.Cause)
	case FileOpen:
		return fmt.Sprintf("failed to open file `%s`: %v", e.Path, e.Cause)
	case ReadLine:
		return fmt.Sprintf("failed to read line for file `%s`: %v", e.Path, e.Cause)
	default:
		return fmt.Sprintf("environment check failed for `%s`", e.Path)
	}
}

func (e *CheckError) Unwrap() error { return e.Cause }

// containsProcMount reports whether rootfs/proc exists.
func containsProcMount(rootfs string) (bool, error) {
	path := filepath.Join(rootfs, "proc")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &CheckError{Kind: ExistenceCheck, Path: path, Cause: err}
	}
	return true, nil
}

// isPIDNamespaceIsolated reports whether the calling process's PID
// namespace differs from rootfs's init process, a strong container signal.
func isPIDNamespaceIsolated(rootfs string) (bool, error) {
	selfNSPath := "/proc/self/ns/pid"
	selfNS, err := os.Readlink(selfNSPath)
	if err != nil {
		return false, &CheckError{Kind: ReadSymlink, Path: selfNSPath, Cause: err}
	}

	rootNSPath := filepath.Join(rootfs, "proc/1/ns/pid")
	rootNS, err := os.Readlink(rootNSPath)
	if err != nil {
		return false, &CheckError{Kind: ReadSymlink, Path: rootNSPath, Cause: err}
	}

	return selfNS != rootNS, nil
}

var containerCgroupMarkers = []string{"docker", "kubepods", "containerd", "libpod"}

// matchesContainerCgroup scans /proc/self/cgroup for known runtime markers
// or a "/"-separated path component of 32+ hex chars, either of which indicates the
// process is itself cgroup-scoped under a container runtime.
func matchesContainerCgroup() (bool, error) {
	const path = "/proc/self/cgroup"
	f, err := os.Open(path)
	if err != nil {
		return false, &CheckError{Kind: FileOpen, Path: path, Cause: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		for _, marker := range containerCgroupMarkers {
			if strings.Contains(line, marker) {
				return true, nil
			}
		}
		for _, part := range strings.Split(line, "/") {
			if len(part) >= 32 && isNonEmptyHexString(part) {
				return true, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return false, &CheckError{Kind: ReadLine, Path: path, Cause: err}
	}

	return false, nil
}

// hasContainerIndicators checks well-known container marker files and the
// "container" environment variable set by most container runtimes.
func hasContainerIndicators() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	if _, err := os.Stat("/run/.containerenv"); err == nil {
		return true
	}
	if _, ok := os.LookupEnv("container"); ok {
		return true
	}
	return false
}

// isNonEmptyHexString reports whether s is non-empty and entirely ASCII
// hex digits.
func isNonEmptyHexString(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
