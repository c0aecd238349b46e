// Package container defines the identity types shared by the collection
// pipeline: the opaque container id the runtime hands us, the host/machine
// id read once at startup, and the pod id derived from a kubepods cgroup
// scope name.
package container

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// MaxIDLength is the largest a ContainerID may be; 255 itself is allowed.
const MaxIDLength = 255

// ErrIDTooLong is returned by New when src exceeds MaxIDLength bytes.
var ErrIDTooLong = errors.New("container: id exceeds maximum length")

// ID is an opaque container identifier as handed to us by the runtime.
// Go strings are already immutable and share their backing array on copy,
// so there's no need for the reference-counted wrapper the source uses.
type ID string

// New validates and constructs a ContainerID.
func New(src string) (ID, error) {
	if len(src) > MaxIDLength {
		return "", fmt.Errorf("%w: %d bytes", ErrIDTooLong, len(src))
	}
	return ID(src), nil
}

// String implements fmt.Stringer.
func (id ID) String() string {
	return string(id)
}

// MachineID is the 16-byte host identifier from /etc/machine-id.
type MachineID [16]byte

// ErrInvalidMachineID is returned when the source hex string is malformed.
var ErrInvalidMachineID = errors.New("container: invalid machine id")

// ParseMachineID parses a 32-character lowercase (or uppercase) hex string.
func ParseMachineID(s string) (MachineID, error) {
	s = strings.TrimSpace(s)
	var id MachineID
	if len(s) != 32 {
		return id, fmt.Errorf("%w: expected 32 hex chars, got %d", ErrInvalidMachineID, len(s))
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("%w: %s", ErrInvalidMachineID, err)
	}
	copy(id[:], decoded)
	return id, nil
}

// String renders the machine id as 32 lowercase hex characters.
func (m MachineID) String() string {
	return hex.EncodeToString(m[:])
}

// Bytes returns the raw 16 bytes, e.g. for binding into a SQL driver value.
func (m MachineID) Bytes() []byte {
	return m[:]
}

// PodID is the identifier recovered from a kubepods pod-sandbox cgroup
// scope name. It is not present in every container registration — only
// pod-scoped ones expose it.
type PodID string

// ErrNotAPodScope is returned by ParsePodID when the input isn't shaped
// like a kubepods pod slice name.
var ErrNotAPodScope = errors.New("container: not a pod scope name")

// ParsePodID extracts and normalizes the pod UID from a cgroup scope file
// name such as "kubepods-besteffort-pod1234abcd_5678_90ab_cdef_1234567890ab.slice".
// The five hyphen-free, underscore-joined hex groups between "pod" and
// ".slice" are concatenated (underscores stripped) into a 32-hex-char id,
// mirroring how Kubernetes derives the pod UID from its cgroup driver name.
func ParsePodID(scopeName string) (PodID, error) {
	name := strings.TrimSuffix(scopeName, ".slice")
	idx := strings.LastIndex(name, "pod")
	if idx < 0 {
		return "", ErrNotAPodScope
	}
	raw := name[idx+len("pod"):]
	hexOnly := strings.ReplaceAll(raw, "_", "")
	if len(hexOnly) != 32 || !isHex(hexOnly) {
		return "", fmt.Errorf("%w: %q", ErrNotAPodScope, scopeName)
	}
	return PodID(strings.ToLower(hexOnly)), nil
}

func isHex(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
