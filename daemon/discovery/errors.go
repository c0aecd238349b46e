// Package discovery finds running containers on a containerd socket and
// feeds their cgroup paths into a Registry, grounded on
// original_source/src/discovery/containerd.rs.
package discovery

import "fmt"

// ErrorKind distinguishes discovery-level Error variants.
type ErrorKind int

const (
	// SocketConnect means dialing the containerd unix socket failed.
	SocketConnect ErrorKind = iota
	// Subscribe means the initial events subscription call failed.
	Subscribe
	// EventMessage means reading from an open event stream failed.
	EventMessage
	// UnknownEvent means an event arrived with an unrecognized type URL.
	UnknownEvent
	// EventDecode means typeurl decoding of a recognized event type failed.
	EventDecode
)

// Error reports a discovery-subsystem failure.
type Error struct {
	Kind    ErrorKind
	Path    string
	TypeURL string
	Cause   error
}

func (e *Error) Error() string {
	switch e.Kind {
	case SocketConnect:
		return fmt.Sprintf("failed to connect to socket `%s`: %v", e.Path, e.Cause)
	case Subscribe:
		return fmt.Sprintf("failed to subscribe to events service: %v", e.Cause)
	case EventMessage:
		return fmt.Sprintf("failed to receive event message: %v", e.Cause)
	case UnknownEvent:
		return fmt.Sprintf("unknown event type `%s`", e.TypeURL)
	case EventDecode:
		return fmt.Sprintf("failed to decode event type `%s`: %v", e.TypeURL, e.Cause)
	default:
		return "discovery error"
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// CgroupLineErrorKind distinguishes CgroupLineError variants.
type CgroupLineErrorKind int

const (
	// InvalidFormat means the line didn't split into the expected
	// hierarchy-id:controller-list:cgroup-path shape at all.
	InvalidFormat CgroupLineErrorKind = iota
	// InvalidHierarchyID means the first field wasn't a valid uint32.
	InvalidHierarchyID
	// TooManySeparators means more than two ':' separators were present.
	TooManySeparators
)

// CgroupLineError reports why a /proc/<pid>/cgroup line failed to parse.
type CgroupLineError struct {
	Kind CgroupLineErrorKind
	Line string
}

func (e *CgroupLineError) Error() string {
	switch e.Kind {
	case InvalidFormat:
		return fmt.Sprintf("invalid cgroup line format: %s", e.Line)
	case InvalidHierarchyID:
		return fmt.Sprintf("invalid hierarchy id in cgroup line: %s", e.Line)
	case TooManySeparators:
		return fmt.Sprintf("too many separators: %s", e.Line)
	default:
		return fmt.Sprintf("invalid cgroup line: %s", e.Line)
	}
}
