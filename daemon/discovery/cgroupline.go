package discovery

import (
	"strconv"
	"strings"
)

// CgroupLine is one parsed line of /proc/<pid>/cgroup. On cgroup v2-only
// hosts exactly one line is present: "0::/<path>".
type CgroupLine struct {
	HierarchyID    uint32
	ControllerList []string
	CgroupPath     string
}

// parseCgroupLine splits a cgroup line on ':' into hierarchy id, the
// (usually empty, on unified hierarchy) controller list, and the cgroup
// path, trimming trailing newline/whitespace from the path.
func parseCgroupLine(line string) (*CgroupLine, error) {
	parts := strings.Split(line, ":")
	if len(parts) < 3 {
		return nil, &CgroupLineError{Kind: InvalidFormat, Line: line}
	}
	if len(parts) > 3 {
		return nil, &CgroupLineError{Kind: TooManySeparators, Line: line}
	}

	hierarchyID, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return nil, &CgroupLineError{Kind: InvalidHierarchyID, Line: line}
	}

	var controllers []string
	if parts[1] != "" {
		controllers = strings.Split(parts[1], ",")
	}

	return &CgroupLine{
		HierarchyID:    uint32(hierarchyID),
		ControllerList: controllers,
		CgroupPath:     strings.TrimSpace(parts[2]),
	}, nil
}
