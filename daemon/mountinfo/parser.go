// Package mountinfo parses Linux mountinfo(5) lines and locates the cgroup
// v2 mount point from them, grounded on
// original_source/src/mountinfo/{parser.rs,detect.rs,error.rs}.
package mountinfo

import (
	"fmt"
	"strings"
)

// MountInfo is one parsed line of /proc/[pid]/mountinfo. See
// proc_pid_mountinfo(5) for the field layout:
// mount_id parent_id major:minor root mount_point [optional_fields...] - fs_type source super_options
type MountInfo struct {
	MountID        string
	ParentID       string
	MajorMinor     string
	Root           string
	MountPoint     string
	OptionalFields []string
	FsType         string
	Source         string
	SuperOptions   string
}

// field names a required MountInfo field, used in ParseError messages.
type field string

const (
	fieldMountID      field = "mount_id"
	fieldParentID     field = "parent_id"
	fieldMajorMinor   field = "major:minor"
	fieldRoot         field = "root"
	fieldMountPoint   field = "mount_point"
	fieldFsType       field = "fs_type"
	fieldSource       field = "source"
	fieldSuperOptions field = "super_options"
)

// ParseError reports why a mountinfo line failed to parse.
type ParseError struct {
	Kind  ParseErrorKind
	Field field
	Line  string
}

// ParseErrorKind distinguishes the ParseError variants.
type ParseErrorKind int

const (
	// MissingSeparator means the line has no literal " - " token splitting
	// the pre- and post-separator sections.
	MissingSeparator ParseErrorKind = iota
	// MissingPreSeparatorField means one of mount_id/parent_id/major:minor/
	// root/mount_point was absent before " - ".
	MissingPreSeparatorField
	// MissingPostSeparatorField means one of fs_type/source/super_options
	// was absent after " - ".
	MissingPostSeparatorField
)

func (e *ParseError) Error() string {
	switch e.Kind {
	case MissingSeparator:
		return fmt.Sprintf("missing separator ` - ` in line: `%s`", e.Line)
	case MissingPreSeparatorField:
		return fmt.Sprintf("missing `%s` in pre-separator section of line: `%s`", e.Field, e.Line)
	case MissingPostSeparatorField:
		return fmt.Sprintf("missing `%s` in post-separator section of line: `%s`", e.Field, e.Line)
	default:
		return fmt.Sprintf("invalid mountinfo line: `%s`", e.Line)
	}
}

// ParseMountInfoLine parses a single line of mountinfo data.
func ParseMountInfoLine(line string) (*MountInfo, error) {
	pre, post, ok := strings.Cut(line, " - ")
	if !ok {
		return nil, &ParseError{Kind: MissingSeparator, Line: line}
	}

	preFields := strings.Fields(pre)
	required := []field{fieldMountID, fieldParentID, fieldMajorMinor, fieldRoot, fieldMountPoint}
	if len(preFields) < len(required) {
		return nil, &ParseError{Kind: MissingPreSeparatorField, Field: required[len(preFields)], Line: line}
	}

	postFields := strings.Fields(post)
	postRequired := []field{fieldFsType, fieldSource, fieldSuperOptions}
	if len(postFields) < len(postRequired) {
		return nil, &ParseError{Kind: MissingPostSeparatorField, Field: postRequired[len(postFields)], Line: line}
	}

	var optional []string
	if len(preFields) > len(required) {
		optional = preFields[len(required):]
	}

	return &MountInfo{
		MountID:        preFields[0],
		ParentID:       preFields[1],
		MajorMinor:     preFields[2],
		Root:           preFields[3],
		MountPoint:     preFields[4],
		OptionalFields: optional,
		FsType:         postFields[0],
		Source:         postFields[1],
		SuperOptions:   postFields[2],
	}, nil
}
