package mountinfo

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// DetectErrorKind distinguishes DetectError variants.
type DetectErrorKind int

const (
	// FileOpen means the mountinfo file couldn't be opened.
	FileOpen DetectErrorKind = iota
	// ReadLine means reading a line from the mountinfo file failed.
	ReadLine
	// Parse means a line failed ParseMountInfoLine.
	Parse
	// MissingCgroup2Mount means no cgroup2 entry was found in the file.
	MissingCgroup2Mount
	// Canonicalization means the detected mount point path couldn't be
	// resolved to its canonical form.
	Canonicalization
	// Metadata means stat-ing the canonicalized mount point failed.
	Metadata
	// NotADirectory means the canonicalized mount point isn't a directory.
	NotADirectory
)

// DetectError reports why cgroup v2 mount point detection failed.
type DetectError struct {
	Kind  DetectErrorKind
	Path  string
	Cause error
}

func (e *DetectError) Error() string {
	switch e.Kind {
	case FileOpen:
		return fmt.Sprintf("failed to open mountinfo file `%s`: %v", e.Path, e.Cause)
	case ReadLine:
		return fmt.Sprintf("failed to read line for file `%s`: %v", e.Path, e.Cause)
	case Parse:
		return fmt.Sprintf("failed to parse line in file `%s`: %v", e.Path, e.Cause)
	case MissingCgroup2Mount:
		return fmt.Sprintf("failed to detect cgroup v2 mount point in file `%s`", e.Path)
	case Canonicalization:
		return fmt.Sprintf("failed to canonicalize cgroup2 mount path `%s`: %v", e.Path, e.Cause)
	case Metadata:
		return fmt.Sprintf("failed to read metadata of cgroup2 mount path `%s`: %v", e.Path, e.Cause)
	case NotADirectory:
		return fmt.Sprintf("cgroup2 mount path `%s` is not a directory", e.Path)
	default:
		return fmt.Sprintf("mountinfo detection failed for `%s`", e.Path)
	}
}

func (e *DetectError) Unwrap() error { return e.Cause }

// DetectCgroup2MountPoint scans path (the pipeline passes <rootfs>/proc/1/mountinfo) for
// the first entry whose filesystem type is "cgroup2" and returns its mount
// point. The first match wins when more than one cgroup2 mount is present.
func DetectCgroup2MountPoint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &DetectError{Kind: FileOpen, Path: path, Cause: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 256), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		mi, err := ParseMountInfoLine(line)
		if err != nil {
			return "", &DetectError{Kind: Parse, Path: path, Cause: err}
		}
		if mi.FsType == "cgroup2" {
			return mi.MountPoint, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", &DetectError{Kind: ReadLine, Path: path, Cause: err}
	}

	return "", &DetectError{Kind: MissingCgroup2Mount, Path: path}
}

// DetectValidatedCgroup2MountPoint calls DetectCgroup2MountPoint and then
// resolves and validates the result: the returned path is canonicalized,
// confirmed to exist, and confirmed to be a directory.
func DetectValidatedCgroup2MountPoint(path string) (string, error) {
	raw, err := DetectCgroup2MountPoint(path)
	if err != nil {
		return "", err
	}

	canonical, err := filepath.EvalSymlinks(raw)
	if err != nil {
		return "", &DetectError{Kind: Canonicalization, Path: raw, Cause: err}
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", &DetectError{Kind: Metadata, Path: canonical, Cause: err}
	}
	if !info.IsDir() {
		return "", &DetectError{Kind: NotADirectory, Path: canonical}
	}

	return canonical, nil
}
