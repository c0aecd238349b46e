package stats

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// keyValuePolicy replaces the source's trait-associated-constant shape with
// a plain configuration record passed into one generic reader. Every
// key/value cgroup file (cpu.stat, memory.stat, io.stat) is parsed by the
// same parseKeyValue function, differing only in this policy plus the
// handler map for the destination type.
type keyValuePolicy struct {
	// SplitChar is the separator between key and value within one
	// whitespace token. Zero means the format instead spreads one pair
	// across two whitespace tokens per line (key, then value).
	SplitChar rune
	// SkipLines is the number of leading lines to discard unparsed.
	SkipLines int
	// SkipValues is the number of leading whitespace tokens to discard on
	// every remaining line, before pair parsing begins (the device token
	// in io.stat).
	SkipValues int
	// AllowDuplicateKeys controls whether a second occurrence of a
	// recognized key is an error (false) or invokes the handler again,
	// e.g. to accumulate across devices (true).
	AllowDuplicateKeys bool
	// AllowMultipleKVPerLine controls whether the pair loop continues past
	// the first pair found on a line.
	AllowMultipleKVPerLine bool
}

// parseKeyValue drives the shared key/value algorithm against dst, invoking
// handlers[key](dst, value) for every recognized key encountered. Unknown
// keys and tokens lacking the split char are silently skipped. I/O errors
// from the reader propagate unchanged; malformed recognized values produce
// a *InvalidKeyValueError, and a disallowed duplicate produces a
// *DuplicateFieldError.
func parseKeyValue[T any](r io.Reader, p keyValuePolicy, handlers map[string]func(*T, uint64)) (*T, error) {
	dst := new(T)
	seen := make(map[string]bool, len(handlers))

	scanner := bufio.NewScanner(r)
	lineNum := 0

	for i := 0; i < p.SkipLines; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return nil, err
			}
			return dst, nil
		}
		lineNum++
	}

	for scanner.Scan() {
		lineNum++
		tokens := strings.Fields(scanner.Text())
		if len(tokens) > p.SkipValues {
			tokens = tokens[p.SkipValues:]
		} else {
			tokens = nil
		}

		if p.SplitChar == 0 {
			if len(tokens) < 2 {
				continue
			}
			if done, err := applyPair(dst, tokens[0], tokens[1], lineNum, p, handlers, seen); err != nil {
				return nil, err
			} else if done {
				return dst, scanner.Err()
			}
			continue
		}

		for _, tok := range tokens {
			parts := strings.SplitN(tok, string(p.SplitChar), 2)
			if len(parts) != 2 {
				continue
			}
			done, err := applyPair(dst, parts[0], parts[1], lineNum, p, handlers, seen)
			if err != nil {
				return nil, err
			}
			if done {
				return dst, scanner.Err()
			}
			if !p.AllowMultipleKVPerLine {
				break
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return dst, nil
}

// applyPair processes one recognized-or-not key/value pair. The bool return
// signals "all recognized keys seen once, stop reading" for the
// no-duplicates case.
func applyPair[T any](dst *T, key, valueStr string, lineNum int, p keyValuePolicy, handlers map[string]func(*T, uint64), seen map[string]bool) (bool, error) {
	handler, known := handlers[key]
	if !known {
		return false, nil
	}

	if !p.AllowDuplicateKeys {
		if seen[key] {
			return false, &DuplicateFieldError{Field: key, Line: lineNum}
		}
		seen[key] = true
	}

	val, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return false, &InvalidKeyValueError{Key: key, Value: valueStr, Line: lineNum, Source: err}
	}
	handler(dst, val)

	if !p.AllowDuplicateKeys && len(seen) == len(handlers) {
		return true, nil
	}
	return false, nil
}

// firstTwoTokens splits a single-line file's first line into whitespace
// tokens and returns the first two, returning ("", "") if the line is
// absent or empty.
func firstTwoTokens(r io.Reader) (string, string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", "", err
		}
		return "", "", nil
	}
	tokens := strings.Fields(scanner.Text())
	var a, b string
	if len(tokens) > 0 {
		a = tokens[0]
	}
	if len(tokens) > 1 {
		b = tokens[1]
	}
	return a, b, scanner.Err()
}

// firstLine returns the trimmed first line of r, or "" if the reader has no
// lines at all.
func firstLine(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()), scanner.Err()
}
