package cloudcity

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// ResolvePath turns a client supplied logical path into a clean slash separated
// path relative to the root directory. The root itself resolves to ".".
//
// The input is an already decoded path, such as r.URL.Path or a query parameter
// value, so "?" and "#" are ordinary name characters here. The path:
//   - has backslashes normalized to "/"
//   - must not contain a ".." segment
//   - must be valid UTF-8 without NUL or control characters
//
// Empty, "." and duplicate segments are dropped. Violations return ErrInvalidPath.
func ResolvePath(p string) (string, error) {
	if !utf8.ValidString(p) {
		return "", fmt.Errorf("resolve path: %w: invalid utf-8", ErrInvalidPath)
	}

	for _, r := range p {
		if r < 0x20 || r == 0x7f {
			return "", fmt.Errorf("resolve path: %w: control character", ErrInvalidPath)
		}
	}

	p = strings.ReplaceAll(p, `\`, "/")

	segments := make([]string, 0, strings.Count(p, "/")+1)
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", fmt.Errorf("resolve path: %w: parent segment", ErrInvalidPath)
		}
		segments = append(segments, seg)
	}

	if len(segments) == 0 {
		return ".", nil
	}

	return path.Join(segments...), nil
}

// ResolveName validates a bare file name as used by the query parameter routes.
// It must resolve to exactly one path element.
func ResolveName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("resolve name: %w: empty name", ErrInvalidPath)
	}

	resolved, err := ResolvePath(name)
	if err != nil {
		return "", err
	}

	if resolved == "." || strings.Contains(resolved, "/") {
		return "", fmt.Errorf("resolve name: %w: %q is not a single name", ErrInvalidPath, name)
	}

	return resolved, nil
}

// JoinPath joins a resolved directory and a resolved relative path.
func JoinPath(dir, rel string) string {
	return path.Join(dir, rel)
}
