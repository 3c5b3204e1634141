// Package stacktrace trims runtime stacks down to this module's own frames.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns the file:line locations under internal/ found in a
// debug.Stack dump, outermost call last.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		// Location lines look like "/src/internal/x/y.go:42 +0x1d".
		loc, _, _ := strings.Cut(line, " ")
		if !strings.Contains(loc, ".go:") {
			continue
		}
		if _, after, ok := strings.Cut(loc, marker); ok {
			paths = append(paths, "internal/"+after)
		}
	}

	return paths
}

// Summary returns the internal frames when there are any and the full stack
// text otherwise, suitable as a log attribute value.
func Summary(stack []byte) any {
	if paths := InternalPaths(stack); len(paths) > 0 {
		return paths
	}
	return string(stack)
}
