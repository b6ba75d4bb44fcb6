package mergetool

import "strings"

type markerKind int

const (
	markerNone markerKind = iota
	markerOurs
	markerBase
	markerSeparator
	markerTheirs
)

const markerLen = 7

// classifyLine recognizes the lines git writes around a conflict hunk:
// "<<<<<<< label", "||||||| label" (diff3 only), "=======" and
// ">>>>>>> label". The label part is optional.
func classifyLine(line string) markerKind {
	line = strings.TrimRight(line, "\r")
	if len(line) < markerLen {
		return markerNone
	}
	if len(line) > markerLen && line[markerLen] != ' ' {
		return markerNone
	}
	switch line[:markerLen] {
	case "<<<<<<<":
		return markerOurs
	case "|||||||":
		return markerBase
	case "=======":
		if len(line) == markerLen {
			return markerSeparator
		}
	case ">>>>>>>":
		return markerTheirs
	}
	return markerNone
}

// CountConflicts returns the number of complete conflict hunks in content.
// A hunk counts once its closing marker is seen after an opening one.
func CountConflicts(content string) int {
	n, open := 0, false
	for _, line := range strings.Split(content, "\n") {
		switch classifyLine(line) {
		case markerOurs:
			open = true
		case markerTheirs:
			if open {
				n++
				open = false
			}
		}
	}
	return n
}

// HasConflictMarkers reports whether content still contains an opening or
// closing conflict marker. Unbalanced leftovers count too.
func HasConflictMarkers(content string) bool {
	for _, line := range strings.Split(content, "\n") {
		if k := classifyLine(line); k == markerOurs || k == markerTheirs {
			return true
		}
	}
	return false
}
