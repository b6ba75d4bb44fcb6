package session

// Outcome is how a session pass ended.
type Outcome int

const (
	// NothingToMerge means the first detection found no unmerged files.
	NothingToMerge Outcome = iota
	// Resolved means files were unmerged and the merge tool resolved them all.
	Resolved
	// Unresolved means files remained unmerged after the merge tool closed.
	Unresolved
	// DetectionFailed means detection or a hook failed.
	DetectionFailed
)

func (o Outcome) String() string {
	switch o {
	case NothingToMerge:
		return "nothing to merge"
	case Resolved:
		return "resolved"
	case Unresolved:
		return "unresolved"
	case DetectionFailed:
		return "detection failed"
	default:
		return "unknown"
	}
}
