// Package ui provides constants for layout calculations.
package ui

// Layout constants for panel sizing
const (
	// HeaderHeight is the height of the header in lines (title + description)
	HeaderHeight = 2

	// FooterHeight is the height of the footer in lines (status + help)
	FooterHeight = 2

	// BorderSize is the total border size (top + bottom or left + right)
	BorderSize = 2

	// FileListWidthRatio is the ratio of the screen given to the file list (1/3)
	FileListWidthRatio = 3

	// MinFileListWidth keeps the file list usable on narrow terminals
	MinFileListWidth = 24

	// DefaultWidth and DefaultHeight are used until the first window size
	// message arrives.
	DefaultWidth  = 100
	DefaultHeight = 30
)

// Preview constants
const (
	// MaxPreviewBytes caps how much of a file is highlighted for the preview
	MaxPreviewBytes = 256 * 1024

	// PreviewTruncationTail marks a preview line cut at the panel width
	PreviewTruncationTail = "…"
)
