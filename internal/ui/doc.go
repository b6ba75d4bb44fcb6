// Package ui owns the terminal for mend.
//
// # Overview
//
// Only one thing may draw to the terminal or read keys at a time. The
// Dispatcher enforces that: every interactive piece (the merge tool in
// ui/mergetool, the confirmation prompt shown for notification actions) runs
// as a task on the goroutine that called Dispatcher.Serve. Background work
// hands tasks over with InvokeAndWait, which blocks until the task is done, or
// Post, which does not.
//
// # Layout
//
// The merge tool screen is organized as follows:
//
//	┌─────────────────────────────────────────────────────┐
//	│ Header: dialog title and description                │
//	├─────────────────┬───────────────────────────────────┤
//	│                 │                                   │
//	│   Files         │         Preview                   │
//	│   (1/3 width)   │         (2/3 width)               │
//	│                 │                                   │
//	├─────────────────┴───────────────────────────────────┤
//	│ Footer: status line and key help                    │
//	└─────────────────────────────────────────────────────┘
//
// Layout constants live in constants.go.
//
// # Styles
//
// All styles are defined in styles.go using Lipgloss. The color palette uses:
//   - ColorPrimary (#7C3AED): Purple, used for highlights and focused elements
//   - ColorSecondary (#06B6D4): Cyan, used for key hints
//   - ColorText (#F9FAFB): Light text
//   - ColorTextMuted (#B0B8C4): Muted text for secondary content
//
// PromptTheme adapts the same palette for huh forms.
package ui
