package notification

import (
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
)

var (
	colorInfo    = lipgloss.Color("#06B6D4")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle  = lipgloss.NewStyle().Bold(true)
	actionStyle = lipgloss.NewStyle().Foreground(colorMuted)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func severityColor(s Severity) color.Color {
	switch s {
	case SeverityWarning:
		return colorWarning
	case SeverityError:
		return colorError
	default:
		return colorInfo
	}
}

// TerminalSink writes notifications as a bordered box to W.
type TerminalSink struct {
	W io.Writer
	// Plain disables styling, for logs and non-terminal output.
	Plain bool

	mu sync.Mutex
}

func (t *TerminalSink) Show(n *Notification) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, err := fmt.Fprintln(t.W, t.Render(n))
	return err
}

// Render formats n the way Show writes it.
func (t *TerminalSink) Render(n *Notification) string {
	var b strings.Builder
	title := n.Title
	if title == "" {
		title = strings.ToUpper(n.Severity.String())
	}

	if t.Plain {
		fmt.Fprintf(&b, "[%s] %s", n.Severity, title)
		if n.Body != "" {
			b.WriteString("\n")
			b.WriteString(n.Body)
		}
		for _, a := range n.Actions {
			fmt.Fprintf(&b, "\n  > %s", a.Label)
		}
		return b.String()
	}

	c := severityColor(n.Severity)
	b.WriteString(titleStyle.Foreground(c).Render(title))
	if n.Body != "" {
		b.WriteString("\n")
		b.WriteString(n.Body)
	}
	if len(n.Actions) > 0 {
		b.WriteString("\n")
		b.WriteString(actionStyle.Render("actions: " + strings.Join(n.ActionLabels(), ", ")))
	}
	return boxStyle.BorderForeground(c).Render(b.String())
}
