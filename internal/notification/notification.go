// Package notification publishes balloon-style messages to the user.
//
// A Notification carries a title, a body, a severity and optional actions. The
// Center hands each published notification to every registered Sink (desktop
// balloons through beeep, a styled line on the terminal, an interactive
// prompt) and keeps track of which notifications are still pending so an
// action can be activated at most once.
package notification

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Severity is how urgent a notification is.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Action is a clickable entry attached to a notification.
type Action struct {
	Label string
	// OnActivate runs when the user picks the action. It receives the owning
	// notification so it can expire it.
	OnActivate func(n *Notification)
}

// Notification is a single message shown to the user.
type Notification struct {
	ID       string
	Title    string
	Body     string
	Severity Severity
	Actions  []Action
	Created  time.Time

	expired atomic.Bool
}

// New builds a notification with a fresh ID.
func New(title, body string, sev Severity, actions ...Action) *Notification {
	return &Notification{
		ID:       uuid.New().String(),
		Title:    title,
		Body:     body,
		Severity: sev,
		Actions:  actions,
		Created:  time.Now(),
	}
}

// Expire dismisses the notification. It returns true only for the call that
// actually expired it, so callers can use it as a once-guard.
func (n *Notification) Expire() bool {
	return n.expired.CompareAndSwap(false, true)
}

// Expired reports whether the notification has been dismissed.
func (n *Notification) Expired() bool {
	return n.expired.Load()
}

// Action returns the action with the given label.
func (n *Notification) Action(label string) (Action, bool) {
	for _, a := range n.Actions {
		if a.Label == label {
			return a, true
		}
	}
	return Action{}, false
}

// ActionLabels lists the labels of the notification's actions in order.
func (n *Notification) ActionLabels() []string {
	labels := make([]string, len(n.Actions))
	for i, a := range n.Actions {
		labels[i] = a.Label
	}
	return labels
}
