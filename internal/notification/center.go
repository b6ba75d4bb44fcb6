package notification

import (
	"log/slog"
	"sort"
	"sync"

	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/logger"
)

// Sink displays notifications somewhere: the desktop, the terminal, a prompt.
type Sink interface {
	Show(n *Notification) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(n *Notification) error

func (f SinkFunc) Show(n *Notification) error { return f(n) }

// Center fans notifications out to its sinks and tracks the ones that have
// not been dismissed yet.
type Center struct {
	mu      sync.Mutex
	sinks   []Sink
	pending map[string]*Notification
	log     *slog.Logger
}

// NewCenter returns a center that shows notifications on the given sinks.
func NewCenter(sinks ...Sink) *Center {
	return &Center{
		sinks:   sinks,
		pending: make(map[string]*Notification),
		log:     logger.ComponentLogger("Notification"),
	}
}

// AddSink registers another sink for future notifications.
func (c *Center) AddSink(s Sink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinks = append(c.sinks, s)
}

// Publish records n as pending and shows it on every sink. A failing sink is
// logged and does not stop the others.
func (c *Center) Publish(n *Notification) {
	c.mu.Lock()
	c.pending[n.ID] = n
	sinks := append([]Sink(nil), c.sinks...)
	c.mu.Unlock()

	c.log.Info("publishing notification", "id", n.ID, "severity", n.Severity.String(), "title", n.Title, "actions", n.ActionLabels())
	for _, s := range sinks {
		if err := s.Show(n); err != nil {
			c.log.Warn("sink failed to show notification", "id", n.ID, "error", err)
		}
	}
}

// Notify builds and publishes a notification in one step.
func (c *Center) Notify(title, body string, sev Severity, actions ...Action) *Notification {
	n := New(title, body, sev, actions...)
	c.Publish(n)
	return n
}

// Expire dismisses n and forgets it. It returns false if n was already
// expired.
func (c *Center) Expire(n *Notification) bool {
	c.mu.Lock()
	delete(c.pending, n.ID)
	c.mu.Unlock()

	if !n.Expire() {
		return false
	}
	c.log.Debug("notification expired", "id", n.ID)
	return true
}

// Activate runs the action labelled label on the pending notification id.
// Expired notifications can no longer be activated.
func (c *Center) Activate(id, label string) error {
	c.mu.Lock()
	n, ok := c.pending[id]
	c.mu.Unlock()

	if !ok {
		return merrors.NotificationNotFound(id)
	}
	if n.Expired() {
		return merrors.NotificationExpired(id)
	}
	a, ok := n.Action(label)
	if !ok {
		return merrors.ActionNotFound(id, label)
	}

	c.log.Info("activating notification action", "id", id, "action", label)
	if a.OnActivate != nil {
		a.OnActivate(n)
	}
	return nil
}

// Get returns a pending notification by ID.
func (c *Center) Get(id string) (*Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.pending[id]
	return n, ok
}

// Pending returns the notifications that have not expired, oldest first.
func (c *Center) Pending() []*Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Notification, 0, len(c.pending))
	for _, n := range c.pending {
		if !n.Expired() {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID < out[j].ID
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}
