package notification

import (
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/zhubert/mend/internal/logger"
)

// AppName is shown by desktops that attribute notifications to an app.
const AppName = "mend"

func init() {
	beeep.AppName = AppName
}

var (
	notifierMu sync.RWMutex
	notifier   = beeep.Notify
)

// SetNotifier replaces the function used to show desktop notifications.
// Tests use it to avoid popping real balloons.
func SetNotifier(fn func(title, message string, icon any) error) {
	notifierMu.Lock()
	defer notifierMu.Unlock()
	notifier = fn
}

// ResetNotifier restores the beeep notifier.
func ResetNotifier() {
	SetNotifier(beeep.Notify)
}

// Send shows a desktop notification with the given title and message.
// On macOS it uses terminal-notifier or AppleScript, on Linux D-Bus or
// notify-send, on Windows the Windows Runtime COM API.
func Send(title, message string) error {
	notifierMu.RLock()
	fn := notifier
	notifierMu.RUnlock()

	log := logger.ComponentLogger("Notification")
	log.Debug("sending desktop notification", "title", title)
	// Empty icon lets beeep pick the platform default.
	if err := fn(title, message, ""); err != nil {
		log.Warn("desktop notification failed", "error", err)
		return err
	}
	return nil
}

// DesktopSink shows notifications as desktop balloons. Actions cannot be
// attached to a balloon, so the body mentions them instead.
type DesktopSink struct {
	// MinSeverity filters out notifications below this level.
	MinSeverity Severity
}

func (d DesktopSink) Show(n *Notification) error {
	if n.Severity < d.MinSeverity {
		return nil
	}
	body := n.Body
	if len(n.Actions) > 0 {
		body += "\n\nRun mend resolve to continue."
	}
	return Send(n.Title, body)
}
