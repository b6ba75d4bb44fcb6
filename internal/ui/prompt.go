package ui

import (
	"errors"
	"log/slog"

	huh "charm.land/huh/v2"

	merrors "github.com/zhubert/mend/internal/errors"
	"github.com/zhubert/mend/internal/logger"
	"github.com/zhubert/mend/internal/notification"
)

// ConfirmFunc asks a yes/no question on the terminal.
type ConfirmFunc func(title, description, affirmative string) (bool, error)

// Confirm asks with a huh confirm field. Aborting the form counts as "no".
func Confirm(title, description, affirmative string) (bool, error) {
	var yes bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative("Later").
				Value(&yes),
		),
	).
		WithTheme(PromptTheme()).
		WithShowHelp(false)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return yes, nil
}

// Activator triggers a notification action by label.
type Activator interface {
	Activate(id, label string) error
}

// PromptSink offers a notification's first action as a confirmation prompt.
// The prompt runs on the UI goroutine, after whatever currently owns the
// terminal is done. A notification that expired while the prompt was queued
// is skipped.
type PromptSink struct {
	dispatcher *Dispatcher
	activator  Activator
	confirm    ConfirmFunc
	log        *slog.Logger
}

// NewPromptSink returns a sink that prompts through d. A nil confirm uses
// Confirm.
func NewPromptSink(d *Dispatcher, a Activator, confirm ConfirmFunc) *PromptSink {
	if confirm == nil {
		confirm = Confirm
	}
	return &PromptSink{
		dispatcher: d,
		activator:  a,
		confirm:    confirm,
		log:        logger.ComponentLogger("Prompt"),
	}
}

func (s *PromptSink) Show(n *notification.Notification) error {
	if len(n.Actions) == 0 {
		return nil
	}
	label := n.Actions[0].Label
	s.dispatcher.Post("prompt", func() error {
		if n.Expired() {
			s.log.Debug("notification expired before prompting", "id", n.ID)
			return nil
		}
		yes, err := s.confirm(n.Title, n.Body, label)
		if err != nil {
			return err
		}
		if !yes {
			s.log.Info("prompt declined", "id", n.ID, "action", label)
			return nil
		}
		if err := s.activator.Activate(n.ID, label); err != nil {
			if merrors.Is(err, merrors.KindExpired) || merrors.Is(err, merrors.KindNotFound) {
				s.log.Info("notification gone before activation", "id", n.ID, "error", err)
				return nil
			}
			return err
		}
		return nil
	})
	return nil
}
