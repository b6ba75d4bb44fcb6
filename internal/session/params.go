package session

import "github.com/zhubert/mend/internal/conflict"

// Params configures the text and semantics of a session. Build it once per
// operation and do not modify it afterwards.
type Params struct {
	// Reverse swaps ours and theirs for every file in the session. Set it
	// when the conflicts come from a rebase or a stash pop.
	Reverse bool
	// ErrorTitle heads the warning and error notifications.
	ErrorTitle string
	// ErrorDescription is appended to the notification bodies.
	ErrorDescription string
	// MergeDescription, when set, replaces the merge tool's description of
	// the file set.
	MergeDescription string
	// Customizer controls the merge tool's title, description and column
	// labels.
	Customizer conflict.DialogCustomizer
}

// DialogCustomizer returns the customizer handed to the merge tool, with
// MergeDescription applied.
func (p Params) DialogCustomizer() conflict.DialogCustomizer {
	c := p.Customizer
	if p.MergeDescription != "" {
		desc := p.MergeDescription
		c.Describe = func([]conflict.UnmergedFile) string { return desc }
	}
	return c
}
