package mergetool

import (
	"charm.land/bubbles/v2/key"

	"github.com/zhubert/mend/internal/keys"
)

// KeyMap binds the merge tool actions.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Yours      key.Binding
	Theirs     key.Binding
	Edit       key.Binding
	Merge      key.Binding
	Resolve    key.Binding
	Force      key.Binding
	Copy       key.Binding
	ScrollUp   key.Binding
	ScrollDown key.Binding
	Help       key.Binding
	Close      key.Binding
}

// DefaultKeyMap returns the standard bindings. The merge binding is only
// enabled when git mergetool is configured for use.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys(keys.Up, "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys(keys.Down, "j"), key.WithHelp("↓/j", "down")),
		Top:        key.NewBinding(key.WithKeys(keys.Home, "g"), key.WithHelp("g", "first")),
		Bottom:     key.NewBinding(key.WithKeys(keys.End, "G"), key.WithHelp("G", "last")),
		Yours:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "accept yours")),
		Theirs:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "accept theirs")),
		Edit:       key.NewBinding(key.WithKeys("e", keys.Enter), key.WithHelp("e", "edit")),
		Merge:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "git mergetool")),
		Resolve:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "mark resolved")),
		Force:      key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "force resolved")),
		Copy:       key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy path")),
		ScrollUp:   key.NewBinding(key.WithKeys(keys.PgUp, keys.CtrlU), key.WithHelp("pgup", "scroll up")),
		ScrollDown: key.NewBinding(key.WithKeys(keys.PgDown, keys.CtrlD), key.WithHelp("pgdn", "scroll down")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Close:      key.NewBinding(key.WithKeys("q", keys.Escape, keys.CtrlC), key.WithHelp("q", "close")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Yours, k.Theirs, k.Edit, k.Resolve, k.Help, k.Close}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.Yours, k.Theirs, k.Resolve, k.Force},
		{k.Edit, k.Merge, k.Copy},
		{k.ScrollUp, k.ScrollDown, k.Help, k.Close},
	}
}
