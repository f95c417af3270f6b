package form

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding of the form. Which ones are shown in the help
// bar depends on focus.
type keyMap struct {
	Submit  key.Binding
	Next    key.Binding
	Prev    key.Binding
	Cancel  key.Binding
	Library key.Binding
	Camera  key.Binding
	NoPhoto key.Binding
	Theme   key.Binding
	Up      key.Binding
	Down    key.Binding
	Edit    key.Binding
	Delete  key.Binding
	Quit    key.Binding
}

// fieldHelp is the help bar while an input has focus.
type fieldHelp struct{ k keyMap }

func (h fieldHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Submit, h.k.Next, h.k.Library, h.k.Camera, h.k.NoPhoto, h.k.Cancel, h.k.Theme}
}

func (h fieldHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Submit, h.k.Next, h.k.Prev, h.k.Cancel},
		{h.k.Library, h.k.Camera, h.k.NoPhoto, h.k.Theme},
	}
}

// listHelp is the help bar while the user list has focus.
type listHelp struct{ k keyMap }

func (h listHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Edit, h.k.Delete, h.k.Next, h.k.Theme, h.k.Quit}
}

func (h listHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.k.Up, h.k.Down, h.k.Edit, h.k.Delete},
		{h.k.Next, h.k.Theme, h.k.Quit},
	}
}

// DefaultKeyMap returns the form key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s/enter", "submit"),
		),
		Next: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel edit"),
		),
		Library: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "photo from library"),
		),
		Camera: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "take photo"),
		),
		NoPhoto: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "remove photo"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Edit: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("enter/e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
