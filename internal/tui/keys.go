package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	SwitchPane key.Binding
	Down       key.Binding
	Up         key.Binding
	Top        key.Binding
	Bottom     key.Binding
	Toggle     key.Binding
	ShiftDown  key.Binding
	ShiftUp    key.Binding
	Submit     key.Binding
	Solution   key.Binding
	Adjust     key.Binding
	Next       key.Binding
	Clear      key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	SwitchPane: key.NewBinding(key.WithKeys("tab", "left", "right", "h", "l"), key.WithHelp("tab ← →", "Switch between Available and Selected")),
	Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j ↓", "Cursor down")),
	Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k ↑", "Cursor up")),
	Top:        key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "First item")),
	Bottom:     key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "Last item")),
	Toggle:     key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("Enter", "Add or remove the expense")),
	ShiftDown:  key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "Move the expense down")),
	ShiftUp:    key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "Move the expense up")),
	Submit:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Submit the budget")),
	Solution:   key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "Show the solution after feedback")),
	Adjust:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Dismiss feedback and adjust")),
	Next:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "Next simulation (result view)")),
	Clear:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Clear messages")),
	Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "Toggle help")),
	Quit:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Quit")),
}

// helpSections groups bindings for the help overlay.
func (k keyMap) helpSections() []struct {
	name     string
	bindings []key.Binding
} {
	return []struct {
		name     string
		bindings []key.Binding
	}{
		{"Budget", []key.Binding{k.SwitchPane, k.Down, k.Up, k.Top, k.Bottom, k.Toggle, k.ShiftDown, k.ShiftUp}},
		{"Submit", []key.Binding{k.Submit, k.Solution, k.Adjust, k.Next}},
		{"General", []key.Binding{k.Clear, k.Help, k.Quit}},
	}
}
