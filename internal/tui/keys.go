package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all key bindings
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	MoveLeft  key.Binding
	MoveRight key.Binding
	Timer     key.Binding
	Done      key.Binding
	Add       key.Binding
	Delete    key.Binding
	Help      key.Binding
	Quit      key.Binding
	Escape    key.Binding
	Enter     key.Binding
	Refresh   key.Binding
}

var keys = keyMap{
	Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left column")),
	Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right column")),
	MoveLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("H", "move task left")),
	MoveRight: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("L", "move task right")),
	Timer:     key.NewBinding(key.WithKeys(" ", "s"), key.WithHelp("space/s", "start/stop timer")),
	Done:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "toggle done")),
	Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
	Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Escape:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
	Refresh:   key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "refresh")),
}

// helpBindings is the order of the help screen
func (k keyMap) helpBindings() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Left, k.Right, k.MoveLeft, k.MoveRight,
		k.Timer, k.Done, k.Add, k.Delete, k.Refresh, k.Help, k.Quit,
	}
}
