package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select   key.Binding
	Collapse key.Binding
	Toggle   key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Command palette
	Command key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// World settings
	Settings key.Binding

	// Filters
	PrimaryOnly key.Binding
	SetPrimary  key.Binding

	// Quest actions
	NewQuest   key.Binding
	AddTask    key.Binding
	AddReward  key.Binding
	CycleState key.Binding
	Delete     key.Binding

	// Tracker geometry
	Wider    key.Binding
	Narrower key.Binding
	Taller   key.Binding
	Shorter  key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open quest"),
		),
		Collapse: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "expand/collapse"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle task"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Settings: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "world settings"),
		),
		PrimaryOnly: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "primary only"),
		),
		SetPrimary: key.NewBinding(
			key.WithKeys("*"),
			key.WithHelp("*", "set primary"),
		),
		NewQuest: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new quest"),
		),
		AddTask: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "add task"),
		),
		AddReward: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "add reward"),
		),
		CycleState: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle status"),
		),
		Delete: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "delete quest"),
		),
		Wider: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L/H", "wider/narrower"),
		),
		Narrower: key.NewBinding(
			key.WithKeys("H"),
		),
		Taller: key.NewBinding(
			key.WithKeys("J"),
			key.WithHelp("J/K", "taller/shorter"),
		),
		Shorter: key.NewBinding(
			key.WithKeys("K"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Toggle,
		k.Collapse, k.Quit, k.Help,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Toggle, k.Collapse, k.PrimaryOnly, k.SetPrimary},
		{k.NewQuest, k.AddTask, k.AddReward, k.CycleState, k.Delete},
		{k.Command, k.Help, k.Refresh, k.Settings, k.Wider, k.Taller},
	}
}
