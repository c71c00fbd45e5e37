package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up      key.Binding
	down    key.Binding
	left    key.Binding
	right   key.Binding
	zoomIn  key.Binding
	zoomOut key.Binding
	reset   key.Binding
	reheat  key.Binding
	sidebar key.Binding
	enter   key.Binding
	back    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "pan up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "pan down")),
		left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "pan left")),
		right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "pan right")),
		zoomIn:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		zoomOut: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		reset:   key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset view")),
		reheat:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reheat")),
		sidebar: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "artists")),
		enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "explore")),
		back:    key.NewBinding(key.WithKeys("b", "esc"), key.WithHelp("b", "overview")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.zoomIn, k.zoomOut, k.reset, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.zoomIn, k.zoomOut, k.reset, k.reheat},
		{k.sidebar, k.enter, k.back, k.quit},
	}
}
