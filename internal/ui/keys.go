/*
 * Copyright (c) 2025 Hardiyanto Y -Ebiet.
 * This software is part of the Krishi Mitra project.
 * This code is provided "as is", without warranty of any kind.
 */

package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the chat screen bindings. Several of them shadow textarea
// defaults (ctrl+a, ctrl+p), so the chat screen checks these first.
type KeyMap struct {
	Send      key.Binding
	Newline   key.Binding
	Voice     key.Binding
	Autoplay  key.Binding
	PlayPause key.Binding
	SelectUp  key.Binding
	SelectDn  key.Binding
	Language  key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Send:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "send")),
		Newline:   key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt+enter", "new line")),
		Voice:     key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "voice")),
		Autoplay:  key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "autoplay")),
		PlayPause: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "play/pause")),
		SelectUp:  key.NewBinding(key.WithKeys("ctrl+up"), key.WithHelp("ctrl+↑", "previous clip")),
		SelectDn:  key.NewBinding(key.WithKeys("ctrl+down"), key.WithHelp("ctrl+↓", "next clip")),
		Language:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "language")),
		PageUp:    key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
		PageDown:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "scroll down")),
		Quit:      key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
	}
}
