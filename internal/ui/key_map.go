package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/desertthunder/handoff/internal/wizard"
)

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	cont    key.Binding
	finish  key.Binding
	help    key.Binding
	retry   key.Binding
	restart key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		cont:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "continue")),
		finish:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "finish")),
		help:    key.NewBinding(key.WithKeys("h", "?"), key.WithHelp("h", "help")),
		retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again")),
		restart: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "restart")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.cont, k.help},
		{k.retry, k.restart, k.quit},
	}
}

// forScreen returns the bindings offered on step.
func (k keyMap) forScreen(step wizard.Step, busy bool) []key.Binding {
	switch step {
	case wizard.StepWelcome:
		if busy {
			return []key.Binding{k.help, k.quit}
		}
		return []key.Binding{k.cont, k.help, k.quit}
	case wizard.StepNotifications:
		return []key.Binding{k.cont, k.restart, k.quit}
	case wizard.StepDone:
		return []key.Binding{k.finish, k.quit}
	case wizard.StepError:
		if busy {
			return []key.Binding{k.help, k.quit}
		}
		return []key.Binding{k.retry, k.help, k.restart, k.quit}
	default:
		return []key.Binding{k.quit}
	}
}
