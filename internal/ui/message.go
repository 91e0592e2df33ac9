package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/handoff/internal/tasks"
	"github.com/desertthunder/handoff/internal/wizard"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgScreen MsgKind = iota
	MsgEvent
	MsgProgressUpdate
	MsgStarted
	MsgActionFailed
	MsgFeedClosed
)

// screenMsg is the constructor for [MsgScreen]
func screenMsg(s wizard.Screen) Msg {
	return Msg{kind: MsgScreen, data: s}
}

// eventMsg is the constructor for [MsgEvent]
func eventMsg(e wizard.Event) Msg {
	return Msg{kind: MsgEvent, data: e}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// startedMsg is the constructor for [MsgStarted]
func startedMsg(err error) Msg {
	return Msg{kind: MsgStarted, data: err}
}

// actionFailedMsg is the constructor for [MsgActionFailed]
func actionFailedMsg(err error) Msg {
	return Msg{kind: MsgActionFailed, data: err}
}

// feedClosedMsg is the constructor for [MsgFeedClosed]
func feedClosedMsg() Msg {
	return Msg{kind: MsgFeedClosed}
}
