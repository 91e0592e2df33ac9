package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/handoff/internal/tasks"
	tu "github.com/desertthunder/handoff/internal/testing"
	"github.com/desertthunder/handoff/internal/wizard"
)

type opened struct {
	urls []string
	err  error
}

func (o *opened) open(url string) error {
	o.urls = append(o.urls, url)
	return o.err
}

func newTestModel(t *testing.T, engine wizard.Engine) (*Model, *wizard.Wizard, *opened) {
	t.Helper()
	w := wizard.New(wizard.Options{Engine: engine})
	t.Cleanup(w.Close)
	o := &opened{}
	m := NewModel(context.Background(), w, Options{HelpURL: "https://example.com/help", OpenURL: o.open})
	return m, w, o
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// feed delivers the wizard's current screen into the model, the way waitForScreen would.
func feed(m *Model, w *wizard.Wizard) {
	m.Update(screenMsg(w.Screen()))
}

func TestModel(t *testing.T) {
	welcome := wizard.InProgress{AvatarURL: "https://gravatar.example/a", Sites: []wizard.SiteRef{1}}

	t.Run("loading", func(t *testing.T) {
		m, _, _ := newTestModel(t, nil)
		if !strings.Contains(m.View(), "Preparing your migration") {
			t.Errorf("expected loading view, got %q", m.View())
		}
	})

	t.Run("welcome wording follows site count", func(t *testing.T) {
		m, w, _ := newTestModel(t, nil)

		w.WriteStatus(welcome)
		feed(m, w)
		view := m.View()
		if !strings.Contains(view, "We found your site.") {
			t.Errorf("expected singular wording, got %q", view)
		}
		if !strings.Contains(view, "https://gravatar.example/a") {
			t.Errorf("expected avatar url in view")
		}

		w.WriteStatus(wizard.InProgress{Sites: []wizard.SiteRef{1, 2}})
		feed(m, w)
		if !strings.Contains(m.View(), "We found your sites.") {
			t.Errorf("expected plural wording, got %q", m.View())
		}
		if len(m.siteList.Items()) != 2 {
			t.Errorf("expected 2 list items, got %d", len(m.siteList.Items()))
		}
	})

	t.Run("enter walks through the flow", func(t *testing.T) {
		m, w, _ := newTestModel(t, nil)
		w.WriteStatus(welcome)
		feed(m, w)

		m.Update(keyMsg("enter"))
		if !w.Snapshot().AdvancedPastWelcome {
			t.Fatal("expected enter to advance past welcome")
		}
		feed(m, w)
		if !isBusy(m.Screen()) {
			t.Error("expected busy welcome screen")
		}
		if !strings.Contains(m.View(), "Moving your data") {
			t.Errorf("expected busy line, got %q", m.View())
		}

		m.Update(progressUpdateMsg(tasks.ProgressUpdate{Phase: tasks.CopySites, Message: "[1/1] ✓ Cooking"}))
		if !strings.Contains(m.View(), "[1/1] ✓ Cooking") {
			t.Errorf("expected progress message in busy line, got %q", m.View())
		}

		w.WriteStatus(wizard.Succeeded{})
		feed(m, w)
		if !strings.Contains(m.View(), "Notifications now come from the new app") {
			t.Errorf("expected notifications view, got %q", m.View())
		}

		m.Update(keyMsg("enter"))
		feed(m, w)
		if !strings.Contains(m.View(), "Thanks for switching") {
			t.Errorf("expected done view, got %q", m.View())
		}

		_, cmd := m.Update(keyMsg("enter"))
		if cmd != nil {
			t.Errorf("expected no error command, got one")
		}
		e := <-w.Events()
		if e != wizard.FlowComplete {
			t.Fatalf("expected flow complete, got %s", e)
		}

		_, cmd = m.Update(eventMsg(e))
		if !m.Completed() {
			t.Error("expected model completed")
		}
		if cmd == nil {
			t.Error("expected quit command")
		}
	})

	t.Run("help opens the browser", func(t *testing.T) {
		m, w, o := newTestModel(t, nil)
		w.WriteStatus(welcome)
		feed(m, w)

		m.Update(keyMsg("h"))
		e := <-w.Events()
		if e != wizard.RequestHelp {
			t.Fatalf("expected request help, got %s", e)
		}
		m.Update(eventMsg(e))
		if len(o.urls) != 1 || o.urls[0] != "https://example.com/help" {
			t.Errorf("expected help url opened once, got %v", o.urls)
		}
		if !strings.Contains(m.View(), "Opened https://example.com/help") {
			t.Errorf("expected note in view, got %q", m.View())
		}

		t.Run("browser failure", func(t *testing.T) {
			o.err = errors.New("no browser")
			m.Update(eventMsg(wizard.RequestHelp))
			if !strings.Contains(m.View(), "Open https://example.com/help for help.") {
				t.Errorf("expected fallback note, got %q", m.View())
			}
		})
	})

	t.Run("error screen retry", func(t *testing.T) {
		engine := tu.NewStubEngine()
		m, w, _ := newTestModel(t, engine)

		w.WriteStatus(wizard.Failed{Err: errors.New("boom")})
		feed(m, w)
		if !strings.Contains(m.View(), "Something went wrong") {
			t.Errorf("expected generic error copy, got %q", m.View())
		}

		m.Update(keyMsg("r"))
		engine.WaitCall(t)
		feed(m, w)
		if s, ok := m.Screen().(wizard.ErrorScreen); !ok || !s.Busy {
			t.Errorf("expected busy error screen, got %#v", m.Screen())
		}
		if !strings.Contains(m.View(), "Trying again") {
			t.Errorf("expected retry spinner, got %q", m.View())
		}

		m.Update(keyMsg("r"))
		if engine.Calls() != 1 {
			t.Errorf("expected retry ignored while busy, got %d calls", engine.Calls())
		}
	})

	t.Run("networking copy", func(t *testing.T) {
		m, w, _ := newTestModel(t, nil)
		w.ReportFailure(wizard.Networking)
		feed(m, w)
		if !strings.Contains(m.View(), "No connection") {
			t.Errorf("expected networking copy, got %q", m.View())
		}
	})

	t.Run("restart from notifications", func(t *testing.T) {
		engine := tu.NewStubEngine()
		m, w, _ := newTestModel(t, engine)
		w.WriteStatus(welcome)
		w.AdvancePastWelcome()
		w.WriteStatus(wizard.Succeeded{})
		feed(m, w)

		m.Update(keyMsg("R"))
		engine.WaitCall(t)
		feed(m, w)
		if m.Screen().Step() != wizard.StepLoading {
			t.Errorf("expected loading after restart, got %s", m.Screen().Step())
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, _, _ := newTestModel(t, nil)
		_, cmd := m.Update(keyMsg("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("closed feed quits", func(t *testing.T) {
		m, w, _ := newTestModel(t, nil)
		w.Close()

		// the last published screen is still buffered after Close
		msg := m.waitForScreen()()
		if got, ok := msg.(Msg); !ok || got.kind != MsgScreen {
			t.Fatalf("expected buffered screen, got %#v", msg)
		}
		m.Update(msg)

		msg = m.waitForScreen()()
		if got, ok := msg.(Msg); !ok || got.kind != MsgFeedClosed {
			t.Fatalf("expected feed closed, got %#v", msg)
		}
		if _, cmd := m.Update(msg); cmd == nil {
			t.Error("expected quit command")
		} else if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("action errors are shown", func(t *testing.T) {
		m, _, _ := newTestModel(t, nil)
		m.Update(actionFailedMsg(errors.New("queue full")))
		if !strings.Contains(m.View(), "Error: queue full") {
			t.Errorf("expected error in view, got %q", m.View())
		}
	})

	t.Run("window resize", func(t *testing.T) {
		m, w, _ := newTestModel(t, nil)
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
		w.WriteStatus(welcome)
		feed(m, w)
		m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
		if m.siteList.Width() != 76 {
			t.Errorf("expected list width 76, got %d", m.siteList.Width())
		}
	})
}
