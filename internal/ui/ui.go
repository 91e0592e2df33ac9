package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/handoff/internal/shared"
	"github.com/desertthunder/handoff/internal/tasks"
	"github.com/desertthunder/handoff/internal/wizard"
)

// Options configures a [Model].
type Options struct {
	HelpURL  string
	OpenURL  func(url string) error // defaults to [shared.OpenBrowser]
	Progress <-chan tasks.ProgressUpdate
	Logger   *log.Logger
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	wiz      *wizard.Wizard
	screen   wizard.Screen
	siteList list.Model
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	width    int
	height   int

	helpURL  string
	openURL  func(string) error
	progress <-chan tasks.ProgressUpdate
	latest   tasks.ProgressUpdate
	logger   *log.Logger

	note      string
	err       error
	completed bool
}

// NewModel creates a new TUI model over w. The wizard is started by [Model.Init].
func NewModel(ctx context.Context, w *wizard.Wizard, opts Options) *Model {
	openURL := opts.OpenURL
	if openURL == nil {
		openURL = shared.OpenBrowser
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := &Model{
		ctx:      ctx,
		wiz:      w,
		spinner:  spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(NewStyle("#7D56F4"))),
		help:     help.New(),
		keys:     newKeyMap(),
		helpURL:  opts.HelpURL,
		openURL:  openURL,
		progress: opts.Progress,
		logger:   logger.With("component", "ui"),
	}
	m.setScreen(w.Screen())
	return m
}

// Completed reports whether the user finished the flow.
func (m *Model) Completed() bool { return m.completed }

// Screen returns the screen being rendered.
func (m *Model) Screen() wizard.Screen { return m.screen }

// Init starts the wizard and begins listening on its feeds.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.start(),
		m.waitForScreen(),
		m.waitForEvent(),
		m.waitForProgress(),
		m.spinner.Tick,
	)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if _, ok := m.screen.(wizard.WelcomeScreen); ok {
			m.siteList.SetSize(m.listSize())
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgScreen:
		m.setScreen(msg.data.(wizard.Screen))
		return m, m.waitForScreen()

	case MsgEvent:
		return m, tea.Batch(m.handleEvent(msg.data.(wizard.Event)), m.waitForEvent())

	case MsgProgressUpdate:
		m.latest = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgStarted, MsgActionFailed:
		if err, _ := msg.data.(error); err != nil {
			m.logger.Warn("wizard action failed", "error", err)
			m.err = err
		}
		return m, nil

	case MsgFeedClosed:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleEvent(e wizard.Event) tea.Cmd {
	switch e {
	case wizard.RequestHelp:
		if m.helpURL == "" {
			m.note = "No help page is configured."
			return nil
		}
		if err := m.openURL(m.helpURL); err != nil {
			m.logger.Warn("failed to open help page", "url", m.helpURL, "error", err)
			m.note = fmt.Sprintf("Open %s for help.", m.helpURL)
			return nil
		}
		m.note = fmt.Sprintf("Opened %s in your browser.", m.helpURL)
		return nil

	case wizard.FlowComplete:
		m.completed = true
		return tea.Quit
	}
	return nil
}

func (m *Model) setScreen(s wizard.Screen) {
	prev := m.screen
	m.screen = s
	m.err = nil
	if prev != nil && prev.Step() != s.Step() {
		m.note = ""
	}
	if welcome, ok := s.(wizard.WelcomeScreen); ok {
		m.siteList = newSiteList(welcome.Sites, 0, 0)
		m.siteList.SetSize(m.listSize())
	}
}

func (m *Model) listSize() (int, int) {
	w, h := m.width-4, m.height-14
	if w < 20 {
		w = 60
	}
	if h < 4 {
		h = 12
	}
	return w, h
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.quit) {
		return m, tea.Quit
	}

	switch s := m.screen.(type) {
	case wizard.WelcomeScreen:
		switch {
		case key.Matches(msg, m.keys.cont) && !s.Busy:
			m.wiz.AdvancePastWelcome()
			return m, nil
		case key.Matches(msg, m.keys.help):
			return m, m.act(m.wiz.RequestHelp)
		}
		var cmd tea.Cmd
		m.siteList, cmd = m.siteList.Update(msg)
		return m, cmd

	case wizard.NotificationsScreen:
		switch {
		case key.Matches(msg, m.keys.cont):
			m.wiz.AdvancePastNotifications()
		case key.Matches(msg, m.keys.restart):
			return m, m.act(m.wiz.Restart)
		}

	case wizard.DoneScreen:
		if key.Matches(msg, m.keys.finish) {
			return m, m.act(m.wiz.Complete)
		}

	case wizard.ErrorScreen:
		switch {
		case key.Matches(msg, m.keys.retry) && !s.Busy:
			return m, m.act(m.wiz.Retry)
		case key.Matches(msg, m.keys.help):
			return m, m.act(m.wiz.RequestHelp)
		case key.Matches(msg, m.keys.restart) && !s.Busy:
			return m, m.act(m.wiz.Restart)
		}
	}
	return m, nil
}

// act runs a wizard action and reports a failure back as a message.
func (m *Model) act(fn func() error) tea.Cmd {
	if err := fn(); err != nil {
		return func() tea.Msg { return actionFailedMsg(err) }
	}
	return nil
}

func (m *Model) start() tea.Cmd {
	return func() tea.Msg {
		return startedMsg(m.wiz.Start())
	}
}

func (m *Model) waitForScreen() tea.Cmd {
	return func() tea.Msg {
		select {
		case s, ok := <-m.wiz.Screens():
			if !ok {
				return feedClosedMsg()
			}
			return screenMsg(s)
		case <-m.ctx.Done():
			return feedClosedMsg()
		}
	}
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		select {
		case e, ok := <-m.wiz.Events():
			if !ok {
				return feedClosedMsg()
			}
			return eventMsg(e)
		case <-m.ctx.Done():
			return feedClosedMsg()
		}
	}
}

func (m *Model) waitForProgress() tea.Cmd {
	if m.progress == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case u, ok := <-m.progress:
			if !ok {
				return nil
			}
			return progressUpdateMsg(u)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// View renders the UI based on the current screen.
func (m *Model) View() string {
	var b strings.Builder

	switch s := m.screen.(type) {
	case wizard.WelcomeScreen:
		b.WriteString(m.renderWelcome(s))
	case wizard.NotificationsScreen:
		b.WriteString(m.renderNotifications())
	case wizard.DoneScreen:
		b.WriteString(m.renderDone())
	case wizard.ErrorScreen:
		b.WriteString(m.renderError(s))
	default:
		b.WriteString(m.renderLoading())
	}

	if m.note != "" {
		b.WriteString("\n" + styles.warn.Render(m.note) + "\n")
	}
	if m.err != nil && !errors.Is(m.err, shared.ErrInvalidState) {
		b.WriteString("\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n")
	}

	b.WriteString("\n" + m.help.ShortHelpView(m.keys.forScreen(m.screen.Step(), isBusy(m.screen))))
	return b.String()
}

func (m *Model) renderLoading() string {
	return fmt.Sprintf("%s Preparing your migration...\n", m.spinner.View())
}

func (m *Model) renderWelcome(s wizard.WelcomeScreen) string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Welcome to the new app"))
	b.WriteString("\n")
	if s.AvatarURL != "" {
		b.WriteString(styles.help.Render(s.AvatarURL) + "\n\n")
	}
	b.WriteString(styles.body.Render(welcomeMessage(len(s.Sites))) + "\n\n")
	b.WriteString(m.siteList.View() + "\n")
	if s.Busy {
		b.WriteString(fmt.Sprintf("\n%s %s\n", m.spinner.View(), m.progressLine("Moving your data...")))
	}
	return b.String()
}

func (m *Model) renderNotifications() string {
	title := styles.title.Render("Notifications now come from the new app")
	body := styles.body.Render("You'll keep getting notifications for likes, comments and followers, " +
		"now from the new app. Notifications from the legacy app are turned off.")
	return fmt.Sprintf("%s\n%s\n", title, body)
}

func (m *Model) renderDone() string {
	title := styles.ok.Render("✓ Thanks for switching!")
	body := styles.body.Render("Everything has moved over. You can remove the legacy app from this device.")
	return fmt.Sprintf("%s\n\n%s\n", title, body)
}

func (m *Model) renderError(s wizard.ErrorScreen) string {
	title, message := failureCopy(s.Kind)
	out := fmt.Sprintf("%s\n\n%s\n", styles.err.Render(title), styles.body.Render(message))
	if s.Busy {
		out += fmt.Sprintf("\n%s %s\n", m.spinner.View(), m.progressLine("Trying again..."))
	}
	return out
}

func (m *Model) progressLine(fallback string) string {
	if m.latest.Message == "" {
		return fallback
	}
	return m.latest.Message
}

func welcomeMessage(sites int) string {
	if sites == 1 {
		return "We found your site. Continue to move all your data and sign in automatically."
	}
	return "We found your sites. Continue to move all your data and sign in automatically."
}

func failureCopy(kind wizard.FailureKind) (title, message string) {
	switch kind {
	case wizard.Networking:
		return "No connection", "We couldn't reach the server. Check your internet connection and try again."
	default:
		return "Something went wrong", "We couldn't move your data. Try again, or ask for help if it keeps happening."
	}
}

func isBusy(s wizard.Screen) bool {
	switch s := s.(type) {
	case wizard.WelcomeScreen:
		return s.Busy
	case wizard.ErrorScreen:
		return s.Busy
	}
	return false
}
