package wizard

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/handoff/internal/shared"
)

// Event is a one-shot signal for the hosting screen.
type Event int

const (
	// RequestHelp asks the host to show migration help.
	RequestHelp Event = iota + 1
	// FlowComplete tells the host the user finished the wizard.
	FlowComplete
)

func (e Event) String() string {
	switch e {
	case RequestHelp:
		return "request_help"
	case FlowComplete:
		return "flow_complete"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

const defaultEventBuffer = 16

// Options configures a [Wizard].
type Options struct {
	Engine   Engine
	Resolver SiteResolver
	Avatar   AvatarSizer
	// Classify, when set, refines a Failed status into a failure kind through [Wizard.ReportFailure].
	Classify    func(error) FailureKind
	EventBuffer int
	Logger      *log.Logger
}

// Wizard owns the derivation inputs and publishes the current [Screen].
//
// Screens are conflated: a slow reader of [Wizard.Screens] only ever sees the latest one.
// Events are queued and read by a single consumer through [Wizard.Events].
type Wizard struct {
	mu       sync.Mutex
	deriver  Deriver
	engine   Engine
	classify func(error) FailureKind
	logger   *log.Logger

	snap   Snapshot
	screen Screen

	screens chan Screen
	events  chan Event

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates a wizard showing the Loading screen. Call [Wizard.Start] to run the engine.
func New(opts Options) *Wizard {
	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &Wizard{
		deriver:  Deriver{Resolver: opts.Resolver, Avatar: opts.Avatar},
		engine:   opts.Engine,
		classify: opts.Classify,
		logger:   logger.With("component", "wizard"),
		snap:     Snapshot{Status: NotStarted{}},
		screen:   LoadingScreen{},
		screens:  make(chan Screen, 1),
		events:   make(chan Event, buffer),
		ctx:      ctx,
		cancel:   cancel,
	}
	w.screens <- w.screen
	return w
}

// Start invokes the engine for the first time.
func (w *Wizard) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return shared.ErrClosed
	}
	w.tryMigration()
	return nil
}

// Screen returns the current screen.
func (w *Wizard) Screen() Screen {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.screen
}

// Snapshot returns the current derivation inputs.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		Status:                    cloneStatus(w.snap.Status),
		AdvancedPastWelcome:       w.snap.AdvancedPastWelcome,
		AdvancedPastNotifications: w.snap.AdvancedPastNotifications,
	}
}

// Screens returns the conflated screen feed. It holds the current screen on creation and is closed by [Wizard.Close].
func (w *Wizard) Screens() <-chan Screen { return w.screens }

// Events returns the one-shot event queue. It is closed by [Wizard.Close].
func (w *Wizard) Events() <-chan Event { return w.events }

// WriteStatus replaces the migration status and re-derives the screen.
func (w *Wizard) WriteStatus(s Status) {
	s = cloneStatus(s)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.logger.Debug("status", "status", fmt.Sprintf("%T", s))
	w.snap.Status = s
	w.derive()

	if f, ok := s.(Failed); ok && w.classify != nil {
		if kind := w.classify(f.Err); kind != Generic {
			w.reportFailure(kind)
		}
	}
}

// AdvancePastWelcome records that the user pressed continue on the Welcome screen.
func (w *Wizard) AdvancePastWelcome() {
	w.setFlags(func(s *Snapshot) { s.AdvancedPastWelcome = true })
}

// AdvancePastNotifications records that the user pressed continue on the Notifications screen.
func (w *Wizard) AdvancePastNotifications() {
	w.setFlags(func(s *Snapshot) { s.AdvancedPastNotifications = true })
}

// Restart clears both flags and the status, then runs the engine again.
func (w *Wizard) Restart() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return shared.ErrClosed
	}
	w.snap = Snapshot{Status: NotStarted{}}
	w.derive()
	w.tryMigration()
	return nil
}

// Retry marks the error screen busy and runs the engine again with the flags unchanged.
// It fails with [shared.ErrInvalidState] unless the error screen is showing.
func (w *Wizard) Retry() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return shared.ErrClosed
	}
	current, ok := w.screen.(ErrorScreen)
	if !ok {
		return fmt.Errorf("%w: retry from %s screen", shared.ErrInvalidState, w.screen.Step())
	}
	current.Busy = true
	w.publish(current)
	w.tryMigration()
	return nil
}

// ReportFailure shows an error screen of the given kind. The next derivation replaces it.
func (w *Wizard) ReportFailure(kind FailureKind) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.reportFailure(kind)
}

// RequestHelp queues a [RequestHelp] event.
func (w *Wizard) RequestHelp() error {
	return w.emit(RequestHelp)
}

// Complete queues a [FlowComplete] event. It fails with [shared.ErrInvalidState] unless the Done screen is showing.
func (w *Wizard) Complete() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return shared.ErrClosed
	}
	if step := w.screen.Step(); step != StepDone {
		return fmt.Errorf("%w: complete from %s screen", shared.ErrInvalidState, step)
	}
	return w.emitLocked(FlowComplete)
}

// Close cancels in-flight engine calls, waits for them to return, and closes both feeds.
func (w *Wizard) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.cancel()
	w.mu.Unlock()

	w.wg.Wait()

	close(w.screens)
	close(w.events)
}

func (w *Wizard) setFlags(set func(*Snapshot)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	next := w.snap
	set(&next)
	if next.AdvancedPastWelcome == w.snap.AdvancedPastWelcome &&
		next.AdvancedPastNotifications == w.snap.AdvancedPastNotifications {
		return
	}
	w.snap = next
	w.derive()
}

func (w *Wizard) emit(e Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return shared.ErrClosed
	}
	return w.emitLocked(e)
}

// emitLocked must be called with mu held and the wizard open.
func (w *Wizard) emitLocked(e Event) error {
	select {
	case w.events <- e:
		w.logger.Debug("event queued", "event", e)
		return nil
	default:
		w.logger.Warn("event dropped", "event", e, "buffer", cap(w.events))
		return fmt.Errorf("%w: dropped %s", shared.ErrQueueFull, e)
	}
}

// derive must be called with mu held.
func (w *Wizard) derive() {
	screen, ok := w.deriver.Derive(w.snap)
	if !ok {
		return
	}
	w.publish(screen)
}

func (w *Wizard) reportFailure(kind FailureKind) {
	w.publish(ErrorScreen{Kind: kind})
}

// publish must be called with mu held, which makes it the only sender on screens.
func (w *Wizard) publish(s Screen) {
	w.screen = s
	select {
	case <-w.screens:
	default:
	}
	w.screens <- s
}

// tryMigration must be called with mu held.
func (w *Wizard) tryMigration() {
	if w.engine == nil {
		w.logger.Warn("no migration engine configured")
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.engine.TryMigration(w.ctx, w); err != nil {
			w.logger.Error("migration attempt failed", "error", err)
		}
	}()
}
