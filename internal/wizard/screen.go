package wizard

import "fmt"

// Step names a [Screen] variant.
type Step int

const (
	StepLoading Step = iota
	StepWelcome
	StepNotifications
	StepDone
	StepError
)

func (s Step) String() string {
	switch s {
	case StepLoading:
		return "loading"
	case StepWelcome:
		return "welcome"
	case StepNotifications:
		return "notifications"
	case StepDone:
		return "done"
	case StepError:
		return "error"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// FailureKind tags an [ErrorScreen].
type FailureKind int

const (
	Generic FailureKind = iota
	Networking
)

func (k FailureKind) String() string {
	switch k {
	case Generic:
		return "generic"
	case Networking:
		return "networking"
	default:
		return fmt.Sprintf("failure(%d)", int(k))
	}
}

// SiteSummary is a site as displayed on the Welcome screen.
type SiteSummary struct {
	ID      int64
	Name    string
	URL     string
	IconURL string
}

// Screen is the single value rendered by a host.
//
// The concrete types are [LoadingScreen], [WelcomeScreen], [NotificationsScreen], [DoneScreen] and [ErrorScreen].
type Screen interface {
	Step() Step
}

// LoadingScreen is shown until the engine reports progress.
type LoadingScreen struct{}

// WelcomeScreen lists what is being moved. Busy is set once the user pressed continue and the engine has not finished.
type WelcomeScreen struct {
	AvatarURL string
	Sites     []SiteSummary
	Busy      bool
}

// NotificationsScreen explains that notifications now come from the new app.
type NotificationsScreen struct{}

// DoneScreen is terminal.
type DoneScreen struct{}

// ErrorScreen offers retry and help. Busy is set while a retry is running.
type ErrorScreen struct {
	Kind FailureKind
	Busy bool
}

func (LoadingScreen) Step() Step       { return StepLoading }
func (WelcomeScreen) Step() Step       { return StepWelcome }
func (NotificationsScreen) Step() Step { return StepNotifications }
func (DoneScreen) Step() Step          { return StepDone }
func (ErrorScreen) Step() Step         { return StepError }
