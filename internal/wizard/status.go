package wizard

import "context"

// SiteRef identifies a site on the remote service. It is resolved into a [SiteSummary] for display.
type SiteRef int64

// Status is the raw migration progress reported by an [Engine].
//
// The concrete types are [NotStarted], [InProgress], [Succeeded] and [Failed].
type Status interface {
	isStatus()
}

// NotStarted is the status before the engine reports anything.
type NotStarted struct{}

// InProgress is reported once the engine knows which account and sites it is moving.
type InProgress struct {
	AvatarURL string
	Sites     []SiteRef
}

// Succeeded is reported when every step of the migration finished.
type Succeeded struct{}

// Failed is reported when the migration stopped. Err is kept for logging and optional classification.
type Failed struct {
	Err error
}

func (NotStarted) isStatus() {}
func (InProgress) isStatus() {}
func (Succeeded) isStatus()  {}
func (Failed) isStatus()     {}

// StatusWriter receives status updates. Each write replaces the previous status.
type StatusWriter interface {
	WriteStatus(Status)
}

// StatusWriterFunc adapts a function to [StatusWriter].
type StatusWriterFunc func(Status)

func (f StatusWriterFunc) WriteStatus(s Status) { f(s) }

// Engine performs the migration, reporting progress through w.
//
// TryMigration may block until the migration finishes; the [Wizard] always calls it on its own goroutine.
// The returned error is only logged: failures must also be written to w as [Failed].
type Engine interface {
	TryMigration(ctx context.Context, w StatusWriter) error
}

// EngineFunc adapts a function to [Engine].
type EngineFunc func(ctx context.Context, w StatusWriter) error

func (f EngineFunc) TryMigration(ctx context.Context, w StatusWriter) error { return f(ctx, w) }

// cloneStatus copies slices so a stored status cannot be changed by the writer afterwards.
func cloneStatus(s Status) Status {
	switch s := s.(type) {
	case InProgress:
		return InProgress{AvatarURL: s.AvatarURL, Sites: append([]SiteRef(nil), s.Sites...)}
	case *InProgress:
		if s == nil {
			return NotStarted{}
		}
		return cloneStatus(*s)
	case *Failed:
		if s == nil {
			return Failed{}
		}
		return *s
	case *NotStarted:
		return NotStarted{}
	case *Succeeded:
		if s == nil {
			return NotStarted{}
		}
		return Succeeded{}
	case nil:
		return NotStarted{}
	}
	return s
}
