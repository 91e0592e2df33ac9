// Package wizard derives the onboarding screen shown while an account and its sites move out of the legacy app.
//
// # Inputs
//
// Three values drive the screen:
//   - the latest [Status] written by the migration [Engine], replaced wholesale on every write
//   - whether the user advanced past the Welcome screen
//   - whether the user advanced past the Notifications screen
//
// [Deriver.Derive] is a pure fold over a [Snapshot] of all three. The [Wizard] re-runs it whenever any one of
// them changes, so the current [Screen] always reflects the latest value of every input.
//
// # Screens
//
//	NotStarted                       -> Loading
//	InProgress                       -> Welcome (busy once the user pressed continue)
//	Succeeded, welcome, !notifications -> Notifications
//	Succeeded, welcome, notifications  -> Done
//	Succeeded, !welcome              -> no change
//	Failed                           -> Error (Generic)
//
// # Events
//
// [RequestHelp] and [FlowComplete] are one-shot signals for the hosting screen. They are queued on a bounded
// buffer read by a single consumer, delivered at most once, and never redelivered. A status update never emits one.
package wizard
