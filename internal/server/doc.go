// Package server exposes the wizard over HTTP so a host other than the terminal can drive it.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Wizard Handler
//
// [WizardHandler] maps each wizard operation to a route:
//
//	GET  /screen                 current screen as JSON
//	POST /advance/welcome        continue past Welcome
//	POST /advance/notifications  continue past Notifications
//	POST /retry                  retry from the error screen
//	POST /restart                restart the flow
//	POST /help                   queue a help request
//	POST /complete               finish from the Done screen
//	GET  /events                 wait for the next one-shot event
//
// The event queue has a single consumer. /events takes the next event off it, so it must not be
// polled while another host (such as the terminal UI) is also reading events.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
