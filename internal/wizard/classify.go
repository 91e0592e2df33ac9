package wizard

import (
	"errors"
	"net"

	"github.com/desertthunder/handoff/internal/shared"
)

// Classify maps an engine error to the kind of failure screen it should produce.
//
// Errors wrapping [shared.ErrNetwork] or a [net.Error] are Networking, everything else is Generic.
func Classify(err error) FailureKind {
	if err == nil {
		return Generic
	}
	if errors.Is(err, shared.ErrNetwork) {
		return Networking
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return Networking
	}
	return Generic
}
