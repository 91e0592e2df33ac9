package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Migration source errors
	ErrSourceMissing = fmt.Errorf("legacy data source not found")
	ErrNoAccount     = fmt.Errorf("no account to migrate")
	ErrNoSites       = fmt.Errorf("no sites to migrate")

	// Network and service errors
	ErrNetwork            = fmt.Errorf("network request failed")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Persistence errors
	ErrNotFound   = fmt.Errorf("record not found")
	ErrValidation = fmt.Errorf("validation failed")

	// Wizard errors
	ErrInvalidState = fmt.Errorf("action not available on current screen")
	ErrClosed       = fmt.Errorf("wizard closed")
	ErrQueueFull    = fmt.Errorf("event queue full")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
