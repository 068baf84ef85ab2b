package cloudsim

import "errors"

// Sentinel error kinds, matched with errors.Is by callers: InvalidArgument,
// IllegalState, and NotFound.
var (
	// ErrInvalidArgument is returned for scheduling-time argument errors:
	// negative delay, a nil entity registered, or a NULL-kind event
	// reaching the dispatcher.
	ErrInvalidArgument = errors.New("cloudsim: invalid argument")

	// ErrIllegalState is returned when an operation is attempted from a
	// lifecycle state that forbids it: a past event reaching the dispatcher,
	// or a second call to Engine.Start.
	ErrIllegalState = errors.New("cloudsim: illegal state")

	// ErrNotFound indicates a non-fatal lookup miss. Most lookups prefer a
	// (value, bool) return instead of this error; it is used where the
	// caller instead needs a uniform error value, e.g. Engine.Schedule
	// rejecting an unknown destination entity id.
	ErrNotFound = errors.New("cloudsim: not found")
)
