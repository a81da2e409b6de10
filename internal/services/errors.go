// Package services defines the business logic for action tracking, status
// projection, region link resolution, delayed task dispatch, and outbound
// faxing. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

var (
	// ErrActionNotFound indicates that the referenced action does not exist.
	ErrActionNotFound = errors.New("action not found")

	// ErrUnknownEventType is returned when an event type is not a member of
	// the closed enumeration. Unknown types are rejected at the boundary and
	// never written to the log.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrNoEvents indicates that an action has no recorded events, so no
	// status projection exists for it ("unknown" rather than all-false).
	ErrNoEvents = errors.New("no events recorded for action")

	// ErrBallotRequestNotFound indicates that the referenced ballot request
	// does not exist.
	ErrBallotRequestNotFound = errors.New("ballot request not found")

	// ErrFaxNotFound indicates that a callback referenced a nonexistent fax.
	ErrFaxNotFound = errors.New("fax not found")

	// ErrBadFaxToken is returned when a callback's correlation token does not
	// match the dispatch record.
	ErrBadFaxToken = errors.New("fax token is incorrect")

	// ErrStaleCallback is returned when a callback carries a timestamp older
	// than the already-recorded status. The callback is acknowledged but
	// changes nothing.
	ErrStaleCallback = errors.New("callback timestamp is outdated")

	// ErrNoFaxAddress is returned when a LEO fax submission is requested for
	// a jurisdiction without a fax number on file.
	ErrNoFaxAddress = errors.New("no fax address for jurisdiction")

	// ErrUnknownTask is returned by the task registry when a delivered task
	// name has no registered handler.
	ErrUnknownTask = errors.New("unknown task")

	// ErrRefreshLocked indicates that another instance currently holds the
	// region-link refresh lock.
	ErrRefreshLocked = errors.New("region link refresh already running")
)
