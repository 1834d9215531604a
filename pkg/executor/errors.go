package executor

import "errors"

var (
	// ErrRunActive is returned when a session already has an automation run
	// in flight.
	ErrRunActive = errors.New("an automation run is already in progress for this session")

	// ErrSessionCancelled is returned when the session was cancelled, either
	// before the run started or while it was in flight.
	ErrSessionCancelled = errors.New("chat session has been cancelled")

	// ErrShuttingDown is returned for runs submitted or interrupted after
	// Stop() has been called.
	ErrShuttingDown = errors.New("server is shutting down")
)
