package model

import "errors"

var (
	// ErrInvalidConfiguration - empty or zero-weight slice table, unknown flow state at init
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidSlice - slice index outside of the table
	ErrInvalidSlice = errors.New("invalid slice")
	// ErrTransitionResolution - next state name does not resolve
	ErrTransitionResolution = errors.New("transition resolution failure")

	ErrWrongState          = errors.New("action not allowed in current state")
	ErrBusy                = errors.New("wheel is busy")
	ErrInsufficientBalance = errors.New("not enough balance")
	ErrSessionNotFound     = errors.New("session not found")
	ErrSessionClosed       = errors.New("session closed")
	ErrTooManySessions     = errors.New("too many sessions")
)
