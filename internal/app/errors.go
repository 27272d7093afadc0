package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSession  = errors.New("no active evaluation session")
	ErrNotFound   = errors.New("staff not found")
	ErrBusy       = errors.New("dispatch queue full")
	ErrNotStarted = errors.New("service not started")
)
