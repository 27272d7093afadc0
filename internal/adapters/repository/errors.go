package repository

import "errors"

// Sentinel kinds for snapshot store errors.
var (
	ErrMalformedSource = errors.New("malformed source payload")
	ErrStoreClosed     = errors.New("snapshot store closed")
)
