package spacedrep

import "errors"

var (
	// ErrUnknownRating is returned by ParseRating for unrecognized input.
	ErrUnknownRating = errors.New("spacedrep: unknown rating")

	// ErrInvalidConfig is returned by NewScheduler for unusable constants.
	ErrInvalidConfig = errors.New("spacedrep: invalid config")
)
