package reflection

import "errors"

var (
	// ErrInvalidConfiguration is returned when a setting is out of range.
	// The previous configuration stays in effect.
	ErrInvalidConfiguration = errors.New("invalid reflection configuration")

	// ErrMissingCollaborator is returned by Start when a host service the
	// pass depends on is not available.
	ErrMissingCollaborator = errors.New("reflection collaborator unavailable")
)
