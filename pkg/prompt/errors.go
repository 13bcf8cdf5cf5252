package prompt

import "errors"

var (
	// ErrAborted is returned when the user interrupts a prompt.
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoDriver is returned by Fill when no driver is configured.
	ErrNoDriver = errors.New("prompt: no driver")
)
