package game

import (
	"errors"
	"fmt"
)

// ErrInvariant marks a broken core invariant. It is never returned for an
// expected game outcome; code that detects one panics with an error wrapping it.
var ErrInvariant = errors.New("game invariant violated")

// ErrPlayerNotFound is returned when a player id does not belong to a game.
var ErrPlayerNotFound = errors.New("player not found")

func invariantViolation(format string, args ...any) {
	panic(fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...)))
}
