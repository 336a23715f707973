package idgen

import (
	"errors"
	"fmt"
)

var (
	// ErrLibraryUsage is returned when a caller passes out-of-range or
	// wrong-type input to a constructor or parser.
	ErrLibraryUsage = errors.New("library usage error")

	// ErrClockMovedBackwards is returned by the snowflake generator when the
	// wall clock reads earlier than the last emitted timestamp.
	ErrClockMovedBackwards = errors.New("snowflake: clock moved backwards")

	// ErrTimestampOverflow is returned once the 41-bit timestamp field is
	// exhausted for the generator's epoch.
	ErrTimestampOverflow = errors.New("snowflake: timestamp overflow")

	ErrUnregisteredKind = errors.New("idgen: unregistered kind")
	ErrMissingConfig    = errors.New("idgen: missing config")
	ErrNotInitialized   = errors.New("idgen: dispatcher not initialized, call Init first")
)

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrLibraryUsage, fmt.Sprintf(format, args...))
}
