// Package wikierr defines the error kinds surfaced by the storage and
// revision engine. Callers classify failures with errors.Is; handlers map
// each kind to a distinct user-visible outcome.
package wikierr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds. Auth and Access are expected, recoverable outcomes
// rather than exceptional control flow. Missing entities are reported as
// (zero value, false, nil error), never through these sentinels.
var (
	// ErrAuth indicates a missing or invalid credential.
	ErrAuth = errors.New("authentication required")

	// ErrAccess indicates an authenticated caller without sufficient
	// permission bits.
	ErrAccess = errors.New("permission denied")

	// ErrCorrupt indicates a stored record that failed to decode. A record
	// the system wrote itself failing to decode is a serialization bug and
	// is logged loudly at the decode site.
	ErrCorrupt = errors.New("invalid record")

	// ErrIo indicates a store operation failure.
	ErrIo = errors.New("resource unavailable, try again")

	// ErrInvalidArgument indicates malformed caller input, e.g. a non-octal
	// mode string.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Wrap annotates err with an operation name while keeping the sentinel
// chain intact for errors.Is.
func Wrap(kind error, op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %v", op, kind, err)
}

// Io wraps a store failure.
func Io(op string, err error) error { return Wrap(ErrIo, op, err) }

// Corrupt wraps a decode failure.
func Corrupt(op string, err error) error { return Wrap(ErrCorrupt, op, err) }

// InvalidArgument reports malformed caller input.
func InvalidArgument(op string, err error) error { return Wrap(ErrInvalidArgument, op, err) }
