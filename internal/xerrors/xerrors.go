// Package xerrors defines the storage core's error taxonomy (§7) and the
// wrapping helpers every package uses to attach operation context to a
// sentinel without losing errors.Is/As compatibility.
package xerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the five taxonomy classes §7 names. Callers compare
// against these with errors.Is, never by string matching.
var (
	// ErrInvalidArgument indicates a caller-supplied argument failed
	// validation before any I/O was attempted.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrRuntime indicates an unexpected internal condition — a broken
	// invariant, a corrupt in-memory structure — rather than a problem with
	// caller input or the environment.
	ErrRuntime = errors.New("runtime error")

	// ErrConflict indicates a write lost a race: a concurrent flush,
	// compaction, or competing transaction already changed the state the
	// caller assumed.
	ErrConflict = errors.New("conflict")

	// ErrTimeout indicates a caller-supplied or ambient deadline elapsed
	// before an operation could complete.
	ErrTimeout = errors.New("timeout")

	// ErrStorage indicates a failure from the object store or another
	// external storage collaborator.
	ErrStorage = errors.New("storage error")
)

// InvalidArgument formats a message from format and args and wraps
// ErrInvalidArgument under it. Any error passed in args is formatted into
// the message, not wrapped.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

// Runtime wraps err as an ErrRuntime with op context.
func Runtime(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, join(ErrRuntime, err))
}

// Conflict wraps err as an ErrConflict with op context.
func Conflict(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, join(ErrConflict, err))
}

// Timeout wraps err as an ErrTimeout with op context.
func Timeout(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, join(ErrTimeout, err))
}

// Storage wraps err with op context, tagging it ErrStorage so a caller can
// distinguish "the object store is unavailable" from a logic error without
// inspecting the underlying object-store client's error type.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, join(ErrStorage, err))
}

// join lets a wrapped error satisfy errors.Is for both the taxonomy
// sentinel and the underlying cause, the way fmt.Errorf's "%w: %w" verb
// does from Go 1.20 on.
func join(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Is reports whether err is, or wraps, target — a thin re-export so callers
// importing xerrors for the sentinels don't also need the errors package
// just to compare against them.
func Is(err, target error) bool { return errors.Is(err, target) }
