package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrVersionMismatch reports a save-state written by an incompatible
	// version of the format or of a component state.
	ErrVersionMismatch = errors.New("save-state version mismatch")

	// ErrRomMismatch reports a save-state captured with another ROM.
	ErrRomMismatch = errors.New("save-state belongs to another rom")

	ErrCorruptSnapshot = errors.New("corrupt save-state")
)

// CheckVersion checks that a component state of version got can be read by
// a component whose current state version is cur.
func CheckVersion(name string, got, cur uint16) error {
	if got == 0 || got > cur {
		return fmt.Errorf("%s: state version %d, supported up to %d: %w", name, got, cur, ErrVersionMismatch)
	}
	return nil
}

// Corrupt wraps err so that it matches ErrCorruptSnapshot.
func Corrupt(what string, err error) error {
	if errors.Is(err, ErrCorruptSnapshot) || errors.Is(err, ErrVersionMismatch) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrCorruptSnapshot, what, err)
}
