package common

import (
	"errors"
	"fmt"
)

const (
	major = 0
	minor = 1
	patch = 0

	// Versions from which data can be restored.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	Version = major*1_000_000 + minor*1_000 + patch

	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch
)

// ErrVersionMismatch is returned by CheckVersion in case of error.
var ErrVersionMismatch = errors.New("previous version mismatch")

// CheckVersion checks that data produced by the given version can be used by
// the current one.
func CheckVersion(from int) error {
	if from < PrevVersion {
		return fmt.Errorf("%w: expected >=%d, got %d", ErrVersionMismatch, PrevVersion, from)
	}
	if from > Version {
		return fmt.Errorf("%w: %d is newer than %d", ErrVersionMismatch, from, Version)
	}
	return nil
}
