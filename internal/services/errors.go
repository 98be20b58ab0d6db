package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserLock              = errors.New("user locked")
	ErrRateLimited           = errors.New("too many requests")
	ErrUserNotFound          = errors.New("user not found")
	ErrProfileIncomplete     = errors.New("profile incomplete")
	ErrMissionConflict       = errors.New("another mission is already active")
	ErrMissionAlreadyStarted = errors.New("mission already started")
	ErrMissionNotStarted     = errors.New("mission not started")
	ErrMissionNotFound       = errors.New("mission not found")
	ErrStepNotFound          = errors.New("mission step not found")
	ErrInsufficientCoins     = errors.New("insufficient coins")
)

// ProfileIncompleteError lists the required profile fields that are missing.
// NotFound is set when the user has no profile at all.
type ProfileIncompleteError struct {
	Missing  []string
	NotFound bool
}

func (e *ProfileIncompleteError) Error() string {
	if e.NotFound {
		return "profile incomplete: no profile"
	}
	return fmt.Sprintf("profile incomplete: missing %s", strings.Join(e.Missing, ", "))
}

func (e *ProfileIncompleteError) Is(target error) bool {
	return target == ErrProfileIncomplete
}
