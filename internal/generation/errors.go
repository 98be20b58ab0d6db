package generation

import (
	"errors"
	"fmt"
)

var ErrGenerationFailed = errors.New("content generation failed")

// Error is returned when a configured provider misbehaves. It is never
// replaced by fallback content.
type Error struct {
	Op       string
	Provider string
	Quota    bool
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s via %s: %v", e.Op, e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == ErrGenerationFailed
}
