package scheduler

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidInput is wrapped by every configuration or roster rejection
	ErrInvalidInput = errors.New("invalid scheduling input")
	// ErrInfeasible is wrapped by InfeasibleError
	ErrInfeasible = errors.New("cannot build a schedule with the current roster and constraints")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// SlotUnderfilledError reports a slot that stayed under quota after all three passes.
// It ends a single attempt and is never returned to callers on its own.
type SlotUnderfilledError struct {
	Day    string
	Shift  string
	Filled int
	Quota  int
}

func (e *SlotUnderfilledError) Error() string {
	return fmt.Sprintf("insufficient employees for %s - %s (%d/%d)", e.Day, e.Shift, e.Filled, e.Quota)
}

// InfeasibleError is returned when the retry budget runs out, or when the
// roster cannot possibly cover every slot. Attempts is 0 in the latter case.
type InfeasibleError struct {
	Attempts int
	Elapsed  time.Duration
	Reason   string
	Last     *SlotUnderfilledError
}

func (e *InfeasibleError) Error() string {
	if e.Attempts == 0 {
		return fmt.Sprintf("%v: %s", ErrInfeasible, e.Reason)
	}
	return fmt.Sprintf("%v: %s after %d attempts in %s", ErrInfeasible, e.Reason, e.Attempts, e.Elapsed.Round(time.Millisecond))
}

func (e *InfeasibleError) Unwrap() error {
	return ErrInfeasible
}
