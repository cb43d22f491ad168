package sweep

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest       = errors.New("invalid sweep request")
	ErrDetourAborted        = errors.New("companion detour aborted")
	ErrCompanionOutOfBounds = errors.New("companion target outside world")
	ErrCompanionUnavailable = errors.New("companion unavailable")
)

type DetourStep string

const (
	DetourStepRecord   DetourStep = "record_position"
	DetourStepTravel   DetourStep = "travel"
	DetourStepMaintain DetourStep = "maintain"
	DetourStepPlant    DetourStep = "plant"
	DetourStepReturn   DetourStep = "return"
)

type DetourError struct {
	Step DetourStep
	Err  error
}

func (e *DetourError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrDetourAborted, e.Step, e.Err)
}

func (e *DetourError) Unwrap() []error {
	return []error{ErrDetourAborted, e.Err}
}
