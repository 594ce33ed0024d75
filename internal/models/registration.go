// internal/models/registration.go
package models

import (
	"errors"
	"fmt"
)

// Step is the persisted wizard position. The set is closed: unknown strings
// are rejected at the boundary instead of silently defaulting.
type Step string

const (
	StepIntro     Step = "intro"
	StepScores    Step = "scores"
	StepQuotas    Step = "quotas"
	StepIncome    Step = "income"
	StepCompleted Step = "completed"
)

var stepOrder = map[Step]int{
	StepIntro:     0,
	StepScores:    1,
	StepQuotas:    2,
	StepIncome:    3,
	StepCompleted: 4,
}

var (
	ErrUnknownStep        = errors.New("unknown registration step")
	ErrStepNotSubmittable = errors.New("step cannot be submitted")
	ErrStepNotCurrent     = errors.New("submitted step is not the current step")
)

// ParseStep rejects values outside the closed enumeration.
func ParseStep(s string) (Step, error) {
	step := Step(s)
	if _, ok := stepOrder[step]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStep, s)
	}
	return step, nil
}

// Order returns the position in the linear flow (intro first).
func (s Step) Order() int {
	return stepOrder[s]
}

// IsTerminal reports whether the flow has finished; re-entry skips the wizard.
func (s Step) IsTerminal() bool {
	return s == StepCompleted
}

// TargetStep returns the step persisted after a valid submission of the
// given data-collection step. Only the three collection steps are
// submittable; transitions are strictly forward.
func TargetStep(submitted Step) (Step, error) {
	switch submitted {
	case StepScores:
		return StepQuotas, nil
	case StepQuotas:
		return StepIncome, nil
	case StepIncome:
		return StepCompleted, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrStepNotSubmittable, submitted)
	}
}

// CanSubmit reports whether a submission of the given step is allowed from
// the current persisted position. A score submission is accepted from intro
// as well (intro and scores share the opening screen).
func CanSubmit(current, submitted Step) bool {
	switch submitted {
	case StepScores:
		return current == StepIntro || current == StepScores
	case StepQuotas:
		return current == StepQuotas
	case StepIncome:
		return current == StepIncome
	default:
		return false
	}
}

// AlreadyPassed reports whether the submitted step's target was reached
// before; a duplicate or late submission is then an idempotent no-op.
func AlreadyPassed(current, submitted Step) bool {
	target, err := TargetStep(submitted)
	if err != nil {
		return false
	}
	return current.Order() >= target.Order()
}
