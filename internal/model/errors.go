package model

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every *ValidationError via errors.Is
var ErrValidation = errors.New("validation failed")

// ValidationError reports a missing or inconsistent field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("the %s field is required", e.Field)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
