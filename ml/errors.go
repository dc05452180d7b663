package ml

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrArtifactNotFound = errors.New("model artifact not found")
	ErrDeserialization  = errors.New("model artifact deserialization failed")
	ErrNameResolution   = errors.New("feature name resolution failed")
	ErrRangeViolation   = errors.New("feature value out of range")
)

// NameResolutionError reports schema fields without a captured value and
// captured identifiers that are not schema fields.
type NameResolutionError struct {
	Missing []string
	Unknown []string
}

func (e *NameResolutionError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown "+strings.Join(e.Unknown, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrNameResolution, strings.Join(parts, "; "))
}

func (e *NameResolutionError) Is(target error) bool {
	return target == ErrNameResolution
}

type RangeViolationError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeViolationError) Error() string {
	return fmt.Sprintf("%s: %s=%g not in [%g, %g]", ErrRangeViolation, e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeViolationError) Is(target error) bool {
	return target == ErrRangeViolation
}

type DeserializationError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DeserializationError) Error() string {
	msg := fmt.Sprintf("%s: %s", ErrDeserialization, e.Reason)
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s: %s", ErrDeserialization, e.Path, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

func (e *DeserializationError) Is(target error) bool {
	return target == ErrDeserialization
}
