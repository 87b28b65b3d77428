package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrUnknownKind is returned when a document kind is not in the catalog.
var ErrUnknownKind = errors.New("unknown document kind")

// Sentinels for the turn failure taxonomy. A miss during extraction is not an error.
var (
	ErrGeneration = errors.New("generation failed")
	ErrRender     = errors.New("render failed")
	ErrDelivery   = errors.New("delivery failed")
)

// FailureKind classifies why a turn could not complete.
type FailureKind string

const (
	FailureGeneration FailureKind = "generation"
	FailureRender     FailureKind = "render"
	FailureDelivery   FailureKind = "delivery"
)

// Failure is the explicit result of a turn step that failed.
// It matches the corresponding sentinel through errors.Is.
type Failure struct {
	Kind FailureKind
	Err  error
}

// NewFailure wraps err as a failure of the given kind.
func NewFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind) + " failed"
	}
	return fmt.Sprintf("%s failed: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Is matches the sentinel of the failure kind.
func (f *Failure) Is(target error) bool {
	switch f.Kind {
	case FailureGeneration:
		return target == ErrGeneration
	case FailureRender:
		return target == ErrRender
	case FailureDelivery:
		return target == ErrDelivery
	}
	return false
}
