package scanner

import (
	"errors"
	"fmt"

	"github.com/nao1215/ghbuster/internal/model"
)

var (
	// ErrNotAuthenticated is returned when a stage needs Authenticate to
	// have succeeded first.
	ErrNotAuthenticated = errors.New("scanner: not authenticated")

	// ErrTargetNotValidated is returned when a stage needs ValidateTarget
	// to have succeeded first.
	ErrTargetNotValidated = errors.New("scanner: target not validated")
)

// AuthenticationError means GitHub rejected the token.
type AuthenticationError struct {
	// Status is the HTTP status, or 0 for transport failures.
	Status int
	Err    error
}

func (e *AuthenticationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// InvalidTargetError means the target does not exist on GitHub.
type InvalidTargetError struct {
	Target model.TargetSpec
	Err    error
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("%s does not exist or is not accessible: %v", e.Target, e.Err)
}

func (e *InvalidTargetError) Unwrap() error {
	return e.Err
}

// HeuristicError is an unexpected failure of one heuristic. It aborts the
// scan.
type HeuristicError struct {
	HeuristicID string
	Target      model.TargetSpec
	Err         error
}

func (e *HeuristicError) Error() string {
	return fmt.Sprintf("heuristic %s failed on %s: %v", e.HeuristicID, e.Target, e.Err)
}

func (e *HeuristicError) Unwrap() error {
	return e.Err
}
