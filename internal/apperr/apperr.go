// Package apperr defines the error taxonomy shared by the planner, quiz
// engine, progress controller and user-facing surfaces.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or malformed user input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation is a shorthand constructor for ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// GenerationError reports that an AI generation call failed or produced
// unusable content. Op names the logical operation ("roadmap", "quiz",
// "image").
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s generation failed", e.Op)
	}
	return fmt.Sprintf("%s generation failed: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NotFoundError reports a lookup for an entity that no longer exists.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsGeneration reports whether err wraps a *GenerationError.
func IsGeneration(err error) bool {
	var g *GenerationError
	return errors.As(err, &g)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// UserMessage renders err for display in the TUI or on the command line.
// Generation failures get a retry hint; anything unclassified is shown as is.
func UserMessage(err error) string {
	var (
		v *ValidationError
		g *GenerationError
		n *NotFoundError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &v):
		return v.Error()
	case errors.As(err, &g):
		return fmt.Sprintf("Couldn't generate the %s. Please try again.", g.Op)
	case errors.As(err, &n):
		return fmt.Sprintf("That %s no longer exists.", n.Kind)
	}
	return err.Error()
}
