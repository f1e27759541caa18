// Package apperror defines the error taxonomy shared by the archive services.
//
// Every typed error matches its sentinel through errors.Is, so callers can
// branch on the category without caring about the concrete detail:
//
//	if errors.Is(err, apperror.ErrUnauthorized) { ... }
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors, use with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrStorage      = errors.New("storage fault")
	ErrConflict     = errors.New("already exists")
)

// HTTPError is implemented by every typed error in this package.
type HTTPError interface {
	error
	StatusCode() int
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Resource string // academic year, semester, professor, course, folder, file, ...
	Key      string
}

func NotFound(resource string, key any) *NotFoundError {
	return &NotFoundError{Resource: resource, Key: fmt.Sprint(key)}
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }

// UnauthorizedError reports a failed permission check.
type UnauthorizedError struct {
	Action string // read, write, delete
	Target string
	Reason string
}

func Unauthorized(action, target, reason string) *UnauthorizedError {
	return &UnauthorizedError{Action: action, Target: target, Reason: reason}
}

func (e *UnauthorizedError) Error() string {
	msg := fmt.Sprintf("not allowed to %s %s", e.Action, e.Target)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *UnauthorizedError) StatusCode() int      { return http.StatusForbidden }

// Problem is a single caller-correctable issue inside a ValidationError.
type Problem struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationError reports malformed input. Problems carries one entry per
// offending item (for example one per rejected file of an upload batch).
type ValidationError struct {
	Message  string
	Problems []Problem
}

func Validation(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Field != "" {
			parts = append(parts, p.Field+": "+p.Message)
		} else {
			parts = append(parts, p.Message)
		}
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }

// StorageError reports a failure of the physical upload root.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func Storage(op, path string, err error) *StorageError {
	return &StorageError{Op: op, Path: path, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error        { return e.Err }
func (e *StorageError) Is(target error) bool { return target == ErrStorage }
func (e *StorageError) StatusCode() int      { return http.StatusInternalServerError }

// ConflictError reports a unique constraint violation in the store.
type ConflictError struct {
	Resource string
	Key      string
}

func Conflict(resource string, key any) *ConflictError {
	return &ConflictError{Resource: resource, Key: fmt.Sprint(key)}
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Resource, e.Key)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
func (e *ConflictError) StatusCode() int      { return http.StatusConflict }

// StatusCode maps any error to an HTTP status, defaulting to 500.
func StatusCode(err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
