package services

import (
	"database/sql"
	"errors"
	"fmt"

	"dealership/internal/domain"
	"dealership/internal/repos"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidInput = errors.New("invalid input")
	ErrStorage      = errors.New("storage failure")
)

// NotFoundError names the entity kind and id that could not be resolved.
type NotFoundError struct {
	Kind domain.EntityKind
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(kind domain.EntityKind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// StorageError wraps an unexpected failure from the database layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

func invalidState(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidState, fmt.Sprintf(format, args...))
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// classify maps a repository error onto the service taxonomy. Errors that
// are already classified pass through untouched. A missing row becomes
// NotFound for the given kind/id; constraint violations become InvalidState.
func classify(op string, kind domain.EntityKind, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrStorage):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return notFound(kind, id)
	case repos.IsForeignKeyViolation(err):
		return invalidState("%s %s is referenced by a sale", kind, id)
	case repos.IsUniqueViolation(err):
		return invalidState("%s %s duplicates an existing record", kind, id)
	}
	// Deadlines and cancellations land here too; callers still see them
	// through errors.Is(err, context.DeadlineExceeded).
	return &StorageError{Op: op, Err: err}
}
