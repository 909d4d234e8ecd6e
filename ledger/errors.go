/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps them to status codes; nothing else should need to
  inspect error strings.

ERROR CATEGORIES:
  1. Validation errors - Missing or malformed input (user-facing message)
  2. Not found errors - A referenced record does not exist
  3. Authorization errors - The caller is not a member of the workspace
  4. Store errors - Persistence failed; the whole unit was rolled back

USAGE:
  if errors.Is(err, ledger.ErrValidation) {
      var ve *ledger.ValidationError
      errors.As(err, &ve)
      // show ve.Message to the user
  }

SEE ALSO:
  - engine.go: Wraps store failures in StoreError
  - api/handlers.go: Maps categories to HTTP status
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is returned when input is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced record doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when the caller may not act on a workspace.
	ErrUnauthorized = errors.New("access denied")

	// ErrStore is returned when persistence fails.
	ErrStore = errors.New("failed to save")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

func notFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// AuthorizationError deliberately does not say whether the workspace exists.
type AuthorizationError struct {
	UserID      UserID
	WorkspaceID WorkspaceID
}

func (e *AuthorizationError) Error() string {
	return ErrUnauthorized.Error()
}

func (e *AuthorizationError) Unwrap() error {
	return ErrUnauthorized
}

// StoreError wraps a persistence failure. Error() stays generic; the
// underlying cause is available via errors.Unwrap for logging.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return ErrStore.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// wrapStore leaves ledger errors alone and wraps everything else.
func wrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrStore) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized returns true if the caller was denied access.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
