/*
errors.go - Error types for the rates package

ERROR CATEGORIES:
  1. Validation errors - Malformed rules or room types, rejected by the
     Rule Store before they are persisted
  2. Lookup errors - Missing property, room type or rule
  3. Stay errors - Bad check-in/check-out ranges

The resolver itself never returns errors. Rules it cannot evaluate are
skipped and the base price stands.
*/
package rates

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrInvalidRule      = errors.New("invalid pricing rule")
	ErrInvalidRoomType  = errors.New("invalid room type")
	ErrInvalidProperty  = errors.New("invalid property")
	ErrRuleNotFound     = errors.New("pricing rule not found")
	ErrRoomTypeNotFound = errors.New("room type not found")
	ErrPropertyNotFound = errors.New("property not found")

	// ErrAlreadyExists is returned when creating a record whose ID is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidStay is returned when check-out is not after check-in.
	ErrInvalidStay = errors.New("invalid stay: check-out must be after check-in")

	// ErrStayTooLong is returned for stays longer than MaxStayNights.
	ErrStayTooLong = errors.New("stay exceeds maximum length")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
	kind   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.kind, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return e.kind }

func RuleFieldError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidRule}
}

func RoomTypeFieldError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidRoomType}
}

func PropertyFieldError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason, kind: ErrInvalidProperty}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound) ||
		errors.Is(err, ErrRoomTypeNotFound) ||
		errors.Is(err, ErrPropertyNotFound)
}

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRule) ||
		errors.Is(err, ErrInvalidRoomType) ||
		errors.Is(err, ErrInvalidProperty) ||
		errors.Is(err, ErrInvalidStay) ||
		errors.Is(err, ErrStayTooLong)
}
