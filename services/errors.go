package services

import (
	"errors"
	"fmt"
)

// Shared errors surfaced by the claims services and mapped to HTTP statuses
// by the handler layer.
var (
	// Resource lookups
	ErrNotFound          = errors.New("requested resource not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrPoolNotFound      = errors.New("character claim pool not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrCharacterNameRequired  = errors.New("character name is required")
	ErrAttributeNameRequired  = errors.New("attribute name is required")
	ErrJustificationRequired  = errors.New("justification is required")
	ErrPointsNotPositive      = errors.New("points must be a positive integer")
	ErrGrantReasonRequired    = errors.New("grant reason is required")
	ErrSentinelAttribute      = errors.New("attribute name is reserved for pool grants")
	ErrSelfPerception         = errors.New("a character cannot record a perception of itself")
	ErrInsufficientPoints     = errors.New("not enough claim points available")
	ErrPerceivedPointsInvalid = errors.New("perceived points must not be negative")

	// Infrastructure
	ErrExportUnavailable = errors.New("history export is not configured")
)

// InsufficientPointsError carries the available budget so the caller can
// retry with a corrected allocation.
type InsufficientPointsError struct {
	Available int
	Requested int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("not enough points available: have %d, need %d", e.Available, e.Requested)
}

func (e *InsufficientPointsError) Is(target error) bool {
	return target == ErrInsufficientPoints
}
