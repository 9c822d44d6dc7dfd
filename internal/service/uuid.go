package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidUUID indicates the string is not a valid UUID format
	ErrInvalidUUID = errors.New("invalid UUID format")
	// ErrFutureDate indicates a check-in or progress date after the user's today
	ErrFutureDate = errors.New("date is in the future")
)

// ValidateID checks that a path identifier is a UUID. Any version is accepted;
// rows created by Postgres use v4 and rows created by the gorm store use v7.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUUID, err)
	}
	return nil
}
