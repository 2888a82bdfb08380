package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateItemUUID validates an item key.
func ValidateItemUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid item UUID format")
	}
	return nil
}

// ValidateReason validates a block reason.
func ValidateReason(reason string) error {
	if len(reason) > 1024 {
		return errors.New("reason exceeds maximum length")
	}
	if !utf8.ValidString(reason) {
		return errors.New("reason must be valid UTF-8")
	}
	return nil
}

// ValidateSearchTerm validates a free-text search term.
func ValidateSearchTerm(term string) error {
	if len(term) > 256 {
		return errors.New("search term exceeds maximum length")
	}
	if !utf8.ValidString(term) {
		return errors.New("search term must be valid UTF-8")
	}
	return nil
}

// ValidatePageLimit validates a requested page size.
func ValidatePageLimit(limit int) error {
	if limit < 1 || limit > 100 {
		return errors.New("limit must be between 1 and 100")
	}
	return nil
}
