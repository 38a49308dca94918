package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"storefront/internal/apperrors"
)

// storeError wraps a GORM failure, translating record-not-found and
// duplicate-key errors into the application taxonomy. The original error
// stays in the chain.
func storeError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", msg, apperrors.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w: %w", msg, apperrors.ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func notFound(entity, id string) error {
	return fmt.Errorf("%s with ID %s not found: %w", entity, id, apperrors.ErrNotFound)
}
