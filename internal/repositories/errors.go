package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")

	// ErrConstraintViolation is returned when the store rejects a row because of a
	// NOT NULL or CHECK constraint.
	ErrConstraintViolation = errors.New("constraint violation")
)

func notFound(id int64) error {
	return fmt.Errorf("product with ID %d: %w", id, ErrProductNotFound)
}
