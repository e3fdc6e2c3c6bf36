package domain

import (
	"errors"
	"fmt"
)

var ErrEntityNotFound *notFoundError

type notFoundError struct {
	EntityType string
	ID         string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.EntityType)
}

func NewNotFoundError(entityType string, id string) error {
	return &notFoundError{
		EntityType: entityType,
		ID:         id,
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFoundError *notFoundError
	ok := errors.As(err, &notFoundError)
	return ok
}

// NotFoundID returns the identifier carried by a not-found error, if any.
func NotFoundID(err error) (string, bool) {
	var notFoundError *notFoundError
	if errors.As(err, &notFoundError) {
		return notFoundError.ID, true
	}
	return "", false
}
