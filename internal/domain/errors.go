// Package domain holds the core models and sentinel errors shared by the
// store, service, and API layers. Callers match errors with errors.Is.
package domain

import "errors"

var (
	// ErrNotFound covers missing users, images, and transactions.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned when an actor mutates a resource they
	// do not own.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientCredits is returned when a debit would drive the
	// balance negative. The balance is left untouched.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrDuplicatePayment signals a replayed payment event. It is a
	// no-op outcome, not a failure: the webhook layer answers success.
	ErrDuplicatePayment = errors.New("payment already recorded")

	// ErrAlreadyExists is returned on conflicting user sync events.
	ErrAlreadyExists = errors.New("already exists")

	// ErrValidation covers malformed input: bad pagination parameters,
	// unknown transformation kinds, missing required fields.
	ErrValidation = errors.New("validation error")
)
