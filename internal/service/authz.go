// Package service orchestrates the domain operations: payment recording,
// image ownership, account sync, and listing pagination. Services hold
// interfaces over the store so tests can swap in fakes; balance mutation
// itself stays inside the store's transactions.
package service

import "github.com/dteller/pixelforge/internal/domain"

// Authorize admits a mutation only when the acting user is the recorded
// owner. Single-resource reads stay open (gallery semantics); every update
// and delete path must pass through here before touching storage.
func Authorize(actorID, ownerID int64) error {
	if actorID != ownerID {
		return domain.ErrUnauthorized
	}
	return nil
}
