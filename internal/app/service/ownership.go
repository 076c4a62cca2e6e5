package service

import "errors"

// ErrNotOwner is returned when the acting user tries to touch a movie that
// belongs to someone else. Callers map it to a recoverable notice, never a
// hard failure.
var ErrNotOwner = errors.New("movie belongs to another user")

// OwnershipGuard decides whether an acting user may mutate a movie. It is a
// pure predicate with no state; it exists as its own type so the check reads
// the same on the read-before-edit path and the write path.
type OwnershipGuard struct{}

func NewOwnershipGuard() *OwnershipGuard {
	return &OwnershipGuard{}
}

// Authorize returns nil when actingUserID owns the record, ErrNotOwner
// otherwise.
func (g *OwnershipGuard) Authorize(actingUserID, ownerID uint) error {
	if actingUserID != ownerID {
		return ErrNotOwner
	}
	return nil
}
