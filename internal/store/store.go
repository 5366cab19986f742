// Package store defines the guest persistence boundary.
//
// The import pipeline treats the store purely as an async CRUD surface:
// a readable snapshot plus add, bulk-add, update, and delete. Consistency
// between a just-completed write and the next Guests call is the
// implementation's responsibility.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/idoblueprint/guestlist/internal/model"
)

// ErrNotFound is returned when a guest id does not exist.
var ErrNotFound = errors.New("guest not found")

// GuestStore is the persistence interface for guest records.
type GuestStore interface {
	// Guests returns a snapshot of all guests belonging to a couple.
	Guests(ctx context.Context, coupleID uuid.UUID) ([]model.Guest, error)

	// GetGuest returns a single guest by id, or ErrNotFound.
	GetGuest(ctx context.Context, id uuid.UUID) (model.Guest, error)

	// AddGuest persists a single new guest.
	AddGuest(ctx context.Context, g model.Guest) error

	// UpdateGuest replaces the stored record for g.ID, or returns ErrNotFound.
	UpdateGuest(ctx context.Context, g model.Guest) error

	// DeleteGuest removes a guest by id, or returns ErrNotFound.
	DeleteGuest(ctx context.Context, id uuid.UUID) error

	// ImportGuests bulk-adds guests and returns the records actually persisted.
	ImportGuests(ctx context.Context, guests []model.Guest) ([]model.Guest, error)
}
