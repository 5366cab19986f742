// Package memstore provides an in-memory GuestStore. It backs tests and
// the "memory" driver for demo deployments; nothing survives a restart.
package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/idoblueprint/guestlist/internal/model"
	"github.com/idoblueprint/guestlist/internal/store"
)

// Store keeps guests in a slice guarded by a RWMutex, preserving insertion
// order so snapshots come back deterministically.
type Store struct {
	mu     sync.RWMutex
	guests []model.Guest
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

func (s *Store) Guests(_ context.Context, coupleID uuid.UUID) ([]model.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Guest
	for _, g := range s.guests {
		if g.CoupleID == coupleID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) GetGuest(_ context.Context, id uuid.UUID) (model.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.guests {
		if g.ID == id {
			return g, nil
		}
	}
	return model.Guest{}, store.ErrNotFound
}

func (s *Store) AddGuest(_ context.Context, g model.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guests = append(s.guests, g)
	return nil
}

func (s *Store) UpdateGuest(_ context.Context, g model.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.guests {
		if s.guests[i].ID == g.ID {
			s.guests[i] = g
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteGuest(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.guests {
		if s.guests[i].ID == id {
			s.guests = append(s.guests[:i], s.guests[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) ImportGuests(_ context.Context, guests []model.Guest) ([]model.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guests = append(s.guests, guests...)
	out := make([]model.Guest, len(guests))
	copy(out, guests)
	return out, nil
}
