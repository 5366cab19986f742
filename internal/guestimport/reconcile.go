package guestimport

// reconcile.go applies an import's guest set against the existing guest
// list under one of two merge policies.
//
// Matching uses a dual key: case-insensitive email when present, else a
// case-insensitive "firstname_lastname" composite. Many guest lists carry
// no email addresses, so name keys always participate.
//
// AddOnly is a conservative anti-duplication policy: a collision on EITHER
// key skips the row, accepting false-positive skips for same-named distinct
// guests. Sync marks matched guests as updated WITHOUT overwriting their
// stored fields (preserved behavior, see the note on syncMatch below),
// inserts the unmatched, and deletes existing guests the file no longer
// names.
//
// Store failures propagate immediately. Mutations already applied stay
// applied: there is no transactional rollback across the run.

import (
	"context"

	"github.com/google/uuid"

	"github.com/idoblueprint/guestlist/internal/model"
	"github.com/idoblueprint/guestlist/internal/store"
)

// Reconcile applies newGuests against the existing snapshot under the
// given mode and returns summary statistics. The existing snapshot is read
// once by the caller before reconciliation starts and is not re-fetched
// mid-run.
func Reconcile(ctx context.Context, st store.GuestStore, newGuests, existing []model.Guest, mode ImportMode) (ImportStats, error) {
	switch mode {
	case ModeAddOnly:
		return reconcileAddOnly(ctx, st, newGuests, existing)
	case ModeSync:
		return reconcileSync(ctx, st, newGuests, existing)
	default:
		return ImportStats{}, &RepositoryError{Op: "reconcile", Err: errUnknownMode(mode)}
	}
}

type errUnknownMode ImportMode

func (e errUnknownMode) Error() string { return "unknown import mode: " + string(e) }

// reconcileAddOnly inserts guests absent from the existing set. Email is
// checked first, but a collision on either key alone causes a skip.
func reconcileAddOnly(ctx context.Context, st store.GuestStore, newGuests, existing []model.Guest) (ImportStats, error) {
	emails := make(map[string]struct{}, len(existing))
	names := make(map[string]struct{}, len(existing))
	for _, g := range existing {
		if k := g.EmailKey(); k != "" {
			emails[k] = struct{}{}
		}
		names[g.NameKey()] = struct{}{}
	}

	var stats ImportStats
	toAdd := make([]model.Guest, 0, len(newGuests))
	for _, g := range newGuests {
		if k := g.EmailKey(); k != "" {
			if _, dup := emails[k]; dup {
				stats.Skipped++
				continue
			}
		}
		if _, dup := names[g.NameKey()]; dup {
			stats.Skipped++
			continue
		}
		toAdd = append(toAdd, g)
	}

	if len(toAdd) > 0 {
		added, err := st.ImportGuests(ctx, toAdd)
		if err != nil {
			return stats, &RepositoryError{Op: "bulk add", Err: err}
		}
		stats.Added = len(added)
	}
	return stats, nil
}

// reconcileSync walks newGuests in file order. Each row independently
// claims its match, so two rows colliding on the same existing guest both
// count as updated even though the guest was matched once.
func reconcileSync(ctx context.Context, st store.GuestStore, newGuests, existing []model.Guest) (ImportStats, error) {
	byEmail := make(map[string]model.Guest, len(existing))
	byName := make(map[string]model.Guest, len(existing))
	for _, g := range existing {
		if k := g.EmailKey(); k != "" {
			byEmail[k] = g
		}
		byName[g.NameKey()] = g
	}

	var stats ImportStats
	matched := make(map[uuid.UUID]struct{}, len(existing))

	for _, g := range newGuests {
		if found, ok := syncMatch(g, byEmail, byName); ok {
			matched[found.ID] = struct{}{}
			stats.Updated++
			continue
		}

		if err := st.AddGuest(ctx, g); err != nil {
			return stats, &RepositoryError{Op: "add", Err: err}
		}
		stats.Added++
	}

	for _, g := range existing {
		if _, ok := matched[g.ID]; ok {
			continue
		}
		if err := st.DeleteGuest(ctx, g.ID); err != nil {
			return stats, &RepositoryError{Op: "delete", Err: err}
		}
		stats.Deleted++
	}

	return stats, nil
}

// syncMatch finds the existing guest a new row corresponds to: email match
// first, name-key fallback.
//
// A match intentionally does NOT write the imported row's fields onto the
// stored guest; the existing record's data is preserved as-is. Product has
// confirmed keeping this behavior despite the "sync" name suggesting a
// field merge.
func syncMatch(g model.Guest, byEmail, byName map[string]model.Guest) (model.Guest, bool) {
	if k := g.EmailKey(); k != "" {
		if found, ok := byEmail[k]; ok {
			return found, true
		}
	}
	found, ok := byName[g.NameKey()]
	return found, ok
}
