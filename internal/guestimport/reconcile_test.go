package guestimport

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/idoblueprint/guestlist/internal/model"
	"github.com/idoblueprint/guestlist/internal/store/memstore"
)

func seedGuests(t *testing.T, st *memstore.Store, guests ...model.Guest) {
	t.Helper()
	for _, g := range guests {
		if err := st.AddGuest(context.Background(), g); err != nil {
			t.Fatalf("seed guest: %v", err)
		}
	}
}

func guest(coupleID uuid.UUID, first, last, email string) model.Guest {
	now := time.Now().UTC()
	return model.Guest{
		ID:         uuid.New(),
		CoupleID:   coupleID,
		CreatedAt:  now,
		UpdatedAt:  now,
		FirstName:  first,
		LastName:   last,
		Email:      email,
		RSVPStatus: model.RSVPPending,
		Country:    model.DefaultCountry,
	}
}

// ============================================================================
// AddOnly Mode Tests
// ============================================================================

func TestReconcile_AddOnly(t *testing.T) {
	coupleID := uuid.New()
	st := memstore.New()
	existing := []model.Guest{
		guest(coupleID, "Jane", "Smith", "jane@example.com"),
		guest(coupleID, "Bob", "Jones", ""),
	}
	seedGuests(t, st, existing...)

	incoming := []model.Guest{
		guest(coupleID, "Janet", "Smythe", "JANE@example.com"), // email collision, different name
		guest(coupleID, "Bob", "Jones", "bob@example.com"),     // name collision, new email
		guest(coupleID, "Alice", "Brown", ""),                  // genuinely new
	}

	stats, err := Reconcile(context.Background(), st, incoming, existing, ModeAddOnly)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if stats.Added != 1 || stats.Skipped != 2 {
		t.Errorf("stats = %+v, want Added=1 Skipped=2", stats)
	}
	if stats.Updated != 0 || stats.Deleted != 0 {
		t.Errorf("AddOnly must never update or delete: %+v", stats)
	}

	all, _ := st.Guests(context.Background(), coupleID)
	if len(all) != 3 {
		t.Errorf("store has %d guests, want 3", len(all))
	}
}

func TestReconcile_AddOnlyIdempotent(t *testing.T) {
	coupleID := uuid.New()
	st := memstore.New()
	existing := []model.Guest{
		guest(coupleID, "Jane", "Smith", "jane@example.com"),
	}
	seedGuests(t, st, existing...)

	// Re-importing the same list adds nothing
	incoming := []model.Guest{
		guest(coupleID, "Jane", "Smith", "jane@example.com"),
	}

	stats, err := Reconcile(context.Background(), st, incoming, existing, ModeAddOnly)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if stats.Added != 0 || stats.Skipped != 1 {
		t.Errorf("stats = %+v, want Added=0 Skipped=1", stats)
	}
}

func TestReconcile_AddOnlyEmptyEmailNoCollision(t *testing.T) {
	coupleID := uuid.New()
	st := memstore.New()
	existing := []model.Guest{
		guest(coupleID, "Jane", "Smith", ""),
	}
	seedGuests(t, st, existing...)

	// Empty emails never collide with each other; only the name key decides
	incoming := []model.Guest{
		guest(coupleID, "Alice", "Brown", ""),
	}

	stats, err := Reconcile(context.Background(), st, incoming, existing, ModeAddOnly)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if stats.Added != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want Added=1 Skipped=0", stats)
	}
}

// ============================================================================
// Sync Mode Tests
// ============================================================================

func TestReconcile_Sync(t *testing.T) {
	coupleID := uuid.New()
	st := memstore.New()
	kept := guest(coupleID, "Jane", "Smith", "jane@example.com")
	dropped := guest(coupleID, "Bob", "Jones", "bob@example.com")
	existing := []model.Guest{kept, dropped}
	seedGuests(t, st, existing...)

	incoming := []model.Guest{
		guest(coupleID, "Janet", "Smythe", "jane@example.com"), // matches kept by email
		guest(coupleID, "Alice", "Brown", ""),                  // new
	}

	stats, err := Reconcile(context.Background(), st, incoming, existing, ModeSync)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	if stats.Updated != 1 || stats.Added != 1 || stats.Deleted != 1 || stats.Skipped != 0 {
		t.Errorf("stats = %+v, want Updated=1 Added=1 Deleted=1", stats)
	}

	all, _ := st.Guests(context.Background(), coupleID)
	if len(all) != 2 {
		t.Fatalf("store has %d guests, want 2", len(all))
	}

	// The matched guest survives untouched; the unmatched one is gone
	var foundKept bool
	for _, g := range all {
		if g.ID == dropped.ID {
			t.Error("unmatched existing guest should have been deleted")
		}
		if g.ID == kept.ID {
			foundKept = true
			if g.FirstName != "Jane" || g.LastName != "Smith" {
				t.Errorf("matched guest fields overwritten: %q %q", g.FirstName, g.LastName)
			}
		}
	}
	if !foundKept {
		t.Error("matched existing guest missing from store")
	}
}

func TestReconcile_SyncNameFallback(t *testing.T) {
	coupleID := uuid.New()
	st := memstore.New()
	existing := []model.Guest{
		guest(coupleID, "Jane", "Smith", ""),
	}
	seedGuests(t, st, existing...)

	// Incoming row has an email the store lacks; the name key still matches
	incoming := []model.Guest{
		guest(coupleID, "JANE", "SMITH", "jane@new-domain.com"),
	}

	stats, err := Reconcile(context.Background(), st, incoming, existing, ModeSync)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if stats.Updated != 1 || stats.Added != 0 || stats.Deleted != 0 {
		t.Errorf("stats = %+v, want Updated=1 only", stats)
	}
}

func TestReconcile_SyncDuplicateRowsEachCountUpdated(t *testing.T) {
	coupleID := uuid.New()
	st := memstore.New()
	existing := []model.Guest{
		guest(coupleID, "Jane", "Smith", "jane@example.com"),
	}
	seedGuests(t, st, existing...)

	incoming := []model.Guest{
		guest(coupleID, "Jane", "Smith", "jane@example.com"),
		guest(coupleID, "Jane", "Smith", "jane@example.com"),
	}

	stats, err := Reconcile(context.Background(), st, incoming, existing, ModeSync)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	// Each file row claims the match independently
	if stats.Updated != 2 {
		t.Errorf("Updated = %d, want 2", stats.Updated)
	}
	if stats.Deleted != 0 {
		t.Errorf("Deleted = %d, want 0", stats.Deleted)
	}
}

func TestReconcile_SyncEmptyFileDeletesAll(t *testing.T) {
	coupleID := uuid.New()
	st := memstore.New()
	existing := []model.Guest{
		guest(coupleID, "Jane", "Smith", ""),
		guest(coupleID, "Bob", "Jones", ""),
	}
	seedGuests(t, st, existing...)

	stats, err := Reconcile(context.Background(), st, nil, existing, ModeSync)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if stats.Deleted != 2 || stats.Added != 0 || stats.Updated != 0 {
		t.Errorf("stats = %+v, want Deleted=2", stats)
	}

	all, _ := st.Guests(context.Background(), coupleID)
	if len(all) != 0 {
		t.Errorf("store has %d guests, want 0", len(all))
	}
}

func TestReconcile_UnknownMode(t *testing.T) {
	_, err := Reconcile(context.Background(), memstore.New(), nil, nil, ImportMode("merge"))
	if err == nil {
		t.Fatal("Reconcile() with unknown mode expected error")
	}
}
