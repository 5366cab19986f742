// Package sqlitestore persists guests in a local SQLite database via
// database/sql and the mattn/go-sqlite3 driver. It is the default backend
// for single-host deployments.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/idoblueprint/guestlist/internal/model"
	"github.com/idoblueprint/guestlist/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS guests (
	id                     TEXT PRIMARY KEY,
	couple_id              TEXT NOT NULL,
	created_at             TIMESTAMP NOT NULL,
	updated_at             TIMESTAMP NOT NULL,
	first_name             TEXT NOT NULL,
	last_name              TEXT NOT NULL,
	email                  TEXT NOT NULL DEFAULT '',
	phone                  TEXT NOT NULL DEFAULT '',
	preferred_contact_method TEXT NOT NULL DEFAULT '',
	address_line1          TEXT NOT NULL DEFAULT '',
	address_line2          TEXT NOT NULL DEFAULT '',
	city                   TEXT NOT NULL DEFAULT '',
	state                  TEXT NOT NULL DEFAULT '',
	zip_code               TEXT NOT NULL DEFAULT '',
	country                TEXT NOT NULL DEFAULT '',
	rsvp_status            TEXT NOT NULL DEFAULT 'pending',
	invited_by             TEXT,
	rsvp_date              TIMESTAMP,
	invitation_number      TEXT NOT NULL DEFAULT '',
	plus_one_allowed       INTEGER NOT NULL DEFAULT 0,
	plus_one_name          TEXT NOT NULL DEFAULT '',
	plus_one_attending     INTEGER NOT NULL DEFAULT 0,
	attending_ceremony     INTEGER NOT NULL DEFAULT 0,
	attending_reception    INTEGER NOT NULL DEFAULT 0,
	attending_rehearsal    INTEGER NOT NULL DEFAULT 0,
	other_events           TEXT NOT NULL DEFAULT '[]',
	dietary_restrictions   TEXT NOT NULL DEFAULT '',
	accessibility_needs    TEXT NOT NULL DEFAULT '',
	table_assignment       INTEGER,
	seat_number            INTEGER,
	is_wedding_party       INTEGER NOT NULL DEFAULT 0,
	wedding_party_role     TEXT NOT NULL DEFAULT '',
	relationship_to_couple TEXT NOT NULL DEFAULT '',
	hair_done              INTEGER NOT NULL DEFAULT 0,
	makeup_done            INTEGER NOT NULL DEFAULT 0,
	preparation_notes      TEXT NOT NULL DEFAULT '',
	meal_option            TEXT NOT NULL DEFAULT '',
	gift_received          INTEGER NOT NULL DEFAULT 0,
	notes                  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_guests_couple ON guests(couple_id);
`

const guestColumns = `id, couple_id, created_at, updated_at, first_name, last_name,
	email, phone, preferred_contact_method, address_line1, address_line2, city,
	state, zip_code, country, rsvp_status, invited_by, rsvp_date,
	invitation_number, plus_one_allowed, plus_one_name, plus_one_attending,
	attending_ceremony, attending_reception, attending_rehearsal, other_events,
	dietary_restrictions, accessibility_needs, table_assignment, seat_number,
	is_wedding_party, wedding_party_role, relationship_to_couple, hair_done,
	makeup_done, preparation_notes, meal_option, gift_received, notes`

const insertGuest = `INSERT INTO guests (` + guestColumns + `) VALUES
	(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
	 ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Store is a SQLite-backed GuestStore.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Guests(ctx context.Context, coupleID uuid.UUID) ([]model.Guest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE couple_id = ? ORDER BY created_at, last_name, first_name`,
		coupleID.String())
	if err != nil {
		return nil, fmt.Errorf("query guests: %w", err)
	}
	defer rows.Close()

	var guests []model.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (s *Store) GetGuest(ctx context.Context, id uuid.UUID) (model.Guest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE id = ?`, id.String())
	g, err := scanGuest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Guest{}, store.ErrNotFound
	}
	return g, err
}

func (s *Store) AddGuest(ctx context.Context, g model.Guest) error {
	if _, err := s.db.ExecContext(ctx, insertGuest, insertArgs(g)...); err != nil {
		return fmt.Errorf("insert guest: %w", err)
	}
	return nil
}

func (s *Store) UpdateGuest(ctx context.Context, g model.Guest) error {
	res, err := s.db.ExecContext(ctx, `UPDATE guests SET
		updated_at = ?, first_name = ?, last_name = ?, email = ?, phone = ?,
		preferred_contact_method = ?, address_line1 = ?, address_line2 = ?,
		city = ?, state = ?, zip_code = ?, country = ?, rsvp_status = ?,
		invited_by = ?, rsvp_date = ?, invitation_number = ?,
		plus_one_allowed = ?, plus_one_name = ?, plus_one_attending = ?,
		attending_ceremony = ?, attending_reception = ?, attending_rehearsal = ?,
		other_events = ?, dietary_restrictions = ?, accessibility_needs = ?,
		table_assignment = ?, seat_number = ?, is_wedding_party = ?,
		wedding_party_role = ?, relationship_to_couple = ?, hair_done = ?,
		makeup_done = ?, preparation_notes = ?, meal_option = ?,
		gift_received = ?, notes = ?
		WHERE id = ?`,
		g.UpdatedAt, g.FirstName, g.LastName, g.Email, g.Phone,
		g.PreferredContactMethod, g.AddressLine1, g.AddressLine2,
		g.City, g.State, g.ZipCode, g.Country, string(g.RSVPStatus),
		invitedByValue(g.InvitedBy), rsvpDateValue(g.RSVPDate), g.InvitationNumber,
		g.PlusOneAllowed, g.PlusOneName, g.PlusOneAttending,
		g.AttendingCeremony, g.AttendingReception, g.AttendingRehearsal,
		marshalEvents(g.OtherEvents), g.DietaryRestrictions, g.AccessibilityNeeds,
		intPtrValue(g.TableAssignment), intPtrValue(g.SeatNumber), g.IsWeddingParty,
		g.WeddingPartyRole, g.RelationshipToCouple, g.HairDone,
		g.MakeupDone, g.PreparationNotes, g.MealOption,
		g.GiftReceived, g.Notes,
		g.ID.String())
	if err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM guests WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ImportGuests inserts all guests inside one transaction.
func (s *Store) ImportGuests(ctx context.Context, guests []model.Guest) ([]model.Guest, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertGuest)
	if err != nil {
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, g := range guests {
		if _, err := stmt.ExecContext(ctx, insertArgs(g)...); err != nil {
			return nil, fmt.Errorf("insert guest %s: %w", g.FullName(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	out := make([]model.Guest, len(guests))
	copy(out, guests)
	return out, nil
}

func insertArgs(g model.Guest) []any {
	return []any{
		g.ID.String(), g.CoupleID.String(), g.CreatedAt, g.UpdatedAt,
		g.FirstName, g.LastName, g.Email, g.Phone, g.PreferredContactMethod,
		g.AddressLine1, g.AddressLine2, g.City, g.State, g.ZipCode, g.Country,
		string(g.RSVPStatus), invitedByValue(g.InvitedBy), rsvpDateValue(g.RSVPDate),
		g.InvitationNumber, g.PlusOneAllowed, g.PlusOneName, g.PlusOneAttending,
		g.AttendingCeremony, g.AttendingReception, g.AttendingRehearsal,
		marshalEvents(g.OtherEvents), g.DietaryRestrictions, g.AccessibilityNeeds,
		intPtrValue(g.TableAssignment), intPtrValue(g.SeatNumber),
		g.IsWeddingParty, g.WeddingPartyRole, g.RelationshipToCouple,
		g.HairDone, g.MakeupDone, g.PreparationNotes, g.MealOption,
		g.GiftReceived, g.Notes,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (model.Guest, error) {
	var (
		g               model.Guest
		id, coupleID    string
		rsvpStatus      string
		invitedBy       sql.NullString
		rsvpDate        sql.NullTime
		tableAssignment sql.NullInt64
		seatNumber      sql.NullInt64
		otherEvents     string
	)

	err := row.Scan(
		&id, &coupleID, &g.CreatedAt, &g.UpdatedAt, &g.FirstName, &g.LastName,
		&g.Email, &g.Phone, &g.PreferredContactMethod, &g.AddressLine1,
		&g.AddressLine2, &g.City, &g.State, &g.ZipCode, &g.Country,
		&rsvpStatus, &invitedBy, &rsvpDate, &g.InvitationNumber,
		&g.PlusOneAllowed, &g.PlusOneName, &g.PlusOneAttending,
		&g.AttendingCeremony, &g.AttendingReception, &g.AttendingRehearsal,
		&otherEvents, &g.DietaryRestrictions, &g.AccessibilityNeeds,
		&tableAssignment, &seatNumber, &g.IsWeddingParty, &g.WeddingPartyRole,
		&g.RelationshipToCouple, &g.HairDone, &g.MakeupDone,
		&g.PreparationNotes, &g.MealOption, &g.GiftReceived, &g.Notes,
	)
	if err != nil {
		return model.Guest{}, err
	}

	if g.ID, err = uuid.Parse(id); err != nil {
		return model.Guest{}, fmt.Errorf("corrupt guest id %q: %w", id, err)
	}
	if g.CoupleID, err = uuid.Parse(coupleID); err != nil {
		return model.Guest{}, fmt.Errorf("corrupt couple id %q: %w", coupleID, err)
	}
	g.RSVPStatus = model.RSVPStatus(rsvpStatus)
	if invitedBy.Valid {
		v := model.InvitedBy(invitedBy.String)
		g.InvitedBy = &v
	}
	if rsvpDate.Valid {
		t := rsvpDate.Time
		g.RSVPDate = &t
	}
	if tableAssignment.Valid {
		n := int(tableAssignment.Int64)
		g.TableAssignment = &n
	}
	if seatNumber.Valid {
		n := int(seatNumber.Int64)
		g.SeatNumber = &n
	}
	if otherEvents != "" && otherEvents != "[]" {
		_ = json.Unmarshal([]byte(otherEvents), &g.OtherEvents)
	}
	return g, nil
}

func invitedByValue(v *model.InvitedBy) any {
	if v == nil {
		return nil
	}
	return string(*v)
}

func rsvpDateValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func intPtrValue(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func marshalEvents(events []string) string {
	if len(events) == 0 {
		return "[]"
	}
	b, err := json.Marshal(events)
	if err != nil {
		return "[]"
	}
	return string(b)
}
