// Package pgstore persists guests in PostgreSQL via pgx. It is the backend
// for multi-host deployments where several planning sessions share one list.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/idoblueprint/guestlist/internal/model"
	"github.com/idoblueprint/guestlist/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS guests (
	id                     UUID PRIMARY KEY,
	couple_id              UUID NOT NULL,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL,
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
	rsvp_date              TIMESTAMPTZ,
	invitation_number      TEXT NOT NULL DEFAULT '',
	plus_one_allowed       BOOLEAN NOT NULL DEFAULT FALSE,
	plus_one_name          TEXT NOT NULL DEFAULT '',
	plus_one_attending     BOOLEAN NOT NULL DEFAULT FALSE,
	attending_ceremony     BOOLEAN NOT NULL DEFAULT FALSE,
	attending_reception    BOOLEAN NOT NULL DEFAULT FALSE,
	attending_rehearsal    BOOLEAN NOT NULL DEFAULT FALSE,
	other_events           TEXT[] NOT NULL DEFAULT '{}',
	dietary_restrictions   TEXT NOT NULL DEFAULT '',
	accessibility_needs    TEXT NOT NULL DEFAULT '',
	table_assignment       INTEGER,
	seat_number            INTEGER,
	is_wedding_party       BOOLEAN NOT NULL DEFAULT FALSE,
	wedding_party_role     TEXT NOT NULL DEFAULT '',
	relationship_to_couple TEXT NOT NULL DEFAULT '',
	hair_done              BOOLEAN NOT NULL DEFAULT FALSE,
	makeup_done            BOOLEAN NOT NULL DEFAULT FALSE,
	preparation_notes      TEXT NOT NULL DEFAULT '',
	meal_option            TEXT NOT NULL DEFAULT '',
	gift_received          BOOLEAN NOT NULL DEFAULT FALSE,
	notes                  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_guests_couple ON guests (couple_id);
`

var guestColumns = []string{
	"id", "couple_id", "created_at", "updated_at", "first_name", "last_name",
	"email", "phone", "preferred_contact_method", "address_line1",
	"address_line2", "city", "state", "zip_code", "country", "rsvp_status",
	"invited_by", "rsvp_date", "invitation_number", "plus_one_allowed",
	"plus_one_name", "plus_one_attending", "attending_ceremony",
	"attending_reception", "attending_rehearsal", "other_events",
	"dietary_restrictions", "accessibility_needs", "table_assignment",
	"seat_number", "is_wedding_party", "wedding_party_role",
	"relationship_to_couple", "hair_done", "makeup_done", "preparation_notes",
	"meal_option", "gift_received", "notes",
}

const selectGuest = `SELECT
	id, couple_id, created_at, updated_at, first_name, last_name,
	email, phone, preferred_contact_method, address_line1,
	address_line2, city, state, zip_code, country, rsvp_status,
	invited_by, rsvp_date, invitation_number, plus_one_allowed,
	plus_one_name, plus_one_attending, attending_ceremony,
	attending_reception, attending_rehearsal, other_events,
	dietary_restrictions, accessibility_needs, table_assignment,
	seat_number, is_wedding_party, wedding_party_role,
	relationship_to_couple, hair_done, makeup_done, preparation_notes,
	meal_option, gift_received, notes
	FROM guests`

// Config controls the connection pool.
type Config struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Store is a PostgreSQL-backed GuestStore.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database, verifies the connection, and ensures the
// schema.
func New(ctx context.Context, cfg Config) (*Store, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Guests(ctx context.Context, coupleID uuid.UUID) ([]model.Guest, error) {
	rows, err := s.pool.Query(ctx,
		selectGuest+` WHERE couple_id = $1 ORDER BY created_at, last_name, first_name`,
		coupleID)
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
	row := s.pool.QueryRow(ctx, selectGuest+` WHERE id = $1`, id)
	g, err := scanGuest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Guest{}, store.ErrNotFound
	}
	return g, err
}

func (s *Store) AddGuest(ctx context.Context, g model.Guest) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO guests (
		id, couple_id, created_at, updated_at, first_name, last_name,
		email, phone, preferred_contact_method, address_line1,
		address_line2, city, state, zip_code, country, rsvp_status,
		invited_by, rsvp_date, invitation_number, plus_one_allowed,
		plus_one_name, plus_one_attending, attending_ceremony,
		attending_reception, attending_rehearsal, other_events,
		dietary_restrictions, accessibility_needs, table_assignment,
		seat_number, is_wedding_party, wedding_party_role,
		relationship_to_couple, hair_done, makeup_done, preparation_notes,
		meal_option, gift_received, notes
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
		$29, $30, $31, $32, $33, $34, $35, $36, $37, $38, $39
	)`, guestValues(g)...)
	if err != nil {
		return fmt.Errorf("insert guest: %w", err)
	}
	return nil
}

func (s *Store) UpdateGuest(ctx context.Context, g model.Guest) error {
	tag, err := s.pool.Exec(ctx, `UPDATE guests SET
		updated_at = $2, first_name = $3, last_name = $4, email = $5,
		phone = $6, preferred_contact_method = $7, address_line1 = $8,
		address_line2 = $9, city = $10, state = $11, zip_code = $12,
		country = $13, rsvp_status = $14, invited_by = $15, rsvp_date = $16,
		invitation_number = $17, plus_one_allowed = $18, plus_one_name = $19,
		plus_one_attending = $20, attending_ceremony = $21,
		attending_reception = $22, attending_rehearsal = $23,
		other_events = $24, dietary_restrictions = $25,
		accessibility_needs = $26, table_assignment = $27, seat_number = $28,
		is_wedding_party = $29, wedding_party_role = $30,
		relationship_to_couple = $31, hair_done = $32, makeup_done = $33,
		preparation_notes = $34, meal_option = $35, gift_received = $36,
		notes = $37
		WHERE id = $1`,
		g.ID, g.UpdatedAt, g.FirstName, g.LastName, g.Email,
		g.Phone, g.PreferredContactMethod, g.AddressLine1,
		g.AddressLine2, g.City, g.State, g.ZipCode,
		g.Country, string(g.RSVPStatus), invitedByValue(g.InvitedBy), g.RSVPDate,
		g.InvitationNumber, g.PlusOneAllowed, g.PlusOneName,
		g.PlusOneAttending, g.AttendingCeremony,
		g.AttendingReception, g.AttendingRehearsal,
		eventsValue(g.OtherEvents), g.DietaryRestrictions,
		g.AccessibilityNeeds, g.TableAssignment, g.SeatNumber,
		g.IsWeddingParty, g.WeddingPartyRole,
		g.RelationshipToCouple, g.HairDone, g.MakeupDone,
		g.PreparationNotes, g.MealOption, g.GiftReceived,
		g.Notes)
	if err != nil {
		return fmt.Errorf("update guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) DeleteGuest(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ImportGuests bulk-loads guests with COPY.
func (s *Store) ImportGuests(ctx context.Context, guests []model.Guest) ([]model.Guest, error) {
	rows := make([][]any, len(guests))
	for i, g := range guests {
		rows[i] = guestValues(g)
	}
	if _, err := s.pool.CopyFrom(ctx, pgx.Identifier{"guests"}, guestColumns, pgx.CopyFromRows(rows)); err != nil {
		return nil, fmt.Errorf("copy guests: %w", err)
	}
	out := make([]model.Guest, len(guests))
	copy(out, guests)
	return out, nil
}

func guestValues(g model.Guest) []any {
	return []any{
		g.ID, g.CoupleID, g.CreatedAt, g.UpdatedAt, g.FirstName, g.LastName,
		g.Email, g.Phone, g.PreferredContactMethod, g.AddressLine1,
		g.AddressLine2, g.City, g.State, g.ZipCode, g.Country,
		string(g.RSVPStatus), invitedByValue(g.InvitedBy), g.RSVPDate,
		g.InvitationNumber, g.PlusOneAllowed, g.PlusOneName,
		g.PlusOneAttending, g.AttendingCeremony, g.AttendingReception,
		g.AttendingRehearsal, eventsValue(g.OtherEvents),
		g.DietaryRestrictions, g.AccessibilityNeeds, g.TableAssignment,
		g.SeatNumber, g.IsWeddingParty, g.WeddingPartyRole,
		g.RelationshipToCouple, g.HairDone, g.MakeupDone,
		g.PreparationNotes, g.MealOption, g.GiftReceived, g.Notes,
	}
}

func scanGuest(row pgx.Row) (model.Guest, error) {
	var (
		g          model.Guest
		rsvpStatus string
		invitedBy  *string
	)
	err := row.Scan(
		&g.ID, &g.CoupleID, &g.CreatedAt, &g.UpdatedAt, &g.FirstName,
		&g.LastName, &g.Email, &g.Phone, &g.PreferredContactMethod,
		&g.AddressLine1, &g.AddressLine2, &g.City, &g.State, &g.ZipCode,
		&g.Country, &rsvpStatus, &invitedBy, &g.RSVPDate,
		&g.InvitationNumber, &g.PlusOneAllowed, &g.PlusOneName,
		&g.PlusOneAttending, &g.AttendingCeremony, &g.AttendingReception,
		&g.AttendingRehearsal, &g.OtherEvents, &g.DietaryRestrictions,
		&g.AccessibilityNeeds, &g.TableAssignment, &g.SeatNumber,
		&g.IsWeddingParty, &g.WeddingPartyRole, &g.RelationshipToCouple,
		&g.HairDone, &g.MakeupDone, &g.PreparationNotes, &g.MealOption,
		&g.GiftReceived, &g.Notes,
	)
	if err != nil {
		return model.Guest{}, err
	}
	g.RSVPStatus = model.RSVPStatus(rsvpStatus)
	if invitedBy != nil {
		v := model.InvitedBy(*invitedBy)
		g.InvitedBy = &v
	}
	return g, nil
}

func invitedByValue(v *model.InvitedBy) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

// eventsValue keeps NOT NULL satisfied when a guest has no extra events.
func eventsValue(events []string) []string {
	if events == nil {
		return []string{}
	}
	return events
}
