package guestimport

// convert.go turns validated rows into fully-formed guest records. Type
// coercion is forgiving: enums parse case-insensitively against raw values
// and display names, booleans accept yes/no true/false y/n 1/0, numbers and
// dates fall back to their schema default on parse failure rather than
// erroring. Hard failures belong to validation, not conversion.

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idoblueprint/guestlist/internal/model"
)

// Date layouts accepted for rsvpDate, 4-digit-year forms first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ConvertToGuests builds one Guest per data row. Every produced guest gets
// a fresh id, CreatedAt/UpdatedAt set to now, and the supplied coupleID as
// tenant. Unmapped and empty cells leave the schema default in place.
func ConvertToGuests(preview *ImportPreview, mappings []ColumnMapping, coupleID uuid.UUID) []model.Guest {
	now := time.Now().UTC()

	guests := make([]model.Guest, 0, len(preview.Rows))
	for _, row := range preview.Rows {
		g := model.Guest{
			ID:         uuid.New(),
			CoupleID:   coupleID,
			CreatedAt:  now,
			UpdatedAt:  now,
			RSVPStatus: model.RSVPPending,
			Country:    model.DefaultCountry,
		}

		for _, m := range mappings {
			value := cellFor(row, m)
			if value == "" {
				continue
			}
			applyField(&g, m.TargetField, value)
		}

		guests = append(guests, g)
	}
	return guests
}

// applyField sets one mapped cell value onto its guest field.
func applyField(g *model.Guest, field, value string) {
	switch field {
	case FieldFirstName:
		g.FirstName = value
	case FieldLastName:
		g.LastName = value
	case FieldEmail:
		g.Email = value
	case FieldPhone:
		g.Phone = value
	case FieldRSVPStatus:
		g.RSVPStatus = model.ParseRSVPStatus(value)
	case FieldPlusOneAllowed:
		g.PlusOneAllowed = parseBool(value)
	case FieldPlusOneName:
		g.PlusOneName = value
	case FieldPlusOneAttending:
		g.PlusOneAttending = parseBool(value)
	case FieldAttendingCeremony:
		g.AttendingCeremony = parseBool(value)
	case FieldAttendingReception:
		g.AttendingReception = parseBool(value)
	case FieldDietaryRestrictions:
		g.DietaryRestrictions = value
	case FieldAccessibilityNeeds:
		g.AccessibilityNeeds = value
	case FieldTableAssignment:
		g.TableAssignment = parseIntPtr(value)
	case FieldSeatNumber:
		g.SeatNumber = parseIntPtr(value)
	case FieldPreferredContactMethod:
		g.PreferredContactMethod = value
	case FieldAddressLine1:
		g.AddressLine1 = value
	case FieldAddressLine2:
		g.AddressLine2 = value
	case FieldCity:
		g.City = value
	case FieldState:
		g.State = value
	case FieldZipCode:
		g.ZipCode = value
	case FieldCountry:
		g.Country = value
	case FieldInvitationNumber:
		g.InvitationNumber = value
	case FieldIsWeddingParty:
		g.IsWeddingParty = parseBool(value)
	case FieldWeddingPartyRole:
		g.WeddingPartyRole = value
	case FieldRelationshipToCouple:
		g.RelationshipToCouple = value
	case FieldInvitedBy:
		g.InvitedBy = model.ParseInvitedBy(value)
	case FieldRSVPDate:
		g.RSVPDate = parseDatePtr(value)
	case FieldMealOption:
		g.MealOption = value
	case FieldGiftReceived:
		g.GiftReceived = parseBool(value)
	case FieldNotes:
		g.Notes = value
	case FieldHairDone:
		g.HairDone = parseBool(value)
	case FieldMakeupDone:
		g.MakeupDone = parseBool(value)
	case FieldPreparationNotes:
		g.PreparationNotes = value
	}
}

// parseBool accepts the usual spreadsheet spellings of a boolean. Anything
// unrecognized is false.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true
	default:
		return false
	}
}

// parseIntPtr parses a whole number, nil on failure.
func parseIntPtr(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &n
}

// parseDatePtr tries each accepted layout, nil when none fits.
func parseDatePtr(s string) *time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
