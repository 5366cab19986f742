package guestimport

// export.go writes the guest list back out as CSV, columns in the
// canonical target-field order so an exported file round-trips through the
// importer unchanged.

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/idoblueprint/guestlist/internal/model"
)

// ExportCSV renders guests as CSV with a header row of the target fields.
func ExportCSV(guests []model.Guest) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(TargetFields); err != nil {
		return nil, err
	}
	for _, g := range guests {
		if err := w.Write(exportRow(g)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportRow(g model.Guest) []string {
	row := make([]string, 0, len(TargetFields))
	for _, field := range TargetFields {
		row = append(row, exportValue(g, field))
	}
	return row
}

func exportValue(g model.Guest, field string) string {
	switch field {
	case FieldFirstName:
		return g.FirstName
	case FieldLastName:
		return g.LastName
	case FieldEmail:
		return g.Email
	case FieldPhone:
		return g.Phone
	case FieldRSVPStatus:
		return string(g.RSVPStatus)
	case FieldPlusOneAllowed:
		return formatBool(g.PlusOneAllowed)
	case FieldPlusOneName:
		return g.PlusOneName
	case FieldPlusOneAttending:
		return formatBool(g.PlusOneAttending)
	case FieldAttendingCeremony:
		return formatBool(g.AttendingCeremony)
	case FieldAttendingReception:
		return formatBool(g.AttendingReception)
	case FieldDietaryRestrictions:
		return g.DietaryRestrictions
	case FieldAccessibilityNeeds:
		return g.AccessibilityNeeds
	case FieldTableAssignment:
		return formatIntPtr(g.TableAssignment)
	case FieldSeatNumber:
		return formatIntPtr(g.SeatNumber)
	case FieldPreferredContactMethod:
		return g.PreferredContactMethod
	case FieldAddressLine1:
		return g.AddressLine1
	case FieldAddressLine2:
		return g.AddressLine2
	case FieldCity:
		return g.City
	case FieldState:
		return g.State
	case FieldZipCode:
		return g.ZipCode
	case FieldCountry:
		return g.Country
	case FieldInvitationNumber:
		return g.InvitationNumber
	case FieldIsWeddingParty:
		return formatBool(g.IsWeddingParty)
	case FieldWeddingPartyRole:
		return g.WeddingPartyRole
	case FieldRelationshipToCouple:
		return g.RelationshipToCouple
	case FieldInvitedBy:
		if g.InvitedBy == nil {
			return ""
		}
		return string(*g.InvitedBy)
	case FieldRSVPDate:
		if g.RSVPDate == nil {
			return ""
		}
		return g.RSVPDate.Format("2006-01-02")
	case FieldMealOption:
		return g.MealOption
	case FieldGiftReceived:
		return formatBool(g.GiftReceived)
	case FieldNotes:
		return g.Notes
	case FieldHairDone:
		return formatBool(g.HairDone)
	case FieldMakeupDone:
		return formatBool(g.MakeupDone)
	case FieldPreparationNotes:
		return g.PreparationNotes
	default:
		return ""
	}
}

func formatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatIntPtr(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
