// Package guestimport implements the guest-list import pipeline: parsing a
// CSV or Excel file into a tabular preview, inferring column mappings onto
// the fixed guest schema, validating rows, converting them into guest
// records, and reconciling the result against the existing guest list.
//
// Data flows strictly forward: file -> preview -> mapping -> validation ->
// conversion -> reconciliation -> statistics. No stage depends on a later
// one, and each stage is usable on its own.
package guestimport

import "time"

// Target field names, fixed and case-sensitive. Every import maps source
// headers onto this set; anything a file cannot supply stays at the guest
// schema default.
const (
	FieldFirstName              = "firstName"
	FieldLastName               = "lastName"
	FieldEmail                  = "email"
	FieldPhone                  = "phone"
	FieldRSVPStatus             = "rsvpStatus"
	FieldPlusOneAllowed         = "plusOneAllowed"
	FieldPlusOneName            = "plusOneName"
	FieldPlusOneAttending       = "plusOneAttending"
	FieldAttendingCeremony      = "attendingCeremony"
	FieldAttendingReception     = "attendingReception"
	FieldDietaryRestrictions    = "dietaryRestrictions"
	FieldAccessibilityNeeds     = "accessibilityNeeds"
	FieldTableAssignment        = "tableAssignment"
	FieldSeatNumber             = "seatNumber"
	FieldPreferredContactMethod = "preferredContactMethod"
	FieldAddressLine1           = "addressLine1"
	FieldAddressLine2           = "addressLine2"
	FieldCity                   = "city"
	FieldState                  = "state"
	FieldZipCode                = "zipCode"
	FieldCountry                = "country"
	FieldInvitationNumber       = "invitationNumber"
	FieldIsWeddingParty         = "isWeddingParty"
	FieldWeddingPartyRole       = "weddingPartyRole"
	FieldRelationshipToCouple   = "relationshipToCouple"
	FieldInvitedBy              = "invitedBy"
	FieldRSVPDate               = "rsvpDate"
	FieldMealOption             = "mealOption"
	FieldGiftReceived           = "giftReceived"
	FieldNotes                  = "notes"
	FieldHairDone               = "hairDone"
	FieldMakeupDone             = "makeupDone"
	FieldPreparationNotes       = "preparationNotes"
)

// TargetFields lists every mappable field in canonical order. The order is
// also the column order used by CSV export and template downloads.
var TargetFields = []string{
	FieldFirstName,
	FieldLastName,
	FieldEmail,
	FieldPhone,
	FieldRSVPStatus,
	FieldPlusOneAllowed,
	FieldPlusOneName,
	FieldPlusOneAttending,
	FieldAttendingCeremony,
	FieldAttendingReception,
	FieldDietaryRestrictions,
	FieldAccessibilityNeeds,
	FieldTableAssignment,
	FieldSeatNumber,
	FieldPreferredContactMethod,
	FieldAddressLine1,
	FieldAddressLine2,
	FieldCity,
	FieldState,
	FieldZipCode,
	FieldCountry,
	FieldInvitationNumber,
	FieldIsWeddingParty,
	FieldWeddingPartyRole,
	FieldRelationshipToCouple,
	FieldInvitedBy,
	FieldRSVPDate,
	FieldMealOption,
	FieldGiftReceived,
	FieldNotes,
	FieldHairDone,
	FieldMakeupDone,
	FieldPreparationNotes,
}

// ImportPreview is the parsed tabular form of an uploaded file: headers plus
// string rows, before any mapping or validation. Created per file selection
// and discarded when the import completes or is abandoned.
type ImportPreview struct {
	FileName  string     `json:"fileName"`
	Headers   []string   `json:"headers"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"totalRows"`
}

// Unmapped marks a target field with no source column.
const Unmapped = -1

// ColumnMapping pairs one target field with a source column, or with
// Unmapped when no header matched. A full import carries one mapping per
// target field.
type ColumnMapping struct {
	TargetField  string `json:"targetField"`
	SourceHeader string `json:"sourceHeader,omitempty"`
	SourceIndex  int    `json:"sourceIndex"`
}

// IsMapped reports whether the mapping points at a real source column.
func (m ColumnMapping) IsMapped() bool {
	return m.SourceIndex != Unmapped
}

// RowError is a single validation failure, tied to a 1-based data row.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportValidationResult aggregates row validation. Validation is
// all-or-nothing at the file level: any invalid row blocks the entire
// import, there is no partial-import mode.
type ImportValidationResult struct {
	IsValid bool       `json:"isValid"`
	Errors  []RowError `json:"errors,omitempty"`
}

// ImportMode selects the reconciliation policy. It is chosen once per
// import run and never changes mid-run.
type ImportMode string

const (
	// ModeAddOnly inserts guests absent from the existing list and skips
	// anything whose email or name key collides with an existing guest.
	ModeAddOnly ImportMode = "add_only"

	// ModeSync inserts unmatched new guests, counts matched existing guests
	// as updated without overwriting their stored fields, and deletes
	// existing guests the file no longer contains.
	ModeSync ImportMode = "sync"
)

// ParseImportMode validates a mode string from the API surface.
func ParseImportMode(s string) (ImportMode, bool) {
	switch ImportMode(s) {
	case ModeAddOnly, ModeSync:
		return ImportMode(s), true
	default:
		return "", false
	}
}

// ImportStats summarizes one import run. Purely a reporting artifact.
type ImportStats struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
	Skipped int `json:"skipped"`
}

// ImportResult is the final outcome of an import run.
type ImportResult struct {
	ID         string                 `json:"id"`
	FileName   string                 `json:"fileName"`
	Mode       ImportMode             `json:"mode"`
	TotalRows  int                    `json:"totalRows"`
	Stats      ImportStats            `json:"stats"`
	Validation ImportValidationResult `json:"validation"`
	StartedAt  time.Time              `json:"startedAt"`
	Duration   time.Duration          `json:"duration"`
	Error      string                 `json:"error,omitempty"`
}

// ImportPhase indicates the current stage of an asynchronous import run.
type ImportPhase string

const (
	PhaseStarting    ImportPhase = "starting"
	PhaseParsing     ImportPhase = "parsing"
	PhaseValidating  ImportPhase = "validating"
	PhaseReconciling ImportPhase = "reconciling"
	PhaseComplete    ImportPhase = "complete"
	PhaseFailed      ImportPhase = "failed"
)

// ImportProgress is a snapshot of an in-flight import run.
type ImportProgress struct {
	ID        string      `json:"id"`
	FileName  string      `json:"fileName"`
	Phase     ImportPhase `json:"phase"`
	TotalRows int         `json:"totalRows"`
	Error     string      `json:"error,omitempty"`
}
