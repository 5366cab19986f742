// Package model defines the wedding guest record and its enums.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// RSVPStatus represents a guest's attendance response.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPInvited   RSVPStatus = "invited"
	RSVPAttending RSVPStatus = "attending"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPMaybe     RSVPStatus = "maybe"
)

// DisplayName returns the user-facing label for the status.
func (s RSVPStatus) DisplayName() string {
	switch s {
	case RSVPPending:
		return "Pending"
	case RSVPInvited:
		return "Invited"
	case RSVPAttending:
		return "Confirmed"
	case RSVPDeclined:
		return "Declined"
	case RSVPMaybe:
		return "Maybe"
	default:
		return string(s)
	}
}

// ParseRSVPStatus matches a string against raw values and display names,
// case-insensitively. Unrecognized input falls back to RSVPPending.
func ParseRSVPStatus(s string) RSVPStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return RSVPPending
	case "invited":
		return RSVPInvited
	case "attending", "confirmed", "accepted", "yes":
		return RSVPAttending
	case "declined", "not attending", "no", "regrets":
		return RSVPDeclined
	case "maybe", "tentative":
		return RSVPMaybe
	default:
		return RSVPPending
	}
}

// InvitedBy indicates which side of the couple invited a guest.
type InvitedBy string

const (
	InvitedByPartner1 InvitedBy = "partner1"
	InvitedByPartner2 InvitedBy = "partner2"
	InvitedByBoth     InvitedBy = "both"
)

// DisplayName returns the user-facing label for the inviting side.
func (i InvitedBy) DisplayName() string {
	switch i {
	case InvitedByPartner1:
		return "Partner 1"
	case InvitedByPartner2:
		return "Partner 2"
	case InvitedByBoth:
		return "Both"
	default:
		return string(i)
	}
}

// ParseInvitedBy matches a string against raw values and display names,
// case-insensitively. Returns nil when the input matches neither.
func ParseInvitedBy(s string) *InvitedBy {
	var v InvitedBy
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "partner1", "partner 1", "bride":
		v = InvitedByPartner1
	case "partner2", "partner 2", "groom":
		v = InvitedByPartner2
	case "both":
		v = InvitedByBoth
	default:
		return nil
	}
	return &v
}

// DefaultCountry is applied when an imported or created guest has no country.
const DefaultCountry = "USA"

// Guest is the central record of the guest list. FirstName and LastName are
// required; everything else is optional detail collected over the planning
// lifecycle.
type Guest struct {
	ID        uuid.UUID `json:"id"`
	CoupleID  uuid.UUID `json:"coupleId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`

	Email                  string `json:"email,omitempty"`
	Phone                  string `json:"phone,omitempty"`
	PreferredContactMethod string `json:"preferredContactMethod,omitempty"`
	AddressLine1           string `json:"addressLine1,omitempty"`
	AddressLine2           string `json:"addressLine2,omitempty"`
	City                   string `json:"city,omitempty"`
	State                  string `json:"state,omitempty"`
	ZipCode                string `json:"zipCode,omitempty"`
	Country                string `json:"country,omitempty"`

	RSVPStatus       RSVPStatus `json:"rsvpStatus"`
	InvitedBy        *InvitedBy `json:"invitedBy,omitempty"`
	RSVPDate         *time.Time `json:"rsvpDate,omitempty"`
	InvitationNumber string     `json:"invitationNumber,omitempty"`

	PlusOneAllowed   bool   `json:"plusOneAllowed"`
	PlusOneName      string `json:"plusOneName,omitempty"`
	PlusOneAttending bool   `json:"plusOneAttending"`

	AttendingCeremony  bool     `json:"attendingCeremony"`
	AttendingReception bool     `json:"attendingReception"`
	AttendingRehearsal bool     `json:"attendingRehearsal"`
	OtherEvents        []string `json:"otherEvents,omitempty"`

	DietaryRestrictions string `json:"dietaryRestrictions,omitempty"`
	AccessibilityNeeds  string `json:"accessibilityNeeds,omitempty"`

	TableAssignment *int `json:"tableAssignment,omitempty"`
	SeatNumber      *int `json:"seatNumber,omitempty"`

	IsWeddingParty       bool   `json:"isWeddingParty"`
	WeddingPartyRole     string `json:"weddingPartyRole,omitempty"`
	RelationshipToCouple string `json:"relationshipToCouple,omitempty"`
	HairDone             bool   `json:"hairDone"`
	MakeupDone           bool   `json:"makeupDone"`
	PreparationNotes     string `json:"preparationNotes,omitempty"`

	MealOption   string `json:"mealOption,omitempty"`
	GiftReceived bool   `json:"giftReceived"`
	Notes        string `json:"notes,omitempty"`
}

// EmailKey returns the guest's email matching key: lowercased, trimmed.
// Empty when the guest has no email, in which case NameKey decides matches.
func (g Guest) EmailKey() string {
	return strings.ToLower(strings.TrimSpace(g.Email))
}

// NameKey returns the guest's composite name matching key,
// "firstname_lastname" lowercased. Many guest lists carry no email
// addresses, so name keys are always populated.
func (g Guest) NameKey() string {
	first := strings.ToLower(strings.TrimSpace(g.FirstName))
	last := strings.ToLower(strings.TrimSpace(g.LastName))
	return first + "_" + last
}

// FullName returns "First Last" for display and export.
func (g Guest) FullName() string {
	return strings.TrimSpace(g.FirstName + " " + g.LastName)
}
