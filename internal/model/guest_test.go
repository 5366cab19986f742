package model

import "testing"

// ============================================================================
// Matching Key Tests
// ============================================================================

func TestEmailKey(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"lowercased", "Jane.Smith@Example.COM", "jane.smith@example.com"},
		{"trimmed", "  jane@example.com  ", "jane@example.com"},
		{"empty stays empty", "", ""},
		{"whitespace only is empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Guest{Email: tt.email}
			if got := g.EmailKey(); got != tt.want {
				t.Errorf("EmailKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNameKey(t *testing.T) {
	a := Guest{FirstName: "Jane", LastName: "Smith"}
	b := Guest{FirstName: "  JANE ", LastName: "smith"}

	if a.NameKey() != "jane_smith" {
		t.Errorf("NameKey() = %q, want jane_smith", a.NameKey())
	}
	if a.NameKey() != b.NameKey() {
		t.Errorf("case/whitespace variants should share a key: %q vs %q", a.NameKey(), b.NameKey())
	}
}

func TestFullName(t *testing.T) {
	g := Guest{FirstName: "Jane", LastName: "Smith"}
	if g.FullName() != "Jane Smith" {
		t.Errorf("FullName() = %q", g.FullName())
	}
	if (Guest{FirstName: "Cher"}).FullName() != "Cher" {
		t.Error("single-name guest should not carry trailing space")
	}
}

// ============================================================================
// Enum Parsing Tests
// ============================================================================

func TestParseRSVPStatus(t *testing.T) {
	tests := []struct {
		input string
		want  RSVPStatus
	}{
		{"attending", RSVPAttending},
		{"Confirmed", RSVPAttending},
		{"YES", RSVPAttending},
		{"accepted", RSVPAttending},
		{"declined", RSVPDeclined},
		{"regrets", RSVPDeclined},
		{"No", RSVPDeclined},
		{"maybe", RSVPMaybe},
		{"Tentative", RSVPMaybe},
		{"invited", RSVPInvited},
		{"pending", RSVPPending},
		{"  Pending  ", RSVPPending},
		{"", RSVPPending},
		{"gibberish", RSVPPending},
	}

	for _, tt := range tests {
		if got := ParseRSVPStatus(tt.input); got != tt.want {
			t.Errorf("ParseRSVPStatus(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestRSVPStatusDisplayName(t *testing.T) {
	if RSVPAttending.DisplayName() != "Confirmed" {
		t.Errorf("DisplayName() = %q, want Confirmed", RSVPAttending.DisplayName())
	}
	if RSVPStatus("weird").DisplayName() != "weird" {
		t.Error("unknown status should display its raw value")
	}
}

func TestParseInvitedBy(t *testing.T) {
	tests := []struct {
		input string
		want  InvitedBy // "" means nil expected
	}{
		{"partner1", InvitedByPartner1},
		{"Partner 1", InvitedByPartner1},
		{"bride", InvitedByPartner1},
		{"partner2", InvitedByPartner2},
		{"GROOM", InvitedByPartner2},
		{"both", InvitedByBoth},
		{"cousin", ""},
		{"", ""},
	}

	for _, tt := range tests {
		got := ParseInvitedBy(tt.input)
		if tt.want == "" {
			if got != nil {
				t.Errorf("ParseInvitedBy(%q) = %v, want nil", tt.input, *got)
			}
			continue
		}
		if got == nil || *got != tt.want {
			t.Errorf("ParseInvitedBy(%q) = %v, want %q", tt.input, got, tt.want)
		}
	}
}
