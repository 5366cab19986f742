package guestimport

// mapper.go infers column mappings from arbitrary source-file headers onto
// the fixed target field set. Matching is heuristic and best-effort: it
// never fails, it only produces possibly-imperfect mappings that row
// validation catches when a required field is left unmapped.
//
// Scoring ladder, highest wins:
//
//	exact match > case-insensitive match > normalized match > alias match
//
// where "normalized" lowercases and strips spaces, underscores, and
// hyphens, so "First Name", "first_name", and "firstName" all converge.
// Aliases rank lowest: "RSVP Status" beats "Status" for rsvpStatus.

import "strings"

const (
	scoreExact      = 4
	scoreFold       = 3
	scoreNormalized = 2
	scoreAlias      = 1
)

// fieldAliases maps each target field to alternate header spellings seen in
// the wild. Keys here are compared against normalized headers, so entries
// are lowercase with no separators.
var fieldAliases = map[string][]string{
	FieldFirstName:              {"first", "givenname", "fname"},
	FieldLastName:               {"last", "surname", "familyname", "lname"},
	FieldEmail:                  {"emailaddress", "mail"},
	FieldPhone:                  {"phonenumber", "mobile", "cell", "telephone"},
	FieldRSVPStatus:             {"rsvp", "status", "response", "attendance"},
	FieldPlusOneAllowed:         {"plusone", "allowplusone"},
	FieldPlusOneName:            {"guestofname", "plusonefullname"},
	FieldPlusOneAttending:       {"plusonecoming"},
	FieldAttendingCeremony:      {"ceremony"},
	FieldAttendingReception:     {"reception"},
	FieldDietaryRestrictions:    {"dietary", "diet", "dietaryneeds", "foodrestrictions"},
	FieldAccessibilityNeeds:     {"accessibility", "specialneeds"},
	FieldTableAssignment:        {"table", "tablenumber", "tableno"},
	FieldSeatNumber:             {"seat", "seatno"},
	FieldPreferredContactMethod: {"contactmethod", "preferredcontact"},
	FieldAddressLine1:           {"address", "address1", "street", "streetaddress"},
	FieldAddressLine2:           {"address2", "apt", "unit"},
	FieldCity:                   {"town"},
	FieldState:                  {"province", "region"},
	FieldZipCode:                {"zip", "postalcode", "postcode"},
	FieldCountry:                {"nation"},
	FieldInvitationNumber:       {"invitation", "invitenumber", "inviteno"},
	FieldIsWeddingParty:         {"weddingparty", "bridalparty"},
	FieldWeddingPartyRole:       {"role", "partyrole"},
	FieldRelationshipToCouple:   {"relationship", "relation"},
	FieldInvitedBy:              {"side", "invitedfrom", "whoseguest"},
	FieldRSVPDate:               {"responsedate", "dateresponded"},
	FieldMealOption:             {"meal", "mealchoice", "entree", "menu"},
	FieldGiftReceived:           {"gift", "giftgiven"},
	FieldNotes:                  {"note", "comments", "remarks"},
	FieldHairDone:               {"hair"},
	FieldMakeupDone:             {"makeup"},
	FieldPreparationNotes:       {"prepnotes", "preparation"},
}

// InferMappings produces one ColumnMapping per target field, scanning the
// supplied headers for the best heuristic match. Target fields with no
// plausible header come back as Unmapped.
func InferMappings(headers []string) []ColumnMapping {
	mappings := make([]ColumnMapping, 0, len(TargetFields))
	for _, field := range TargetFields {
		mappings = append(mappings, bestMapping(field, headers))
	}
	return mappings
}

func bestMapping(field string, headers []string) ColumnMapping {
	best := ColumnMapping{TargetField: field, SourceIndex: Unmapped}
	bestScore := 0

	for i, header := range headers {
		score := matchScore(field, header)
		if score > bestScore {
			best.SourceHeader = header
			best.SourceIndex = i
			bestScore = score
		}
	}
	return best
}

// matchScore rates how well a source header fits a target field. Zero means
// no match.
func matchScore(field, header string) int {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if header == field {
		return scoreExact
	}
	if strings.EqualFold(header, field) {
		return scoreFold
	}

	normalized := normalizeHeader(header)
	if normalized == normalizeHeader(field) {
		return scoreNormalized
	}
	for _, alias := range fieldAliases[field] {
		if normalized == alias {
			return scoreAlias
		}
	}
	return 0
}

// normalizeHeader lowercases and strips separator characters so spelling
// variants collapse to one form.
func normalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '_', '-', '.', '#':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// mappingFor returns the mapping for a target field, or an unmapped one.
func mappingFor(mappings []ColumnMapping, field string) ColumnMapping {
	for _, m := range mappings {
		if m.TargetField == field {
			return m
		}
	}
	return ColumnMapping{TargetField: field, SourceIndex: Unmapped}
}

// cellFor extracts the trimmed, cleaned cell a mapping points at, or ""
// when the field is unmapped or the row is short.
func cellFor(row []string, m ColumnMapping) string {
	if !m.IsMapped() || m.SourceIndex >= len(row) {
		return ""
	}
	return cleanCell(row[m.SourceIndex])
}
