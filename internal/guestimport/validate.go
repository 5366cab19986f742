package guestimport

// validate.go checks mapped rows before conversion. Rules are deliberately
// light: names are required, email and phone get soft shape checks. Errors
// accumulate per row with 1-based row numbers and any single failure blocks
// the whole file.

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

// ValidateImport applies field-level rules to every data row. IsValid is
// true iff zero errors across all rows; the caller must block the import
// entirely on a false result.
func ValidateImport(preview *ImportPreview, mappings []ColumnMapping) ImportValidationResult {
	result := ImportValidationResult{IsValid: true}

	firstName := mappingFor(mappings, FieldFirstName)
	lastName := mappingFor(mappings, FieldLastName)
	email := mappingFor(mappings, FieldEmail)
	phone := mappingFor(mappings, FieldPhone)

	for i, row := range preview.Rows {
		rowNum := i + 1

		if cellFor(row, firstName) == "" {
			result.addError(rowNum, "first name is required")
		}
		if cellFor(row, lastName) == "" {
			result.addError(rowNum, "last name is required")
		}

		if v := cellFor(row, email); v != "" && !emailShape.MatchString(v) {
			result.addError(rowNum, fmt.Sprintf("invalid email %q", v))
		}

		if v := cellFor(row, phone); v != "" {
			if n := countDigits(v); n < minPhoneDigits || n > maxPhoneDigits {
				result.addError(rowNum, fmt.Sprintf("phone %q must contain %d-%d digits", v, minPhoneDigits, maxPhoneDigits))
			}
		}
	}

	return result
}

func (r *ImportValidationResult) addError(row int, msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, RowError{Row: row, Message: msg})
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// Summary renders validation errors as one human-readable message.
func (r ImportValidationResult) Summary() string {
	if r.IsValid {
		return ""
	}
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("row %d: %s", e.Row, e.Message))
	}
	return strings.Join(parts, "; ")
}
