package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Messages shown to users. Row-level messages are prefixed with "Row N: ".
const (
	MsgNameAndPhoneRequired = "Name and phone are required"
	MsgInvalidPhone         = "Invalid phone number format"
	MsgInvalidEmail         = "Invalid email format"
	MsgNoValidContacts      = "No valid contacts found in the file"
	MsgImportFailed         = "Failed to import contacts. Please try again."
)

var (
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Column keys recognised in the header row.
const (
	ColName    = "name"
	ColPhone   = "phone"
	ColEmail   = "email"
	ColGroupID = "group_id"
)

func rowError(row int, msg string) string {
	return fmt.Sprintf("Row %d: %s", row, msg)
}

// validateRow builds the candidate for data row number row. Rules are
// independent of every other row.
func validateRow(row int, raw RawRow) ImportCandidate {
	c := ImportCandidate{
		Row:   row,
		Name:  strings.TrimSpace(raw[ColName]),
		Phone: strings.TrimSpace(raw[ColPhone]),
	}

	// A missing required field suppresses the phone format check.
	if c.Name == "" || c.Phone == "" {
		c.Errors = append(c.Errors, rowError(row, MsgNameAndPhoneRequired))
	} else if !phonePattern.MatchString(c.Phone) {
		c.Errors = append(c.Errors, rowError(row, MsgInvalidPhone))
	}

	if email := strings.TrimSpace(raw[ColEmail]); email != "" {
		if !emailPattern.MatchString(email) {
			c.Errors = append(c.Errors, rowError(row, MsgInvalidEmail))
		}
		c.Email = &email
	}

	c.GroupID = parseGroupID(raw[ColGroupID])
	return c
}

// parseGroupID reads the leading integer of s ("12abc" is 12). Anything
// without one, or out of int64 range, yields nil rather than an error.
func parseGroupID(s string) *int64 {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return nil
	}

	id, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return nil
	}
	return &id
}
