package domain

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// NormalizePhone trims the input and requires exactly ten digits, the form
// used on orders and therefore the key of a player's tickets.
func NormalizePhone(raw string) (string, error) {
	phone := strings.TrimSpace(raw)
	if phone == "" {
		return "", NewValidationError("phone", "is required")
	}
	if !phonePattern.MatchString(phone) {
		return "", NewValidationError("phone", "must be exactly 10 digits")
	}
	return phone, nil
}
