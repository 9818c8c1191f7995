// Package phone canonicalises Indian phone numbers to +91XXXXXXXXXX.
package phone

import (
	"fmt"
	"regexp"
	"strings"

	"carecall/internal/apperror"
)

const countryCode = "91"

var nonDigit = regexp.MustCompile(`\D`)

// Normalize strips formatting and applies the country prefix. Accepted
// shapes: a bare 10-digit subscriber number, 11 digits with a leading
// trunk zero, or 12 digits already carrying the country code. Anything
// else fails validation.
func Normalize(raw string) (string, error) {
	digits := nonDigit.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 10:
		return "+" + countryCode + digits, nil
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return "+" + countryCode + digits[1:], nil
	case len(digits) == 12 && strings.HasPrefix(digits, countryCode):
		return "+" + digits, nil
	default:
		return "", apperror.ValidationFailed("phone", fmt.Sprintf("invalid phone number %q", raw))
	}
}
