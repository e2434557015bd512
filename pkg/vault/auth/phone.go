package auth

import "strings"

// NormalizePhone reduces a phone number to digits and prefixes the default
// country code when the number is in local form. Returns ErrInvalidPhone
// for anything that is not a valid mobile number.
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10 && validMobilePrefix(digits):
		return "91" + digits, nil
	case len(digits) == 12 && strings.HasPrefix(digits, "91") && validMobilePrefix(digits[2:]):
		return digits, nil
	default:
		return "", ErrInvalidPhone
	}
}

func validMobilePrefix(digits string) bool {
	return digits[0] >= '6' && digits[0] <= '9'
}
