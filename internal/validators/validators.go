package validators

import (
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// passwordSymbols is the punctuation set accepted as a special character.
const passwordSymbols = "!\"#$%&'()*+,-./:;<=>?@[\\]^_" + "`{|}~"

// IsValidEmail checks the local@domain.tld shape with a dotted domain
// and a TLD of at least two characters.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// PasswordErrors returns every policy violation for the given password:
// minimum length 8 with at least one uppercase, lowercase, digit and
// special character. Empty result means the password is acceptable.
func PasswordErrors(password string) []string {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}

	if !hasUpper {
		errs = append(errs, "password must contain an uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "password must contain a lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain a digit")
	}
	if !hasSymbol {
		errs = append(errs, "password must contain a special character")
	}

	return errs
}
