// Package validation provides format and strength checks for user credentials.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest password accepted by IsStrongPassword.
const MinPasswordLength = 8

// PasswordSpecialChars is the set of characters that satisfy the special
// character requirement.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// emailPart excludes "@" and every whitespace character, including vertical
// tab, Unicode separators and the byte order mark.
const emailPart = `[^@\s\v\p{Z}\x{FEFF}]+`

var emailPattern = regexp.MustCompile(`^` + emailPart + `@` + emailPart + `\.` + emailPart + `$`)

// IsValidEmail reports whether s has the shape local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// IsStrongPassword reports whether s is at least MinPasswordLength characters
// long and contains at least one digit and one character from
// PasswordSpecialChars.
func IsStrongPassword(s string) bool {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return false
	}

	var hasDigit, hasSpecial bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			hasSpecial = true
		}
	}
	return hasDigit && hasSpecial
}
