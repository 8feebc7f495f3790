package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the minimum number of characters in a console password.
const MinPasswordLength = 8

// CodeLength is the number of digits in an email verification code.
const CodeLength = 6

var emailPattern = regexp.MustCompile(`^[\w.!#$%&'*+\-/=?^{|}~]+@([\w-]+\.)+[\w-]{2,}$`)

// ValidEmail reports whether s has the basic shape of an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPassword reports whether s contains at least one ASCII letter, at least
// one digit and at least MinPasswordLength characters.
func ValidPassword(s string) bool {
	if utf8.RuneCountInString(s) < MinPasswordLength {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return letter && digit
}

// ValidCode reports whether s, ignoring surrounding whitespace, is exactly
// CodeLength ASCII digits.
func ValidCode(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
