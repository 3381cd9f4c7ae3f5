package utils

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// PasswordProblem returns a human readable reason why plain is too weak,
// or "" when it is acceptable.  bcrypt ignores bytes past 72.
func PasswordProblem(plain string) string {
	if len(plain) < MinPasswordLen {
		return "must be at least 8 characters"
	}
	if len(plain) > 72 {
		return "must be at most 72 bytes"
	}
	var letter, digit bool
	for _, r := range plain {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return "must contain a letter and a digit"
	}
	return ""
}
