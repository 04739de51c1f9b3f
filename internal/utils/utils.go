package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// GenerateID generates a unique ID with the given prefix
func GenerateID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 10

	result := make([]byte, length)
	for i := range result {
		num, _ := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		result[i] = charset[num.Int64()]
	}

	return fmt.Sprintf("%s-%s", prefix, string(result))
}

// Slugify turns a display name into a URL-safe slug
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ValidateUserID validates the user ID format
func ValidateUserID(userID string) bool {
	return strings.HasPrefix(userID, "usr-")
}

// ValidateOrganizationID validates the organization ID format
func ValidateOrganizationID(orgID string) bool {
	return strings.HasPrefix(orgID, "org-")
}

// ValidateUserTypeID validates the user type ID format
func ValidateUserTypeID(userTypeID string) bool {
	return strings.HasPrefix(userTypeID, "utp-")
}
