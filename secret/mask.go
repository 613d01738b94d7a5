package secret

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultVisibleChars is the number of leading characters Mask reveals.
	DefaultVisibleChars = 10

	// MaskLiteral replaces values too short to reveal anything.
	MaskLiteral = "***"

	// KeyFormatPrefix is the prefix every well-formed key starts with.
	KeyFormatPrefix = "AQ."

	// MinKeyLength is the minimum length of a well-formed key.
	MinKeyLength = 30

	fingerprintLen = 12
)

// Mask reveals the first DefaultVisibleChars characters of value.
func Mask(value string) string {
	return MaskN(value, DefaultVisibleChars)
}

// MaskN returns MaskLiteral when value is empty or no longer than visible
// characters; otherwise the first visible characters followed by "...***".
// Lengths are counted in runes. A negative visible is treated as zero.
func MaskN(value string, visible int) string {
	if visible < 0 {
		visible = 0
	}
	if value == "" || utf8.RuneCountInString(value) <= visible {
		return MaskLiteral
	}
	runes := []rune(value)
	return string(runes[:visible]) + "..." + MaskLiteral
}

// ValidateFormat reports whether value looks like a well-formed key:
// non-empty, starting with KeyFormatPrefix and at least MinKeyLength long.
func ValidateFormat(value string) bool {
	if value == "" {
		return false
	}
	if !strings.HasPrefix(value, KeyFormatPrefix) {
		return false
	}
	return utf8.RuneCountInString(value) >= MinKeyLength
}

// Fingerprint returns a short SHA-256 hex digest of value, suitable for
// correlating credentials in logs. Empty values have no fingerprint.
func Fingerprint(value string) string {
	if value == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// ConstantTimeCompare performs constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
