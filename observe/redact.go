package observe

import "strings"

// Redacted replaces the value of a sensitive log field.
const Redacted = "[REDACTED]"

// RedactedFields lists field keys whose values never reach log output.
// Matching ignores case. Keys ending in one of redactedSuffixes are
// redacted too, so "jules_api_key" and "bearer_token" are covered.
//
// "key" on its own names an environment variable and is kept.
var RedactedFields = []string{
	"value",
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"key_value",
	"credential",
	"authorization",
}

var redactedSuffixes = []string{"_api_key", "_token", "_secret", "_password", "_credential"}

func isRedactedField(key string) bool {
	k := strings.ToLower(key)
	for _, f := range RedactedFields {
		if k == f {
			return true
		}
	}
	for _, s := range redactedSuffixes {
		if strings.HasSuffix(k, s) {
			return true
		}
	}
	return false
}
