package repository

import (
	"strings"

	"github.com/ttacon/libphonenumber"
)

// NormalizePhone canonicalizes a phone number to E.164 when it parses as
// one. Chat transports may hand us usernames instead of phone numbers; those
// fall back to the trimmed raw value so lookup and storage still agree.
func NormalizePhone(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	num, err := libphonenumber.Parse(trimmed, "")
	if err != nil {
		return trimmed
	}
	if !libphonenumber.IsValidNumber(num) {
		return trimmed
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}
