package auth

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// MinPasswordLength is the shortest password Register and ChangePassword accept.
const MinPasswordLength = 8

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at == strings.LastIndexByte(email, '@') && at < len(email)-1 &&
		!strings.ContainsAny(email, " \t\r\n")
}

// displayName returns the first non-blank candidate in NFC form.
func displayName(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return norm.NFC.String(c)
		}
	}
	return ""
}
