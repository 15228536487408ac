package util

import (
	"strings"

	"github.com/nyaruka/phonenumbers"

	"wanotif/internal/domain"
)

const countryCodeBR = "55"

// NormalizePhone keeps digits only and prefixes the Brazilian country code
// onto bare 10/11-digit national numbers. Other lengths pass through
// unprefixed; callers decide how strict to be about them.
func NormalizePhone(raw string) (domain.CanonicalPhone, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", false
	}
	if strings.HasPrefix(digits, countryCodeBR) {
		return domain.CanonicalPhone(digits), true
	}
	if len(digits) == 10 || len(digits) == 11 {
		return domain.CanonicalPhone(countryCodeBR + digits), true
	}
	return domain.CanonicalPhone(digits), true
}

// IsCanonical reports whether p carries the country code.
func IsCanonical(p domain.CanonicalPhone) bool {
	return strings.HasPrefix(string(p), countryCodeBR)
}

// PhonePlausible is a diagnostic check only; it never changes what gets sent.
func PhonePlausible(p domain.CanonicalPhone) bool {
	if p == "" {
		return false
	}
	num, err := phonenumbers.Parse("+"+string(p), "")
	if err != nil {
		return false
	}
	return phonenumbers.IsPossibleNumber(num)
}

// MaskPhone hides all but the last four digits for logs.
func MaskPhone(p domain.CanonicalPhone) string {
	s := string(p)
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
