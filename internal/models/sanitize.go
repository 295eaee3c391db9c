package models

import "strings"

const (
	maxIDLen    = 80
	maxNameLen  = 32
	maxPhoneLen = 15
	maxNoteLen  = 120
	minPhoneLen = 7
)

// DefaultName is used when a client supplies no display name.
const DefaultName = "Member"

// SanitizeID trims and bounds an opaque client-supplied identifier.
func SanitizeID(id string) string {
	return truncate(strings.TrimSpace(id), maxIDLen)
}

// SanitizeName trims and bounds a display name, falling back to DefaultName.
func SanitizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return DefaultName
	}
	return truncate(trimmed, maxNameLen)
}

// SanitizePhone reduces a phone number to its digits, bounded in length.
func SanitizePhone(phone string) string {
	return truncate(DigitsOnly(phone), maxPhoneLen)
}

// SanitizeNote trims and bounds a free-text note.
func SanitizeNote(note string) string {
	return truncate(strings.TrimSpace(note), maxNoteLen)
}

// DigitsOnly strips every non-digit rune.
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether a sanitized phone has enough digits to be dialable.
func ValidPhone(phoneDigits string) bool {
	return len(phoneDigits) >= minPhoneLen
}

// ValidLatLng reports whether the pair is a usable WGS84 coordinate.
func ValidLatLng(lat, lng float64) bool {
	if lat != lat || lng != lng { // NaN
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
