package room

import "strings"

// DefaultSlug is the room used when a client names none.
const DefaultSlug = "ewc"

const maxSlugLen = 40

// SanitizeSlug lowercases a room name and strips everything outside
// [a-z0-9_-], bounded to 40 chars. Empty results fall back to DefaultSlug so
// an all-punctuation name cannot mint a hidden room.
func SanitizeSlug(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	var b strings.Builder
	for _, r := range trimmed {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
		if b.Len() == maxSlugLen {
			break
		}
	}
	if b.Len() == 0 {
		return DefaultSlug
	}
	return b.String()
}
