package services

import (
	"strconv"
	"strings"
	"unicode"
)

// GenerateBaseUsername derives the collision-free candidate base from a
// person's name: each part is lower-cased with all whitespace removed, and
// the non-empty parts are joined with a dot.
func GenerateBaseUsername(firstName, lastName string) (string, error) {
	first := normalizeNamePart(firstName)
	last := normalizeNamePart(lastName)

	switch {
	case first != "" && last != "":
		return first + "." + last, nil
	case first != "":
		return first, nil
	case last != "":
		return last, nil
	default:
		return "", invalid(ErrInvalidName, "cannot derive a username")
	}
}

func normalizeNamePart(part string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, part)
}

// usernameCandidate returns base for attempt 0 and base followed by the
// attempt number otherwise.
func usernameCandidate(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return base + strconv.Itoa(attempt)
}
