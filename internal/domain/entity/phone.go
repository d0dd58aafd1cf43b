package entity

import "strings"

// NormalizePhone strips formatting characters so the same number always
// maps to the same account: spaces, dashes, dots and parentheses are
// removed, a single leading + is kept.
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))

	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}

	return b.String()
}
