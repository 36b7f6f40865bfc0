package subjects

import "strings"

// Guardian is a contact who receives alerts when the subject misses a
// check-in. A guardian is reachable on a channel only when it carries
// that channel's credentials; a guardian with none is silently skipped.
type Guardian struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	PushKey string `json:"push_key,omitempty"`
	Email   string `json:"email,omitempty"`
}

// CanPush reports whether the guardian carries push-message credentials.
func (g Guardian) CanPush() bool {
	return strings.TrimSpace(g.Phone) != "" && strings.TrimSpace(g.PushKey) != ""
}

// CanEmail reports whether the guardian carries an email address.
func (g Guardian) CanEmail() bool {
	return strings.TrimSpace(g.Email) != ""
}

// Reachable reports whether any channel can deliver to this guardian.
func (g Guardian) Reachable() bool {
	return g.CanPush() || g.CanEmail()
}

// NormalizePhone strips non-digits and keeps the trailing ten digits,
// the format the push provider expects before the country prefix.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) > 10 {
		s = s[len(s)-10:]
	}
	return s
}
