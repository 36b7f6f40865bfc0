package subjects

import (
	"testing"
	"time"
)

func TestClampInterval(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 10},
		{9, 10},
		{10, 10},
		{300, 300},
		{3600, 3600},
		{3601, 3600},
		{-5, 10},
	}
	for _, c := range cases {
		if got := ClampInterval(c.in); got != c.want {
			t.Fatalf("ClampInterval(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestOverdue(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	subject := Subject{
		ID:                 "subject-1",
		Armed:              true,
		IntervalSeconds:    300,
		LastConfirmationAt: now.Add(-320 * time.Second),
	}
	if !subject.Overdue(now) {
		t.Fatalf("expected subject 320s past a 300s interval to be overdue")
	}

	// Inside the interval.
	subject.LastConfirmationAt = now.Add(-50 * time.Second)
	subject.IntervalSeconds = 60
	if subject.Overdue(now) {
		t.Fatalf("expected subject 50s into a 60s interval to be on time")
	}

	// Past the deadline but inside the grace window.
	subject.LastConfirmationAt = now.Add(-70 * time.Second)
	if subject.Overdue(now) {
		t.Fatalf("expected 10s past deadline to be inside the 15s grace")
	}

	// Just outside the grace window.
	subject.LastConfirmationAt = now.Add(-76 * time.Second)
	if !subject.Overdue(now) {
		t.Fatalf("expected 16s past deadline to be overdue")
	}
}

func TestOverdueFailSafe(t *testing.T) {
	now := time.Now().UTC()

	disarmed := Subject{ID: "subject-1", Armed: false, IntervalSeconds: 60, LastConfirmationAt: now.Add(-time.Hour)}
	if disarmed.Overdue(now) {
		t.Fatalf("disarmed subject must never be overdue")
	}

	missingConfirmation := Subject{ID: "subject-2", Armed: true, IntervalSeconds: 60}
	if missingConfirmation.Overdue(now) {
		t.Fatalf("missing confirmation timestamp must not count as overdue")
	}
}

func TestValidate(t *testing.T) {
	valid := Subject{ID: "subject-1", Armed: true, IntervalSeconds: 60, LastConfirmationAt: time.Now().Add(-time.Minute)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid subject, got %v", err)
	}

	if err := (Subject{IntervalSeconds: 60}).Validate(); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if err := (Subject{ID: "s", IntervalSeconds: 5}).Validate(); err == nil {
		t.Fatalf("expected error for interval below minimum")
	}
	if err := (Subject{ID: "s", IntervalSeconds: 60, Armed: true}).Validate(); err == nil {
		t.Fatalf("expected error for armed subject without confirmation time")
	}
}

func TestGuardianCapabilities(t *testing.T) {
	both := Guardian{Name: "Asha", Phone: "9876543210", PushKey: "key-1", Email: "asha@example.com"}
	if !both.CanPush() || !both.CanEmail() || !both.Reachable() {
		t.Fatalf("guardian with all credentials should support both channels")
	}

	pushOnly := Guardian{Name: "Ravi", Phone: "9876543210", PushKey: "key-2"}
	if !pushOnly.CanPush() || pushOnly.CanEmail() {
		t.Fatalf("push-only guardian misreported capabilities")
	}

	emailOnly := Guardian{Name: "Mira", Email: "mira@example.com"}
	if emailOnly.CanPush() || !emailOnly.CanEmail() {
		t.Fatalf("email-only guardian misreported capabilities")
	}

	phoneWithoutKey := Guardian{Name: "Noor", Phone: "9876543210"}
	if phoneWithoutKey.CanPush() {
		t.Fatalf("phone without push key must not count as push-capable")
	}
	if phoneWithoutKey.Reachable() {
		t.Fatalf("guardian without any credential must be unreachable")
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+91 98765 43210", "9876543210"},
		{"98765-43210", "9876543210"},
		{"9876543210", "9876543210"},
		{"0919876543210", "9876543210"},
	}
	for _, c := range cases {
		if got := NormalizePhone(c.in); got != c.want {
			t.Fatalf("NormalizePhone(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
