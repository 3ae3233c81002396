package freshness

import (
	"testing"
	"time"

	"github.com/tariften/kitchenpilot/internal/domain"
)

var day = time.Date(2026, time.March, 10, 14, 30, 0, 0, time.Local)

func TestDeriveBands(t *testing.T) {
	tests := []struct {
		name      string
		expiresIn string
		status    domain.FreshStatus
		days      int
		hasDays   bool
		text      string
	}{
		{"overdue", "2026-03-07", domain.StatusExpired, -3, true, "3 days overdue"},
		{"overdue singular", "2026-03-09", domain.StatusExpired, -1, true, "1 day overdue"},
		{"due today", "2026-03-10", domain.StatusExpired, 0, true, "due today"},
		{"urgent lower", "2026-03-11", domain.StatusExpired, 1, true, "1 day left"},
		{"urgent upper", "2026-03-13", domain.StatusExpired, 3, true, "3 days left"},
		{"warning lower", "2026-03-14", domain.StatusWarning, 4, true, "4 days left"},
		{"warning upper", "2026-03-17", domain.StatusWarning, 7, true, "7 days left"},
		{"fresh", "2026-03-18", domain.StatusFresh, 8, true, "8 days left"},
		{"fresh far", "2026-06-01", domain.StatusFresh, 83, true, "83 days left"},
		{"no date", "", domain.StatusFresh, 0, false, "no date"},
		{"zero sentinel", "0000-00-00", domain.StatusFresh, 0, false, "no date"},
		{"garbage", "next tuesday", domain.StatusFresh, 0, false, "invalid date"},
		{"partial", "2026-03", domain.StatusFresh, 0, false, "invalid date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Derive(tt.expiresIn, day)
			if f.Status != tt.status {
				t.Errorf("status = %q, want %q", f.Status, tt.status)
			}
			if f.Text != tt.text {
				t.Errorf("text = %q, want %q", f.Text, tt.text)
			}
			if tt.hasDays {
				if f.DaysRemaining == nil {
					t.Fatal("DaysRemaining = nil, want value")
				}
				if *f.DaysRemaining != tt.days {
					t.Errorf("DaysRemaining = %d, want %d", *f.DaysRemaining, tt.days)
				}
			} else if f.DaysRemaining != nil {
				t.Errorf("DaysRemaining = %d, want nil", *f.DaysRemaining)
			}
		})
	}
}

func TestDeriveIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2026, time.March, 10, 0, 1, 0, 0, time.Local)
	night := time.Date(2026, time.March, 10, 23, 59, 0, 0, time.Local)

	a := Derive("2026-03-13", morning)
	b := Derive("2026-03-13", night)
	if *a.DaysRemaining != *b.DaysRemaining {
		t.Errorf("day count depends on clock time: %d vs %d", *a.DaysRemaining, *b.DaysRemaining)
	}
	if a.Status != b.Status {
		t.Errorf("status depends on clock time: %q vs %q", a.Status, b.Status)
	}
}

func TestDeriveIsPure(t *testing.T) {
	first := Derive("2026-03-15", day)
	for i := 0; i < 5; i++ {
		again := Derive("2026-03-15", day)
		if again.Status != first.Status || again.Text != first.Text || *again.DaysRemaining != *first.DaysRemaining {
			t.Fatalf("derive not stable: %+v vs %+v", again, first)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2026-03-10")
	if !ok {
		t.Fatal("parse failed")
	}
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Errorf("not midnight normalized: %v", got)
	}
	if got.Location() != time.Local {
		t.Errorf("location = %v, want local", got.Location())
	}

	for _, bad := range []string{"", "2026", "2026-13-01", "2026-00-10", "2026-03-32", "aa-bb-cc"} {
		if _, ok := ParseDate(bad); ok {
			t.Errorf("ParseDate(%q) accepted, want reject", bad)
		}
	}
}

func TestAddDays(t *testing.T) {
	if got := AddDays(day, 7); got != "2026-03-17" {
		t.Errorf("AddDays = %q, want 2026-03-17", got)
	}
	if got := AddDays(day, 30); got != "2026-04-09" {
		t.Errorf("AddDays = %q, want 2026-04-09", got)
	}
}
