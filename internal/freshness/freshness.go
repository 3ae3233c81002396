// Package freshness implements expiry-date parsing and status derivation
// for pantry items. Everything here is a pure function of its inputs so
// the classification bands are trivially testable.
package freshness

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tariften/kitchenpilot/internal/domain"
)

// DateLayout is the wire format for expiry dates.
const DateLayout = "2006-01-02"

// warningWindow is the upper bound (inclusive, in days) of the warning
// band. 1..urgentWindow days is folded into "expired" on purpose: an item
// due within three days should be consumed now, and the UX treats it with
// expired severity.
const (
	urgentWindow  = 3
	warningWindow = 7
)

// Derive classifies an expiry date relative to today. today is truncated
// to its local calendar day; the expiry string is parsed as local calendar
// components only, so no timezone conversion can shift the day.
//
// Empty, absent, and the backend's "0000-00-00" sentinel all mean "no
// expiry" and derive as fresh with no day count. Unparseable input also
// derives as fresh, flagged with an "invalid date" text.
func Derive(expiresIn string, today time.Time) domain.Freshness {
	if expiresIn == "" || expiresIn == domain.ZeroDate {
		return domain.Freshness{Status: domain.StatusFresh, Text: "no date"}
	}

	expiry, ok := ParseDate(expiresIn)
	if !ok {
		return domain.Freshness{Status: domain.StatusFresh, Text: "invalid date"}
	}

	days := daysBetween(midnight(today), expiry)
	f := domain.Freshness{DaysRemaining: &days}

	switch {
	case days < 0:
		f.Status = domain.StatusExpired
		f.Text = fmt.Sprintf("%d days overdue", -days)
		if days == -1 {
			f.Text = "1 day overdue"
		}
	case days == 0:
		f.Status = domain.StatusExpired
		f.Text = "due today"
	case days <= urgentWindow:
		f.Status = domain.StatusExpired
		f.Text = remainingText(days)
	case days <= warningWindow:
		f.Status = domain.StatusWarning
		f.Text = remainingText(days)
	default:
		f.Status = domain.StatusFresh
		f.Text = remainingText(days)
	}
	return f
}

func remainingText(days int) string {
	if days == 1 {
		return "1 day left"
	}
	return fmt.Sprintf("%d days left", days)
}

// ParseDate parses a YYYY-MM-DD string into a local-midnight time.
// Returns false for anything that isn't three numeric dash-separated
// components.
func ParseDate(s string) (time.Time, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), true
}

// FormatDate renders a time as YYYY-MM-DD using local calendar components.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays returns today+days formatted as a wire date. today is midnight
// normalized first so DST transitions can't shift the calendar day.
func AddDays(today time.Time, days int) string {
	return FormatDate(midnight(today).AddDate(0, 0, days))
}

// midnight truncates a time to its local calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ceiling partial days the
// way the source computes ceil((expiry-today)/86400000). Both arguments
// must already be midnight normalized.
func daysBetween(a, b time.Time) int {
	diff := b.Sub(a)
	days := int(diff / (24 * time.Hour))
	if diff%(24*time.Hour) > 0 {
		days++
	}
	return days
}
