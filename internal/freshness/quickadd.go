package freshness

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/tariften/kitchenpilot/internal/domain"
)

// quickAddPattern matches a trailing duration hint: "sut 3 gun",
// "milk 2 weeks". The unit alternatives cover Turkish and English
// spellings since pantry entries arrive in both.
var quickAddPattern = regexp.MustCompile(`(?i)^(.+?)\s+(\d+)\s*(gün|gun|day|days|hafta|week|weeks|ay|month|months)$`)

// defaultShelfDays is assumed when a quick-add line carries no duration.
const defaultShelfDays = 7

// DefaultExpiry returns the expiry assigned to entries that carry no
// duration of their own: a week of shelf life from today. Receipt-scan
// results without a date get the same default.
func DefaultExpiry(today time.Time) string {
	return AddDays(today, defaultShelfDays)
}

// unitDays maps a matched unit token to its day multiplier.
func unitDays(unit string) int {
	switch strings.ToLower(unit) {
	case "hafta", "week", "weeks":
		return 7
	case "ay", "month", "months":
		return 30
	default:
		return 1
	}
}

// ParseQuickAddLine turns one free-text line into a pantry item. A
// trailing "<n> <unit>" sets the expiry relative to today; without one
// the item gets a week of shelf life. The returned item carries the
// given id and a capitalized, trimmed name.
func ParseQuickAddLine(line, id string, today time.Time) (domain.PantryItem, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return domain.PantryItem{}, false
	}

	name := line
	days := defaultShelfDays
	if m := quickAddPattern.FindStringSubmatch(line); m != nil {
		name = strings.TrimSpace(m[1])
		n, err := strconv.Atoi(m[2])
		if err == nil {
			days = n * unitDays(m[3])
		}
	}

	return domain.PantryItem{
		ID:        id,
		Name:      Capitalize(name),
		ExpiresIn: AddDays(today, days),
	}, true
}

// ParseQuickAdd splits a comma-separated batch into items. Order within
// the batch is preserved; callers prepend the whole slice so the newest
// entries surface first. IDs are derived from today's timestamp with a
// per-line suffix, so a caller with an injected clock gets stable ids.
func ParseQuickAdd(text string, today time.Time) []domain.PantryItem {
	base := today.UnixMilli()
	var items []domain.PantryItem
	for i, line := range strings.Split(text, ",") {
		id := fmt.Sprintf("tmp-%d-%d", base, i)
		if item, ok := ParseQuickAddLine(line, id, today); ok {
			items = append(items, item)
		}
	}
	return items
}

// Capitalize upper-cases the first rune of a name, leaving the rest
// untouched.
func Capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
