package freshness

import (
	"fmt"
	"testing"
	"time"
)

func TestParseQuickAddLine(t *testing.T) {
	today := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)

	tests := []struct {
		name   string
		line   string
		want   string
		expiry string
	}{
		{"bare name defaults to a week", "milk", "Milk", "2026-03-17"},
		{"days english", "milk 3 days", "Milk", "2026-03-13"},
		{"day singular", "yogurt 1 day", "Yogurt", "2026-03-11"},
		{"days turkish", "süt 3 gün", "Süt", "2026-03-13"},
		{"days turkish ascii", "sut 3 gun", "Sut", "2026-03-13"},
		{"weeks english", "cheese 2 weeks", "Cheese", "2026-03-24"},
		{"week turkish", "peynir 1 hafta", "Peynir", "2026-03-17"},
		{"months english", "rice 2 months", "Rice", "2026-05-09"},
		{"month turkish", "pirinç 1 ay", "Pirinç", "2026-04-09"},
		{"multiword name", "tomato paste 5 days", "Tomato paste", "2026-03-15"},
		{"padded", "  eggs 4 days  ", "Eggs", "2026-03-14"},
		{"number without unit stays in name", "eggs 12", "Eggs 12", "2026-03-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, ok := ParseQuickAddLine(tt.line, "id-1", today)
			if !ok {
				t.Fatal("line rejected")
			}
			if item.Name != tt.want {
				t.Errorf("name = %q, want %q", item.Name, tt.want)
			}
			if item.ExpiresIn != tt.expiry {
				t.Errorf("expiry = %q, want %q", item.ExpiresIn, tt.expiry)
			}
			if item.ID != "id-1" {
				t.Errorf("id = %q, want id-1", item.ID)
			}
		})
	}

	if _, ok := ParseQuickAddLine("   ", "id", today); ok {
		t.Error("blank line accepted, want reject")
	}
}

func TestParseQuickAddBatch(t *testing.T) {
	today := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)

	items := ParseQuickAdd("milk 3 days, eggs, , cheese 1 week", today)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Name != "Milk" || items[1].Name != "Eggs" || items[2].Name != "Cheese" {
		t.Errorf("order not preserved: %q %q %q", items[0].Name, items[1].Name, items[2].Name)
	}
	if items[1].ExpiresIn != "2026-03-17" {
		t.Errorf("default expiry = %q, want 2026-03-17", items[1].ExpiresIn)
	}

	seen := map[string]bool{}
	for _, it := range items {
		if it.ID == "" {
			t.Error("empty id")
		}
		if seen[it.ID] {
			t.Errorf("duplicate id %q", it.ID)
		}
		seen[it.ID] = true
	}
}

func TestParseQuickAddIDsFollowClock(t *testing.T) {
	today := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.Local)

	// IDs come from the caller's clock, not the wall clock, so two runs
	// with the same today produce the same ids. The blank segment keeps
	// its index, which is why cheese is -3.
	base := today.UnixMilli()
	want := []string{
		fmt.Sprintf("tmp-%d-0", base),
		fmt.Sprintf("tmp-%d-1", base),
		fmt.Sprintf("tmp-%d-3", base),
	}

	items := ParseQuickAdd("milk 3 days, eggs, , cheese 1 week", today)
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, it := range items {
		if it.ID != want[i] {
			t.Errorf("items[%d].ID = %q, want %q", i, it.ID, want[i])
		}
	}
}
