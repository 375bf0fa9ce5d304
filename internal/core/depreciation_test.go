package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestEquipmentDeductibleStraightLine(t *testing.T) {
	limit := decimal.RequireFromString("952")
	laptop := EquipmentEntry{
		ID:    "e1",
		Date:  "2024-01-15",
		Name:  "Laptop",
		Price: decimal.RequireFromString("3600"),
	}

	// January purchase: three full years, nothing in the terminal year.
	cases := []struct {
		year int
		want string
	}{
		{2023, "0"},
		{2024, "1200"},
		{2025, "1200"},
		{2026, "1200"},
		{2027, "0"},
		{2028, "0"},
	}
	for _, tc := range cases {
		got := EquipmentDeductible(laptop, tc.year, limit)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("year %d: got %s, want %s", tc.year, got, tc.want)
		}
	}
}

func TestEquipmentDeductibleMidYearPurchase(t *testing.T) {
	limit := decimal.RequireFromString("952")
	camera := EquipmentEntry{
		ID:    "e2",
		Date:  "2024-07-01", // July, 0-based month 6
		Name:  "Camera",
		Price: decimal.RequireFromString("3600"),
	}

	cases := []struct {
		year int
		want string
	}{
		{2024, "600"},  // 6 months
		{2025, "1200"}, // full year
		{2026, "1200"}, // full year
		{2027, "600"},  // remaining 6 months
		{2028, "0"},
	}
	for _, tc := range cases {
		got := EquipmentDeductible(camera, tc.year, limit)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("year %d: got %s, want %s", tc.year, got, tc.want)
		}
	}
}

func TestEquipmentDeductibleMinorAsset(t *testing.T) {
	limit := decimal.RequireFromString("952")

	// At the limit exactly: full write-off in the purchase year.
	monitor := EquipmentEntry{ID: "e3", Date: "2024-06-10", Name: "Monitor", Price: decimal.RequireFromString("952")}
	if got := EquipmentDeductible(monitor, 2024, limit); !got.Equal(monitor.Price) {
		t.Errorf("purchase year: got %s, want %s", got, monitor.Price)
	}
	if got := EquipmentDeductible(monitor, 2025, limit); !got.IsZero() {
		t.Errorf("year after: got %s, want 0", got)
	}

	// One cent over the limit: depreciated instead.
	over := EquipmentEntry{ID: "e4", Date: "2024-06-10", Name: "Desk", Price: decimal.RequireFromString("952.01")}
	if got := EquipmentDeductible(over, 2024, limit); got.Equal(over.Price) {
		t.Error("price above limit must not be written off at once")
	}
}

func TestEquipmentDeductibleBadDate(t *testing.T) {
	limit := decimal.RequireFromString("952")
	e := EquipmentEntry{ID: "e5", Date: "not-a-date", Name: "X", Price: decimal.RequireFromString("100")}
	if got := EquipmentDeductible(e, 2024, limit); !got.IsZero() {
		t.Errorf("got %s, want 0", got)
	}
}

func TestDepreciationYears(t *testing.T) {
	limit := decimal.RequireFromString("952")

	january := EquipmentEntry{ID: "e1", Date: "2024-01-15", Name: "Laptop", Price: decimal.RequireFromString("3600")}
	got := DepreciationYears(january, limit)
	want := []int{2024, 2025, 2026}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	july := EquipmentEntry{ID: "e2", Date: "2024-07-01", Name: "Camera", Price: decimal.RequireFromString("3600")}
	got = DepreciationYears(july, limit)
	want = []int{2024, 2025, 2026, 2027}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	minor := EquipmentEntry{ID: "e3", Date: "2024-06-10", Name: "Monitor", Price: decimal.RequireFromString("500")}
	got = DepreciationYears(minor, limit)
	if len(got) != 1 || got[0] != 2024 {
		t.Fatalf("got %v, want [2024]", got)
	}
}
