package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(t *testing.T, day, clock string) time.Time {
	t.Helper()
	parsed, err := time.Parse(DateLayout+" "+TimeLayout, day+" "+clock)
	if err != nil {
		t.Fatalf("parse %s %s: %v", day, clock, err)
	}
	return parsed
}

func TestMealAllowanceTiers(t *testing.T) {
	rates := DefaultRateTable()
	cases := []struct {
		name     string
		start    string
		end      string
		endDay   string
		explicit bool
		want     string
	}{
		{"below 8h", "08:00", "15:59", "2025-03-10", true, "0"},
		{"just under 8h", "08:00", "15:59", "2025-03-10", true, "0"},
		{"exactly 8h", "08:00", "16:00", "2025-03-10", true, "14"},
		{"between tiers", "06:00", "22:00", "2025-03-10", true, "14"},
		{"just under 24h", "08:00", "07:59", "2025-03-11", true, "14"},
		{"exactly 24h", "08:00", "08:00", "2025-03-11", true, "28"},
		{"multi day", "08:00", "18:00", "2025-03-12", true, "28"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := date(t, "2025-03-10", tc.start)
			end := date(t, tc.endDay, tc.end)
			got := MealAllowanceForSpan(rates, start, end, tc.explicit)
			if !got.Rate.Equal(decimal.RequireFromString(tc.want)) {
				t.Errorf("rate = %s, want %s (duration %v)", got.Rate, tc.want, got.Duration)
			}
		})
	}
}

func TestMealAllowanceTierBoundaries(t *testing.T) {
	rates := DefaultRateTable()
	start := date(t, "2025-03-10", "00:00")

	under8 := start.Add(time.Duration(7.999 * float64(time.Hour)))
	if got := MealAllowanceForSpan(rates, start, under8, true); !got.Rate.IsZero() {
		t.Errorf("7.999h: rate = %s, want 0", got.Rate)
	}
	at8 := start.Add(8 * time.Hour)
	if got := MealAllowanceForSpan(rates, start, at8, true); !got.Rate.Equal(rates.MealRate8h) {
		t.Errorf("8h: rate = %s, want %s", got.Rate, rates.MealRate8h)
	}
	under24 := start.Add(time.Duration(23.999 * float64(time.Hour)))
	if got := MealAllowanceForSpan(rates, start, under24, true); !got.Rate.Equal(rates.MealRate8h) {
		t.Errorf("23.999h: rate = %s, want %s", got.Rate, rates.MealRate8h)
	}
	at24 := start.Add(24 * time.Hour)
	if got := MealAllowanceForSpan(rates, start, at24, true); !got.Rate.Equal(rates.MealRate24h) {
		t.Errorf("24h: rate = %s, want %s", got.Rate, rates.MealRate24h)
	}
}

func TestMealAllowanceOvernightWrap(t *testing.T) {
	rates := DefaultRateTable()
	start := date(t, "2025-03-10", "22:00")
	end := date(t, "2025-03-10", "06:00")

	// Same-day entry ending before it starts wraps past midnight once.
	got := MealAllowanceForSpan(rates, start, end, false)
	if got.Duration != 8 {
		t.Errorf("duration = %v, want 8", got.Duration)
	}
	if !got.Rate.Equal(rates.MealRate8h) {
		t.Errorf("rate = %s, want %s", got.Rate, rates.MealRate8h)
	}

	// An explicit end date that is out of order must not wrap.
	got = MealAllowanceForSpan(rates, start, end, true)
	if got.Duration >= 0 {
		t.Errorf("duration = %v, want negative", got.Duration)
	}
	if !got.Rate.IsZero() {
		t.Errorf("rate = %s, want 0", got.Rate)
	}
}

func TestMealAllowanceFromClock(t *testing.T) {
	rates := DefaultRateTable()

	got := MealAllowanceFromClock(rates, "2025-03-10", "08:00", "", "18:00")
	if !got.Rate.Equal(rates.MealRate8h) {
		t.Errorf("rate = %s, want %s", got.Rate, rates.MealRate8h)
	}

	// Corrupt clock fields yield a zero result, not a panic or an error.
	got = MealAllowanceFromClock(rates, "2025-03-10", "not-a-time", "", "18:00")
	if got.Duration != 0 || !got.Rate.IsZero() {
		t.Errorf("corrupt input: got %+v, want zero", got)
	}
}

func TestMealDeductible(t *testing.T) {
	cases := []struct {
		rate     string
		employer string
		want     string
	}{
		{"28", "0", "28"},
		{"28", "10", "18"},
		{"14", "14", "0"},
		{"14", "20", "0"}, // never negative
		{"14", "1.005", "13"},
	}
	for _, tc := range cases {
		got := MealDeductible(decimal.RequireFromString(tc.rate), decimal.RequireFromString(tc.employer))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("MealDeductible(%s, %s) = %s, want %s", tc.rate, tc.employer, got, tc.want)
		}
	}
}

func TestTransportAllowance(t *testing.T) {
	got := TransportAllowance(decimal.RequireFromString("12.5"), decimal.RequireFromString("0.30"))
	if !got.Equal(decimal.RequireFromString("3.75")) {
		t.Errorf("got %s, want 3.75", got)
	}
	got = TransportAllowance(decimal.RequireFromString("3.33"), decimal.RequireFromString("0.05"))
	if !got.Equal(decimal.RequireFromString("0.17")) {
		t.Errorf("got %s, want 0.17", got)
	}
}

func TestEffectiveMileageRate(t *testing.T) {
	base := decimal.RequireFromString("0.30")
	if got := EffectiveMileageRate(base, decimal.RequireFromString("0.10")); !got.Equal(decimal.RequireFromString("0.20")) {
		t.Errorf("got %s, want 0.20", got)
	}
	if got := EffectiveMileageRate(base, decimal.RequireFromString("0.50")); !got.IsZero() {
		t.Errorf("got %s, want 0", got)
	}
}

func TestRecomputeTransportSum(t *testing.T) {
	trip := Trip{
		TransportRecords: []TransportRecord{
			{Allowance: decimal.RequireFromString("3.75")},
			{Allowance: decimal.RequireFromString("12.00")},
			{Allowance: decimal.RequireFromString("0.17")},
		},
	}
	trip.RecomputeTransportSum()
	if !trip.SumTransportAllowances.Equal(decimal.RequireFromString("15.92")) {
		t.Errorf("sum = %s, want 15.92", trip.SumTransportAllowances)
	}

	trip.TransportRecords = trip.TransportRecords[:1]
	trip.RecomputeTransportSum()
	if !trip.SumTransportAllowances.Equal(decimal.RequireFromString("3.75")) {
		t.Errorf("sum = %s, want 3.75", trip.SumTransportAllowances)
	}
}
