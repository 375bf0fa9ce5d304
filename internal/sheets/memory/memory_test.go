package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"fleetprotax/internal/core"
)

func TestAppendTrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.AppendTrip(ctx, core.Trip{ID: "t1", Date: "2025-03-10"})
	if err != nil {
		t.Fatal(err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %s, want mem:1", ref)
	}
	if got := s.Trips(); len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("trips = %+v", got)
	}

	// Invalid trips are rejected like the real sheet client does.
	if _, err := s.AppendTrip(ctx, core.Trip{Date: "2025-03-10"}); err == nil {
		t.Error("expected validation error for missing id")
	}
}

func TestWriteSummaryKeepsLatest(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.WriteSummary(ctx, core.YearSummary{Year: 2025, NetTotal: decimal.NewFromInt(10)}); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteSummary(ctx, core.YearSummary{Year: 2025, NetTotal: decimal.NewFromInt(20)}); err != nil {
		t.Fatal(err)
	}

	sum, ok := s.Summary(2025)
	if !ok {
		t.Fatal("summary missing")
	}
	if !sum.NetTotal.Equal(decimal.NewFromInt(20)) {
		t.Errorf("net total = %s, want 20 (latest write wins)", sum.NetTotal)
	}
}
