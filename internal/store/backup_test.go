package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"fleetprotax/internal/backup"
	"fleetprotax/internal/core"
	"fleetprotax/internal/migration"
)

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t, newFakeKV())

	trip, err := src.AddTrip(ctx, core.Trip{
		Date:          "2025-03-10",
		DepartureTime: "08:00",
		ReturnTime:    "18:00",
		TransportRecords: []core.TransportRecord{
			{Date: "2025-03-10", TotalKm: d("10"), VehicleType: core.VehicleCar},
		},
	}, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := src.AddEquipment(ctx, core.EquipmentEntry{Date: "2025-01-15", Name: "Laptop", Price: d("3600")}); err != nil {
		t.Fatal(err)
	}
	if _, err := src.UpsertMonthlyEmployerExpense(ctx, core.MonthlyEmployerExpense{Year: 2025, Month: 3, Amount: d("100")}); err != nil {
		t.Fatal(err)
	}

	raw, name, err := src.ExportArchive()
	if err != nil {
		t.Fatal(err)
	}
	if name == "" {
		t.Error("empty archive name")
	}

	dst, _ := newTestStore(t, newFakeKV())
	if err := dst.ImportBackup(ctx, raw); err != nil {
		t.Fatal(err)
	}

	got, ok := dst.TripByID(trip.ID)
	if !ok {
		t.Fatal("trip missing after import")
	}
	if !got.MealAllowance.Equal(trip.MealAllowance) {
		t.Errorf("meal allowance = %s, want %s", got.MealAllowance, trip.MealAllowance)
	}
	if !got.SumTransportAllowances.Equal(trip.SumTransportAllowances) {
		t.Errorf("sum = %s, want %s", got.SumTransportAllowances, trip.SumTransportAllowances)
	}
	if len(dst.Equipment()) != 1 {
		t.Errorf("equipment = %d, want 1", len(dst.Equipment()))
	}
	if entries := dst.MonthlyForYear(2025); len(entries) != 1 || !entries[0].Amount.Equal(d("100")) {
		t.Errorf("monthly = %+v", entries)
	}
	if dst.DataVersion() != migration.CurrentVersion {
		t.Errorf("data version = %s, want %s", dst.DataVersion(), migration.CurrentVersion)
	}
}

// A current-version export must not run the distance migration on import:
// the records would double on every restore otherwise.
func TestImportCurrentVersionSkipsMigration(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t, newFakeKV())

	trip, err := src.AddTrip(ctx, core.Trip{
		Date: "2025-03-10",
		TransportRecords: []core.TransportRecord{
			{Date: "2025-03-10", Distance: d("10"), TotalKm: d("10"), VehicleType: core.VehicleCar},
		},
	}, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}

	raw, _, err := src.ExportArchive()
	if err != nil {
		t.Fatal(err)
	}

	dst, _ := newTestStore(t, newFakeKV())
	if err := dst.ImportBackup(ctx, raw); err != nil {
		t.Fatal(err)
	}
	got, _ := dst.TripByID(trip.ID)
	if !got.TransportRecords[0].Distance.Equal(d("10")) {
		t.Errorf("distance = %s, want 10 unchanged", got.TransportRecords[0].Distance)
	}
}

// A document that claims to be a versioned container is held to the
// structural validation; a corrupted one is refused before any state
// changes.
func TestImportCorruptedContainerRefused(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t, newFakeKV())
	if _, err := src.AddTrip(ctx, core.Trip{Date: "2025-03-10"}, decimal.Zero); err != nil {
		t.Fatal(err)
	}
	container := src.ExportBackup()
	container.Backup.Version = "9.9.9"
	raw, err := json.Marshal(container)
	if err != nil {
		t.Fatal(err)
	}

	dst, _ := newTestStore(t, newFakeKV())
	if _, err := dst.AddTrip(ctx, core.Trip{Date: "2024-01-01"}, decimal.Zero); err != nil {
		t.Fatal(err)
	}

	verr := new(backup.ValidationError)
	if err := dst.ImportBackup(ctx, raw); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *backup.ValidationError", err)
	}
	if len(dst.Trips()) != 1 || dst.Trips()[0].Date != "2024-01-01" {
		t.Errorf("refused import changed state: %+v", dst.Trips())
	}
}

// A v1 export carries one-way distances; the import must redefine them.
func TestImportLegacyExportMigrates(t *testing.T) {
	ctx := context.Background()

	legacy := []byte(`{
		"version": "1.0.0",
		"trips": [{
			"id": "t1",
			"date": "2024-05-01",
			"commute": {"car": {"active": true, "distance": 5}}
		}]
	}`)

	dst, _ := newTestStore(t, newFakeKV())
	if err := dst.ImportBackup(ctx, legacy); err != nil {
		t.Fatal(err)
	}

	got, ok := dst.TripByID("t1")
	if !ok {
		t.Fatal("trip missing after import")
	}
	if len(got.TransportRecords) != 2 {
		t.Fatalf("records = %d, want 2 synthesized legs", len(got.TransportRecords))
	}
	if !got.TransportRecords[0].Distance.Equal(d("5")) {
		t.Errorf("leg distance = %s, want 5", got.TransportRecords[0].Distance)
	}
}
