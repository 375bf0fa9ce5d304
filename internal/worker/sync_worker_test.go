package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"fleetprotax/internal/amqp"
	"fleetprotax/internal/core"
	"fleetprotax/internal/storage"
	"fleetprotax/internal/store"
)

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

type nopBlobs struct{}

func (nopBlobs) Read(context.Context, string) ([]byte, error) { return nil, nil }
func (nopBlobs) Write(context.Context, string, []byte) error  { return nil }
func (nopBlobs) Delete(context.Context, string) error         { return nil }

type fakeTripWriter struct {
	trips []core.Trip
}

func (f *fakeTripWriter) AppendTrip(_ context.Context, t core.Trip) (string, error) {
	f.trips = append(f.trips, t)
	return "Trips!A2:H2", nil
}

type fakeSummaryWriter struct {
	summaries []core.YearSummary
}

func (f *fakeSummaryWriter) WriteSummary(_ context.Context, s core.YearSummary) error {
	f.summaries = append(f.summaries, s)
	return nil
}

func TestHandleSyncMessageMirrorsTrip(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{data: map[string][]byte{}}

	// The app instance writes; the worker reads the same backend.
	app := store.New(kv, nopBlobs{})
	if err := app.Load(ctx); err != nil {
		t.Fatal(err)
	}
	trip, err := app.AddTrip(ctx, core.Trip{
		Date:          "2025-03-10",
		DepartureTime: "08:00",
		ReturnTime:    "18:00",
	}, decimal.Zero)
	if err != nil {
		t.Fatal(err)
	}

	workerStore := store.New(kv, nopBlobs{})
	trips := &fakeTripWriter{}
	summaries := &fakeSummaryWriter{}
	w := NewSyncWorker(workerStore, trips, summaries, 10)

	msg := amqp.NewRecordSyncMessage(amqp.KindTrip, string(trip.ID), amqp.OpCreate)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}

	if len(trips.trips) != 1 || trips.trips[0].ID != trip.ID {
		t.Fatalf("mirrored trips = %+v", trips.trips)
	}
	if len(summaries.summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries.summaries))
	}
}

func TestHandleSyncMessageUnknownTripSkipped(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{data: map[string][]byte{}}

	w := NewSyncWorker(store.New(kv, nopBlobs{}), &fakeTripWriter{}, &fakeSummaryWriter{}, 10)
	msg := amqp.NewRecordSyncMessage(amqp.KindTrip, "missing", amqp.OpCreate)

	// A stale event for a record that no longer exists is not an error.
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestPeriodicSyncBatchesRecentYears(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{data: map[string][]byte{}}

	app := store.New(kv, nopBlobs{})
	if err := app.Load(ctx); err != nil {
		t.Fatal(err)
	}
	for _, date := range []string{"2021-05-01", "2022-05-01", "2023-05-01"} {
		if _, err := app.AddTrip(ctx, core.Trip{Date: date}, decimal.Zero); err != nil {
			t.Fatal(err)
		}
	}

	summaries := &fakeSummaryWriter{}
	w := NewSyncWorker(store.New(kv, nopBlobs{}), &fakeTripWriter{}, summaries, 2)

	if err := w.PeriodicSync(ctx); err != nil {
		t.Fatal(err)
	}
	if len(summaries.summaries) != 2 {
		t.Fatalf("summaries = %d, want 2 (batch cap)", len(summaries.summaries))
	}
	// Years come most recent first.
	if summaries.summaries[0].Year <= summaries.summaries[1].Year {
		t.Errorf("years out of order: %d then %d",
			summaries.summaries[0].Year, summaries.summaries[1].Year)
	}
}

func TestDeleteEventRefreshesSummaryOnly(t *testing.T) {
	ctx := context.Background()
	kv := &memKV{data: map[string][]byte{}}

	trips := &fakeTripWriter{}
	summaries := &fakeSummaryWriter{}
	w := NewSyncWorker(store.New(kv, nopBlobs{}), trips, summaries, 10)

	msg := amqp.NewRecordSyncMessage(amqp.KindTrip, "t1", amqp.OpDelete)
	if err := w.HandleSyncMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}
	if len(trips.trips) != 0 {
		t.Errorf("delete must not append a row")
	}
	if len(summaries.summaries) != 1 {
		t.Errorf("summaries = %d, want 1", len(summaries.summaries))
	}
}
