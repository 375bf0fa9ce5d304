// Package worker mirrors record changes into Google Sheets. It consumes
// the change events the app publishes and reads the authoritative state
// from the shared database, so a lost message is recovered by the next
// periodic pass.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"fleetprotax/internal/amqp"
	"fleetprotax/internal/core"
	"fleetprotax/internal/sheets"
	"fleetprotax/internal/store"
)

type SyncWorker struct {
	store   *store.Store
	trips   sheets.TripWriter
	summary sheets.SummaryWriter

	// batchSize caps how many year summaries a periodic pass rewrites.
	batchSize int
}

func NewSyncWorker(st *store.Store, trips sheets.TripWriter, summary sheets.SummaryWriter, batchSize int) *SyncWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	return &SyncWorker{
		store:     st,
		trips:     trips,
		summary:   summary,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one change event. The store is reloaded
// first because the event carries only the record id; the app instance
// that produced it owns the database writes.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"kind", msg.Kind,
		"id", msg.ID,
		"op", msg.Op)

	if err := w.store.Load(ctx); err != nil {
		return fmt.Errorf("reload store: %w", err)
	}

	switch msg.Kind {
	case amqp.KindTrip:
		return w.syncTrip(ctx, msg)
	case amqp.KindBackup:
		// A restored backup can change every total at once.
		return w.SyncSummary(ctx)
	default:
		// Equipment, expense and reimbursement changes only move the
		// yearly totals.
		return w.SyncSummary(ctx)
	}
}

func (w *SyncWorker) syncTrip(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	if msg.Op == amqp.OpDelete {
		slog.InfoContext(ctx, "Trip deleted, refreshing summary", "id", msg.ID)
		return w.SyncSummary(ctx)
	}

	trip, ok := w.store.TripByID(core.ID(msg.ID))
	if !ok {
		slog.WarnContext(ctx, "Trip from sync message not found, skipping", "id", msg.ID)
		return nil
	}

	ref, err := w.trips.AppendTrip(ctx, trip)
	if err != nil {
		return fmt.Errorf("append trip to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully synced trip",
		"id", msg.ID,
		"sheets_ref", ref,
		"total", trip.Total().StringFixed(2))

	return w.SyncSummary(ctx)
}

// SyncSummary rewrites the totals row of the selected year. Called
// after every change and periodically as a catch-up for missed events.
func (w *SyncWorker) SyncSummary(ctx context.Context) error {
	return w.syncYearSummary(ctx, w.store.SelectedYear())
}

func (w *SyncWorker) syncYearSummary(ctx context.Context, year int) error {
	if w.summary == nil {
		return nil
	}
	if err := w.summary.WriteSummary(ctx, w.store.Summary(year)); err != nil {
		return fmt.Errorf("write summary for year %d: %w", year, err)
	}
	return nil
}

// StartupSyncCheck pushes the current summary once at worker startup so
// downtime never leaves the sheet stale.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	if err := w.store.Load(ctx); err != nil {
		return fmt.Errorf("load store for startup check: %w", err)
	}
	if err := w.SyncSummary(ctx); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"year", w.store.SelectedYear(),
		"trips", len(w.store.Trips()))
	return nil
}

// PeriodicSync is the ticker entry point. It reloads the state and
// rewrites the summary rows of the most recent years, at most
// batchSize per pass, so missed events are eventually repaired for
// every year the sheet shows.
func (w *SyncWorker) PeriodicSync(ctx context.Context) error {
	if err := w.store.Load(ctx); err != nil {
		return fmt.Errorf("reload store: %w", err)
	}

	years := w.store.AvailableYears()
	if len(years) > w.batchSize {
		years = years[:w.batchSize]
	}
	for _, year := range years {
		if err := w.syncYearSummary(ctx, year); err != nil {
			return err
		}
	}
	return nil
}
