// Package store is the state container for all persisted records. It
// orchestrates load → migrate → persist on startup and keeps derived
// fields consistent across mutations.
//
// The store is single-writer by design: all mutations run on one
// goroutine (the app event loop). In-memory state is the source of truth
// for the session; persistence is fire-and-forget and a failed write is
// logged, never propagated. A port to a concurrent environment must wrap
// each mutate-then-persist sequence in a store-wide transaction to keep
// the "sum always consistent with children" invariant.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleetprotax/internal/core"
	"fleetprotax/internal/log"
	"fleetprotax/internal/migration"
	"fleetprotax/internal/receipts"
	"fleetprotax/internal/storage"
)

// ErrMalformedData marks persisted bytes that no longer decode. Load
// refuses to continue past it so the broken original stays on disk for
// inspection instead of being overwritten by a migrated empty state.
var ErrMalformedData = errors.New("malformed persisted data")

// KV is the key-value persistence surface the store writes through.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// EventPublisher receives change notifications after mutations. Optional;
// a nil publisher disables eventing.
type EventPublisher interface {
	PublishRecordSync(ctx context.Context, kind, id, op string) error
}

type Store struct {
	kv       KV
	receipts receipts.Store
	events   EventPublisher
	logger   *log.Logger
	now      func() time.Time

	trips        []core.Trip
	equipment    []core.EquipmentEntry
	expenses     []core.ExpenseEntry
	monthly      []core.MonthlyEmployerExpense
	commute      core.CommuteDefaults
	rates        core.RateTable
	refund       core.EmployerRefundSettings
	selectedYear int
	dataVersion  string
}

type Option func(*Store)

// WithEvents enables change-event publishing.
func WithEvents(p EventPublisher) Option {
	return func(s *Store) { s.events = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStore) }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(kv KV, blobs receipts.Store, opts ...Option) *Store {
	s := &Store{
		kv:       kv,
		receipts: blobs,
		logger:   log.New(log.Config{Component: log.ComponentStore}),
		now:      time.Now,
		commute:  core.DefaultCommute(),
		rates:    core.DefaultRateTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.selectedYear = s.now().Year()
	return s
}

// Load reads every persisted collection, runs the data-level migration
// pipeline on the trip/commute snapshot, and writes the migrated result
// back under the current version tag. A collection that fails to decode
// aborts the load with ErrMalformedData before anything is written back.
func (s *Store) Load(ctx context.Context) error {
	storedVersion, err := s.loadVersion(ctx)
	if err != nil {
		return err
	}

	// Rates first: the migration pipeline prices regenerated records with
	// the current rate table.
	s.rates = core.DefaultRateTable()
	if err := s.loadInto(ctx, storage.KeyTaxRates, &s.rates); err != nil {
		return err
	}
	s.refund = core.EmployerRefundSettings{}
	if err := s.loadInto(ctx, storage.KeyEmployerRefundSettings, &s.refund); err != nil {
		return err
	}

	snap := migration.Snapshot{}
	if err := s.loadInto(ctx, storage.KeyTrips, &snap.Trips); err != nil {
		return err
	}
	if err := s.loadInto(ctx, storage.KeyDefaultCommute, &snap.DefaultCommute); err != nil {
		return err
	}

	applied := migration.Run(&snap, storedVersion, s.rates)

	s.trips = snap.CoreTrips()
	s.commute = snap.DefaultCommute.Core()

	s.equipment = nil
	if err := s.loadInto(ctx, storage.KeyEquipmentEntries, &s.equipment); err != nil {
		return err
	}
	s.expenses = nil
	if err := s.loadInto(ctx, storage.KeyExpenseEntries, &s.expenses); err != nil {
		return err
	}
	s.monthly = nil
	if err := s.loadInto(ctx, storage.KeyMonthlyEmployerExpenses, &s.monthly); err != nil {
		return err
	}

	s.selectedYear = s.now().Year()
	if err := s.loadInto(ctx, storage.KeySelectedYear, &s.selectedYear); err != nil {
		return err
	}
	if s.selectedYear == 0 {
		s.selectedYear = s.now().Year()
	}

	// Persist the migrated snapshot and advance the tag. The tag is never
	// rolled back.
	if len(applied) > 0 || storedVersion != migration.CurrentVersion {
		s.persist(ctx, storage.KeyTrips, s.trips)
		s.persist(ctx, storage.KeyDefaultCommute, s.commute)
		s.setVersion(ctx, migration.CurrentVersion)
	} else {
		s.dataVersion = storedVersion
	}

	s.logger.InfoContext(ctx, "Record store loaded",
		log.FieldDataVersion, s.dataVersion,
		"migrations_applied", len(applied),
		"trips", len(s.trips),
		"equipment", len(s.equipment),
		"expenses", len(s.expenses))

	return nil
}

func (s *Store) loadVersion(ctx context.Context) (string, error) {
	raw, err := s.kv.Get(ctx, storage.KeyDataVersion)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return migration.OldestKnownVersion, nil
	}
	if err != nil {
		return "", fmt.Errorf("load data version: %w", err)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		// Early builds stored the tag as a bare string.
		v = strings.Trim(string(raw), `"`)
	}
	if strings.TrimSpace(v) == "" {
		v = migration.OldestKnownVersion
	}
	return v, nil
}

// loadInto decodes one collection. Missing keys leave the target as-is;
// malformed JSON is a hard error so the caller never proceeds on a
// partial read of the database.
func (s *Store) loadInto(ctx context.Context, key string, target any) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		s.logger.ErrorContext(ctx, "Persisted collection does not decode",
			log.FieldStorageKey, key,
			log.FieldError, err.Error())
		return fmt.Errorf("decode %q: %w: %v", key, ErrMalformedData, err)
	}
	return nil
}

// persist writes one collection. In-memory state is already updated;
// a failed write is logged and the session continues on memory.
func (s *Store) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode collection",
			log.FieldStorageKey, key,
			log.FieldError, err.Error())
		return
	}
	if err := s.kv.Put(ctx, key, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist collection",
			log.FieldStorageKey, key,
			log.FieldError, err.Error())
	}
}

func (s *Store) setVersion(ctx context.Context, v string) {
	s.dataVersion = v
	s.persist(ctx, storage.KeyDataVersion, v)
}

func (s *Store) publish(ctx context.Context, kind string, id core.ID, op string) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecordSync(ctx, kind, string(id), op); err != nil {
		// The mutation already succeeded locally; eventing is advisory.
		s.logger.WarnContext(ctx, "Failed to publish record sync",
			"kind", kind,
			log.FieldRecordID, string(id),
			log.FieldOperation, op,
			log.FieldError, err.Error())
	}
}

// deleteReceipt schedules a best-effort blob deletion. Failures are
// logged and never block or roll back the mutation that triggered them.
func (s *Store) deleteReceipt(name string) {
	if name == "" || s.receipts == nil {
		return
	}
	go func() {
		if err := s.receipts.Delete(context.Background(), name); err != nil {
			s.logger.Warn("Failed to delete receipt blob",
				log.FieldReceipt, name,
				log.FieldError, err.Error())
		}
	}()
}

// DataVersion returns the schema version tag of the loaded data.
func (s *Store) DataVersion() string {
	return s.dataVersion
}
