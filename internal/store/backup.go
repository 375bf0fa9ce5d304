package store

import (
	"context"
	"fmt"

	"fleetprotax/internal/amqp"
	"fleetprotax/internal/backup"
	"fleetprotax/internal/migration"
	"fleetprotax/internal/storage"
)

// ExportBackup assembles the full backup container from the loaded
// state. Transport records are additionally flattened into the mileage
// list so the metadata can report receipt counts.
func (s *Store) ExportBackup() *backup.Backup {
	data := backup.Data{
		Trips:     s.trips,
		Equipment: s.equipment,
		Expenses:  s.expenses,
		Settings: backup.Settings{
			TaxRates:                s.rates,
			DefaultCommute:          s.commute,
			MonthlyEmployerExpenses: s.monthly,
			EmployerRefund:          s.refund,
			SelectedYear:            s.selectedYear,
		},
	}
	for _, t := range s.trips {
		data.Mileage = append(data.Mileage, t.TransportRecords...)
	}
	return backup.New(data, s.now())
}

// ExportArchive returns the zipped backup together with its timestamped
// file name.
func (s *Store) ExportArchive() ([]byte, string, error) {
	raw, err := backup.Archive(s.ExportBackup())
	if err != nil {
		return nil, "", err
	}
	return raw, backup.FileName(s.now()), nil
}

// ImportBackup replaces the loaded collections with the contents of an
// exported file. Versioned containers are structurally validated first
// and refused with the full problem list; the whole document is then
// decoded before any state is touched, so a malformed file never
// leaves a half-imported store. The
// imported trips run through the distance migration against the
// document's source version before they are adopted.
func (s *Store) ImportBackup(ctx context.Context, raw []byte) error {
	body, err := backup.Extract(raw)
	if err != nil {
		return fmt.Errorf("import backup: %w", err)
	}
	if backup.IsContainer(body) {
		if err := backup.Validate(body); err != nil {
			return fmt.Errorf("import backup: %w", err)
		}
	}
	imp, err := backup.Decode(body)
	if err != nil {
		return fmt.Errorf("import backup: %w", err)
	}

	rates := s.rates
	if imp.TaxRates != nil {
		rates = *imp.TaxRates
	}

	snap := &migration.Snapshot{
		Trips:          imp.Trips,
		DefaultCommute: imp.DefaultCommute,
		Settings:       imp.Settings,
	}
	applied := migration.Run(snap, imp.SourceVersion, rates)

	if imp.Trips != nil {
		s.trips = snap.CoreTrips()
		s.persist(ctx, storage.KeyTrips, s.trips)
	}
	if imp.Equipment != nil {
		s.equipment = imp.Equipment
		s.persist(ctx, storage.KeyEquipmentEntries, s.equipment)
	}
	if imp.Expenses != nil {
		s.expenses = imp.Expenses
		s.persist(ctx, storage.KeyExpenseEntries, s.expenses)
	}
	if imp.Monthly != nil {
		s.monthly = imp.Monthly
		s.persist(ctx, storage.KeyMonthlyEmployerExpenses, s.monthly)
	}
	if snap.DefaultCommute != nil {
		s.commute = snap.DefaultCommute.Core()
		s.persist(ctx, storage.KeyDefaultCommute, s.commute)
	}
	if imp.TaxRates != nil {
		s.rates = rates
		s.persist(ctx, storage.KeyTaxRates, s.rates)
	}
	if imp.EmployerRefund != nil {
		s.refund = *imp.EmployerRefund
		s.persist(ctx, storage.KeyEmployerRefundSettings, s.refund)
	}
	if imp.SelectedYear != 0 {
		s.selectedYear = imp.SelectedYear
		s.persist(ctx, storage.KeySelectedYear, s.selectedYear)
	}

	s.setVersion(ctx, migration.CurrentVersion)
	s.publish(ctx, amqp.KindBackup, "", amqp.OpCreate)

	s.logger.InfoContext(ctx, "Backup imported",
		"source_version", imp.SourceVersion,
		"migrations_applied", len(applied),
		"trips", len(s.trips))
	return nil
}
