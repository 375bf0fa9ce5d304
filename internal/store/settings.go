package store

import (
	"context"
	"fmt"

	"fleetprotax/internal/core"
	"fleetprotax/internal/log"
	"fleetprotax/internal/storage"
)

func (s *Store) RateTable() core.RateTable {
	return s.rates
}

func (s *Store) DefaultCommute() core.CommuteDefaults {
	return s.commute
}

func (s *Store) RefundSettings() core.EmployerRefundSettings {
	return s.refund
}

func (s *Store) SelectedYear() int {
	return s.selectedYear
}

func (s *Store) SetRateTable(ctx context.Context, rates core.RateTable) error {
	if err := rates.Validate(); err != nil {
		return fmt.Errorf("validate rate table: %w", err)
	}
	s.rates = rates
	s.persist(ctx, storage.KeyTaxRates, s.rates)
	s.logger.InfoContext(ctx, "Rate table updated")
	return nil
}

// SetDefaultCommute stores the sanitized commute defaults: inactive
// modes keep no distance and public transport is never active.
func (s *Store) SetDefaultCommute(ctx context.Context, c core.CommuteDefaults) error {
	s.commute = c.Sanitized()
	s.persist(ctx, storage.KeyDefaultCommute, s.commute)
	return nil
}

func (s *Store) SetEmployerRefundSettings(ctx context.Context, r core.EmployerRefundSettings) error {
	if r.Amount.IsNegative() || r.MileageRefundRate.IsNegative() {
		return core.ErrNegativeAmount
	}
	s.refund = r
	s.persist(ctx, storage.KeyEmployerRefundSettings, s.refund)
	return nil
}

func (s *Store) SetSelectedYear(ctx context.Context, year int) {
	s.selectedYear = year
	s.persist(ctx, storage.KeySelectedYear, year)
	s.logger.DebugContext(ctx, "Selected year changed", log.FieldYear, year)
}
