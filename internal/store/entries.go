package store

import (
	"context"
	"fmt"
	"sort"

	"fleetprotax/internal/amqp"
	"fleetprotax/internal/core"
	"fleetprotax/internal/log"
	"fleetprotax/internal/storage"
)

func (s *Store) Equipment() []core.EquipmentEntry {
	return s.equipment
}

func (s *Store) Expenses() []core.ExpenseEntry {
	return s.expenses
}

func (s *Store) MonthlyEmployerExpenses() []core.MonthlyEmployerExpense {
	return s.monthly
}

func (s *Store) AddEquipment(ctx context.Context, e core.EquipmentEntry) (core.EquipmentEntry, error) {
	if e.ID == "" {
		e.ID = core.NewID()
	}
	if e.DepreciationYears == 0 {
		e.DepreciationYears = core.UsefulLifeYears
	}
	if err := e.Validate(); err != nil {
		return core.EquipmentEntry{}, fmt.Errorf("validate equipment entry: %w", err)
	}

	s.equipment = append(s.equipment, e)
	s.persist(ctx, storage.KeyEquipmentEntries, s.equipment)
	s.publish(ctx, amqp.KindEquipment, e.ID, amqp.OpCreate)
	return e, nil
}

func (s *Store) UpdateEquipment(ctx context.Context, e core.EquipmentEntry) (core.EquipmentEntry, error) {
	if err := e.Validate(); err != nil {
		return core.EquipmentEntry{}, fmt.Errorf("validate equipment entry: %w", err)
	}
	for i := range s.equipment {
		if s.equipment[i].ID != e.ID {
			continue
		}
		s.equipment[i] = e
		s.persist(ctx, storage.KeyEquipmentEntries, s.equipment)
		s.publish(ctx, amqp.KindEquipment, e.ID, amqp.OpUpdate)
		return e, nil
	}
	return core.EquipmentEntry{}, core.ErrRecordNotFound
}

func (s *Store) DeleteEquipment(ctx context.Context, id core.ID) error {
	for i := range s.equipment {
		if s.equipment[i].ID != id {
			continue
		}
		s.deleteReceipt(s.equipment[i].ReceiptFileName)
		s.equipment = append(s.equipment[:i], s.equipment[i+1:]...)
		s.persist(ctx, storage.KeyEquipmentEntries, s.equipment)
		s.publish(ctx, amqp.KindEquipment, id, amqp.OpDelete)
		return nil
	}
	return core.ErrRecordNotFound
}

func (s *Store) AddExpense(ctx context.Context, e core.ExpenseEntry) (core.ExpenseEntry, error) {
	if e.ID == "" {
		e.ID = core.NewID()
	}
	if err := e.Validate(); err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("validate expense entry: %w", err)
	}

	s.expenses = append(s.expenses, e)
	s.persist(ctx, storage.KeyExpenseEntries, s.expenses)
	s.publish(ctx, amqp.KindExpense, e.ID, amqp.OpCreate)
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, id core.ID) error {
	for i := range s.expenses {
		if s.expenses[i].ID != id {
			continue
		}
		s.deleteReceipt(s.expenses[i].ReceiptFileName)
		s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
		s.persist(ctx, storage.KeyExpenseEntries, s.expenses)
		s.publish(ctx, amqp.KindExpense, id, amqp.OpDelete)
		return nil
	}
	return core.ErrRecordNotFound
}

// UpsertMonthlyEmployerExpense stores the reimbursement for one month,
// keyed by (year, month). A second write for the same month overwrites
// the earlier amount instead of accumulating.
func (s *Store) UpsertMonthlyEmployerExpense(ctx context.Context, m core.MonthlyEmployerExpense) (core.MonthlyEmployerExpense, error) {
	if err := m.Validate(); err != nil {
		return core.MonthlyEmployerExpense{}, fmt.Errorf("validate monthly employer expense: %w", err)
	}

	for i := range s.monthly {
		if s.monthly[i].Year != m.Year || s.monthly[i].Month != m.Month {
			continue
		}
		m.ID = s.monthly[i].ID
		s.monthly[i] = m
		s.persist(ctx, storage.KeyMonthlyEmployerExpenses, s.monthly)
		s.publish(ctx, amqp.KindMonthlyExpense, m.ID, amqp.OpUpdate)
		return m, nil
	}

	if m.ID == "" {
		m.ID = core.NewID()
	}
	s.monthly = append(s.monthly, m)
	s.persist(ctx, storage.KeyMonthlyEmployerExpenses, s.monthly)
	s.publish(ctx, amqp.KindMonthlyExpense, m.ID, amqp.OpCreate)

	s.logger.InfoContext(ctx, "Monthly employer expense stored",
		log.FieldYear, m.Year, log.FieldMonth, m.Month)
	return m, nil
}

func (s *Store) DeleteMonthlyEmployerExpense(ctx context.Context, year, month int) error {
	for i := range s.monthly {
		if s.monthly[i].Year != year || s.monthly[i].Month != month {
			continue
		}
		id := s.monthly[i].ID
		s.monthly = append(s.monthly[:i], s.monthly[i+1:]...)
		s.persist(ctx, storage.KeyMonthlyEmployerExpenses, s.monthly)
		s.publish(ctx, amqp.KindMonthlyExpense, id, amqp.OpDelete)
		return nil
	}
	return core.ErrRecordNotFound
}

// MonthlyForYear returns the reimbursement entries of one year sorted
// by month.
func (s *Store) MonthlyForYear(year int) []core.MonthlyEmployerExpense {
	var out []core.MonthlyEmployerExpense
	for _, m := range s.monthly {
		if m.Year == year {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
