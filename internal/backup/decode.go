package backup

import (
	"encoding/json"
	"fmt"

	"fleetprotax/internal/core"
	"fleetprotax/internal/migration"
)

// Import is the decoded, pre-migration payload of an imported backup.
// Trips and DefaultCommute stay raw because the distance migration must
// run against the source version before they are usable.
type Import struct {
	SourceVersion string

	Trips          []migration.Trip
	DefaultCommute *migration.Commute
	Settings       migration.Settings

	Equipment []core.EquipmentEntry
	Expenses  []core.ExpenseEntry
	Monthly   []core.MonthlyEmployerExpense

	// TaxRates is nil when the document carries none; the importer then
	// keeps the currently configured table.
	TaxRates       *core.RateTable
	EmployerRefund *core.EmployerRefundSettings
	SelectedYear   int
}

// payload covers both the v2 data object and the flat legacy export.
// Equipment and expenses accept the legacy key aliases.
type payload struct {
	Trips                   []migration.Trip              `json:"trips"`
	Equipment               []core.EquipmentEntry         `json:"equipment"`
	EquipmentEntries        []core.EquipmentEntry         `json:"equipmentEntries"`
	Expenses                []core.ExpenseEntry           `json:"expenses"`
	ExpenseEntries          []core.ExpenseEntry           `json:"expenseEntries"`
	MonthlyEmployerExpenses []core.MonthlyEmployerExpense `json:"monthlyEmployerExpenses"`
	DefaultCommute          *migration.Commute            `json:"defaultCommute"`
	TaxRates                *core.RateTable               `json:"taxRates"`
	SelectedYear            int                           `json:"selectedYear"`
	Settings                json.RawMessage               `json:"settings"`
}

type settingsPayload struct {
	TaxRates                *core.RateTable               `json:"taxRates"`
	DefaultCommute          *migration.Commute            `json:"defaultCommute"`
	MonthlyEmployerExpenses []core.MonthlyEmployerExpense `json:"monthlyEmployerExpenses"`
	EmployerRefund          *core.EmployerRefundSettings  `json:"employerRefundSettings"`
	SelectedYear            int                           `json:"selectedYear"`
}

// Decode reads an import document leniently: a full v2 container, a
// bare data object or a flat legacy export all decode. Values nested
// under settings override their flat counterparts, matching the order
// the exports were written in.
func Decode(raw []byte) (*Import, error) {
	var doc struct {
		Backup *struct {
			Version string `json:"version"`
		} `json:"backup"`
		Version string          `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode backup document: %w", err)
	}

	sourceVersion := migration.OldestKnownVersion
	switch {
	case doc.Backup != nil && doc.Backup.Version != "":
		sourceVersion = doc.Backup.Version
	case doc.Version != "":
		sourceVersion = doc.Version
	}

	body := raw
	if len(doc.Data) > 0 {
		body = doc.Data
	}

	var p payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("decode backup payload: %w", err)
	}

	imp := &Import{
		SourceVersion:  sourceVersion,
		Trips:          p.Trips,
		DefaultCommute: p.DefaultCommute,
		Equipment:      firstNonNil(p.Equipment, p.EquipmentEntries),
		Expenses:       firstNonNil(p.Expenses, p.ExpenseEntries),
		Monthly:        p.MonthlyEmployerExpenses,
		TaxRates:       p.TaxRates,
		SelectedYear:   p.SelectedYear,
	}

	if len(p.Settings) > 0 {
		if err := json.Unmarshal(p.Settings, &imp.Settings); err != nil {
			return nil, fmt.Errorf("decode backup settings: %w", err)
		}
		var s settingsPayload
		if err := json.Unmarshal(p.Settings, &s); err != nil {
			return nil, fmt.Errorf("decode backup settings: %w", err)
		}
		if s.TaxRates != nil {
			imp.TaxRates = s.TaxRates
		}
		if s.DefaultCommute != nil {
			imp.DefaultCommute = s.DefaultCommute
		}
		if s.MonthlyEmployerExpenses != nil {
			imp.Monthly = s.MonthlyEmployerExpenses
		}
		if s.EmployerRefund != nil {
			imp.EmployerRefund = s.EmployerRefund
		}
		if s.SelectedYear != 0 {
			imp.SelectedYear = s.SelectedYear
		}
	}

	return imp, nil
}

func firstNonNil[T any](a, b []T) []T {
	if a != nil {
		return a
	}
	return b
}
