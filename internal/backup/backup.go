// Package backup builds, validates and reads the versioned backup
// container. The container is a zip archive holding a single
// backup.json with app info, a backup header, the exported collections
// and derived metadata.
package backup

import (
	"runtime"
	"sort"
	"time"

	"fleetprotax/internal/core"
	"fleetprotax/internal/migration"
)

const (
	Version = "2.0.0"
	Format  = "fleetprotax-backup-v2"
	AppName = "FleetProTax"
)

type (
	App struct {
		Name     string `json:"name"`
		Version  string `json:"version"`
		Platform string `json:"platform"`
	}

	Header struct {
		Version   string `json:"version"`
		CreatedAt string `json:"createdAt"`
		Format    string `json:"format"`
	}

	Settings struct {
		TaxRates                core.RateTable                `json:"taxRates"`
		DefaultCommute          core.CommuteDefaults          `json:"defaultCommute"`
		MonthlyEmployerExpenses []core.MonthlyEmployerExpense `json:"monthlyEmployerExpenses"`
		EmployerRefund          core.EmployerRefundSettings   `json:"employerRefundSettings"`
		SelectedYear            int                           `json:"selectedYear"`
	}

	// Data holds the exported collections. Mileage is the flat list of
	// transport records; on import the records inside the trips are
	// authoritative and mileage is informational only.
	Data struct {
		Trips     []core.Trip            `json:"trips"`
		Mileage   []core.TransportRecord `json:"mileage"`
		Equipment []core.EquipmentEntry  `json:"equipment"`
		Expenses  []core.ExpenseEntry    `json:"expenses"`
		Settings  Settings               `json:"settings"`
	}

	DateRange struct {
		Start string `json:"start"`
		End   string `json:"end"`
	}

	Metadata struct {
		TotalEntries  int        `json:"totalEntries"`
		DateRange     *DateRange `json:"dateRange"`
		HasReceipts   bool       `json:"hasReceipts"`
		ReceiptsCount int        `json:"receiptsCount"`
	}

	Backup struct {
		App      App      `json:"app"`
		Backup   Header   `json:"backup"`
		Data     Data     `json:"data"`
		Metadata Metadata `json:"metadata"`
	}
)

// New assembles a backup container from the given collections. Nil
// slices are normalized to empty ones so every required key serializes
// as an array.
func New(data Data, createdAt time.Time) *Backup {
	if data.Trips == nil {
		data.Trips = []core.Trip{}
	}
	if data.Mileage == nil {
		data.Mileage = []core.TransportRecord{}
	}
	if data.Equipment == nil {
		data.Equipment = []core.EquipmentEntry{}
	}
	if data.Expenses == nil {
		data.Expenses = []core.ExpenseEntry{}
	}

	return &Backup{
		App: App{
			Name:     AppName,
			Version:  migration.CurrentVersion,
			Platform: runtime.GOOS,
		},
		Backup: Header{
			Version:   Version,
			CreatedAt: createdAt.UTC().Format(time.RFC3339),
			Format:    Format,
		},
		Data:     data,
		Metadata: calculateMetadata(data),
	}
}

func calculateMetadata(data Data) Metadata {
	total := len(data.Trips) + len(data.Mileage) + len(data.Equipment) + len(data.Expenses)

	var dates []string
	push := func(d string) {
		if d != "" {
			dates = append(dates, d)
		}
	}
	for _, t := range data.Trips {
		push(t.Date)
		push(t.EndDate)
	}
	for _, m := range data.Mileage {
		push(m.Date)
	}
	for _, e := range data.Equipment {
		push(e.Date)
	}
	for _, e := range data.Expenses {
		push(e.Date)
	}
	sort.Strings(dates)

	var dateRange *DateRange
	if len(dates) > 0 {
		dateRange = &DateRange{Start: dates[0], End: dates[len(dates)-1]}
	}

	receipts := 0
	for _, m := range data.Mileage {
		if m.ReceiptFileName != "" {
			receipts++
		}
	}
	for _, e := range data.Equipment {
		if e.ReceiptFileName != "" {
			receipts++
		}
	}
	for _, e := range data.Expenses {
		if e.ReceiptFileName != "" {
			receipts++
		}
	}

	return Metadata{
		TotalEntries:  total,
		DateRange:     dateRange,
		HasReceipts:   receipts > 0,
		ReceiptsCount: receipts,
	}
}
