// Package export renders loaded collections into flat files for use
// outside the app.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"fleetprotax/internal/core"
)

// WriteYearCSV writes the trips of one year as CSV, one row per trip
// with the derived allowances, followed by the summary totals.
func WriteYearCSV(w io.Writer, year int, trips []core.Trip, summary core.YearSummary) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "endDate", "destination", "purpose", "mealAllowance", "transportAllowances", "total"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, t := range trips {
		start, ok := core.ParseDate(t.Date)
		if !ok || start.Year() != year {
			continue
		}
		row := []string{
			t.Date,
			t.EndDate,
			t.Destination,
			t.Purpose,
			t.MealAllowance.StringFixed(2),
			t.SumTransportAllowances.StringFixed(2),
			t.Total().StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	totals := [][]string{
		{"", "", "", "meal allowance", summary.MealAllowance.StringFixed(2), "", ""},
		{"", "", "", "transport costs", summary.TransportCosts.StringFixed(2), "", ""},
		{"", "", "", "equipment", summary.Equipment.StringFixed(2), "", ""},
		{"", "", "", "employer reimbursement", summary.EmployerReimbursement.Neg().StringFixed(2), "", ""},
		{"", "", "", "grand total", summary.GrandTotal.StringFixed(2), "", ""},
		{"", "", "", "private expenses", summary.Expenses.Neg().StringFixed(2), "", ""},
		{"", "", "", "net total", summary.NetTotal.StringFixed(2), "", ""},
	}
	for _, row := range totals {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv totals: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
