package core

import (
	"github.com/shopspring/decimal"
)

// YearSummary aggregates the deductible position for one calendar year.
type YearSummary struct {
	Year                  int
	MealAllowance         decimal.Decimal
	TransportCosts        decimal.Decimal
	TripTotal             decimal.Decimal
	Equipment             decimal.Decimal
	EmployerReimbursement decimal.Decimal
	GrandTotal            decimal.Decimal
	Expenses              decimal.Decimal
	NetTotal              decimal.Decimal
}

// SummarizeYear computes the net deductible aggregation:
// grandTotal = (trip totals + equipment deductibles) − employer
// reimbursements, netTotal = grandTotal − private expenses. Trips are
// assigned to the year of their start date.
func SummarizeYear(year int, trips []Trip, equipment []EquipmentEntry, expenses []ExpenseEntry, monthly []MonthlyEmployerExpense, rates RateTable) YearSummary {
	s := YearSummary{
		Year:                  year,
		MealAllowance:         decimal.Zero,
		TransportCosts:        decimal.Zero,
		Equipment:             decimal.Zero,
		EmployerReimbursement: decimal.Zero,
		Expenses:              decimal.Zero,
	}

	for _, t := range trips {
		start, ok := ParseDate(t.Date)
		if !ok || start.Year() != year {
			continue
		}
		s.MealAllowance = s.MealAllowance.Add(t.MealAllowance)
		s.TransportCosts = s.TransportCosts.Add(t.SumTransportAllowances)
	}
	s.TripTotal = s.MealAllowance.Add(s.TransportCosts)

	for _, e := range equipment {
		s.Equipment = s.Equipment.Add(EquipmentDeductible(e, year, rates.MinorAssetLimit))
	}

	for _, m := range monthly {
		if m.Year == year {
			s.EmployerReimbursement = s.EmployerReimbursement.Add(m.Amount)
		}
	}

	s.GrandTotal = s.TripTotal.Add(s.Equipment).Sub(s.EmployerReimbursement)

	for _, e := range expenses {
		d, ok := ParseDate(e.Date)
		if !ok || d.Year() != year {
			continue
		}
		s.Expenses = s.Expenses.Add(e.Amount)
	}
	s.NetTotal = s.GrandTotal.Sub(s.Expenses)

	return s
}
