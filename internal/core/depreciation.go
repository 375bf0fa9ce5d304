package core

import (
	"github.com/shopspring/decimal"
)

// UsefulLifeYears is the fixed straight-line depreciation window for
// equipment above the minor-asset limit.
const UsefulLifeYears = 3

// EquipmentDeductible returns the deductible amount an equipment entry
// contributes to the given evaluation year.
//
// Purchases at or below the minor-asset limit (GWG) are fully deductible
// in the purchase year and contribute nothing elsewhere. Everything else
// depreciates straight-line over UsefulLifeYears with month proration:
// the purchase year carries 12−M months (M is the 0-based purchase month),
// full years carry 12, and the terminal year carries the remaining M
// months. A January purchase therefore contributes nothing in its terminal
// year. The per-year amount is not rounded; rounding belongs to display
// and aggregation boundaries.
func EquipmentDeductible(e EquipmentEntry, year int, minorAssetLimit decimal.Decimal) decimal.Decimal {
	purchased, ok := ParseDate(e.Date)
	if !ok {
		return decimal.Zero
	}
	purchaseYear := purchased.Year()
	purchaseMonth := int(purchased.Month()) - 1 // 0-based

	if e.Price.LessThanOrEqual(minorAssetLimit) {
		if year == purchaseYear {
			return e.Price
		}
		return decimal.Zero
	}

	endYear := purchaseYear + UsefulLifeYears
	if year < purchaseYear || year > endYear {
		return decimal.Zero
	}

	var months int
	switch {
	case year == purchaseYear:
		months = 12 - purchaseMonth
	case year < endYear:
		months = 12
	default:
		months = purchaseMonth
	}
	if months <= 0 {
		return decimal.Zero
	}

	monthly := e.Price.Div(decimal.NewFromInt(UsefulLifeYears * 12))
	return monthly.Mul(decimal.NewFromInt(int64(months)))
}

// DepreciationYears lists every year in which the entry contributes a
// non-zero deductible, in ascending order. Used by the available-years
// query so a depreciating asset keeps its window visible.
func DepreciationYears(e EquipmentEntry, minorAssetLimit decimal.Decimal) []int {
	purchased, ok := ParseDate(e.Date)
	if !ok {
		return nil
	}
	purchaseYear := purchased.Year()

	if e.Price.LessThanOrEqual(minorAssetLimit) {
		return []int{purchaseYear}
	}

	var years []int
	for year := purchaseYear; year <= purchaseYear+UsefulLifeYears; year++ {
		if EquipmentDeductible(e, year, minorAssetLimit).IsPositive() {
			years = append(years, year)
		}
	}
	return years
}
