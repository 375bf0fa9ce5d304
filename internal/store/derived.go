package store

import (
	"sort"

	"fleetprotax/internal/core"
)

// AvailableYears lists every year that carries data, newest first. The
// current year is always included so an empty store still offers a
// selectable year. Equipment contributes its whole depreciation window,
// not just the purchase year.
func (s *Store) AvailableYears() []int {
	seen := map[int]bool{s.now().Year(): true}

	addDate := func(date string) {
		if t, ok := core.ParseDate(date); ok {
			seen[t.Year()] = true
		}
	}

	for _, trip := range s.trips {
		addDate(trip.Date)
		addDate(trip.EndDate)
		for _, r := range trip.TransportRecords {
			addDate(r.Date)
		}
	}
	for _, e := range s.expenses {
		addDate(e.Date)
	}
	for _, e := range s.equipment {
		for _, year := range core.DepreciationYears(e, s.rates.MinorAssetLimit) {
			seen[year] = true
		}
	}
	for _, m := range s.monthly {
		seen[m.Year] = true
	}

	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// Summary computes the aggregated deductible totals for one year from
// the loaded collections.
func (s *Store) Summary(year int) core.YearSummary {
	return core.SummarizeYear(year, s.trips, s.equipment, s.expenses, s.monthly, s.rates)
}
