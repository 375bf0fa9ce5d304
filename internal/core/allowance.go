// Package core holds the domain model and the pure deductible calculators.
//
// All monetary math runs on shopspring decimals; rounding to two places
// happens only where a stored allowance field is produced, never inside
// intermediate computations.
package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// MealAllowance is the result of the meal-tier calculation. Duration is
// signed: a negative value means the inputs were out of order and no tier
// applied.
type MealAllowance struct {
	Duration float64
	Rate     decimal.Decimal
}

// MealAllowanceForSpan computes the meal-allowance tier for the hours
// between start and end. When the span is negative and no explicit end
// date was given, 24 hours are added once (legacy single-day wrap for
// overnight entries). The wrap must not fire for explicit end dates.
func MealAllowanceForSpan(rates RateTable, start, end time.Time, explicitEnd bool) MealAllowance {
	hours := end.Sub(start).Hours()
	if hours < 0 && !explicitEnd {
		hours += 24
	}

	var rate decimal.Decimal
	switch {
	case hours >= 24:
		rate = rates.MealRate24h
	case hours >= 8:
		rate = rates.MealRate8h
	}

	return MealAllowance{Duration: hours, Rate: rate}
}

// MealAllowanceFromClock is the wire-format entry point: date plus local
// clock strings. Unparseable inputs yield a zero result rather than an
// error; corrupt time fields must not abort a recomputation pass.
func MealAllowanceFromClock(rates RateTable, date, departureTime, endDate, returnTime string) MealAllowance {
	start, err := time.Parse(DateLayout+" "+TimeLayout, date+" "+departureTime)
	if err != nil {
		return MealAllowance{}
	}
	endDay := endDate
	if endDay == "" {
		endDay = date
	}
	end, err := time.Parse(DateLayout+" "+TimeLayout, endDay+" "+returnTime)
	if err != nil {
		return MealAllowance{}
	}
	return MealAllowanceForSpan(rates, start, end, endDate != "")
}

// MealDeductible nets employer expenses against the tier rate, floored at
// zero and rounded to cents.
func MealDeductible(rate, employerExpenses decimal.Decimal) decimal.Decimal {
	d := rate.Sub(employerExpenses)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

// TransportAllowance prices a distance-based journey: totalKm times the
// per-km rate, rounded to cents. Public-transport records carry a ticket
// cost instead and never go through here.
func TransportAllowance(totalKm, ratePerKm decimal.Decimal) decimal.Decimal {
	return totalKm.Mul(ratePerKm).Round(2)
}

// EffectiveMileageRate reduces the base per-km rate by a configured
// employer refund rate, floored at zero.
func EffectiveMileageRate(baseRate, employerRefundRate decimal.Decimal) decimal.Decimal {
	r := baseRate.Sub(employerRefundRate)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// SumTransportAllowances is the live sum the cached trip field must always
// equal.
func SumTransportAllowances(records []TransportRecord) decimal.Decimal {
	sum := decimal.Zero
	for _, r := range records {
		sum = sum.Add(r.Allowance)
	}
	return sum
}

// RecomputeTransportSum refreshes the derived cache after any change to
// the owned records.
func (t *Trip) RecomputeTransportSum() {
	t.SumTransportAllowances = SumTransportAllowances(t.TransportRecords)
}

// Total is the trip's contribution to a year total.
func (t Trip) Total() decimal.Decimal {
	return t.MealAllowance.Add(t.SumTransportAllowances)
}

// RefundSuggested reports whether the trip duration crosses the employer
// refund threshold.
func (s EmployerRefundSettings) RefundSuggested(duration float64) bool {
	return s.ThresholdHours > 0 && duration >= s.ThresholdHours
}
