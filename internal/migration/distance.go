package migration

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"fleetprotax/internal/core"
)

// Fallback per-km rates for stores that predate a persisted rate table.
var fallbackMileage = map[core.VehicleType]decimal.Decimal{
	core.VehicleCar:        decimal.NewFromFloat(0.30),
	core.VehicleMotorcycle: decimal.NewFromFloat(0.20),
	core.VehicleBike:       decimal.NewFromFloat(0.05),
}

// redefineDistances migrates one-way commute distances to round-trip.
//
// Step A doubles every positive stored commute distance (trip-level, the
// default commute, and the commute embedded in settings). Step B then
// regenerates or adjusts each trip's transport records and drops the
// legacy commute field; transport records are the sole source of truth
// afterwards.
func redefineDistances(snap *Snapshot, rates core.RateTable) {
	mileage := mileageWithFallback(rates)

	for i := range snap.Trips {
		doubleCommute(snap.Trips[i].Commute)
	}
	doubleCommute(snap.DefaultCommute)
	doubleSettingsCommute(snap.Settings)

	for i := range snap.Trips {
		redefineTrip(&snap.Trips[i], mileage)
	}
}

func mileageWithFallback(rates core.RateTable) map[core.VehicleType]decimal.Decimal {
	m := map[core.VehicleType]decimal.Decimal{
		core.VehicleCar:        rates.MileageRateCar,
		core.VehicleMotorcycle: rates.MileageRateMotorcycle,
		core.VehicleBike:       rates.MileageRateBike,
	}
	for v, rate := range m {
		if !rate.IsPositive() {
			m[v] = fallbackMileage[v]
		}
	}
	return m
}

// doubleCommute doubles positive car/motorcycle/bike distances in place.
// Zero and absent distances stay untouched, as does the public-transport
// cost, which was never a one-way figure.
func doubleCommute(c *Commute) {
	if c == nil {
		return
	}
	two := decimal.NewFromInt(2)
	for _, m := range []*Mode{&c.Car, &c.Motorcycle, &c.Bike} {
		if m.Distance.IsPositive() {
			m.Distance = num(m.Distance.Mul(two))
		}
	}
}

func doubleSettingsCommute(s Settings) {
	raw, ok := s["defaultCommute"]
	if !ok {
		return
	}
	var c Commute
	if err := json.Unmarshal(raw, &c); err != nil {
		return
	}
	doubleCommute(&c)
	encoded, err := json.Marshal(c)
	if err != nil {
		return
	}
	s["defaultCommute"] = encoded
}

func redefineTrip(t *Trip, mileage map[core.VehicleType]decimal.Decimal) {
	if len(t.TransportRecords) == 0 {
		t.TransportRecords = synthesizeFromCommute(t, mileage)
	} else {
		two := decimal.NewFromInt(2)
		for i := range t.TransportRecords {
			r := &t.TransportRecords[i]
			rate, ok := mileage[r.VehicleType]
			if !ok {
				continue // public transport passes through unchanged
			}
			base := r.Distance.Decimal
			baseTotal := base
			if r.TotalKm != nil {
				baseTotal = r.TotalKm.Decimal
			}
			next := base.Mul(two)
			r.Distance = num(next)
			r.TotalKm = &Number{Decimal: baseTotal.Mul(two)}
			r.Allowance = num(next.Mul(rate).Round(2))
		}
	}

	// The commute field is dropped from migrated trips for good.
	t.Commute = nil

	sum := decimal.Zero
	for _, r := range t.TransportRecords {
		sum = sum.Add(r.Allowance.Decimal)
	}
	t.SumTransportAllowances = num(sum)
}

// synthesizeFromCommute builds outbound and return records from the
// (already doubled) commute configuration: each leg carries half the
// round-trip distance, priced at the current rate. A configured public
// transport cost becomes a single pass-through record.
func synthesizeFromCommute(t *Trip, mileage map[core.VehicleType]decimal.Decimal) []TransportRecord {
	if t.Commute == nil {
		return nil
	}

	returnDate := t.EndDate
	if returnDate == "" {
		returnDate = t.Date
	}

	var records []TransportRecord
	modes := []struct {
		vehicle core.VehicleType
		mode    Mode
	}{
		{core.VehicleCar, t.Commute.Car},
		{core.VehicleMotorcycle, t.Commute.Motorcycle},
		{core.VehicleBike, t.Commute.Bike},
	}
	for _, m := range modes {
		if !m.mode.Active || !m.mode.Distance.IsPositive() {
			continue
		}
		half := m.mode.Distance.Div(decimal.NewFromInt(2))
		allowance := half.Mul(mileage[m.vehicle]).Round(2)

		records = append(records,
			TransportRecord{
				ID:          core.ID(fmt.Sprintf("migrated_%s_%s_out", t.ID, m.vehicle)),
				Date:        t.Date,
				Distance:    num(half),
				TotalKm:     &Number{Decimal: half},
				Allowance:   num(allowance),
				VehicleType: m.vehicle,
				Destination: "Bahnhof",
			},
			TransportRecord{
				ID:          core.ID(fmt.Sprintf("migrated_%s_%s_return", t.ID, m.vehicle)),
				Date:        returnDate,
				Distance:    num(half),
				TotalKm:     &Number{Decimal: half},
				Allowance:   num(allowance),
				VehicleType: m.vehicle,
				Destination: "Bahnhof (Rückfahrt)",
			},
		)
	}

	if t.Commute.PublicTransport.Active && t.Commute.PublicTransport.Cost.IsPositive() {
		records = append(records, TransportRecord{
			ID:          core.ID(fmt.Sprintf("migrated_%s_public_transport", t.ID)),
			Date:        t.Date,
			Distance:    num(decimal.Zero),
			TotalKm:     &Number{Decimal: decimal.Zero},
			Allowance:   t.Commute.PublicTransport.Cost,
			VehicleType: core.VehiclePublicTransport,
			Destination: "Öffentliche Verkehrsmittel",
		})
	}

	return records
}
