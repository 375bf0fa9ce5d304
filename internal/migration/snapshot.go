// Package migration brings persisted records from older data generations
// to the current schema. It operates on tolerant raw representations:
// numeric fields that fail to parse count as zero instead of aborting the
// whole run, so one corrupt record never blocks a migration.
package migration

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"fleetprotax/internal/core"
)

// Data-version tags. CurrentVersion is written back after every successful
// load; the distance redefinition applies to anything older than its
// threshold.
const (
	CurrentVersion           = "1.0.2"
	OldestKnownVersion       = "1.0.0"
	DistanceRedefinedVersion = "1.0.1"
)

type (
	// Number is a decimal that tolerates malformed JSON: numbers, numeric
	// strings, empty strings, null and garbage all decode (garbage to
	// zero). It marshals like a plain decimal.
	Number struct {
		decimal.Decimal
	}

	// Trip is the raw persisted shape of a trip, including the legacy
	// commute field that the distance migration drops.
	Trip struct {
		ID                     core.ID           `json:"id"`
		Date                   string            `json:"date"`
		EndDate                string            `json:"endDate,omitempty"`
		DepartureTime          string            `json:"departureTime,omitempty"`
		ReturnTime             string            `json:"returnTime,omitempty"`
		Destination            string            `json:"destination,omitempty"`
		Purpose                string            `json:"purpose,omitempty"`
		MealAllowance          Number            `json:"mealAllowance"`
		TransportRecords       []TransportRecord `json:"transportRecords"`
		SumTransportAllowances Number            `json:"sumTransportAllowances"`
		IsMultiDay             bool              `json:"isMultiDay,omitempty"`
		Commute                *Commute          `json:"commute,omitempty"`
	}

	TransportRecord struct {
		ID              core.ID          `json:"id"`
		Date            string           `json:"date"`
		Distance        Number           `json:"distance"`
		TotalKm         *Number          `json:"totalKm,omitempty"`
		Allowance       Number           `json:"allowance"`
		VehicleType     core.VehicleType `json:"vehicleType"`
		Destination     string           `json:"destination,omitempty"`
		ReceiptFileName string           `json:"receiptFileName,omitempty"`
	}

	Mode struct {
		Active   bool   `json:"active"`
		Distance Number `json:"distance"`
	}

	PublicTransportMode struct {
		Active bool   `json:"active"`
		Cost   Number `json:"cost"`
	}

	Commute struct {
		Car             Mode                `json:"car"`
		Motorcycle      Mode                `json:"motorcycle"`
		Bike            Mode                `json:"bike"`
		PublicTransport PublicTransportMode `json:"public_transport"`
	}

	// Settings is kept opaque except for the keys a migration touches, so
	// unknown settings survive a migration byte for byte.
	Settings map[string]json.RawMessage

	// Snapshot is the unit a migration transforms.
	Snapshot struct {
		Trips          []Trip
		DefaultCommute *Commute
		Settings       Settings
	}
)

// UnmarshalJSON never fails; anything that is not a usable number becomes
// zero. This is the ComputationFallback policy: silent recovery, covered
// by tests, because it can mask upstream corruption.
func (n *Number) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = d
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return n.Decimal.MarshalJSON()
}

func num(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// Core converts a migrated raw trip into the domain type. A missing
// totalKm falls back to the single-leg distance, as the old records were
// written before the field existed.
func (t Trip) Core() core.Trip {
	records := make([]core.TransportRecord, len(t.TransportRecords))
	for i, r := range t.TransportRecords {
		records[i] = r.Core()
	}
	return core.Trip{
		ID:                     t.ID,
		Date:                   t.Date,
		EndDate:                t.EndDate,
		DepartureTime:          t.DepartureTime,
		ReturnTime:             t.ReturnTime,
		Destination:            t.Destination,
		Purpose:                t.Purpose,
		MealAllowance:          t.MealAllowance.Decimal,
		TransportRecords:       records,
		SumTransportAllowances: t.SumTransportAllowances.Decimal,
		IsMultiDay:             t.IsMultiDay,
	}
}

func (r TransportRecord) Core() core.TransportRecord {
	totalKm := r.Distance.Decimal
	if r.TotalKm != nil {
		totalKm = r.TotalKm.Decimal
	}
	return core.TransportRecord{
		ID:              r.ID,
		Date:            r.Date,
		Distance:        r.Distance.Decimal,
		TotalKm:         totalKm,
		Allowance:       r.Allowance.Decimal,
		VehicleType:     r.VehicleType,
		Destination:     r.Destination,
		ReceiptFileName: r.ReceiptFileName,
	}
}

func (c *Commute) Core() core.CommuteDefaults {
	if c == nil {
		return core.DefaultCommute()
	}
	return core.CommuteDefaults{
		Car:             core.CommuteMode{Active: c.Car.Active, Distance: c.Car.Distance.Decimal},
		Motorcycle:      core.CommuteMode{Active: c.Motorcycle.Active, Distance: c.Motorcycle.Distance.Decimal},
		Bike:            core.CommuteMode{Active: c.Bike.Active, Distance: c.Bike.Distance.Decimal},
		PublicTransport: core.PublicTransportMode{Active: c.PublicTransport.Active, Cost: c.PublicTransport.Cost.Decimal},
	}
}

// CoreTrips converts every trip in the snapshot.
func (s *Snapshot) CoreTrips() []core.Trip {
	trips := make([]core.Trip, len(s.Trips))
	for i, t := range s.Trips {
		trips[i] = t.Core()
	}
	return trips
}
