package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"fleetprotax/internal/amqp"
	"fleetprotax/internal/core"
	"fleetprotax/internal/log"
	"fleetprotax/internal/storage"
)

// Trips returns the loaded trips. Callers must not mutate the returned
// slice; all writes go through the store.
func (s *Store) Trips() []core.Trip {
	return s.trips
}

func (s *Store) TripByID(id core.ID) (core.Trip, bool) {
	for _, t := range s.trips {
		if t.ID == id {
			return t, true
		}
	}
	return core.Trip{}, false
}

// AddTrip derives the meal allowance from the trip's clock fields, nets
// the given employer expenses against the tier rate, and appends the
// trip. The transport-record sum cache is recomputed before anything is
// persisted.
func (s *Store) AddTrip(ctx context.Context, t core.Trip, employerExpenses decimal.Decimal) (core.Trip, error) {
	if t.ID == "" {
		t.ID = core.NewID()
	}
	if t.TransportRecords == nil {
		t.TransportRecords = []core.TransportRecord{}
	}

	s.priceTrip(&t, employerExpenses)
	for i := range t.TransportRecords {
		if t.TransportRecords[i].ID == "" {
			t.TransportRecords[i].ID = core.NewID()
		}
		s.priceRecord(&t.TransportRecords[i])
	}
	t.RecomputeTransportSum()

	if err := t.Validate(); err != nil {
		return core.Trip{}, fmt.Errorf("validate trip: %w", err)
	}

	s.trips = append(s.trips, t)
	s.persist(ctx, storage.KeyTrips, s.trips)
	s.publish(ctx, amqp.KindTrip, t.ID, amqp.OpCreate)

	s.logger.InfoContext(ctx, "Trip added",
		log.FieldTripID, string(t.ID),
		log.FieldAllowance, t.MealAllowance.String(),
		"transport_records", len(t.TransportRecords))

	return t, nil
}

// AddTripWithCommute behaves like AddTrip and additionally synthesizes
// outbound and return station records from the configured default
// commute: one leg each way per active motorized mode, priced at the
// effective rate (base rate minus the per-km employer refund).
func (s *Store) AddTripWithCommute(ctx context.Context, t core.Trip, employerExpenses decimal.Decimal) (core.Trip, error) {
	t.TransportRecords = append(t.TransportRecords, s.commuteRecords(t)...)
	return s.AddTrip(ctx, t, employerExpenses)
}

func (s *Store) commuteRecords(t core.Trip) []core.TransportRecord {
	commute := s.commute.Sanitized()
	returnDate := t.EndDate
	if returnDate == "" {
		returnDate = t.Date
	}

	modes := []struct {
		vehicle core.VehicleType
		mode    core.CommuteMode
	}{
		{core.VehicleCar, commute.Car},
		{core.VehicleMotorcycle, commute.Motorcycle},
		{core.VehicleBike, commute.Bike},
	}

	var records []core.TransportRecord
	for _, m := range modes {
		if !m.mode.Active {
			continue
		}
		// Configured distances are round-trip; each leg carries half.
		leg := m.mode.Distance.Div(decimal.NewFromInt(2))
		rate := core.EffectiveMileageRate(s.rates.MileageRate(m.vehicle), s.refund.MileageRefundRate)
		allowance := core.TransportAllowance(leg, rate)

		records = append(records,
			core.TransportRecord{
				ID:          core.NewID(),
				Date:        t.Date,
				Distance:    leg,
				TotalKm:     leg,
				Allowance:   allowance,
				VehicleType: m.vehicle,
				Destination: "Bahnhof",
			},
			core.TransportRecord{
				ID:          core.NewID(),
				Date:        returnDate,
				Distance:    leg,
				TotalKm:     leg,
				Allowance:   allowance,
				VehicleType: m.vehicle,
				Destination: "Bahnhof (Rückfahrt)",
			},
		)
	}
	return records
}

func (s *Store) priceTrip(t *core.Trip, employerExpenses decimal.Decimal) {
	if t.DepartureTime == "" || t.ReturnTime == "" {
		return
	}
	meal := core.MealAllowanceFromClock(s.rates, t.Date, t.DepartureTime, t.EndDate, t.ReturnTime)
	t.MealAllowance = core.MealDeductible(meal.Rate, employerExpenses)
	t.IsMultiDay = t.EndDate != "" && t.EndDate != t.Date
}

// UpdateTrip replaces a trip's fields and re-derives allowance and sum.
func (s *Store) UpdateTrip(ctx context.Context, id core.ID, t core.Trip, employerExpenses decimal.Decimal) (core.Trip, error) {
	idx := s.tripIndex(id)
	if idx < 0 {
		return core.Trip{}, core.ErrTripNotFound
	}

	t.ID = id
	if t.TransportRecords == nil {
		t.TransportRecords = []core.TransportRecord{}
	}
	s.priceTrip(&t, employerExpenses)
	for i := range t.TransportRecords {
		s.priceRecord(&t.TransportRecords[i])
	}
	t.RecomputeTransportSum()

	if err := t.Validate(); err != nil {
		return core.Trip{}, fmt.Errorf("validate trip: %w", err)
	}

	s.trips[idx] = t
	s.persist(ctx, storage.KeyTrips, s.trips)
	s.publish(ctx, amqp.KindTrip, id, amqp.OpUpdate)

	return t, nil
}

// DeleteTrip removes a trip and, with it, every owned transport record.
// Receipt blobs referenced by the records are scheduled for best-effort
// deletion; a blob failure never blocks the trip deletion.
func (s *Store) DeleteTrip(ctx context.Context, id core.ID) error {
	idx := s.tripIndex(id)
	if idx < 0 {
		return core.ErrTripNotFound
	}

	for _, r := range s.trips[idx].TransportRecords {
		s.deleteReceipt(r.ReceiptFileName)
	}

	s.trips = append(s.trips[:idx], s.trips[idx+1:]...)
	s.persist(ctx, storage.KeyTrips, s.trips)
	s.publish(ctx, amqp.KindTrip, id, amqp.OpDelete)

	s.logger.InfoContext(ctx, "Trip deleted", log.FieldTripID, string(id))
	return nil
}

// AddTransportRecord appends a record to a trip. Motorized and bike
// records are priced from totalKm and the effective per-km rate;
// public-transport records keep their user-supplied ticket cost.
func (s *Store) AddTransportRecord(ctx context.Context, tripID core.ID, r core.TransportRecord) (core.TransportRecord, error) {
	idx := s.tripIndex(tripID)
	if idx < 0 {
		return core.TransportRecord{}, core.ErrTripNotFound
	}
	if r.ID == "" {
		r.ID = core.NewID()
	}
	s.priceRecord(&r)

	if err := r.Validate(); err != nil {
		return core.TransportRecord{}, fmt.Errorf("validate transport record: %w", err)
	}

	trip := &s.trips[idx]
	trip.TransportRecords = append(trip.TransportRecords, r)
	trip.RecomputeTransportSum()

	s.persist(ctx, storage.KeyTrips, s.trips)
	s.publish(ctx, amqp.KindTrip, tripID, amqp.OpUpdate)

	return r, nil
}

// UpdateTransportRecord replaces a record in place and reprices it.
func (s *Store) UpdateTransportRecord(ctx context.Context, tripID core.ID, r core.TransportRecord) (core.TransportRecord, error) {
	idx := s.tripIndex(tripID)
	if idx < 0 {
		return core.TransportRecord{}, core.ErrTripNotFound
	}
	trip := &s.trips[idx]

	for i := range trip.TransportRecords {
		if trip.TransportRecords[i].ID != r.ID {
			continue
		}
		s.priceRecord(&r)
		if err := r.Validate(); err != nil {
			return core.TransportRecord{}, fmt.Errorf("validate transport record: %w", err)
		}
		trip.TransportRecords[i] = r
		trip.RecomputeTransportSum()

		s.persist(ctx, storage.KeyTrips, s.trips)
		s.publish(ctx, amqp.KindTrip, tripID, amqp.OpUpdate)
		return r, nil
	}
	return core.TransportRecord{}, core.ErrRecordNotFound
}

// DeleteTransportRecord removes one record and refreshes the sum cache.
func (s *Store) DeleteTransportRecord(ctx context.Context, tripID, recordID core.ID) error {
	idx := s.tripIndex(tripID)
	if idx < 0 {
		return core.ErrTripNotFound
	}
	trip := &s.trips[idx]

	for i := range trip.TransportRecords {
		if trip.TransportRecords[i].ID != recordID {
			continue
		}
		s.deleteReceipt(trip.TransportRecords[i].ReceiptFileName)
		trip.TransportRecords = append(trip.TransportRecords[:i], trip.TransportRecords[i+1:]...)
		trip.RecomputeTransportSum()

		s.persist(ctx, storage.KeyTrips, s.trips)
		s.publish(ctx, amqp.KindTrip, tripID, amqp.OpUpdate)
		return nil
	}
	return core.ErrRecordNotFound
}

func (s *Store) priceRecord(r *core.TransportRecord) {
	if !r.VehicleType.Motorized() {
		return
	}
	rate := core.EffectiveMileageRate(s.rates.MileageRate(r.VehicleType), s.refund.MileageRefundRate)
	r.Allowance = core.TransportAllowance(r.TotalKm, rate)
}

func (s *Store) tripIndex(id core.ID) int {
	for i := range s.trips {
		if s.trips[i].ID == id {
			return i
		}
	}
	return -1
}
