// Package memory is an in-memory stand-in for the Google Sheets mirror,
// used for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fleetprotax/internal/core"
	ports "fleetprotax/internal/sheets"
)

type Store struct {
	mu        sync.Mutex
	trips     []core.Trip
	summaries map[int]core.YearSummary
}

var (
	_ ports.TripWriter    = (*Store)(nil)
	_ ports.SummaryWriter = (*Store)(nil)
)

func New() *Store {
	return &Store{summaries: map[int]core.YearSummary{}}
}

// AppendTrip stores the trip and returns a synthetic row reference.
func (s *Store) AppendTrip(_ context.Context, t core.Trip) (string, error) {
	if err := t.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = append(s.trips, t)
	return fmt.Sprintf("mem:%d", len(s.trips)), nil
}

// WriteSummary keeps the latest totals per year, like the sheet row it
// stands in for.
func (s *Store) WriteSummary(_ context.Context, sum core.YearSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[sum.Year] = sum
	return nil
}

// Trips returns a copy of the mirrored trips.
func (s *Store) Trips() []core.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Trip(nil), s.trips...)
}

// Summary returns the last written totals for a year.
func (s *Store) Summary(year int) (core.YearSummary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.summaries[year]
	return sum, ok
}
