package sheets

import (
	"context"

	"fleetprotax/internal/core"
)

// Ports for outbound adapters.
type (
	// TripWriter mirrors one trip into an external sheet.
	TripWriter interface {
		AppendTrip(ctx context.Context, t core.Trip) (rowRef string, err error)
	}

	// SummaryWriter replaces the totals row of one year.
	SummaryWriter interface {
		WriteSummary(ctx context.Context, s core.YearSummary) error
	}
)
