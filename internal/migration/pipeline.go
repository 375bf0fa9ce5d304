package migration

import (
	"log/slog"

	"fleetprotax/internal/core"
	"fleetprotax/internal/version"
)

// Step is one schema migration. It applies iff the stored data version
// sorts strictly before Threshold; transforms are written to be
// idempotent, so re-running the chain on current data is a no-op.
type Step struct {
	Threshold string
	Name      string
	Apply     func(snap *Snapshot, rates core.RateTable)
}

// Steps returns the ordered migration chain. New migrations are appended;
// past entries are never edited, so applied history stays auditable.
func Steps() []Step {
	return []Step{
		{
			Threshold: DistanceRedefinedVersion,
			Name:      "commute distances redefined as round-trip",
			Apply:     redefineDistances,
		},
	}
}

// Run applies every pending step to the snapshot in order and returns the
// names of the steps that ran. The snapshot is modified in place.
func Run(snap *Snapshot, storedVersion string, rates core.RateTable) []string {
	if storedVersion == "" {
		storedVersion = OldestKnownVersion
	}

	var applied []string
	for _, step := range Steps() {
		if !version.Less(storedVersion, step.Threshold) {
			continue
		}
		step.Apply(snap, rates)
		applied = append(applied, step.Name)
		slog.Info("Applied data migration",
			"component", "migration",
			"migration", step.Name,
			"threshold", step.Threshold,
			"stored_version", storedVersion,
			"trips", len(snap.Trips))
	}
	return applied
}
