package checkpoint

import (
	"context"
	"fmt"

	"bookclub/pkg/sheets"

	log "github.com/sirupsen/logrus"
)

// Tabs of the book club spreadsheet.
const (
	DashboardTab   = "Dashboard"
	MembersTab     = "Members"
	BooksTab       = "Books"
	CheckpointsTab = "Checkpoints"
	StatusTab      = "CheckpointStatus"
)

// StatusHeader is the header written when the CheckpointStatus tab is
// created from scratch.
var StatusHeader = []string{
	ColumnCheckpointID,
	ColumnMemberID,
	ColumnCompletionStatus,
	ColumnUpdatedDate,
}

// Result counts the rows a save touched.
type Result struct {
	Updated int
	Added   int
}

// Save reads the CheckpointStatus tab, reconciles updates against it and
// writes the outcome back: one batched cell update for existing rows, then
// one append for new rows. Nothing is retried or rolled back; if the append
// fails after the cell update went through a *PartialWriteError is returned.
func Save(ctx context.Context, store sheets.Store, checkpointID string, updates []Update) (*Result, error) {
	if err := validateRequest(checkpointID, updates); err != nil {
		return nil, err
	}

	snapshot, err := store.Get(ctx, StatusTab)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}

	plan, err := Reconcile(snapshot, checkpointID, updates)
	if err != nil {
		return nil, err
	}

	writes := make([]sheets.CellWrite, 0, len(plan.CellUpdates))
	for _, cu := range plan.CellUpdates {
		rng, err := cu.Address(StatusTab)
		if err != nil {
			return nil, fmt.Errorf("%w: no changes written: %v", ErrStoreWrite, err)
		}
		writes = append(writes, sheets.CellWrite{Range: rng, Values: cu.Values})
	}

	if len(writes) > 0 {
		log.Debugf("Updating %d existing rows for checkpoint %s", len(writes), checkpointID)
		if err := store.BatchUpdateCells(ctx, writes); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
	}

	if len(plan.NewRows) > 0 {
		log.Debugf("Appending %d new rows for checkpoint %s", len(plan.NewRows), checkpointID)
		if err := store.AppendRows(ctx, StatusTab, plan.NewRows); err != nil {
			if len(writes) > 0 {
				return nil, &PartialWriteError{Updated: len(writes), Pending: len(plan.NewRows), Err: err}
			}
			return nil, fmt.Errorf("%w: %v", ErrStoreWrite, err)
		}
	}

	log.WithFields(log.Fields{
		"checkpoint": checkpointID,
		"updated":    plan.Updated,
		"added":      plan.Added,
	}).Info("Saved checkpoint status")

	return &Result{Updated: plan.Updated, Added: plan.Added}, nil
}
