package checkpoint

import (
	"context"
	"fmt"

	"bookclub/pkg/sheets"

	log "github.com/sirupsen/logrus"
)

// Seed gives a CheckpointStatus tab that has a header but no data rows a
// "NO" row for every active member of the current checkpoint. Save refuses
// to reconcile against a header-only table, so a freshly created tab must
// be seeded before the first save. A tab that already has data rows is
// left alone and Seed returns 0.
func Seed(ctx context.Context, store sheets.Store) (int, error) {
	rows, err := store.Get(ctx, StatusTab)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, fmt.Errorf("%w: %s has no header row", ErrEmptyTable, StatusTab)
	}
	cols, err := resolveColumns(rows[0])
	if err != nil {
		return 0, err
	}
	if len(rows) > 1 {
		return 0, nil
	}

	board, err := LoadBoard(ctx, store)
	if err != nil {
		return 0, err
	}
	if len(board.Members) == 0 {
		return 0, fmt.Errorf("%w: no active members to seed %s with", ErrEmptyTable, StatusTab)
	}

	seed := make([][]string, 0, len(board.Members))
	for _, m := range board.Members {
		row := make([]string, cols.width)
		row[cols.checkpoint] = board.CheckpointID
		row[cols.member] = m.MemberID
		row[cols.completion] = StatusNo
		seed = append(seed, row)
	}
	if err := store.AppendRows(ctx, StatusTab, seed); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	log.WithFields(log.Fields{
		"checkpoint": board.CheckpointID,
		"rows":       len(seed),
	}).Info("Seeded checkpoint status")
	return len(seed), nil
}
