// Package checkpoint merges member completion updates into the
// CheckpointStatus table and builds the current-checkpoint board.
package checkpoint

import (
	"fmt"
	"strings"

	"bookclub/pkg/sheets"
)

// Required CheckpointStatus columns. Their physical order in the tab does
// not matter.
const (
	ColumnCheckpointID     = "CheckPointID"
	ColumnMemberID         = "MemberID"
	ColumnCompletionStatus = "CompletionStatus"
	ColumnUpdatedDate      = "UpdatedDate"
)

const (
	StatusYes = "YES"
	StatusNo  = "NO"
)

// Update is one member's completion state as submitted by a client.
type Update struct {
	MemberID         string
	CompletionStatus string
	UpdatedDate      string
}

// CellRangeWrite replaces the cells FromCol..ToCol (0-based, inclusive) of
// the 1-based physical Row.
type CellRangeWrite struct {
	Row     int
	FromCol int
	ToCol   int
	Values  []string
}

// Address renders the write as an A1 range on tab.
func (w CellRangeWrite) Address(tab string) (string, error) {
	return sheets.RangeAddress(tab, w.Row, w.FromCol, w.ToCol)
}

// Plan is the set of writes that brings the table in line with a batch of
// updates.
type Plan struct {
	CellUpdates []CellRangeWrite
	NewRows     [][]string
	Updated     int
	Added       int
}

type columns struct {
	checkpoint, member, completion, date int
	width                                int
}

// NormalizeStatus maps a client status onto YES or NO.
func NormalizeStatus(status string) string {
	if strings.ToUpper(status) == StatusYes {
		return StatusYes
	}
	return StatusNo
}

func rowKey(checkpointID, memberID string) string {
	return checkpointID + "|" + memberID
}

func validateRequest(checkpointID string, updates []Update) error {
	if checkpointID == "" || updates == nil {
		return fmt.Errorf("%w: missing checkpointId or updates", ErrInvalidRequest)
	}
	return nil
}

func resolveColumns(header []string) (columns, error) {
	find := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		return -1
	}
	cols := columns{
		checkpoint: find(ColumnCheckpointID),
		member:     find(ColumnMemberID),
		completion: find(ColumnCompletionStatus),
		date:       find(ColumnUpdatedDate),
		width:      len(header),
	}
	if cols.checkpoint < 0 || cols.member < 0 || cols.completion < 0 || cols.date < 0 {
		return cols, fmt.Errorf("%w: %s headers must include %s, %s, %s, %s", ErrSchemaMismatch,
			StatusTab, ColumnCheckpointID, ColumnMemberID, ColumnCompletionStatus, ColumnUpdatedDate)
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// Reconcile decides, for each update, whether the member already has a row
// for checkpointID (update in place) or needs a new one (append). The
// snapshot is the full tab including its header row and is not modified.
//
// Rows are keyed on CheckPointID|MemberID; if a key occurs more than once
// the first occurrence is the one updated. A table without at least one
// data row is rejected with ErrEmptyTable.
func Reconcile(snapshot [][]string, checkpointID string, updates []Update) (*Plan, error) {
	if err := validateRequest(checkpointID, updates); err != nil {
		return nil, err
	}
	if len(snapshot) < 2 || len(snapshot[0]) == 0 {
		return nil, fmt.Errorf("%w: %s sheet is empty", ErrEmptyTable, StatusTab)
	}
	cols, err := resolveColumns(snapshot[0])
	if err != nil {
		return nil, err
	}

	// Header is physical row 1, so data row i lives on row i+2.
	positions := make(map[string]int, len(snapshot)-1)
	for i, row := range snapshot[1:] {
		key := rowKey(cell(row, cols.checkpoint), cell(row, cols.member))
		if _, seen := positions[key]; !seen {
			positions[key] = i + 2
		}
	}

	lo, hi := cols.completion, cols.date
	if lo > hi {
		lo, hi = hi, lo
	}

	plan := &Plan{}
	for _, u := range updates {
		status := NormalizeStatus(u.CompletionStatus)
		date := ""
		if status == StatusYes {
			date = u.UpdatedDate
		}

		physical, ok := positions[rowKey(checkpointID, u.MemberID)]
		if !ok {
			row := make([]string, cols.width)
			row[cols.checkpoint] = checkpointID
			row[cols.member] = u.MemberID
			row[cols.completion] = status
			row[cols.date] = date
			plan.NewRows = append(plan.NewRows, row)
			continue
		}

		// Columns between the two targets keep their current contents.
		existing := snapshot[physical-1]
		values := make([]string, hi-lo+1)
		for c := lo; c <= hi; c++ {
			values[c-lo] = cell(existing, c)
		}
		values[cols.completion-lo] = status
		values[cols.date-lo] = date
		plan.CellUpdates = append(plan.CellUpdates, CellRangeWrite{
			Row:     physical,
			FromCol: lo,
			ToCol:   hi,
			Values:  values,
		})
	}
	plan.Updated = len(plan.CellUpdates)
	plan.Added = len(plan.NewRows)
	return plan, nil
}
