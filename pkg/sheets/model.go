package sheets

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Store is the tabular collaborator the checkpoint code reads from and
// writes to. Tabs are addressed by name, cells by A1 ranges.
type Store interface {
	Get(ctx context.Context, tab string) ([][]string, error)
	BatchUpdateCells(ctx context.Context, writes []CellWrite) error
	AppendRows(ctx context.Context, tab string, rows [][]string) error
}

// TabInitializer is implemented by stores that can create a missing tab.
type TabInitializer interface {
	EnsureTab(ctx context.Context, tab string, header []string) error
}

// CellWrite sets the cells of a single-row A1 range such as
// "CheckpointStatus!C2:D2".
type CellWrite struct {
	Range  string
	Values []string
}

var plainTab = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// QuoteTab renders a tab name the way A1 notation expects it.
func QuoteTab(tab string) string {
	if plainTab.MatchString(tab) {
		return tab
	}
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}

// RangeAddress returns the A1 range covering columns fromCol..toCol
// (0-based, inclusive) on the 1-based physical row. Rows are not capped at
// the xlsx limit since Sheets tabs can be longer.
func RangeAddress(tab string, row, fromCol, toCol int) (string, error) {
	if row < 1 {
		return "", fmt.Errorf("invalid row number %d", row)
	}
	if fromCol > toCol {
		fromCol, toCol = toCol, fromCol
	}
	from, err := excelize.ColumnNumberToName(fromCol + 1)
	if err != nil {
		return "", err
	}
	to, err := excelize.ColumnNumberToName(toCol + 1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s!%s%d:%s%d", QuoteTab(tab), from, row, to, row), nil
}

func cellCoordinates(name string) (col, row int, err error) {
	letters, row, err := excelize.SplitCellName(name)
	if err != nil {
		return 0, 0, err
	}
	col, err = excelize.ColumnNameToNumber(letters)
	if err != nil {
		return 0, 0, err
	}
	return col, row, nil
}

// CellRange is a parsed single-row A1 range. Columns are 0-based, Row is
// 1-based.
type CellRange struct {
	Tab     string
	Row     int
	FromCol int
	ToCol   int
}

// ParseRange parses the output of RangeAddress. A range naming a single
// cell ("Tab!C2") is accepted as well.
func ParseRange(addr string) (CellRange, error) {
	idx := strings.LastIndex(addr, "!")
	if idx <= 0 {
		return CellRange{}, fmt.Errorf("range %q has no tab name", addr)
	}
	tab := addr[:idx]
	if len(tab) >= 2 && strings.HasPrefix(tab, "'") && strings.HasSuffix(tab, "'") {
		tab = strings.ReplaceAll(tab[1:len(tab)-1], "''", "'")
	}
	cells := strings.SplitN(addr[idx+1:], ":", 2)
	fromCol, fromRow, err := cellCoordinates(cells[0])
	if err != nil {
		return CellRange{}, fmt.Errorf("range %q: %w", addr, err)
	}
	toCol, toRow := fromCol, fromRow
	if len(cells) == 2 {
		toCol, toRow, err = cellCoordinates(cells[1])
		if err != nil {
			return CellRange{}, fmt.Errorf("range %q: %w", addr, err)
		}
	}
	if fromRow != toRow {
		return CellRange{}, fmt.Errorf("range %q spans more than one row", addr)
	}
	if fromCol > toCol {
		fromCol, toCol = toCol, fromCol
	}
	return CellRange{Tab: tab, Row: fromRow, FromCol: fromCol - 1, ToCol: toCol - 1}, nil
}
