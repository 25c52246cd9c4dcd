package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"bookclub/pkg/checkpoint"
	"bookclub/pkg/sheets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trimRows drops trailing empty cells, which excelize does not report.
func trimRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		n := len(row)
		for n > 0 && row[n-1] == "" {
			n--
		}
		out[i] = append([]string{}, row[:n]...)
	}
	return out
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "bookclub.xlsx"))
}

func TestGetMissingWorkbook(t *testing.T) {
	s := newStore(t)
	_, err := s.Get(context.Background(), "Members")
	assert.Error(t, err)
	assert.Error(t, s.AppendRows(context.Background(), "Members", [][]string{{"M1"}}))
}

func TestEnsureTabAndAppend(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.EnsureTab(ctx, checkpoint.StatusTab, checkpoint.StatusHeader))
	require.NoError(t, s.EnsureTab(ctx, checkpoint.StatusTab, []string{"ignored"}))

	rows, err := s.Get(ctx, checkpoint.StatusTab)
	require.NoError(t, err)
	assert.Equal(t, [][]string{checkpoint.StatusHeader}, rows)

	require.NoError(t, s.AppendRows(ctx, checkpoint.StatusTab, [][]string{
		{"CP1", "M1", "YES", "6/1/2024"},
		{"CP1", "M2", "NO", ""},
	}))
	rows, err = s.Get(ctx, checkpoint.StatusTab)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"CheckPointID", "MemberID", "CompletionStatus", "UpdatedDate"},
		{"CP1", "M1", "YES", "6/1/2024"},
		{"CP1", "M2", "NO"},
	}, trimRows(rows))

	_, err = s.Get(ctx, "Books")
	assert.Error(t, err)
}

func TestTabs(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Tabs(ctx)
	assert.Error(t, err)

	require.NoError(t, s.EnsureTab(ctx, checkpoint.MembersTab, []string{"MemberID", "Status"}))
	require.NoError(t, s.AppendRows(ctx, checkpoint.MembersTab, [][]string{{"M1", "active"}}))

	tabs, err := s.Tabs(ctx)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"MemberID", "Status"}, {"M1", "active"}}, tabs[checkpoint.MembersTab])
	assert.Contains(t, tabs, "Sheet1")
}

func TestBatchUpdateCells(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.EnsureTab(ctx, "Status Sheet", []string{"A", "B", "C", "D"}))
	require.NoError(t, s.AppendRows(ctx, "Status Sheet", [][]string{{"a1", "b1", "c1", "d1"}}))

	rng, err := sheets.RangeAddress("Status Sheet", 2, 1, 2)
	require.NoError(t, err)
	require.NoError(t, s.BatchUpdateCells(ctx, []sheets.CellWrite{{Range: rng, Values: []string{"B!", "C!"}}}))

	rows, err := s.Get(ctx, "Status Sheet")
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "B!", "C!", "d1"}, rows[1])

	err = s.BatchUpdateCells(ctx, []sheets.CellWrite{{Range: "Nope!A1:A1", Values: []string{"x"}}})
	assert.Error(t, err)
}

func TestSaveThroughFileStore(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.EnsureTab(ctx, checkpoint.StatusTab, checkpoint.StatusHeader))
	require.NoError(t, s.AppendRows(ctx, checkpoint.StatusTab, [][]string{{"CP1", "M1", "NO", ""}}))

	updates := []checkpoint.Update{
		{MemberID: "M1", CompletionStatus: "YES", UpdatedDate: "6/1/2024"},
		{MemberID: "M2", CompletionStatus: "NO"},
	}
	res, err := checkpoint.Save(ctx, s, "CP1", updates)
	require.NoError(t, err)
	assert.Equal(t, &checkpoint.Result{Updated: 1, Added: 1}, res)

	res, err = checkpoint.Save(ctx, s, "CP1", updates)
	require.NoError(t, err)
	assert.Equal(t, &checkpoint.Result{Updated: 2, Added: 0}, res)

	rows, err := s.Get(ctx, checkpoint.StatusTab)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"CheckPointID", "MemberID", "CompletionStatus", "UpdatedDate"},
		{"CP1", "M1", "YES", "6/1/2024"},
		{"CP1", "M2", "NO"},
	}, trimRows(rows))
}
