package api

import (
	"context"

	"bookclub/pkg/sheets"
)

type mockSheet struct {
	Tabs      map[string][][]string
	GetErr    error
	UpdateErr error
	AppendErr error

	GetCalls         []string
	UpdateCellsCalls [][]sheets.CellWrite
	AppendRowsCalls  [][]string
}

func (m *mockSheet) Get(_ context.Context, tab string) ([][]string, error) {
	m.GetCalls = append(m.GetCalls, tab)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Tabs[tab], nil
}

func (m *mockSheet) BatchUpdateCells(_ context.Context, writes []sheets.CellWrite) error {
	m.UpdateCellsCalls = append(m.UpdateCellsCalls, writes)
	return m.UpdateErr
}

func (m *mockSheet) AppendRows(_ context.Context, _ string, rows [][]string) error {
	m.AppendRowsCalls = append(m.AppendRowsCalls, rows...)
	return m.AppendErr
}
