package sheets

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps tabs in process memory. It backs the "memory" store
// option and tests that need writes to be visible on the next read.
type MemoryStore struct {
	mu   sync.Mutex
	tabs map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tabs: map[string][][]string{}}
}

// SetTab replaces the contents of tab.
func (m *MemoryStore) SetTab(tab string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tabs[tab] = copyRows(rows)
}

func (m *MemoryStore) Get(_ context.Context, tab string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.tabs[tab]
	if !ok {
		return nil, fmt.Errorf("tab %q not found", tab)
	}
	return copyRows(rows), nil
}

func (m *MemoryStore) BatchUpdateCells(_ context.Context, writes []CellWrite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ranges := make([]CellRange, len(writes))
	for i, w := range writes {
		r, err := ParseRange(w.Range)
		if err != nil {
			return err
		}
		if _, ok := m.tabs[r.Tab]; !ok {
			return fmt.Errorf("tab %q not found", r.Tab)
		}
		ranges[i] = r
	}
	for i, r := range ranges {
		rows := m.tabs[r.Tab]
		for len(rows) < r.Row {
			rows = append(rows, nil)
		}
		row := rows[r.Row-1]
		for j, v := range writes[i].Values {
			col := r.FromCol + j
			if col > r.ToCol {
				break
			}
			for len(row) <= col {
				row = append(row, "")
			}
			row[col] = v
		}
		rows[r.Row-1] = row
		m.tabs[r.Tab] = rows
	}
	return nil
}

func (m *MemoryStore) AppendRows(_ context.Context, tab string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tabs[tab]; !ok {
		return fmt.Errorf("tab %q not found", tab)
	}
	m.tabs[tab] = append(m.tabs[tab], copyRows(rows)...)
	return nil
}

func (m *MemoryStore) EnsureTab(_ context.Context, tab string, header []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tabs[tab]) == 0 {
		m.tabs[tab] = [][]string{append([]string(nil), header...)}
	}
	return nil
}

func copyRows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
