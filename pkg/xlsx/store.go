// Package xlsx stores the book club tabs in a local Excel workbook, one
// worksheet per tab. It is a drop-in for the Google Sheets client when
// running offline.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"bookclub/pkg/sheets"

	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
)

// FileStore implements sheets.Store over a workbook on disk. The file is
// opened for every call and saved after every write.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) open(create bool) (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		return f, nil
	}
	if create && errors.Is(err, fs.ErrNotExist) {
		log.Infof("Creating workbook %s", s.path)
		return excelize.NewFile(), nil
	}
	return nil, fmt.Errorf("failed to open workbook: %w", err)
}

func requireSheet(f *excelize.File, tab string) error {
	idx, err := f.GetSheetIndex(tab)
	if err != nil {
		return err
	}
	if idx < 0 {
		return fmt.Errorf("sheet %s does not exist", tab)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, tab string) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open(false)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := requireSheet(f, tab); err != nil {
		return nil, err
	}
	return f.GetRows(tab)
}

func (s *FileStore) BatchUpdateCells(_ context.Context, writes []sheets.CellWrite) error {
	if len(writes) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open(false)
	if err != nil {
		return err
	}
	defer f.Close()

	ranges := make([]sheets.CellRange, len(writes))
	for i, w := range writes {
		r, err := sheets.ParseRange(w.Range)
		if err != nil {
			return err
		}
		if err := requireSheet(f, r.Tab); err != nil {
			return err
		}
		ranges[i] = r
	}
	for i, r := range ranges {
		for j, v := range writes[i].Values {
			col := r.FromCol + j
			if col > r.ToCol {
				break
			}
			name, err := excelize.CoordinatesToCellName(col+1, r.Row)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(r.Tab, name, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(s.path)
}

func (s *FileStore) AppendRows(_ context.Context, tab string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open(false)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := requireSheet(f, tab); err != nil {
		return err
	}
	existing, err := f.GetRows(tab)
	if err != nil {
		return err
	}
	if err := writeRows(f, tab, len(existing)+1, rows); err != nil {
		return err
	}
	return f.SaveAs(s.path)
}

// Tabs reads every worksheet of the workbook, keyed by sheet name.
func (s *FileStore) Tabs(_ context.Context) (map[string][][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open(false)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tabs := map[string][][]string{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
		tabs[name] = rows
	}
	return tabs, nil
}

// EnsureTab creates the workbook and the worksheet as needed and writes
// header into an empty worksheet.
func (s *FileStore) EnsureTab(_ context.Context, tab string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.open(true)
	if err != nil {
		return err
	}
	defer f.Close()
	idx, err := f.GetSheetIndex(tab)
	if err != nil {
		return err
	}
	if idx < 0 {
		if _, err := f.NewSheet(tab); err != nil {
			return err
		}
	}
	rows, err := f.GetRows(tab)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		if err := writeRows(f, tab, 1, [][]string{header}); err != nil {
			return err
		}
	}
	return f.SaveAs(s.path)
}

func writeRows(f *excelize.File, tab string, firstRow int, rows [][]string) error {
	for i, row := range rows {
		name, err := excelize.CoordinatesToCellName(1, firstRow+i)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(tab, name, &values); err != nil {
			return err
		}
	}
	return nil
}
