// Package memory keeps exported summaries in process. It stands in for
// Google Sheets when export is not configured.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"fatura/internal/aggregation"
	ports "fatura/internal/sheets"
)

var ErrNoExport = errors.New("no export for year")

type Store struct {
	mu      sync.Mutex
	tables  map[int][][]string
	exports int
}

var (
	_ ports.MatrixExporter = (*Store)(nil)
	_ ports.TableReader    = (*Store)(nil)
)

func New() *Store {
	return &Store{tables: make(map[int][][]string)}
}

// ExportMatrix keeps the rendered table of m, replacing the previous one.
func (s *Store) ExportMatrix(_ context.Context, year int, m *aggregation.Matrix) error {
	if m == nil {
		return errors.New("nil matrix")
	}
	table := m.Table()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[year] = table
	s.exports++
	return nil
}

// ReadTable returns a copy of the last table exported for year.
func (s *Store) ReadTable(_ context.Context, year int) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.tables[year]
	if !ok {
		return nil, ErrNoExport
	}
	out := make([][]string, len(table))
	for i, row := range table {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

// Years lists the years exported so far, ascending.
func (s *Store) Years() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	years := make([]int, 0, len(s.tables))
	for y := range s.tables {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Exports counts ExportMatrix calls.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
