package dataframebuffer

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

var errStoreMock = errors.New("store mock failure")

type mockTable struct {
	columns []string
	rows    []cx.Vector
}

// StoreMock is an in-memory cx.Store, failures can be injected per operation
type StoreMock struct {
	tables  map[string]*mockTable
	indexes map[string]cx.Index
	closed  int
	inserts int

	failInsert    error
	failDropIndex error
	failClose     error
}

func NewStoreMock() *StoreMock {
	return &StoreMock{
		tables:  map[string]*mockTable{},
		indexes: map[string]cx.Index{},
	}
}

func (s *StoreMock) Exists(_ context.Context, table string) (bool, error) {
	_, ok := s.tables[table]
	return ok, nil
}

func (s *StoreMock) Drop(_ context.Context, table string) error {
	delete(s.tables, table)
	for name, index := range s.indexes {
		if index.Table == table {
			delete(s.indexes, name)
		}
	}
	return nil
}

func (s *StoreMock) Create(_ context.Context, table cx.Table) error {
	if _, ok := s.tables[table.Name]; !ok {
		s.tables[table.Name] = &mockTable{columns: table.View().Columns}
	}
	return nil
}

func (s *StoreMock) Insert(_ context.Context, view cx.View, rows []cx.Vector) (uint64, error) {
	if s.failInsert != nil {
		return 0, s.failInsert
	}
	t, ok := s.tables[view.Name]
	if !ok {
		return 0, fmt.Errorf("no table %s", view.Name)
	}
	for _, row := range rows {
		stored := make(cx.Vector, len(t.columns))
		for i, c := range view.Columns {
			for j, tc := range t.columns {
				if tc == c {
					stored[j] = row[i]
				}
			}
		}
		t.rows = append(t.rows, stored)
	}
	s.inserts++
	return uint64(len(rows)), nil
}

func (s *StoreMock) Deduplicate(_ context.Context, view cx.View) error {
	t := s.tables[view.Name]
	seen := map[string]struct{}{}
	kept := t.rows[:0]
	for _, row := range t.rows {
		key := fmt.Sprintf("%#v", row)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	t.rows = kept
	return nil
}

func (s *StoreMock) CreateIndex(_ context.Context, index cx.Index) error {
	if _, ok := s.indexes[index.Name]; !ok {
		s.indexes[index.Name] = index
	}
	return nil
}

func (s *StoreMock) DropIndex(_ context.Context, index cx.Index) error {
	if s.failDropIndex != nil {
		return s.failDropIndex
	}
	delete(s.indexes, index.Name)
	return nil
}

func (s *StoreMock) Indexes(_ context.Context, table string) ([]cx.Index, error) {
	var out []cx.Index
	for _, index := range s.indexes {
		if index.Table == table {
			out = append(out, index)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *StoreMock) Columns(_ context.Context, table string) ([]string, error) {
	t, ok := s.tables[table]
	if !ok {
		return nil, cx.ErrTableNotFound
	}
	return t.columns, nil
}

func (s *StoreMock) Select(_ context.Context, view cx.View) ([]cx.Vector, error) {
	t, ok := s.tables[view.Name]
	if !ok {
		return nil, cx.ErrTableNotFound
	}
	return append([]cx.Vector(nil), t.rows...), nil
}

func (s *StoreMock) Close() error {
	s.closed++
	return s.failClose
}

func (s *StoreMock) rows(table string) []cx.Vector {
	if t, ok := s.tables[table]; ok {
		return t.rows
	}
	return nil
}
