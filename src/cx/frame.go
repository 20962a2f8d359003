package cx

import (
	"fmt"
)

// Frame is one record batch: a set of rows sharing the same columns,
// optionally declaring some of those columns as its index (logical key).
type Frame struct {
	columns []string
	index   []string
	rows    []Vector
}

// NewFrame creates an empty frame with the given columns and index columns
func NewFrame(columns []string, index ...string) *Frame {
	return &Frame{
		columns: append([]string(nil), columns...),
		index:   append([]string(nil), index...),
	}
}

// Append adds rows to the frame, in order
func (f *Frame) Append(rows ...Vectorable) *Frame {
	for _, r := range rows {
		f.rows = append(f.rows, r.Row())
	}
	return f
}

// AppendVector adds raw vectors to the frame, in order
func (f *Frame) AppendVector(rows ...Vector) *Frame {
	f.rows = append(f.rows, rows...)
	return f
}

func (f *Frame) Columns() []string {
	return f.columns
}

func (f *Frame) Index() []string {
	return f.index
}

func (f *Frame) Rows() []Vector {
	return f.rows
}

func (f *Frame) Len() int {
	return len(f.rows)
}

// Column returns every value of the named column, or false if there is no such column
func (f *Frame) Column(name string) ([]interface{}, bool) {
	pos := position(f.columns, name)
	if pos < 0 {
		return nil, false
	}
	values := make([]interface{}, 0, len(f.rows))
	for _, row := range f.rows {
		values = append(values, row[pos])
	}
	return values, true
}

// Validate checks the frame is well-formed on its own:
// unique column names, index columns among the columns, every row as wide as the columns.
func (f *Frame) Validate() error {
	if len(f.columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidFrame)
	}
	seen := make(map[string]struct{}, len(f.columns))
	for _, c := range f.columns {
		if _, ok := seen[c]; ok {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidFrame, c)
		}
		seen[c] = struct{}{}
	}
	indexed := make(map[string]struct{}, len(f.index))
	for _, c := range f.index {
		if _, ok := seen[c]; !ok {
			return fmt.Errorf("%w: index column %q is not a column", ErrInvalidFrame, c)
		}
		if _, ok := indexed[c]; ok {
			return fmt.Errorf("%w: duplicate index column %q", ErrInvalidFrame, c)
		}
		indexed[c] = struct{}{}
	}
	for i, row := range f.rows {
		if len(row) != len(f.columns) {
			return fmt.Errorf("%w: row %d has %d values, expected %d", ErrInvalidFrame, i, len(row), len(f.columns))
		}
	}
	return nil
}

// project picks the given columns, in the given order, out of every row
func (f *Frame) project(columns []string) []Vector {
	positions := make([]int, len(columns))
	for i, c := range columns {
		positions[i] = position(f.columns, c)
	}
	out := make([]Vector, 0, len(f.rows))
	for _, row := range f.rows {
		v := make(Vector, len(positions))
		for i, p := range positions {
			v[i] = row[p]
		}
		out = append(out, v)
	}
	return out
}

func position(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}
