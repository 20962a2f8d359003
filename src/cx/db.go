package cx

import (
	"context"
)

// View names a table and the columns a statement touches, in order
type View struct {
	Name    string
	Columns []string
}

func NewView(name string, columns []string) View {
	return View{Name: name, Columns: columns}
}

// Column is a typed column definition
type Column struct {
	Name string
	Type ColumnType
}

// Table is a table definition used for creation
type Table struct {
	Name    string
	Columns []Column
}

func (t Table) View() View {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return NewView(t.Name, names)
}

// Index is a named index over some columns of a table
type Index struct {
	Name    string
	Table   string
	Columns []string
}

// Store is the append-only table store frames are persisted to.
// A Store is owned by exactly one Dumper for its whole lifetime.
type Store interface {
	// Exists reports whether the table is present
	Exists(ctx context.Context, table string) (bool, error)
	// Drop removes the table and everything attached to it, missing tables are ignored
	Drop(ctx context.Context, table string) error
	// Create creates the table unless it already exists
	Create(ctx context.Context, table Table) error
	// Insert appends rows to the view's table, all rows or none
	Insert(ctx context.Context, view View, rows []Vector) (uint64, error)
	// Deduplicate rewrites the table as the distinct set of its rows over the view's columns
	Deduplicate(ctx context.Context, view View) error
	CreateIndex(ctx context.Context, index Index) error
	DropIndex(ctx context.Context, index Index) error
	// Indexes lists the named indexes of a table, engine-internal indexes excluded
	Indexes(ctx context.Context, table string) ([]Index, error)
	// Columns lists the user-visible columns of a table in storage order
	Columns(ctx context.Context, table string) ([]string, error)
	// Select reads the view's columns of every row, in insertion order
	Select(ctx context.Context, view View) ([]Vector, error)
	Close() error
}
