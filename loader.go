package dataframebuffer

import (
	"context"
	"fmt"

	"github.com/zikwall/dataframe-buffer/src/cx"
	"github.com/zikwall/dataframe-buffer/src/db/cxsqlite"
)

// LoadFullTable reads every row a finalized dumper left in the store, in append order.
// The columns of the table's index, if any, become the index of the returned frame.
// The store must not have an open dumper.
func LoadFullTable(ctx context.Context, store cx.Store) (*cx.Frame, error) {
	if err := requireTable(ctx, store, TableName); err != nil {
		return nil, err
	}
	indexes, err := store.Indexes(ctx, TableName)
	if err != nil {
		return nil, err
	}
	if len(indexes) > 1 {
		names := make([]string, len(indexes))
		for i, index := range indexes {
			names[i] = index.Name
		}
		return nil, fmt.Errorf("%w: %s has %v", cx.ErrAmbiguousIndex, TableName, names)
	}
	var index []string
	if len(indexes) == 1 {
		index = indexes[0].Columns
	}
	return load(ctx, store, TableName, index)
}

// LoadIndexOnly reads the distinct index tuples without touching the primary table
func LoadIndexOnly(ctx context.Context, store cx.Store) (*cx.Frame, error) {
	if err := requireTable(ctx, store, IndexTableName); err != nil {
		return nil, err
	}
	columns, err := store.Columns(ctx, IndexTableName)
	if err != nil {
		return nil, err
	}
	return load(ctx, store, IndexTableName, columns)
}

// LoadSQLite is LoadFullTable on a SQLite file opened read-only
func LoadSQLite(ctx context.Context, path string) (*cx.Frame, error) {
	return loadSQLite(ctx, path, LoadFullTable)
}

// LoadSQLiteIndex is LoadIndexOnly on a SQLite file opened read-only
func LoadSQLiteIndex(ctx context.Context, path string) (*cx.Frame, error) {
	return loadSQLite(ctx, path, LoadIndexOnly)
}

func loadSQLite(
	ctx context.Context,
	path string,
	loader func(context.Context, cx.Store) (*cx.Frame, error),
) (frame *cx.Frame, err error) {
	store, _, err := cxsqlite.OpenReadOnly(ctx, path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return loader(ctx, store)
}

func requireTable(ctx context.Context, store cx.Store, table string) error {
	exists, err := store.Exists(ctx, table)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", cx.ErrTableNotFound, table)
	}
	return nil
}

func load(ctx context.Context, store cx.Store, table string, index []string) (*cx.Frame, error) {
	columns, err := store.Columns(ctx, table)
	if err != nil {
		return nil, err
	}
	rows, err := store.Select(ctx, cx.NewView(table, columns))
	if err != nil {
		return nil, err
	}
	return cx.NewFrame(columns, index...).AppendVector(rows...), nil
}
