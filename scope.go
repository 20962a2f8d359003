package dataframebuffer

import (
	"context"
	"errors"
	"fmt"

	"github.com/zikwall/dataframe-buffer/src/cx"
	"github.com/zikwall/dataframe-buffer/src/db/cxsqlite"
)

// NewSQLiteDumper opens the SQLite file at path and returns a dumper owning it.
// With DeleteExisting the file and its journals are removed first. Without it, and
// unless AppendToExisting is set, a file holding any table is refused with cx.ErrStoreExists.
func NewSQLiteDumper(ctx context.Context, path string, options *Options, sqliteOptions ...cxsqlite.Option) (Dumper, error) {
	if options == nil {
		options = DefaultOptions()
	}
	if options.deleteExisting {
		if err := cxsqlite.RemoveFiles(path); err != nil {
			return nil, err
		}
	}
	store, conn, err := cxsqlite.Open(ctx, path, sqliteOptions...)
	if err != nil {
		return nil, err
	}
	if !options.deleteExisting && !options.appendToExisting {
		tables, err := cxsqlite.Tables(ctx, conn)
		if err == nil && len(tables) > 0 {
			err = fmt.Errorf("%w: %s holds tables %v", cx.ErrStoreExists, path, tables)
		}
		if err != nil {
			return nil, errors.Join(err, store.Close())
		}
	}
	return NewDumper(ctx, store, nil, options)
}

// WithDumper runs fn with a dumper over store and closes the dumper however fn ends:
// on success, on error and on panic, which is re-raised once the store is released.
// Rows already dumped stay in the store when fn fails, and the index is still finalized.
// The error of fn and the error of Close are joined.
func WithDumper(
	ctx context.Context,
	store cx.Store,
	buffer cx.Buffer,
	options *Options,
	fn func(Dumper) error,
) (err error) {
	if options == nil {
		options = DefaultOptions()
	}
	d, err := NewDumper(ctx, store, buffer, options)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if closeErr := d.Close(); closeErr != nil {
				options.logger.Logf("close dumper after panic: %s", closeErr)
			}
			panic(r)
		}
		err = errors.Join(err, d.Close())
	}()
	return fn(d)
}
