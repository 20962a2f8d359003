package dataframebuffer

import (
	"context"
	"fmt"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

// replaceIndex leaves target as the only index of its table.
// Stores cannot rename indexes, so the new index is always created before any old one is dropped:
// an interruption leaves a duplicate index behind, never a table without one.
// Running replaceIndex again on such a table completes the replacement.
func replaceIndex(ctx context.Context, store cx.Store, target cx.Index) error {
	existing, err := store.Indexes(ctx, target.Table)
	if err != nil {
		return err
	}
	conflict := false
	for _, index := range existing {
		if index.Name == target.Name && !sameColumns(index.Columns, target.Columns) {
			conflict = true
		}
	}
	if !conflict {
		if err = store.CreateIndex(ctx, target); err != nil {
			return err
		}
		return dropIndexesExcept(ctx, store, existing, target.Name)
	}
	// the name is taken by an index over other columns: go through a temporary index
	// so the table is never left without one
	temporary := cx.Index{Name: target.Name + "_replacing", Table: target.Table, Columns: target.Columns}
	if err = store.CreateIndex(ctx, temporary); err != nil {
		return err
	}
	if err = dropIndexesExcept(ctx, store, existing, temporary.Name); err != nil {
		return err
	}
	if err = store.CreateIndex(ctx, target); err != nil {
		return err
	}
	if err = store.DropIndex(ctx, temporary); err != nil {
		return fmt.Errorf("drop temporary index %s: %w", temporary.Name, err)
	}
	return nil
}

func dropIndexesExcept(ctx context.Context, store cx.Store, indexes []cx.Index, keep string) error {
	for _, index := range indexes {
		if index.Name == keep {
			continue
		}
		if err := store.DropIndex(ctx, index); err != nil {
			return err
		}
	}
	return nil
}

func sameColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
