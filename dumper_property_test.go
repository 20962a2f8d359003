package dataframebuffer

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/zikwall/dataframe-buffer/src/cx"
)

// batchFrames turns generated x values into one frame per batch, y numbers rows in append order
func batchFrames(batches [][]int) (frames []*cx.Frame, rows []cx.Vector, distinct []cx.Vector) {
	seen := map[int64]struct{}{}
	var y float64
	for _, batch := range batches {
		frame := cx.NewFrame([]string{"x", "y"}, "x")
		for _, x := range batch {
			row := cx.Vector{int64(x), y}
			frame.AppendVector(row)
			rows = append(rows, row)
			if _, ok := seen[int64(x)]; !ok {
				seen[int64(x)] = struct{}{}
				distinct = append(distinct, cx.Vector{int64(x)})
			}
			y++
		}
		frames = append(frames, frame)
	}
	return frames, rows, distinct
}

func sameRows(a, b []cx.Vector) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

// nolint:funlen // it's not important here
func TestProperty_DumpRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)
	ctx := context.Background()

	properties.Property("loaded rows equal appended rows in order, for any dump threshold", prop.ForAll(
		func(batches [][]int, n int) bool {
			store := NewStoreMock()
			frames, rows, distinct := batchFrames(batches)
			err := WithDumper(ctx, store, nil, NewOptions(WithDumpAfterAppends(uint(n)), WithDumpAfter(time.Hour)),
				func(d Dumper) error {
					for _, frame := range frames {
						if err := d.Append(frame); err != nil {
							return err
						}
					}
					if want := uint64(len(frames) / n); d.Stats().Dumps > want {
						return errors.New("more dumps than count triggers")
					}
					return nil
				},
			)
			if err != nil {
				return false
			}
			if len(frames) == 0 {
				_, err = LoadFullTable(ctx, store)
				return errors.Is(err, cx.ErrTableNotFound)
			}
			full, err := LoadFullTable(ctx, store)
			if err != nil || !sameRows(full.Rows(), rows) {
				return false
			}
			index, err := LoadIndexOnly(ctx, store)
			return err == nil && sameRows(index.Rows(), distinct)
		},
		gen.SliceOf(gen.SliceOf(gen.IntRange(0, 4))),
		gen.IntRange(1, 5),
	))

	properties.Property("at most one dump per N appends and nothing pending after a dump", prop.ForAll(
		func(appends int, n int) bool {
			store := NewStoreMock()
			d, err := NewDumper(ctx, store, nil, NewOptions(WithDumpAfterAppends(uint(n)), WithDumpAfter(time.Hour)))
			if err != nil {
				return false
			}
			for i := 0; i < appends; i++ {
				if err = d.Append(xyFrame(int64(i), 0)); err != nil {
					return false
				}
			}
			stats := d.Stats()
			ok := stats.Dumps == uint64(appends/n) && stats.Pending == appends%n
			return d.Close() == nil && ok && len(store.rows(TableName)) == appends
		},
		gen.IntRange(0, 50),
		gen.IntRange(1, 10),
	))

	properties.TestingRun(t)
}

func TestProperty_SQLiteRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)
	ctx := context.Background()
	dir := t.TempDir()

	properties.Property("a SQLite file reads back the appended rows and distinct index tuples", prop.ForAll(
		func(batches [][]int, n int) bool {
			path := filepath.Join(dir, "roundtrip.sqlite")
			frames, rows, distinct := batchFrames(batches)
			d, err := NewSQLiteDumper(ctx, path, NewOptions(WithDumpAfterAppends(uint(n))))
			if err != nil {
				return false
			}
			for _, frame := range frames {
				if err = d.Append(frame); err != nil {
					return false
				}
			}
			if err = d.Close(); err != nil {
				return false
			}
			if len(frames) == 0 {
				_, err = LoadSQLite(ctx, path)
				return errors.Is(err, cx.ErrTableNotFound)
			}
			full, err := LoadSQLite(ctx, path)
			if err != nil || !sameRows(full.Rows(), rows) {
				return false
			}
			index, err := LoadSQLiteIndex(ctx, path)
			return err == nil && sameRows(index.Rows(), distinct)
		},
		gen.SliceOf(gen.SliceOf(gen.IntRange(0, 4))),
		gen.IntRange(1, 5),
	))

	properties.TestingRun(t)
}
