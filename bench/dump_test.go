package bench

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-redis/redis/v8"

	dataframebuffer "github.com/zikwall/dataframe-buffer"
	"github.com/zikwall/dataframe-buffer/src/buffer/cxredis"
	"github.com/zikwall/dataframe-buffer/src/cx"
	"github.com/zikwall/dataframe-buffer/src/db/cxsqlite"
)

func dump(b *testing.B, store cx.Store, buffer cx.Buffer, frames, every int) {
	frame := frameOf(10)
	err := dataframebuffer.WithDumper(context.Background(), store, buffer,
		dataframebuffer.NewOptions(dataframebuffer.WithDumpAfterAppends(uint(every))),
		func(d dataframebuffer.Dumper) error {
			for i := 0; i < frames; i++ {
				if err := d.Append(frame); err != nil {
					return err
				}
			}
			return nil
		},
	)
	if err != nil {
		b.Fatal(err)
	}
}

// nolint:dupl // it's OK
func BenchmarkDumpSQLite(b *testing.B) {
	ctx := context.Background()
	for _, every := range []int{1000, 100, 10, 1} {
		b.Run(strconv.Itoa(every), func(b *testing.B) {
			path := filepath.Join(b.TempDir(), "bench.sqlite")
			for i := 0; i < b.N; i++ {
				if err := cxsqlite.RemoveFiles(path); err != nil {
					b.Fatal(err)
				}
				store, _, err := cxsqlite.Open(ctx, path)
				if err != nil {
					b.Fatal(err)
				}
				dump(b, store, nil, 1000, every)
			}
		})
	}
}

// nolint:dupl // it's OK
func BenchmarkDumpRedisSQLite(b *testing.B) {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		b.Skip("REDIS_HOST is not set")
	}
	ctx := context.Background()
	db := redis.NewClient(&redis.Options{Addr: host, DB: 12})
	defer db.Close()
	for _, every := range []int{1000, 100, 10} {
		b.Run(strconv.Itoa(every), func(b *testing.B) {
			path := filepath.Join(b.TempDir(), "bench.sqlite")
			for i := 0; i < b.N; i++ {
				buffer, err := cxredis.NewBuffer(ctx, db, "bench")
				if err != nil {
					b.Fatal(err)
				}
				if err = cxsqlite.RemoveFiles(path); err != nil {
					b.Fatal(err)
				}
				store, _, err := cxsqlite.Open(ctx, path)
				if err != nil {
					b.Fatal(err)
				}
				dump(b, store, buffer, 1000, every)
			}
		})
	}
}
