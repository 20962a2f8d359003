package main

import (
	"context"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-redis/redis/v8"

	dataframebuffer "github.com/zikwall/dataframe-buffer"
	"github.com/zikwall/dataframe-buffer/example/pkg/tables"
	"github.com/zikwall/dataframe-buffer/src/buffer/cxredis"
	"github.com/zikwall/dataframe-buffer/src/db/cxclickhouse"
)

func main() {
	hostname := os.Getenv("CLICKHOUSE_HOST")
	username := os.Getenv("CLICKHOUSE_USER")
	database := os.Getenv("CLICKHOUSE_DB")
	password := os.Getenv("CLICKHOUSE_PASS")
	redisHost := os.Getenv("REDIS_HOST")
	redisPass := os.Getenv("REDIS_PASS")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, _, err := cxclickhouse.NewClickhouse(ctx, &clickhouse.Options{
		Addr: []string{hostname},
		Auth: clickhouse.Auth{
			Database: database,
			Username: username,
			Password: password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		DialTimeout: 5 * time.Second,
		Debug:       true,
	})
	if err != nil {
		log.Panicln(err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisHost,
		Password: redisPass,
		DB:       10,
	})
	defer rdb.Close()

	// frames a crashed previous run left behind
	recovered, err := cxredis.Recover(ctx, rdb, "bucket")
	if err != nil {
		log.Panicln(err)
	}
	if len(recovered) > 0 {
		log.Printf("discarding %d frames of an interrupted run\n", len(recovered))
	}
	rxbuffer, err := cxredis.NewBuffer(ctx, rdb, "bucket")
	if err != nil {
		log.Panicln(err)
	}

	options := dataframebuffer.DefaultOptions().
		SetDebugMode(true).
		SetDumpAfterAppends(100).
		SetDumpAfter(5 * time.Second)

	err = dataframebuffer.WithDumper(ctx, store, rxbuffer, options, func(d dataframebuffer.Dumper) error {
		for i := int64(0); i < 20; i++ {
			for j := int64(0); j < 20; j++ {
				if err := d.Append(tables.ExampleFrame(&tables.ExampleRow{I: i, J: j, Data: rand.NormFloat64()})); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Panicln(err)
	}
}
