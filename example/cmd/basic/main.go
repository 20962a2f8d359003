package main

import (
	"context"
	"log"
	"math/rand"
	"time"

	dataframebuffer "github.com/zikwall/dataframe-buffer"
	"github.com/zikwall/dataframe-buffer/example/pkg/tables"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := dataframebuffer.NewSQLiteDumper(ctx, "df.sqlite", dataframebuffer.DefaultOptions().
		SetDebugMode(true).
		SetDumpAfterAppends(10000).
		SetDumpAfter(10*time.Second),
	)
	if err != nil {
		log.Panicln(err)
	}

	err = write(d)
	if closeErr := d.Close(); closeErr != nil {
		log.Panicln(closeErr)
	}
	if err != nil {
		log.Panicln(err)
	}

	frame, err := dataframebuffer.LoadSQLiteIndex(ctx, "df.sqlite")
	if err != nil {
		log.Panicln(err)
	}
	log.Printf("%d distinct (i, j) pairs written\n", frame.Len())
}

func write(d dataframebuffer.Dumper) error {
	for i := int64(0); i < 99; i++ {
		for j := int64(0); j < 99; j++ {
			if err := d.Append(tables.ExampleFrame(&tables.ExampleRow{I: i, J: j, Data: rand.NormFloat64()})); err != nil {
				return err
			}
		}
	}
	return nil
}
