package parse

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	dataframebuffer "github.com/zikwall/dataframe-buffer"
	"github.com/zikwall/dataframe-buffer/cmd/measure"
	"github.com/zikwall/dataframe-buffer/cmd/util"
	"github.com/zikwall/dataframe-buffer/src/db/cxsqlite"
	"github.com/zikwall/dataframe-buffer/src/waveform"
)

// File is the store parse writes into the measurement directory
const File = "parsed_data.sqlite"

var errClickhouse = errors.New("parse reads and writes SQLite files only, unset the ClickHouse address")

// ParseCmd extracts the features of every measured waveform
var ParseCmd = &cobra.Command{
	Use:   "parse <dir>",
	Short: "Parse the waveforms of <dir>/" + measure.File + " into <dir>/" + File,
	Long: `Read every waveform written by measure and store, one row per waveform, its amplitude,
noise, collected charge and time over noise, indexed by n_waveform, n_event and device_name.
Both the input and the output are SQLite files: parse refuses to run while a ClickHouse server
is configured (--clickhouse-addr or DFBUFFER_CLICKHOUSE_ADDR).`,
	Args:    cobra.ExactArgs(1),
	PreRunE: util.BindCommandFlags,
	RunE:    run,
}

func init() {
	key := "dump-after-appends"
	ParseCmd.Flags().Uint(key, 1000, util.WrapString("Number of parsed waveforms after which they are written to the store"))

	key = "dump-after-seconds"
	ParseCmd.Flags().Float64(key, 600, util.WrapString("Seconds since the last write after which the next parsed waveform writes the buffer"))
}

func run(cmd *cobra.Command, args []string) (err error) {
	if util.UseClickhouse() {
		return errClickhouse
	}
	ctx := cmd.Context()
	dir := args[0]
	source, db, err := cxsqlite.OpenReadOnly(ctx, filepath.Join(dir, measure.File))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	count, err := waveform.Count(ctx, db, dataframebuffer.TableName)
	if err != nil {
		return err
	}

	d, err := dataframebuffer.NewSQLiteDumper(context.Background(), filepath.Join(dir, File), util.DumperOptions())
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, d.Close())
	}()
	return parseAll(ctx, db, d, count)
}

func parseAll(ctx context.Context, db *sqlx.DB, d dataframebuffer.Dumper, count int64) error {
	logger := util.Logger()
	for n := int64(0); n < count; n++ {
		w, err := waveform.Read(ctx, db, dataframebuffer.TableName, n)
		if err != nil {
			return err
		}
		features, err := waveform.Parse(w.Times, w.Samples)
		if err != nil {
			return fmt.Errorf("waveform %d: %w", n, err)
		}
		if err = d.Append(waveform.ParsedFrame(w, features)); err != nil {
			return err
		}
		if viper.GetBool("debug") {
			logger.Logf("processed n_waveform=%d/%d", n, count-1)
		}
	}
	return nil
}
